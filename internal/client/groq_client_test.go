package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/legalvoice/api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMGenerator(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"llama","choices":[{"index":0,"message":{"role":"assistant","content":"  FORMAL LEGAL NOTICE\n\nBody  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	g := NewLLMGenerator(&config.GroqConfig{APIKey: "gsk", BaseURL: srv.URL + "/openai/v1", Model: "llama"})
	doc, err := g.Generate(context.Background(), GenerateRequest{
		Transcript: "My landlord kept my deposit.",
		Category:   "Property Dispute",
		UserName:   "Ana",
		Email:      "ana@example.com",
		Language:   "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "FORMAL LEGAL NOTICE\n\nBody", doc)
	assert.Equal(t, "llama", body["model"])

	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	user := messages[1].(map[string]any)["content"].(string)
	assert.Contains(t, user, "Complaint Category: Property Dispute")
	assert.Contains(t, user, "My landlord kept my deposit.")
}

func TestLLMGeneratorEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	g := NewLLMGenerator(&config.GroqConfig{APIKey: "gsk", BaseURL: srv.URL})
	_, err := g.Generate(context.Background(), GenerateRequest{Transcript: "x"})
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestBuildGenerationPrompt(t *testing.T) {
	p := BuildGenerationPrompt(GenerateRequest{
		Transcript:   "unpaid wages",
		Category:     "Wage Theft",
		UserName:     "Sam",
		Email:        "sam@example.com",
		Language:     "es",
		TemplateHint: "WAGE CLAIM",
	})
	assert.Contains(t, p, "- Name: Sam")
	assert.Contains(t, p, "Use this template as a guide: WAGE CLAIM")
	assert.Contains(t, p, `"es"`)

	p = BuildGenerationPrompt(GenerateRequest{Language: "en"})
	assert.NotContains(t, p, "template as a guide")
	assert.NotContains(t, p, "ISO code")
}
