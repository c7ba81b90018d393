package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/legalvoice/api/internal/config"
	"github.com/sashabaranov/go-openai"
)

// GenerateRequest carries everything needed to draft one legal letter.
type GenerateRequest struct {
	CaseID       string
	Transcript   string
	Category     string
	UserName     string
	Email        string
	Language     string
	TemplateHint string
}

// Generator drafts the legal document text for a case.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

const generatorSystemPrompt = "You are a professional legal assistant who drafts formal legal letters. " +
	"Reply with the document text only."

// LLMGenerator drafts documents through Groq's OpenAI-compatible chat API
type LLMGenerator struct {
	client *openai.Client
	model  string
	apiKey string
}

// NewLLMGenerator creates a generator for the configured Groq endpoint
func NewLLMGenerator(cfg *config.GroqConfig) *LLMGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &LLMGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		apiKey: cfg.APIKey,
	}
}

// Generate sends the complaint to the model and returns the drafted letter
func (g *LLMGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: generatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildGenerationPrompt(req)},
		},
		Temperature: 0.3,
		MaxTokens:   2048,
	})
	if err != nil {
		return "", classify(fmt.Errorf("groq chat completion failed: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty document returned by model")
	}
	return text, nil
}

// IsConfigured returns true if the client has valid configuration
func (g *LLMGenerator) IsConfigured() bool {
	return g.apiKey != ""
}

// BuildGenerationPrompt renders the user prompt for a case.
func BuildGenerationPrompt(req GenerateRequest) string {
	var b strings.Builder
	b.WriteString("You are a professional legal assistant. Based on the following user complaint, generate a formal legal document.\n\n")
	b.WriteString("User Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", req.UserName)
	fmt.Fprintf(&b, "- Email: %s\n\n", req.Email)
	fmt.Fprintf(&b, "Complaint Category: %s\n", req.Category)
	fmt.Fprintf(&b, "User's Statement: %q\n\n", req.Transcript)
	b.WriteString("Generate appropriate legal language based on the category. Use formal legal terminology and structure.\n")
	b.WriteString("Include proper formatting with headers, sections, and professional language.\n")
	b.WriteString("Add placeholders for specific details that need to be customized.\n\n")
	if req.Language != "" && req.Language != "en" {
		fmt.Fprintf(&b, "Write the document in the language with ISO code %q.\n\n", req.Language)
	}
	if req.TemplateHint != "" {
		fmt.Fprintf(&b, "Use this template as a guide: %s\n\n", req.TemplateHint)
	}
	b.WriteString("Generate a professional legal document that addresses the user's concerns.\n")
	return b.String()
}
