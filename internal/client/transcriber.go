package client

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"path"
	"strings"

	"github.com/legalvoice/api/internal/config"
	"github.com/sashabaranov/go-openai"
)

// Transcript is the speech-to-text result for one audio object.
type Transcript struct {
	Text       string
	Confidence float64
	Language   string
}

// Transcriber converts stored audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioKey, languageHint string) (*Transcript, error)
}

// WhisperTranscriber reads the audio from storage and sends it to the OpenAI transcription API
type WhisperTranscriber struct {
	client  *openai.Client
	storage StorageClient
	model   string
	apiKey  string
}

// NewWhisperTranscriber creates a transcriber for the configured OpenAI endpoint
func NewWhisperTranscriber(cfg *config.OpenAIConfig, storage StorageClient) *WhisperTranscriber {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{
		client:  openai.NewClientWithConfig(clientCfg),
		storage: storage,
		model:   model,
		apiKey:  cfg.APIKey,
	}
}

// Transcribe downloads the audio object and returns its transcript
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioKey, languageHint string) (*Transcript, error) {
	audio, err := t.storage.Download(ctx, audioKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load audio %s: %w", audioKey, err)
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		Reader:   bytes.NewReader(audio),
		FilePath: path.Base(audioKey),
		Language: languageHint,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, classify(fmt.Errorf("whisper transcription failed: %w", err))
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, fmt.Errorf("empty transcript for %s", audioKey)
	}

	logprobs := make([]float64, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		logprobs = append(logprobs, seg.AvgLogprob)
	}

	lang := resp.Language
	if lang == "" {
		lang = languageHint
	}
	return &Transcript{
		Text:       text,
		Confidence: ConfidenceFromLogprobs(logprobs),
		Language:   lang,
	}, nil
}

// IsConfigured returns true if the client has valid configuration
func (t *WhisperTranscriber) IsConfigured() bool {
	return t.apiKey != ""
}

// ConfidenceFromLogprobs turns per-segment average log probabilities into a
// 0..1 confidence. Without segments the result is 1.
func ConfidenceFromLogprobs(logprobs []float64) float64 {
	if len(logprobs) == 0 {
		return 1
	}
	var sum float64
	for _, lp := range logprobs {
		sum += lp
	}
	c := math.Exp(sum / float64(len(logprobs)))
	return math.Max(0, math.Min(1, c))
}

var cannedTranscripts = []Transcript{
	{
		Text:       "I am writing to formally request the return of my security deposit in the amount of $1,200 from the rental property located at 123 Main Street. I vacated the premises on December 15th, 2023, and left the property in excellent condition. Despite multiple attempts to contact the landlord, I have not received my deposit back within the required 30-day period. I have photos and documentation showing the property was left in pristine condition.",
		Confidence: 0.94,
	},
	{
		Text:       "I am filing a complaint against my former employer ABC Corporation for wage theft. They have failed to pay me for overtime hours worked during the months of October and November 2023. I worked approximately 60 hours per week but was only paid for 40 hours. The total amount owed is approximately $2,400 in unpaid overtime wages. I have documentation of all hours worked including time sheets and have attempted to resolve this matter directly with HR without success.",
		Confidence: 0.92,
	},
	{
		Text:       "I need to file a formal complaint about loan recovery. I lent $5,000 to John Smith on March 15th, 2023, with a written agreement that it would be repaid within 6 months. The loan was due on September 15th, 2023, but I have not received any payment despite multiple requests. I have the signed loan agreement and bank transfer records showing the money was transferred to his account. He has been avoiding my calls and messages.",
		Confidence: 0.96,
	},
}

// MockTranscriber returns canned transcripts, chosen deterministically by key.
// Used when no speech-to-text provider is configured.
type MockTranscriber struct{}

func (MockTranscriber) Transcribe(ctx context.Context, audioKey, languageHint string) (*Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := fnv.New32a()
	h.Write([]byte(audioKey))
	t := cannedTranscripts[int(h.Sum32()%uint32(len(cannedTranscripts)))]
	if languageHint == "" {
		languageHint = "en"
	}
	t.Language = languageHint
	return &t, nil
}
