package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"alfredoptarigan/resume-analyzer/internal/config"
)

// embedding input is capped at roughly 10k tokens
const maxEmbedBytes = 40000

// TextGenerator is the scoring oracle boundary. Tests swap in fakes.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type GeminiService interface {
	TextGenerator
	Embedder
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	log        logrus.FieldLogger
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, log logrus.FieldLogger) (GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  cfg.Model,
		embedModel: cfg.EmbedModel,
		log:        log.WithField("component", "gemini"),
	}, nil
}

// GenerateEmbedding implements Embedder.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = truncateUTF8(text, maxEmbedBytes)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText sends a single prompt and returns the text of the first candidate.
// There is no retry; the caller decides what a failure means.
func (g *geminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		g.log.WithError(err).Error("gemini request failed")
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		fields := logrus.Fields{"candidates": len(resp.Candidates)}
		if len(resp.Candidates) > 0 {
			fields["finish_reason"] = resp.Candidates[0].FinishReason
		}
		g.log.WithFields(fields).Warn("gemini response has no text")
		return "", fmt.Errorf("no text content in response")
	}

	g.log.WithField("model", g.modelName).Debug("gemini response received")
	return text, nil
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
