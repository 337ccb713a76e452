package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiService is the only place that talks to the generative AI API.
type GeminiService struct {
	models contentGenerator
	logger *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiService{models: client.Models, logger: logger}, nil
}

// GenerateJSON asks for a completion constrained to schema and returns the raw JSON text.
func (s *GeminiService) GenerateJSON(ctx context.Context, model, prompt string, schema *genai.Schema) (string, error) {
	return s.generate(ctx, model, prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
}

func (s *GeminiService) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	return s.generate(ctx, model, prompt, nil)
}

func (s *GeminiService) generate(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, error) {
	resp, err := s.models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	s.logger.Debug("gemini completion received",
		zap.String("model", model),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(text)),
	)
	return text, nil
}
