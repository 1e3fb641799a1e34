package translate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider using the Google Gemini API
type GeminiProvider struct {
	config *Config
}

// NewGeminiProvider creates a new Gemini translation provider
func NewGeminiProvider(config *Config) *GeminiProvider {
	return &GeminiProvider{config: config}
}

// Translate translates a word using Gemini content generation
func (p *GeminiProvider) Translate(ctx context.Context, word string) (string, error) {
	if err := p.IsAvailable(); err != nil {
		return "", err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, p.config.GeminiModel,
		genai.Text(prompt(p.config, word)),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.3),
		})
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	translation := strings.TrimSpace(resp.Text())
	if translation == "" {
		return "", fmt.Errorf("no translation returned")
	}

	return translation, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks if the provider is configured
func (p *GeminiProvider) IsAvailable() error {
	if p.config.GeminiKey == "" {
		return fmt.Errorf("Gemini API key not found")
	}
	return nil
}
