package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using OpenAI chat completions
type OpenAIProvider struct {
	client *openai.Client
	config *Config
}

// NewOpenAIProvider creates a new OpenAI translation provider
func NewOpenAIProvider(config *Config) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(config.OpenAIKey),
		config: config,
	}
}

// Translate translates a word using an OpenAI chat completion
func (p *OpenAIProvider) Translate(ctx context.Context, word string) (string, error) {
	if err := p.IsAvailable(); err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model: p.config.OpenAIModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt(p.config, word),
			},
		},
		MaxTokens:   50,
		Temperature: 0.3,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is configured
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not found")
	}
	return nil
}
