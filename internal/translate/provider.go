package translate

import (
	"context"
	"fmt"
)

// Provider defines the interface for translation providers
type Provider interface {
	// Translate translates a single word or short phrase
	Translate(ctx context.Context, word string) (string, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured
	IsAvailable() error
}

// Config holds common configuration for translation providers
type Config struct {
	Provider       string // Provider name: "openai" or "gemini"
	SourceLanguage string // e.g. "Bulgarian"
	TargetLanguage string // e.g. "English"

	// OpenAI-specific settings
	OpenAIKey   string
	OpenAIModel string

	// Gemini-specific settings
	GeminiKey   string
	GeminiModel string
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:       "openai",
		SourceLanguage: "Bulgarian",
		TargetLanguage: "English",
		OpenAIModel:    "gpt-4o-mini",
		GeminiModel:    "gemini-2.0-flash",
	}
}

// NewProvider creates the appropriate translation provider based on configuration
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config), nil

	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiProvider(config), nil

	default:
		return nil, fmt.Errorf("unknown translation provider: %s", config.Provider)
	}
}

// prompt builds the translation prompt shared by all providers
func prompt(config *Config, word string) string {
	return fmt.Sprintf("Translate the %s word '%s' to %s. Respond with only the %s translation, nothing else.",
		config.SourceLanguage, word, config.TargetLanguage, config.TargetLanguage)
}
