package translate

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestNewProviderSelection(t *testing.T) {
	config := DefaultProviderConfig()
	config.OpenAIKey = "test-key"

	provider, err := NewProvider(config)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if provider.Name() != "openai" {
		t.Errorf("Expected openai provider, got %s", provider.Name())
	}

	config.Provider = "gemini"
	config.GeminiKey = "test-key"
	provider, err = NewProvider(config)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if provider.Name() != "gemini" {
		t.Errorf("Expected gemini provider, got %s", provider.Name())
	}
}

func TestNewProviderUnknown(t *testing.T) {
	config := DefaultProviderConfig()
	config.Provider = "babelfish"

	if _, err := NewProvider(config); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNewProviderRequiresKey(t *testing.T) {
	config := DefaultProviderConfig()
	if _, err := NewProvider(config); err == nil {
		t.Error("Expected error when the OpenAI key is missing")
	}

	config.Provider = "gemini"
	if _, err := NewProvider(config); err == nil {
		t.Error("Expected error when the Gemini key is missing")
	}
}

func TestPromptMentionsLanguages(t *testing.T) {
	config := DefaultProviderConfig()
	got := prompt(config, "ябълка")

	if !strings.Contains(got, "Bulgarian") || !strings.Contains(got, "English") {
		t.Errorf("Prompt missing language names: %s", got)
	}
	if !strings.Contains(got, "ябълка") {
		t.Errorf("Prompt missing the word: %s", got)
	}
}

func TestTranslate_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	config := DefaultProviderConfig()
	config.OpenAIKey = apiKey
	provider, err := NewProvider(config)
	if err != nil {
		t.Fatal(err)
	}

	translation, err := provider.Translate(context.Background(), "ябълка")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if translation == "" {
		t.Error("Got empty translation")
	}

	t.Logf("Translation of 'ябълка': %s", translation)
}
