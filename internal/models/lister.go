package models

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
	out    io.Writer
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClient(apiKey),
		out:    os.Stdout,
	}
}

// ListAvailableModels lists the chat models usable for translation and pack
// generation, categorized by family.
func (l *Lister) ListAvailableModels() error {
	if l.apiKey == "" {
		return fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .lexicall.yaml")
	}

	ctx := context.Background()
	models, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	chatModels := []string{}
	for _, model := range models.Models {
		if isChatModel(model.ID) {
			chatModels = append(chatModels, model.ID)
		}
	}
	sort.Strings(chatModels)

	fmt.Fprintln(l.out, "Available models for translation and generation:")
	if len(chatModels) == 0 {
		fmt.Fprintln(l.out, "  No chat models found")
		return nil
	}

	gpt4, rest := splitModels(chatModels)
	fmt.Fprintln(l.out, "\nGPT-4 family (recommended):")
	for _, model := range gpt4 {
		fmt.Fprintf(l.out, "  %s\n", model)
	}
	if len(rest) > 0 {
		fmt.Fprintln(l.out, "\nOther chat models:")
		for _, model := range rest {
			fmt.Fprintf(l.out, "  %s\n", model)
		}
	}

	fmt.Fprintln(l.out, "\nGemini models (set --provider gemini):")
	for _, model := range []string{"gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.5-pro"} {
		fmt.Fprintf(l.out, "  %s\n", model)
	}

	return nil
}

// isChatModel reports whether a model id looks like a text chat model rather
// than an embedding, TTS or image model.
func isChatModel(id string) bool {
	if strings.Contains(id, "tts") || strings.Contains(id, "audio") ||
		strings.Contains(id, "dall-e") || strings.Contains(id, "embedding") ||
		strings.Contains(id, "whisper") || strings.Contains(id, "moderation") {
		return false
	}
	return strings.Contains(id, "gpt") || strings.Contains(id, "chat") || strings.HasPrefix(id, "o1") || strings.HasPrefix(id, "o3")
}

func splitModels(models []string) (gpt4, rest []string) {
	for _, model := range models {
		if strings.Contains(model, "gpt-4") {
			gpt4 = append(gpt4, model)
		} else {
			rest = append(rest, model)
		}
	}
	return gpt4, rest
}
