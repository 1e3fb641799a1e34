package phonetic

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/lexicall/internal/pack"
)

// Fetcher obtains IPA transcriptions for single words
type Fetcher struct {
	apiKey   string
	client   *openai.Client
	language string
}

// NewFetcher creates a new phonetic fetcher for the given language
func NewFetcher(apiKey, language string) *Fetcher {
	return &Fetcher{
		apiKey:   apiKey,
		client:   openai.NewClient(apiKey),
		language: language,
	}
}

// Fetch returns the IPA transcription for a word, without brackets
func (f *Fetcher) Fetch(ctx context.Context, word string) (string, error) {
	if f.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key not configured")
	}

	req := openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("You are a %s language expert. Respond with only the IPA transcription of the given word, including stress marks, without brackets or any explanation.", f.language),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: word,
			},
		},
		Temperature: 0.3,
		MaxTokens:   50,
	}

	resp, err := f.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no response from OpenAI")
	}

	transcription := strings.TrimSpace(resp.Choices[0].Message.Content)
	transcription = strings.Trim(transcription, "[]/")
	return transcription, nil
}

// Backfill fills in the Phonetic field of every card that lacks one. Errors
// on individual cards are collected, not fatal; cards that already carry a
// transcription are left alone.
func (f *Fetcher) Backfill(ctx context.Context, p *pack.VocabPack) []error {
	var errs []error
	for i := range p.Cards {
		if p.Cards[i].Phonetic != "" || p.Cards[i].Lemma == "" {
			continue
		}
		transcription, err := f.Fetch(ctx, p.Cards[i].Lemma)
		if err != nil {
			errs = append(errs, fmt.Errorf("phonetic for '%s': %w", p.Cards[i].Lemma, err))
			continue
		}
		p.Cards[i].Phonetic = transcription
	}
	return errs
}
