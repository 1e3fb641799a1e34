package pack

import (
	"strings"
	"time"
)

// Card represents a single vocabulary card inside a pack
type Card struct {
	ID          string   `json:"id"`
	Lemma       string   `json:"lemma"`
	Translation string   `json:"translation"`
	Phonetic    string   `json:"phonetic,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// VocabPack represents a generated vocabulary pack as returned by the backend
type VocabPack struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Language    string    `json:"language"`
	Cards       []Card    `json:"cards"`
	Model       string    `json:"model,omitempty"`
	Prompt      string    `json:"prompt,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Article represents an imported article with its extracted vocabulary
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	Language  string    `json:"language"`
	Body      string    `json:"body,omitempty"`
	Lemmas    []string  `json:"lemmas,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerateRequest is the parameter set for a pack generation or regeneration job
type GenerateRequest struct {
	PackID      string   `json:"pack_id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Words       []string `json:"words,omitempty"`
	Language    string   `json:"language,omitempty"`
	Model       string   `json:"model,omitempty"`
	Prompt      string   `json:"prompt,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
}

// GenerationParams holds the generation settings extracted from a loaded pack.
// They are recomputed every time a pack is (re)loaded so the UI can offer
// "regenerate with the same settings".
type GenerationParams struct {
	Model       string
	Prompt      string
	Temperature float64
	CardCount   int
	Lemmas      []string
}

// ExtractParams derives the generation parameters from a loaded pack
func ExtractParams(p *VocabPack) *GenerationParams {
	if p == nil {
		return nil
	}

	params := &GenerationParams{
		Model:       p.Model,
		Prompt:      p.Prompt,
		Temperature: p.Temperature,
		CardCount:   len(p.Cards),
	}

	for _, card := range p.Cards {
		lemma := strings.TrimSpace(card.Lemma)
		if lemma != "" {
			params.Lemmas = append(params.Lemmas, lemma)
		}
	}

	return params
}
