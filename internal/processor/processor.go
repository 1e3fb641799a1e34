package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"codeberg.org/snonux/lexicall/internal"
	"codeberg.org/snonux/lexicall/internal/anki"
	"codeberg.org/snonux/lexicall/internal/api"
	"codeberg.org/snonux/lexicall/internal/batch"
	"codeberg.org/snonux/lexicall/internal/cli"
	"codeberg.org/snonux/lexicall/internal/job"
	"codeberg.org/snonux/lexicall/internal/loader"
	"codeberg.org/snonux/lexicall/internal/lookup"
	"codeberg.org/snonux/lexicall/internal/notify"
	"codeberg.org/snonux/lexicall/internal/pack"
	"codeberg.org/snonux/lexicall/internal/phonetic"
	"codeberg.org/snonux/lexicall/internal/translate"
)

// Processor handles the main command logic. It implements cli.Handler.
type Processor struct {
	flags  *cli.Flags
	client *api.Client
	hub    *notify.Hub
	runner *job.Runner
	cache  *lookup.Cache
	loader *loader.Loader
	out    io.Writer
	errOut io.Writer
}

// NewProcessor creates a new processor wired to the configured backend
func NewProcessor(flags *cli.Flags) *Processor {
	client := api.New(flags.ServerURL,
		api.WithTimeout(flags.CallTimeout),
		api.WithHeader("User-Agent", "lexicall/"+internal.Version),
	)

	p := &Processor{
		flags:  flags,
		client: client,
		hub:    notify.NewHub(),
		out:    os.Stdout,
		errOut: os.Stderr,
	}

	p.runner = job.NewRunner(client, p.hub)
	p.cache = lookup.NewCache(func(ctx context.Context, key string) (*lookup.Result, error) {
		res, err := client.LookupWord(ctx, key)
		if err != nil {
			return nil, err
		}
		return &lookup.Result{
			Found:    res.Found,
			ID:       res.ID,
			Lemma:    res.Lemma,
			Language: res.Language,
			PackID:   res.PackID,
		}, nil
	})
	p.loader = loader.New(client.GetPack)

	p.hub.SetOnChange(p.renderNotification)
	return p
}

// renderNotification prints every notification state change. The hub already
// copies the record, so this is safe to use without additional locking.
func (p *Processor) renderNotification(r notify.Record) {
	switch r.Status {
	case notify.StatusSuccess:
		fmt.Fprintf(p.out, "✓ %s: %s\n", r.Title, r.Message)
	case notify.StatusError:
		fmt.Fprintf(p.errOut, "✗ %s: %s\n", r.Title, r.Message)
	default:
		fmt.Fprintf(p.out, "… %s: %s\n", r.Title, r.Message)
	}
}

// Generate submits a pack generation job for the given words and polls it to
// completion.
func (p *Processor) Generate(ctx context.Context, words []string) error {
	req := p.generateRequest(words)

	var packID string
	err := p.runner.Run(ctx, "generate_pack", req, job.Options{
		Title:    p.packTitle(req.Name, words),
		Message:  fmt.Sprintf("Generating pack for %d word(s)", len(words)),
		Model:    req.Model,
		Category: "generation",
		Timeout:  p.flags.JobTimeout,
		OnResult: func(result json.RawMessage) {
			packID = p.handleGeneratedPack(result, words)
		},
	})
	if err != nil {
		return err
	}

	if packID != "" {
		fmt.Fprintf(p.out, "Pack ID: %s\n", packID)
	}
	return nil
}

// Regenerate re-runs generation for an existing pack with the settings
// recorded on the pack itself.
func (p *Processor) Regenerate(ctx context.Context, packID string) error {
	existing, err := p.client.GetPack(ctx, packID)
	if err != nil {
		return fmt.Errorf("failed to load pack %s: %w", packID, err)
	}

	params := pack.ExtractParams(existing)
	req := &pack.GenerateRequest{
		PackID:      packID,
		Name:        existing.Name,
		Words:       params.Lemmas,
		Language:    existing.Language,
		Model:       params.Model,
		Prompt:      params.Prompt,
		Temperature: params.Temperature,
	}

	return p.runner.Run(ctx, "regenerate_pack", req, job.Options{
		Title:    existing.Name,
		Message:  fmt.Sprintf("Regenerating %d card(s)", params.CardCount),
		Model:    params.Model,
		Category: "generation",
		Timeout:  p.flags.JobTimeout,
		OnResult: func(result json.RawMessage) {
			p.handleGeneratedPack(result, params.Lemmas)
		},
	})
}

// Lookup resolves word metadata through the coalescing cache and prints it
func (p *Processor) Lookup(ctx context.Context, word string) error {
	res, err := p.cache.Lookup(ctx, word)
	if err != nil {
		return fmt.Errorf("lookup failed for '%s': %w", word, err)
	}

	if !res.Found {
		fmt.Fprintf(p.out, "'%s' is not known to the backend yet\n", strings.TrimSpace(word))
		return nil
	}

	fmt.Fprintf(p.out, "Lemma:    %s\n", res.Lemma)
	fmt.Fprintf(p.out, "Language: %s\n", res.Language)
	fmt.Fprintf(p.out, "ID:       %s\n", res.ID)
	if res.PackID != "" {
		fmt.Fprintf(p.out, "Pack:     %s\n", res.PackID)
	}
	return nil
}

// Show loads a pack through the loader and prints its cards once ready
func (p *Processor) Show(ctx context.Context, packID string) error {
	done := make(chan struct{}, 1)
	p.loader.SetOnChange(func() {
		if p.loader.State() != loader.StateLoading {
			select {
			case done <- struct{}{}:
			default:
			}
		}
	})
	defer p.loader.Close()

	p.loader.Load(ctx, packID)

	select {
	case <-ctx.Done():
		p.loader.Cancel()
		return ctx.Err()
	case <-done:
	}

	if p.loader.State() == loader.StateError {
		return fmt.Errorf("%s", p.loader.Err())
	}

	p.printPack(p.loader.Pack())
	return nil
}

// Import submits an article import job and prints the extracted vocabulary
func (p *Processor) Import(ctx context.Context, url string) error {
	req := struct {
		URL      string `json:"url"`
		Language string `json:"language,omitempty"`
	}{URL: url, Language: p.flags.Language}

	return p.runner.Run(ctx, "import_article", req, job.Options{
		Title:    "Article import",
		Message:  fmt.Sprintf("Importing %s", url),
		Category: "import",
		Timeout:  p.flags.JobTimeout,
		OnResult: func(result json.RawMessage) {
			var article pack.Article
			if err := json.Unmarshal(result, &article); err != nil {
				fmt.Fprintf(p.errOut, "Warning: could not decode article result: %v\n", err)
				return
			}
			fmt.Fprintf(p.out, "Imported: %s (%d lemmas)\n", article.Title, len(article.Lemmas))
			for _, lemma := range article.Lemmas {
				fmt.Fprintf(p.out, "  %s\n", lemma)
			}
		},
	})
}

// Translate translates a single word locally, without the generation backend
func (p *Processor) Translate(ctx context.Context, word string) error {
	provider, err := p.translationProvider()
	if err != nil {
		return err
	}

	translated, err := provider.Translate(ctx, word)
	if err != nil {
		return fmt.Errorf("translation via %s failed: %w", provider.Name(), err)
	}

	fmt.Fprintf(p.out, "%s = %s\n", word, translated)
	return nil
}

// Export fetches a pack and writes it as an Anki .apkg deck
func (p *Processor) Export(ctx context.Context, packID string) error {
	vp, err := p.client.GetPack(ctx, packID)
	if err != nil {
		return fmt.Errorf("failed to load pack %s: %w", packID, err)
	}
	if len(vp.Cards) == 0 {
		return fmt.Errorf("pack %s has no cards to export", packID)
	}

	p.backfillPhonetics(ctx, vp)

	outputDir := p.outputDir()
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	deckName := p.flags.DeckName
	if vp.Name != "" && !viper.IsSet("export.deck_name") {
		deckName = vp.Name
	}

	exporter := anki.NewExporter(deckName)
	exporter.AddPack(vp)

	outputPath := filepath.Join(outputDir, internal.SanitizeFilename(deckName)+".apkg")
	if err := exporter.Export(outputPath); err != nil {
		return fmt.Errorf("failed to export pack: %w", err)
	}

	fmt.Fprintf(p.out, "Exported %d cards to %s\n", len(vp.Cards), outputPath)
	return nil
}

// backfillPhonetics fills in missing IPA transcriptions before export, when
// an OpenAI key is available. Older packs predate backend phonetics.
func (p *Processor) backfillPhonetics(ctx context.Context, vp *pack.VocabPack) {
	missing := false
	for _, card := range vp.Cards {
		if card.Phonetic == "" && card.Lemma != "" {
			missing = true
			break
		}
	}
	if !missing {
		return
	}

	apiKey := cli.GetOpenAIKey()
	if apiKey == "" {
		return
	}

	fetcher := phonetic.NewFetcher(apiKey, languageName(vp.Language))
	for _, err := range fetcher.Backfill(ctx, vp) {
		fmt.Fprintf(p.errOut, "Warning: %v\n", err)
	}
}

// Batch reads a word-list file, translates entries that only carry a target
// language side, and generates one pack for everything.
func (p *Processor) Batch(ctx context.Context, file string) error {
	entries, err := batch.ReadFile(file)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no usable entries in %s", file)
	}

	// Entries of the form "= translation" have no source-language word yet;
	// translate backwards to obtain it before generating.
	needsBackTranslation := false
	for _, entry := range entries {
		if entry.NeedsTranslation && entry.Translation != "" {
			needsBackTranslation = true
			break
		}
	}

	if needsBackTranslation {
		provider, err := p.reverseTranslationProvider()
		if err != nil {
			return err
		}
		for i, entry := range entries {
			if !entry.NeedsTranslation || entry.Translation == "" {
				continue
			}
			word, err := provider.Translate(ctx, entry.Translation)
			if err != nil {
				fmt.Fprintf(p.errOut, "Error translating '%s': %v\n", entry.Translation, err)
				continue
			}
			entries[i].Word = word
			fmt.Fprintf(p.out, "Translated '%s': %s\n", entry.Translation, word)
		}
	}

	words := batch.Words(entries)
	if len(words) == 0 {
		return fmt.Errorf("no words left to generate after translation")
	}

	fmt.Fprintf(p.out, "Generating pack for %d word(s) from %s\n", len(words), file)
	return p.Generate(ctx, words)
}

// Notifications returns the current notification records in creation order
func (p *Processor) Notifications() []notify.Record {
	return p.hub.Records()
}

// handleGeneratedPack decodes a finished generation result, prints a summary
// and invalidates any cached lookups for the affected words.
func (p *Processor) handleGeneratedPack(result json.RawMessage, words []string) string {
	var vp pack.VocabPack
	if err := json.Unmarshal(result, &vp); err != nil {
		fmt.Fprintf(p.errOut, "Warning: could not decode pack result: %v\n", err)
		return ""
	}

	// The generation changed what the backend knows about these words, so
	// any cached lookup for them is now stale.
	for _, word := range words {
		p.cache.Invalidate(word)
	}

	fmt.Fprintf(p.out, "Generated '%s' with %d card(s)\n", vp.Name, len(vp.Cards))
	return vp.ID
}

func (p *Processor) generateRequest(words []string) *pack.GenerateRequest {
	return &pack.GenerateRequest{
		Name:        p.flags.PackName,
		Words:       words,
		Language:    p.flags.Language,
		Model:       p.flags.Model,
		Prompt:      p.flags.Prompt,
		Temperature: p.flags.Temperature,
	}
}

func (p *Processor) packTitle(name string, words []string) string {
	if name != "" {
		return name
	}
	if len(words) == 1 {
		return words[0]
	}
	return fmt.Sprintf("%s and %d more", words[0], len(words)-1)
}

func (p *Processor) printPack(vp *pack.VocabPack) {
	if vp == nil {
		return
	}

	fmt.Fprintf(p.out, "%s (%s, %d cards)\n", vp.Name, vp.Language, len(vp.Cards))
	if vp.Model != "" {
		fmt.Fprintf(p.out, "Model: %s\n", vp.Model)
	}
	for _, card := range vp.Cards {
		fmt.Fprintf(p.out, "\n  %s = %s\n", card.Lemma, card.Translation)
		if card.Phonetic != "" {
			fmt.Fprintf(p.out, "  [%s]\n", card.Phonetic)
		}
		for _, example := range card.Examples {
			fmt.Fprintf(p.out, "    %s\n", example)
		}
	}
}

func (p *Processor) outputDir() string {
	if p.flags.OutputDir != "" {
		return p.flags.OutputDir
	}
	if dir := viper.GetString("export.directory"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

func (p *Processor) translationProvider() (translate.Provider, error) {
	return translate.NewProvider(p.translationConfig(false))
}

func (p *Processor) reverseTranslationProvider() (translate.Provider, error) {
	return translate.NewProvider(p.translationConfig(true))
}

var languageNames = map[string]string{
	"bg": "Bulgarian",
	"de": "German",
	"es": "Spanish",
	"fr": "French",
	"it": "Italian",
	"ru": "Russian",
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

func (p *Processor) translationConfig(reverse bool) *translate.Config {
	config := translate.DefaultProviderConfig()
	config.Provider = p.flags.Provider
	config.OpenAIKey = cli.GetOpenAIKey()
	config.GeminiKey = cli.GetGeminiKey()
	config.SourceLanguage = languageName(p.flags.Language)

	if viper.IsSet("translate.openai_model") {
		config.OpenAIModel = viper.GetString("translate.openai_model")
	}
	if viper.IsSet("translate.gemini_model") {
		config.GeminiModel = viper.GetString("translate.gemini_model")
	}

	if reverse {
		config.SourceLanguage, config.TargetLanguage = config.TargetLanguage, config.SourceLanguage
	}
	return config
}
