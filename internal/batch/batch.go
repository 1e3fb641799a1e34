// Package batch reads word-list files for bulk pack generation.
package batch

import (
	"fmt"
	"os"
	"strings"
)

// WordEntry represents a word with an optional known translation
type WordEntry struct {
	Word        string
	Translation string
	// NeedsTranslation indicates the word itself is missing and must be
	// derived from the translation before submitting.
	NeedsTranslation bool
}

// ReadFile reads words from a file and returns WordEntry slice.
// Supported line formats:
//   - word only: "ябълка"
//   - with translation: "ябълка = apple"
//   - translation only: "= apple" (the word must be translated back first)
//
// Blank lines and lines starting with '#' are skipped.
func ReadFile(filename string) ([]WordEntry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var entries []WordEntry
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !strings.Contains(line, "=") {
			entries = append(entries, WordEntry{Word: line})
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		word := strings.TrimSpace(parts[0])
		translation := strings.TrimSpace(parts[1])

		switch {
		case word == "" && translation != "":
			entries = append(entries, WordEntry{Translation: translation, NeedsTranslation: true})
		case word != "" && translation != "":
			entries = append(entries, WordEntry{Word: word, Translation: translation})
			// Lines with an empty translation part are ignored.
		}
	}

	return entries, nil
}

// Words returns the word column of the entries, skipping ones that still
// need translation
func Words(entries []WordEntry) []string {
	words := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.NeedsTranslation && entry.Word != "" {
			words = append(words, entry.Word)
		}
	}
	return words
}
