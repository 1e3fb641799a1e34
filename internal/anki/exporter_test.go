package anki

import (
	"archive/zip"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/snonux/lexicall/internal/pack"
)

func testPack() *pack.VocabPack {
	return &pack.VocabPack{
		ID:       "p1",
		Name:     "Travel",
		Language: "bg",
		Cards: []pack.Card{
			{ID: "c1", Lemma: "пътувам", Translation: "to travel", Phonetic: "[pɐˈtuvɐm]", Examples: []string{"Обичам да пътувам."}},
			{ID: "c2", Lemma: "куфар", Translation: "suitcase"},
		},
	}
}

func TestExportCreatesAPKG(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "travel.apkg")

	exporter := NewExporter("Travel Vocabulary")
	exporter.AddPack(testPack())
	if err := exporter.Export(outputPath); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	reader, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("Output is not a valid zip: %v", err)
	}
	defer reader.Close()

	files := make(map[string]bool)
	for _, f := range reader.File {
		files[f.Name] = true
	}
	if !files["collection.anki2"] {
		t.Error("Package is missing collection.anki2")
	}
	if !files["media"] {
		t.Error("Package is missing the media mapping")
	}
}

func TestExportWritesAllNotes(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "travel.apkg")

	exporter := NewExporter("Travel Vocabulary")
	exporter.AddPack(testPack())
	if err := exporter.Export(outputPath); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Unpack the collection and count notes and cards directly.
	reader, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	dbPath := filepath.Join(tmpDir, "collection.anki2")
	for _, f := range reader.File {
		if f.Name != "collection.anki2" {
			continue
		}
		src, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(src)
		if err != nil {
			t.Fatal(err)
		}
		src.Close()
		if err := os.WriteFile(dbPath, data, 0644); err != nil {
			t.Fatal(err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var notes, cards int
	if err := db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&notes); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&cards); err != nil {
		t.Fatal(err)
	}

	if notes != 2 {
		t.Errorf("Expected 2 notes, got %d", notes)
	}
	// Forward + reverse card per note.
	if cards != 4 {
		t.Errorf("Expected 4 cards, got %d", cards)
	}
}

func TestExportEmptyFails(t *testing.T) {
	exporter := NewExporter("Empty")
	if err := exporter.Export(filepath.Join(t.TempDir(), "empty.apkg")); err == nil {
		t.Error("Expected error when exporting without cards")
	}
}
