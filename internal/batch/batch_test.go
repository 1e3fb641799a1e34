package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadFileFormats(t *testing.T) {
	path := writeBatchFile(t, "ябълка\nкуфар = suitcase\n= apple\n\n# comment\nвлак =\n")

	entries, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	want := []WordEntry{
		{Word: "ябълка"},
		{Word: "куфар", Translation: "suitcase"},
		{Translation: "apple", NeedsTranslation: true},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("ReadFile returned %+v, want %+v", entries, want)
	}
}

func TestReadFileHandlesCRLF(t *testing.T) {
	path := writeBatchFile(t, "ябълка\r\nкуфар = suitcase\r\n")

	entries, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Word != "ябълка" {
		t.Errorf("CRLF lines not handled: %+v", entries)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile("/no/such/file.txt"); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestWords(t *testing.T) {
	entries := []WordEntry{
		{Word: "ябълка"},
		{Translation: "apple", NeedsTranslation: true},
		{Word: "куфар", Translation: "suitcase"},
	}

	want := []string{"ябълка", "куфар"}
	if got := Words(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("Words returned %v, want %v", got, want)
	}
}
