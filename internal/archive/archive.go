// Package archive moves the exported decks directory aside so a fresh export
// run starts clean while older decks stay recoverable.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArchiveDecks moves the decks directory to an archive with timestamp
func ArchiveDecks(decksDir string) error {
	if _, err := os.Stat(decksDir); os.IsNotExist(err) {
		return fmt.Errorf("decks directory does not exist: %s", decksDir)
	}

	parentDir := filepath.Dir(decksDir)
	archiveDir := filepath.Join(parentDir, "archive")

	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	archiveName := fmt.Sprintf("decks-%s", timestamp)
	archivePath := filepath.Join(archiveDir, archiveName)

	// Unlikely, but two runs within the same second need distinct names.
	if _, err := os.Stat(archivePath); err == nil {
		timestamp = time.Now().Format("20060102-150405.000000")
		archiveName = fmt.Sprintf("decks-%s", timestamp)
		archivePath = filepath.Join(archiveDir, archiveName)
	}

	if err := os.Rename(decksDir, archivePath); err != nil {
		return fmt.Errorf("failed to archive decks directory: %w", err)
	}

	fmt.Printf("Decks directory archived to: %s\n", archivePath)
	return nil
}
