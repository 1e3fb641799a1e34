package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/lexicall/internal/archive"
	"codeberg.org/snonux/lexicall/internal/cli"
	"codeberg.org/snonux/lexicall/internal/models"
	"codeberg.org/snonux/lexicall/internal/processor"
)

func main() {
	flags := cli.NewFlags()

	rootCmd := cli.CreateRootCommand(flags)

	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		setupLogger(flags)
	})

	cli.AddCommands(rootCmd, flags, func() cli.Handler {
		return processor.NewProcessor(flags)
	})

	// Utility flags handled on the bare root command, without a subcommand.
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if flags.Archive {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			decksDir := flags.OutputDir
			if decksDir == "" {
				decksDir = filepath.Join(home, "Downloads", "lexicall")
			}
			if err := archive.ArchiveDecks(decksDir); err != nil {
				return fmt.Errorf("failed to archive decks: %w", err)
			}
			return nil
		}

		if flags.ListModels {
			lister := models.NewLister(cli.GetOpenAIKey())
			return lister.ListAvailableModels()
		}

		return cmd.Help()
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setupLogger(flags *cli.Flags) {
	level := slog.LevelWarn
	if flags.Verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if flags.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
