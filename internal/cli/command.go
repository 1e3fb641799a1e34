package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/lexicall/internal"
)

// Handler executes the actual operations behind the subcommands. It is
// implemented by the processor package; keeping it an interface here avoids
// an import cycle.
type Handler interface {
	Generate(ctx context.Context, words []string) error
	Regenerate(ctx context.Context, packID string) error
	Lookup(ctx context.Context, word string) error
	Show(ctx context.Context, packID string) error
	Import(ctx context.Context, url string) error
	Translate(ctx context.Context, word string) error
	Export(ctx context.Context, packID string) error
	Batch(ctx context.Context, file string) error
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lexicall",
		Short: "Vocabulary pack generation client",
		Long: `lexicall generates and browses LLM-produced vocabulary packs through a
generation backend. Long-running generation is submitted as a job and
polled to completion, so it survives the gateway's request time limit.

Examples:
  lexicall generate ябълка куфар      # Generate a pack for the given words
  lexicall lookup ябълка              # Look up word metadata
  lexicall show <pack-id>             # Show a generated pack
  lexicall --batch words.txt generate # Generate from a word-list file`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, flags)
	return rootCmd
}

// AddCommands attaches the operation subcommands. The handler is constructed
// lazily so it sees flag and config values as parsed, not the defaults.
func AddCommands(rootCmd *cobra.Command, flags *Flags, newHandler func() Handler) {
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "generate [word...]",
			Short: "Generate a vocabulary pack from words",
			RunE: func(cmd *cobra.Command, args []string) error {
				if flags.BatchFile != "" {
					return newHandler().Batch(cmd.Context(), flags.BatchFile)
				}
				if len(args) == 0 {
					return fmt.Errorf("no words given (or use --batch)")
				}
				return newHandler().Generate(cmd.Context(), args)
			},
		},
		&cobra.Command{
			Use:   "regenerate <pack-id>",
			Short: "Regenerate an existing pack with its recorded settings",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return newHandler().Regenerate(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "lookup <word>",
			Short: "Look up word metadata",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return newHandler().Lookup(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "show <pack-id>",
			Short: "Show a vocabulary pack",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return newHandler().Show(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "import <url>",
			Short: "Import an article and extract its vocabulary",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return newHandler().Import(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "translate <word>",
			Short: "Translate a word directly, without the generation backend",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return newHandler().Translate(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "export <pack-id>",
			Short: "Export a pack as an Anki .apkg deck",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return newHandler().Export(cmd.Context(), args[0])
			},
		},
	)
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.lexicall.yaml)")
	cmd.PersistentFlags().StringVarP(&flags.ServerURL, "server", "s", flags.ServerURL, "Backend base URL")
	cmd.PersistentFlags().StringVarP(&flags.Language, "language", "l", flags.Language, "Target language code")
	cmd.PersistentFlags().DurationVar(&flags.CallTimeout, "call-timeout", flags.CallTimeout, "Per-request timeout (must stay below the gateway limit)")
	cmd.PersistentFlags().DurationVar(&flags.JobTimeout, "job-timeout", flags.JobTimeout, "Overall job deadline (floored to 15m by the polling engine)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text or json")

	// Generation flags
	cmd.PersistentFlags().StringVar(&flags.BatchFile, "batch", "", "Generate from a word-list file (one word per line)")
	cmd.PersistentFlags().StringVar(&flags.PackName, "name", "", "Name for the generated pack")
	cmd.PersistentFlags().StringVar(&flags.Model, "model", flags.Model, "Generation model requested from the backend")
	cmd.PersistentFlags().StringVar(&flags.Prompt, "prompt", "", "Extra prompt for the generation model")
	cmd.PersistentFlags().Float64Var(&flags.Temperature, "temperature", flags.Temperature, "Generation temperature (0.0 to 2.0)")

	// Export flags
	cmd.PersistentFlags().StringVarP(&flags.OutputDir, "output", "o", "", "Output directory for exported decks")
	cmd.PersistentFlags().StringVar(&flags.DeckName, "deck-name", flags.DeckName, "Deck name for APKG export")
	cmd.PersistentFlags().BoolVar(&flags.Archive, "archive", false, "Archive the export directory and exit")

	// Translation flags
	cmd.PersistentFlags().StringVar(&flags.Provider, "provider", flags.Provider, "Translation provider: openai or gemini")
	cmd.PersistentFlags().BoolVar(&flags.ListModels, "list-models", false, "List available translation models for the current API key")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("server.url", cmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("server.call_timeout", cmd.PersistentFlags().Lookup("call-timeout"))
	viper.BindPFlag("server.job_timeout", cmd.PersistentFlags().Lookup("job-timeout"))
	viper.BindPFlag("generate.language", cmd.PersistentFlags().Lookup("language"))
	viper.BindPFlag("generate.model", cmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("generate.prompt", cmd.PersistentFlags().Lookup("prompt"))
	viper.BindPFlag("generate.temperature", cmd.PersistentFlags().Lookup("temperature"))
	viper.BindPFlag("export.directory", cmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("export.deck_name", cmd.PersistentFlags().Lookup("deck-name"))
	viper.BindPFlag("translate.provider", cmd.PersistentFlags().Lookup("provider"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".lexicall")
	}

	viper.SetEnvPrefix("LEXICALL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("translate.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("translate.gemini_key")
}
