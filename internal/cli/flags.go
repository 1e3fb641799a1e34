package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	ServerURL  string
	Language   string
	BatchFile  string
	OutputDir  string
	Verbose    bool
	LogFormat  string
	Archive    bool
	ListModels bool

	// Timeouts
	CallTimeout time.Duration // per-HTTP-call; must stay below the gateway ceiling
	JobTimeout  time.Duration // overall job deadline; floored by the polling engine

	// Generation flags
	PackName    string
	Model       string
	Prompt      string
	Temperature float64

	// Export flags
	DeckName string

	// Translation flags
	Provider string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		ServerURL:   "http://localhost:8080",
		Language:    "bg",
		LogFormat:   "text",
		CallTimeout: 15 * time.Second,
		JobTimeout:  15 * time.Minute,
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		DeckName:    "Lexicall Vocabulary",
		Provider:    "openai",
	}
}
