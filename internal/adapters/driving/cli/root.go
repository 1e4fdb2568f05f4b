// Package cli implements the command-line interface using cobra.
// Commands hold no business logic: they parse flags, call the driving
// port services injected by main, and format output.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driving"
	"github.com/custodia-labs/sibyl-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by main before Execute.
var (
	pipeline        driving.Pipeline
	documentService driving.DocumentService
	configStore     driven.ConfigStore
	supportedSource func(path string) bool
)

// Persistent flags.
var (
	flagVerbose   bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "sibyl",
	Short: "Ask questions over a local document corpus",
	Long: `Sibyl ingests local documents into a searchable vector index and
answers questions about them, grounding every answer in the indexed
text and citing the passages it used.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)

		// Version and help need no services.
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		if wireServices != nil && pipeline == nil {
			return wireServices()
		}
		return nil
	},
}

// wireServices is installed by main and builds the service graph after
// persistent flags are parsed.
var wireServices func() error

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "",
		"configuration directory (default ~/.sibyl)")
}

// SetVersion sets the version string displayed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetWiring installs the deferred service constructor. It runs once,
// after flag parsing, before the first command that needs services.
func SetWiring(fn func() error) {
	wireServices = fn
}

// SetServices injects the driving port implementations.
// Called by the wiring function (or directly in tests).
func SetServices(p driving.Pipeline, docs driving.DocumentService, cfg driven.ConfigStore) {
	pipeline = p
	documentService = docs
	configStore = cfg
}

// SetSupportedSource injects the predicate reporting whether a file
// type can be ingested. Used by directory walks and watch mode.
func SetSupportedSource(fn func(path string) bool) {
	supportedSource = fn
}

// ConfigDir returns the --config-dir flag value.
func ConfigDir() string {
	return flagConfigDir
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
