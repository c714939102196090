// Package cli provides the marketbrief command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driving"
	"github.com/custodia-labs/marketbrief/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "marketbrief",
	Short: "Collect, verify and deliver a market news digest",
	Long: `marketbrief gathers crypto, market and geopolitical news from many feeds,
drops anything already delivered in earlier runs, checks the rest with a
trust evaluator and prints a digest.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.marketbrief/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Options selects how a Runtime is built.
type Options struct {
	// ConfigPath is the --config flag value; empty means the default path.
	ConfigPath string

	// DryRun swaps the durable store for an in-memory one.
	DryRun bool

	// SkipRunOnStart suppresses the immediate pass of a rebuilt scheduler.
	SkipRunOnStart bool

	// Out receives delivered digests.
	Out io.Writer
}

// Runtime is the set of services a command operates on.
type Runtime struct {
	// ConfigPath is the resolved config file location.
	ConfigPath string

	Config     domain.Config
	Runner     driving.PipelineRunner
	Maintainer driving.StoreMaintainer
	Scheduler  driving.Scheduler

	// Close releases the store and evaluator.
	Close func() error
}

// Dependencies holds the constructors commands need.
type Dependencies struct {
	// Bootstrap loads configuration and wires the services.
	Bootstrap func(ctx context.Context, opts Options) (*Runtime, error)

	// WatchConfig calls onChange after each reload of the config at path
	// until ctx ends. A non-nil error means the new file was rejected.
	WatchConfig func(ctx context.Context, path string, onChange func(error)) error

	// LoadConfig reads and validates the config at path.
	LoadConfig func(path string) (domain.Config, error)

	// InitConfig writes a default config and returns its path.
	InitConfig func(path string) (string, error)

	// ValidateEvaluator pings the configured evaluator.
	ValidateEvaluator func(ctx context.Context, settings domain.EvaluatorSettings) error
}

// deps holds the current dependencies.
var deps Dependencies

// SetDependencies sets the constructors used by commands.
func SetDependencies(d Dependencies) {
	deps = d
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
