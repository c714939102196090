package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/logger"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one pass and print the digest",
	Long: `Runs a single collection, deduplication and verification pass and prints
the resulting digest.

With --dry-run the seen-items store is kept in memory, so nothing is
recorded and the next real run will surface the same items again.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not record delivered items")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx, Options{
		ConfigPath: configPath,
		DryRun:     dryRun,
		Out:        cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	report, err := rt.Runner.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

// bootstrap builds a runtime from the configured dependencies.
func bootstrap(ctx context.Context, opts Options) (*Runtime, error) {
	if deps.Bootstrap == nil {
		return nil, errors.New("application not configured")
	}
	rt, err := deps.Bootstrap(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("initialise: %w", err)
	}
	return rt, nil
}

func closeRuntime(rt *Runtime) {
	if rt.Close == nil {
		return
	}
	if err := rt.Close(); err != nil {
		logger.Warn("close: %v", err)
	}
}

// printReport writes a one-line run summary to stderr so stdout holds only the digest.
func printReport(cmd *cobra.Command, r domain.RunReport) {
	cmd.PrintErrf("Run %s finished in %s: %d collected, %d new, %d delivered, %d rejected, %d pruned\n",
		shortRunID(r.RunID), r.Duration().Round(time.Millisecond), r.Collected, r.New, r.Delivered, r.Rejected, r.Pruned)
	if n := len(r.Errors); n > 0 {
		cmd.PrintErrf("%d source(s) degraded\n", n)
	}
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
