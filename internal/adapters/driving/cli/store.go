package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show seen-items store statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old seen-item records",
	Long: `Removes records first seen more than --days days ago.
Defaults to retention_days from the config file.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "retention in days (default from config)")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cleanupCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, err := bootstrap(ctx, Options{ConfigPath: configPath, Out: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	stats, err := rt.Maintainer.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	cmd.Printf("Seen items:      %d\n", stats.Total)
	cmd.Printf("First seen today: %d\n", stats.Today)
	cmd.Printf("Retention:       %d day(s)\n", rt.Config.RetentionDays)
	return nil
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, err := bootstrap(ctx, Options{ConfigPath: configPath, Out: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	days := rt.Config.RetentionDays
	if cmd.Flags().Changed("days") {
		days = cleanupDays
	}

	removed, err := rt.Maintainer.Cleanup(ctx, days)
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	cmd.Printf("Removed %d record(s) older than %d day(s).\n", removed, days)
	return nil
}
