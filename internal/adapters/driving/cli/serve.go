package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/marketbrief/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run passes on a schedule",
	Long: `Runs the pipeline every schedule.interval until interrupted.

The config file is watched; a valid edit restarts the scheduler with the new
settings between runs, an invalid edit is logged and ignored.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := Options{ConfigPath: configPath, Out: cmd.OutOrStdout()}
	for {
		reloaded, err := serveOnce(ctx, cmd, opts)
		if err != nil || !reloaded {
			return err
		}
		opts.SkipRunOnStart = true
	}
}

// serveOnce runs one scheduler generation. It returns true when the config
// changed and the caller should rebuild.
func serveOnce(ctx context.Context, cmd *cobra.Command, opts Options) (bool, error) {
	rt, err := bootstrap(ctx, opts)
	if err != nil {
		return false, err
	}
	defer closeRuntime(rt)
	if rt.Scheduler == nil {
		return false, errors.New("scheduler not configured")
	}

	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reload := make(chan struct{}, 1)
	if deps.WatchConfig != nil && rt.ConfigPath != "" {
		go func() {
			err := deps.WatchConfig(genCtx, rt.ConfigPath, func(err error) {
				if err != nil {
					logger.Warn("config reload rejected, keeping current settings: %v", err)
					return
				}
				select {
				case reload <- struct{}{}:
				default:
				}
			})
			if err != nil {
				logger.Warn("config watch stopped: %v", err)
			}
		}()
	}

	done := make(chan error, 1)
	go func() { done <- rt.Scheduler.Start(genCtx) }()

	cmd.PrintErrf("Serving every %s (config %s)\n", rt.Config.Schedule.Interval, rt.ConfigPath)

	select {
	case <-ctx.Done():
		cancel()
		_ = rt.Scheduler.Stop()
		<-done
		cmd.PrintErrln("Stopped.")
		return false, nil

	case err := <-done:
		return false, err

	case <-reload:
		logger.Info("config changed, restarting scheduler")
		_ = rt.Scheduler.Stop()
		cancel()
		<-done
		cmd.PrintErrln("Config reloaded.")
		return true, nil
	}
}
