package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config and ping the evaluator",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if deps.InitConfig == nil {
		return errors.New("config writer not configured")
	}
	path, err := deps.InitConfig(configPath)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	cmd.Printf("Wrote default config to %s\n", path)
	return nil
}

func loadConfig() (domain.Config, error) {
	if deps.LoadConfig == nil {
		return domain.Config{}, errors.New("config loader not configured")
	}
	return deps.LoadConfig(configPath)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cmd.Printf("Evaluator:     %s\n", describeEvaluator(cfg.Evaluator))
	cmd.Printf("Schedule:      every %s (run on start: %t)\n", cfg.Schedule.Interval, cfg.Schedule.RunOnStart)
	cmd.Printf("Run timeout:   %s\n", cfg.RunTimeout)
	cmd.Printf("Retention:     %d day(s)\n", cfg.RetentionDays)
	cmd.Printf("Market zone:   %s\n", cfg.Market.Timezone)
	cmd.Printf("Allow-list:    %s\n", strings.Join(cfg.Verification.AllowList, ", "))
	cmd.Println("Feeds:")
	for _, cat := range domain.AllCategories() {
		var names []string
		for _, f := range cfg.Feeds {
			if f.Category == cat {
				names = append(names, f.Name)
			}
		}
		caps := cfg.CapPolicy(cat)
		cmd.Printf("  %-12s cap %d/%d  %s\n", cat.Label(), caps.Weekday, caps.Weekend, strings.Join(names, ", "))
	}
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cmd.Println("Config OK")

	if !cfg.Evaluator.IsConfigured() {
		cmd.Println("Evaluator disabled; the allow-list decides trust")
		return nil
	}
	if deps.ValidateEvaluator == nil {
		return errors.New("evaluator validator not configured")
	}
	if err := deps.ValidateEvaluator(cmd.Context(), cfg.Evaluator); err != nil {
		return err
	}
	cmd.Printf("Evaluator %s reachable\n", cfg.Evaluator.Provider)
	return nil
}

// describeEvaluator renders provider settings without the API key.
func describeEvaluator(e domain.EvaluatorSettings) string {
	if !e.IsConfigured() {
		if e.Provider.RequiresAPIKey() {
			return fmt.Sprintf("%s (missing API key, allow-list only)", e.Provider)
		}
		return "none (allow-list only)"
	}
	desc := string(e.Provider)
	if e.Model != "" {
		desc += " model " + e.Model
	}
	if e.BaseURL != "" {
		desc += " at " + e.BaseURL
	}
	if e.APIKey != "" {
		desc += " (API key set)"
	}
	return desc
}
