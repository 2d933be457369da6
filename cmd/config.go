package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/eda-cli/internal/config"
	"github.com/KaramelBytes/eda-cli/internal/pipeline"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set eda configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "input_path: %s\n", cfg.InputPath)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.Encoding != "" {
			fmt.Fprintf(out, "encoding: %s\n", cfg.Encoding)
		}
		fmt.Fprintf(out, "drop_columns: %s\n", strings.Join(cfg.DropColumns, ", "))
		fmt.Fprintf(out, "normalize_columns: %s\n", strings.Join(cfg.NormalizeColumns, ", "))
		fmt.Fprintf(out, "zscore_threshold: %g\n", cfg.ZScoreThreshold)
		fmt.Fprintf(out, "dedupe_mode: %s\n", cfg.DedupeMode)
		fmt.Fprintf(out, "clean_output: %s\n", cfg.CleanOutput)
		fmt.Fprintf(out, "filtered_output: %s\n", cfg.FilteredOutput)
		fmt.Fprintf(out, "report_dir: %s\n", cfg.ReportDir)
		fmt.Fprintf(out, "dashboard_title: %s\n", cfg.DashboardTitle)
		fmt.Fprintf(out, "histogram_bins: %d\n", cfg.HistogramBins)
		fmt.Fprintf(out, "sample_rows: %d\n", cfg.SampleRows)
		if cfg.HistoryDB != "" {
			fmt.Fprintf(out, "history_db: %s\n", cfg.HistoryDB)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk. Keys: " + strings.Join(cfgpkg.Keys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if key == "dedupe_mode" {
			mode, err := pipeline.ParseDedupeMode(val)
			if err != nil {
				return err
			}
			val = string(mode)
		}
		if err := c.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
