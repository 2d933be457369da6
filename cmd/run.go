package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/eda-cli/internal/dashboard"
	"github.com/KaramelBytes/eda-cli/internal/history"
	"github.com/KaramelBytes/eda-cli/internal/pipeline"
)

var (
	runThreshold  float64
	runDedupeMode string
	runReportDir  string
	runCleanOut   string
	runFiltered   string
	runDelimiter  string
	runEncoding   string
	runHistoryDB  string
	runNoReport   bool
	runPrintAll   bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run the full analysis and write the clean data and dashboard",
	Long: `Run loads the input (argument or input_path), drops the configured columns,
removes duplicates and Z-score outliers, writes the clean and filtered CSV files
and renders dashboard.html plus run.yaml into the report directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := requireConfig()
		if err != nil {
			return err
		}
		c := *base
		if len(args) == 1 {
			c.InputPath = args[0]
		}
		// Apply CLI overrides if provided
		f := cmd.Flags()
		overrides := []struct {
			flag, key, val string
		}{
			{"threshold", "zscore_threshold", fmt.Sprint(runThreshold)},
			{"dedupe-mode", "dedupe_mode", runDedupeMode},
			{"report-dir", "report_dir", runReportDir},
			{"clean-output", "clean_output", runCleanOut},
			{"filtered-output", "filtered_output", runFiltered},
			{"delimiter", "delimiter", runDelimiter},
			{"encoding", "encoding", runEncoding},
			{"history-db", "history_db", runHistoryDB},
		}
		for _, o := range overrides {
			if f.Changed(o.flag) {
				if err := c.Set(o.key, o.val); err != nil {
					return fmt.Errorf("--%s: %w", o.flag, err)
				}
			}
		}
		if runNoReport {
			c.ReportDir = ""
		}
		opt, err := pipeline.FromConfig(&c)
		if err != nil {
			return err
		}

		res, err := pipeline.NewRunner(logger).Run(cmd.Context(), opt)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if runPrintAll {
			dashboard.PrintHead(out, res.Raw, len(res.Profile.Samples))
			dashboard.PrintHead(out, res.Clean, len(res.Profile.Samples))
			dashboard.PrintInfo(out, res.Profile)
			dashboard.PrintDescribe(out, res.Profile)
			dashboard.PrintMissing(out, res.Profile)
		}
		dashboard.PrintDuplicates(out, res.Duplicates)
		dashboard.PrintOutliers(out, res.Outliers)
		fmt.Fprintf(out, "✓ Run %s: %d rows loaded, %d after dedupe, %d after outlier removal\n",
			res.RunID, res.Raw.Len(), res.Deduped.Len(), res.Filtered.Len())
		if opt.CleanOutput != "" {
			fmt.Fprintf(out, "✓ Clean data: %s\n", opt.CleanOutput)
		}
		if opt.FilteredOutput != "" {
			fmt.Fprintf(out, "✓ Filtered data: %s\n", opt.FilteredOutput)
		}
		if res.DashboardPath != "" {
			fmt.Fprintf(out, "✓ Dashboard: %s\n", res.DashboardPath)
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", w)
		}

		if c.HistoryDB != "" {
			store, err := history.Open(c.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Record(cmd.Context(), res.HistoryRun()); err != nil {
				return fmt.Errorf("record run: %w", err)
			}
			logger.Debug("run recorded", zap.String("db", c.HistoryDB))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Float64VarP(&runThreshold, "threshold", "t", 3, "|z| above which a value is an outlier (overrides config)")
	runCmd.Flags().StringVar(&runDedupeMode, "dedupe-mode", "", "before_outliers | output_only (overrides config)")
	runCmd.Flags().StringVar(&runReportDir, "report-dir", "", "directory for dashboard.html and run.yaml (overrides config)")
	runCmd.Flags().StringVar(&runCleanOut, "clean-output", "", "path of the deduplicated CSV (overrides config)")
	runCmd.Flags().StringVar(&runFiltered, "filtered-output", "", "path of the outlier-free CSV (overrides config)")
	runCmd.Flags().StringVar(&runDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (overrides config)")
	runCmd.Flags().StringVar(&runEncoding, "encoding", "", "force a text encoding (overrides config)")
	runCmd.Flags().StringVar(&runHistoryDB, "history-db", "", "SQLite file that records runs (overrides config)")
	runCmd.Flags().BoolVar(&runNoReport, "no-report", false, "skip the dashboard and manifest")
	runCmd.Flags().BoolVar(&runPrintAll, "print-profile", false, "also print head, info, describe and missing tables")
}
