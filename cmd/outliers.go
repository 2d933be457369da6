package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/eda-cli/internal/dashboard"
	"github.com/KaramelBytes/eda-cli/internal/dataset"
	"github.com/KaramelBytes/eda-cli/internal/outlier"
)

var (
	outThreshold float64
	outOutput    string
	outDelimiter string
	outNoPrune   bool
	outDedupe    bool
)

var outliersCmd = &cobra.Command{
	Use:   "outliers <file>",
	Short: "Remove Z-score outliers column by column and report each step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		threshold := c.ZScoreThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = outThreshold
		}
		delim, err := parseDelimiter(outDelimiter)
		if err != nil {
			return err
		}
		ds, info, err := dataset.Load(args[0], dataset.LoadOptions{Delimiter: delim, Encoding: c.Encoding})
		if err != nil {
			return err
		}
		if n := len(info.Skipped); n > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Skipped %d malformed rows\n", n)
		}
		if !outNoPrune {
			ds, _ = dataset.Drop(ds, c.DropColumns)
		}
		if outDedupe {
			ds = dataset.DropDuplicates(ds)
		}
		filtered, rep, err := outlier.Filter(ds, threshold)
		if err != nil {
			return err
		}
		logger.Debug("filtered", zap.Int("in", rep.InputRows), zap.Int("out", rep.OutputRows))
		out := cmd.OutOrStdout()
		if len(rep.Columns) == 0 {
			fmt.Fprintln(out, "No numeric columns; nothing to filter")
		} else {
			dashboard.PrintOutliers(out, rep)
		}
		if outOutput != "" {
			if err := dataset.WriteCSV(filtered, outOutput); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote %d rows to %s\n", filtered.Len(), outOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outliersCmd)
	outliersCmd.Flags().Float64VarP(&outThreshold, "threshold", "t", outlier.DefaultThreshold, "|z| above which a value is an outlier (overrides config)")
	outliersCmd.Flags().StringVarP(&outOutput, "output", "o", "", "write the filtered dataset to this CSV")
	outliersCmd.Flags().StringVar(&outDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
	outliersCmd.Flags().BoolVar(&outNoPrune, "no-prune", false, "keep the configured drop_columns")
	outliersCmd.Flags().BoolVar(&outDedupe, "dedupe", false, "drop duplicate rows before filtering")
}
