package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/KaramelBytes/eda-cli/internal/dashboard"
	"github.com/KaramelBytes/eda-cli/internal/dataset"
	"github.com/KaramelBytes/eda-cli/internal/utils"
)

var (
	anaOutputPath string
	anaDelimiter  string
	anaEncoding   string
	anaDecimal    string
	anaThousands  string
	anaSheetName  string
	anaSampleRows int
	anaCorr       bool
	anaPrune      bool
	anaTables     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a CSV/TSV/XLSX file and print a concise summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		delim, err := parseDelimiter(anaDelimiter)
		if err != nil {
			return err
		}
		nf, err := parseNumberFormat(anaDecimal, anaThousands)
		if err != nil {
			return err
		}
		ds, info, err := dataset.Load(path, dataset.LoadOptions{Delimiter: delim, Encoding: anaEncoding, Sheet: anaSheetName, Number: nf})
		if err != nil {
			return err
		}
		logger.Debug("loaded", zap.String("path", path), zap.String("encoding", info.Encoding.Name), zap.Ints("skipped", info.Skipped))
		if anaPrune {
			c, err := requireConfig()
			if err != nil {
				return err
			}
			var absent []string
			ds, absent = dataset.Drop(ds, c.DropColumns)
			if len(absent) > 0 {
				logger.Debug("drop columns not present", zap.Strings("columns", absent))
			}
		}

		opt := analysis.DefaultOptions()
		if anaSampleRows > 0 {
			opt.SampleRows = anaSampleRows
		}
		opt.Correlations = anaCorr
		rep, err := analysis.Profile(ds, opt)
		if err != nil {
			return err
		}
		if len(info.Skipped) > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d malformed rows skipped while loading", len(info.Skipped)))
		}
		if info.Encoding.Fallback {
			rep.Warnings = append(rep.Warnings, "encoding not detected, read as utf-8")
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(rep.Markdown())); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		out := cmd.OutOrStdout()
		if anaTables {
			dashboard.PrintHead(out, ds, opt.SampleRows)
			dashboard.PrintInfo(out, rep)
			dashboard.PrintDescribe(out, rep)
			dashboard.PrintMissing(out, rep)
			dashboard.PrintDuplicates(out, rep.Duplicates)
			return nil
		}
		fmt.Fprintln(out, rep.Markdown())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write analysis (Markdown)")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
	analyzeCmd.Flags().StringVar(&anaEncoding, "encoding", "", "force a text encoding, e.g. latin1 (auto-detect if omitted)")
	analyzeCmd.Flags().StringVar(&anaDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	analyzeCmd.Flags().StringVar(&anaThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to analyze (first sheet if omitted)")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include")
	analyzeCmd.Flags().BoolVar(&anaCorr, "correlations", true, "compute Pearson correlations among numeric columns")
	analyzeCmd.Flags().BoolVar(&anaPrune, "prune", false, "drop the configured drop_columns before profiling")
	analyzeCmd.Flags().BoolVar(&anaTables, "tables", false, "print console tables instead of Markdown")
}
