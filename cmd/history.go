package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/eda-cli/internal/history"
)

var (
	histLimit   int
	histDB      string
	histColumns bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := histDB
		if path == "" {
			c, err := requireConfig()
			if err != nil {
				return err
			}
			path = c.HistoryDB
		}
		if path == "" {
			return fmt.Errorf("history is disabled: set history_db or pass --db")
		}
		store, err := history.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
		runs, err := store.List(cmd.Context(), histLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded")
			return nil
		}
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"run", "started", "input", "z", "dedupe", "raw", "deduped", "filtered", "warnings"})
		for _, r := range runs {
			t.AppendRow(table.Row{r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.InputPath, r.Threshold,
				r.DedupeMode, r.RawRows, r.DedupRows, r.FilteredRows, r.Warnings})
			if histColumns {
				for _, c := range r.Columns {
					t.AppendRow(table.Row{"", "", "  " + c.Column, "", "", c.Considered, "", c.Removed, ""})
				}
			}
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&histLimit, "limit", "n", 20, "number of runs to show (0 = all)")
	historyCmd.Flags().StringVar(&histDB, "db", "", "history database (defaults to history_db)")
	historyCmd.Flags().BoolVar(&histColumns, "columns", false, "show per-column outlier counts")
}
