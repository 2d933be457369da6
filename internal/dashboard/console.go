package dashboard

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/KaramelBytes/eda-cli/internal/dataset"
	"github.com/KaramelBytes/eda-cli/internal/outlier"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func rightAligned(cols ...int) []table.ColumnConfig {
	cfg := make([]table.ColumnConfig, len(cols))
	for i, n := range cols {
		cfg[i] = table.ColumnConfig{Number: n, Align: text.AlignRight}
	}
	return cfg
}

// PrintHead prints the first n rows of ds.
func PrintHead(w io.Writer, ds *dataset.Dataset, n int) {
	t := newTable(w, fmt.Sprintf("%s: first %d rows", ds.Name, n))
	header := table.Row{}
	for _, c := range ds.Columns() {
		header = append(header, c)
	}
	t.AppendHeader(header)
	head := ds.Head(n)
	for i := 0; i < head.Len(); i++ {
		row := table.Row{}
		for _, v := range head.Row(i) {
			row = append(row, v)
		}
		t.AppendRow(row)
	}
	t.Render()
}

// PrintInfo prints one line per column: kind, non-null, missing and unique counts.
func PrintInfo(w io.Writer, rep *analysis.Report) {
	t := newTable(w, fmt.Sprintf("%s: %d rows x %d columns", rep.Name, rep.Rows, len(rep.Cols)))
	t.AppendHeader(table.Row{"#", "column", "kind", "non-null", "missing", "unique"})
	for i, c := range rep.Cols {
		t.AppendRow(table.Row{i, c.Name, c.Kind, c.NonNull, c.Missing, c.Unique})
	}
	t.SetColumnConfigs(rightAligned(4, 5, 6))
	t.Render()
}

// PrintDescribe prints numeric summary statistics.
func PrintDescribe(w io.Writer, rep *analysis.Report) {
	t := newTable(w, "numeric columns")
	t.AppendHeader(table.Row{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"})
	for _, c := range rep.Cols {
		if c.Kind != dataset.KindNumeric {
			continue
		}
		t.AppendRow(table.Row{c.Name, c.NonNull, f(c.Mean), f(c.Std), f(c.Min), f(c.Q1), f(c.Median), f(c.Q3), f(c.Max)})
	}
	t.SetColumnConfigs(rightAligned(2, 3, 4, 5, 6, 7, 8, 9))
	t.Render()
}

// PrintMissing prints missing-value counts, largest first.
func PrintMissing(w io.Writer, rep *analysis.Report) {
	t := newTable(w, "missing values")
	t.AppendHeader(table.Row{"column", "missing", "%"})
	for _, m := range rep.MissingValues() {
		t.AppendRow(table.Row{m.Column, m.Count, fmt.Sprintf("%.2f", m.Percent)})
	}
	t.SetColumnConfigs(rightAligned(2, 3))
	t.Render()
}

// PrintDuplicates prints the duplicate summary.
func PrintDuplicates(w io.Writer, d dataset.DuplicateReport) {
	t := newTable(w, "duplicates")
	t.AppendHeader(table.Row{"rows", "duplicated", "groups", "%"})
	t.AppendRow(table.Row{d.Rows, d.Count, d.Groups, fmt.Sprintf("%.2f", d.Percent)})
	t.Render()
}

// PrintOutliers prints the per-column result of the outlier filter in the
// order the columns were processed.
func PrintOutliers(w io.Writer, rep *outlier.Report) {
	t := newTable(w, fmt.Sprintf("outliers (|z| > %g)", rep.Threshold))
	t.AppendHeader(table.Row{"column", "considered", "mean", "std", "max |z|", "removed"})
	for _, c := range rep.Columns {
		t.AppendRow(table.Row{c.Column, c.Considered, f(c.Mean), f(c.Std), f(c.MaxAbsZ), c.Outliers})
	}
	t.AppendFooter(table.Row{"total", rep.InputRows, "", "", "", rep.Removed()})
	t.SetColumnConfigs(rightAligned(2, 3, 4, 5, 6))
	t.Render()
}

// OutlierMarkdown renders the outlier report as a markdown table for the page.
func OutlierMarkdown(rep *outlier.Report) string {
	var rows [][]string
	for _, c := range rep.Columns {
		rows = append(rows, []string{c.Column, fmt.Sprint(c.Considered), f(c.Mean), f(c.Std), f(c.MaxAbsZ), fmt.Sprint(c.Outliers)})
	}
	rows = append(rows, []string{"total", fmt.Sprint(rep.InputRows), "", "", "", fmt.Sprint(rep.Removed())})
	return analysis.TableMarkdown([]string{"column", "considered", "mean", "std", "max |z|", "removed"}, rows)
}

func f(v float64) string { return fmt.Sprintf("%.4g", v) }
