package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/eda-cli/internal/dataset"
)

// Markdown renders a compact report suitable for the terminal or the dashboard.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, c.MissingPct()))
		switch c.Kind {
		case dataset.KindNumeric:
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf(": mean %.4g, std %.4g, min %.4g, 25%% %.4g, 50%% %.4g, 75%% %.4g, max %.4g",
					c.Mean, c.Std, c.Min, c.Q1, c.Median, c.Q3, c.Max))
			}
		case dataset.KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString(": top ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[DUPLICATES]\n")
	b.WriteString(fmt.Sprintf("- duplicated rows: %d of %d (%.2f%%) in %d groups\n",
		r.Duplicates.Count, r.Duplicates.Rows, r.Duplicates.Percent, r.Duplicates.Groups))

	if pairs := r.Corr.TopPairs(10); len(pairs) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD]\n")
		names := make([]string, len(r.Cols))
		for i, c := range r.Cols {
			names[i] = c.Name
		}
		b.WriteString(TableMarkdown(names, r.Samples))
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// DescribeMarkdown renders the numeric describe() block as a table.
func (r *Report) DescribeMarkdown() string {
	header := []string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	var rows [][]string
	for _, c := range r.Cols {
		if c.Kind != dataset.KindNumeric {
			continue
		}
		rows = append(rows, []string{
			c.Name, fmt.Sprint(c.NonNull), num(c.Mean), num(c.Std), num(c.Min),
			num(c.Q1), num(c.Median), num(c.Q3), num(c.Max),
		})
	}
	return TableMarkdown(header, rows)
}

// MissingMarkdown renders missing-value counts per column in column order.
func (r *Report) MissingMarkdown() string {
	var rows [][]string
	for _, c := range r.Cols {
		rows = append(rows, []string{c.Name, string(c.Kind), fmt.Sprint(c.Missing), fmt.Sprintf("%.2f%%", c.MissingPct())})
	}
	return TableMarkdown([]string{"column", "kind", "missing", "missing %"}, rows)
}

// DatasetMarkdown renders the first n rows of ds as a table.
func DatasetMarkdown(ds *dataset.Dataset, n int) string {
	head := ds.Head(n)
	rows := make([][]string, head.Len())
	for i := range rows {
		rows[i] = head.Row(i)
	}
	return TableMarkdown(ds.Columns(), rows)
}

// TableMarkdown renders a GitHub-style pipe table.
func TableMarkdown(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("| ")
	for i, h := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(safeName(h)))
	}
	b.WriteString(" |\n| ")
	for i := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range header {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			val = truncate(val, 80)
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func num(f float64) string { return fmt.Sprintf("%.4g", f) }

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
