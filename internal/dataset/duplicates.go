package dataset

import "strings"

// DuplicateReport counts rows that have at least one identical twin.
type DuplicateReport struct {
	Rows int
	// Count includes every member of a duplicate group, the first occurrence too.
	Count   int
	Groups  int
	Percent float64
}

func rowKey(r []string) string { return strings.Join(r, "\x1f") }

// Duplicates marks all members of each group of identical rows.
func Duplicates(d *Dataset) DuplicateReport {
	seen := make(map[string]int, len(d.rows))
	for _, r := range d.rows {
		seen[rowKey(r)]++
	}
	rep := DuplicateReport{Rows: len(d.rows)}
	for _, n := range seen {
		if n > 1 {
			rep.Count += n
			rep.Groups++
		}
	}
	if rep.Rows > 0 {
		rep.Percent = float64(rep.Count) * 100 / float64(rep.Rows)
	}
	return rep
}

// DropDuplicates keeps the first occurrence of every distinct row.
func DropDuplicates(d *Dataset) *Dataset {
	seen := make(map[string]struct{}, len(d.rows))
	keep := make([]int, 0, len(d.rows))
	for i, r := range d.rows {
		k := rowKey(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, i)
	}
	return d.Subset(keep)
}
