package dataset

import "strings"

// DefaultDropColumns are the sparse or irrelevant columns of the EU vehicle
// CO2 monitoring extract.
var DefaultDropColumns = []string{
	"VFN", "Mt", "Ewltp (g/km)", "Erwltp (g/km)", "De", "Vf", "It", "Ernedc (g/km)",
	"z (Wh/km)", "ID", "Mp", "TAN", "Va", "Ve", "Mk", "Cr", "r",
}

// Drop removes the named columns. Names that are not present are returned
// instead of failing, so a schema drift only costs a warning.
func Drop(d *Dataset, names []string) (*Dataset, []string) {
	drop := make(map[string]bool, len(names))
	var absent []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || drop[n] {
			continue
		}
		if !d.Has(n) {
			absent = append(absent, n)
			continue
		}
		drop[n] = true
	}
	if len(drop) == 0 {
		return d, absent
	}

	var keep []int
	for j, c := range d.columns {
		if !drop[c] {
			keep = append(keep, j)
		}
	}
	out := &Dataset{Name: d.Name, num: d.num}
	out.columns = make([]string, len(keep))
	out.kinds = make([]Kind, len(keep))
	for k, j := range keep {
		out.columns[k] = d.columns[j]
		out.kinds[k] = d.kinds[j]
	}
	out.rows = make([][]string, len(d.rows))
	for i, r := range d.rows {
		row := make([]string, len(keep))
		for k, j := range keep {
			row[k] = r[j]
		}
		out.rows[i] = row
	}
	out.buildIndex()
	return out, absent
}

// NormalizeText lower-cases and trims the values of the given columns. Missing
// columns are returned rather than treated as errors.
func NormalizeText(d *Dataset, cols []string) (*Dataset, []string) {
	var idx []int
	var absent []string
	for _, c := range cols {
		j, ok := d.index[c]
		if !ok {
			absent = append(absent, c)
			continue
		}
		idx = append(idx, j)
	}
	if len(idx) == 0 {
		return d, absent
	}
	rows := make([][]string, len(d.rows))
	for i, r := range d.rows {
		row := make([]string, len(r))
		copy(row, r)
		for _, j := range idx {
			row[j] = strings.ToLower(strings.TrimSpace(row[j]))
		}
		rows[i] = row
	}
	return d.derive(rows), absent
}
