package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/eda-cli/internal/dataset"
)

// GroupMean is the mean of a numeric column within one category.
type GroupMean struct {
	Key   string
	Count int
	Mean  float64
}

// ValueCounts counts non-missing values of a column, most frequent first.
func ValueCounts(ds *dataset.Dataset, col string) ([]CategoryCount, error) {
	vals, err := ds.Strings(col)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, v := range vals {
		if dataset.IsMissing(v) {
			continue
		}
		counts[v]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, CategoryCount{Value: k, Count: n})
	}
	sortCounts(out)
	return out, nil
}

// GroupMeans averages valueCol per distinct groupCol value, ignoring rows where
// either side is missing. With positiveOnly, groups whose mean is not above
// zero are dropped. Results are ordered by key.
func GroupMeans(ds *dataset.Dataset, groupCol, valueCol string, positiveOnly bool) ([]GroupMean, error) {
	keys, err := ds.Strings(groupCol)
	if err != nil {
		return nil, err
	}
	vals, err := ds.Floats(valueCol)
	if err != nil {
		return nil, err
	}
	type acc struct {
		n   int
		sum float64
	}
	groups := map[string]*acc{}
	for i, k := range keys {
		if dataset.IsMissing(k) || math.IsNaN(vals[i]) {
			continue
		}
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.n++
		a.sum += vals[i]
	}
	out := make([]GroupMean, 0, len(groups))
	for k, a := range groups {
		m := a.sum / float64(a.n)
		if positiveOnly && !(m > 0) {
			continue
		}
		out = append(out, GroupMean{Key: k, Count: a.n, Mean: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// MissingCount is the number of missing cells in one column.
type MissingCount struct {
	Column  string
	Count   int
	Percent float64
}

// MissingValues lists missing-value counts per column, largest first. Ties keep
// column order.
func (r *Report) MissingValues() []MissingCount {
	out := make([]MissingCount, len(r.Cols))
	for i, c := range r.Cols {
		out[i] = MissingCount{Column: c.Name, Count: c.Missing, Percent: c.MissingPct()}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
