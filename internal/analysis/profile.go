package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/eda-cli/internal/dataset"
)

// Options controls profiling behavior.
type Options struct {
	// SampleRows determines how many head rows to include in the report.
	SampleRows int
	// TopValues limits the categorical top-value list per column.
	TopValues int
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
}

// DefaultOptions returns reasonable defaults for dataset profiling.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopValues: 8, Correlations: true}
}

// Report is a markdown-friendly profile of a dataset.
type Report struct {
	Name       string
	Rows       int
	Cols       []ColumnSummary
	Samples    [][]string
	Duplicates dataset.DuplicateReport
	Corr       *CorrMatrix
	Warnings   []string
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    dataset.Kind
	NonNull int
	Missing int
	Unique  int
	// Numeric describe() statistics; Std is the sample deviation.
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	// Categorical top values
	TopValues []CategoryCount
}

// MissingPct returns the share of missing cells in percent.
func (c ColumnSummary) MissingPct() float64 {
	total := c.NonNull + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.Missing) * 100.0 / float64(total)
}

type CategoryCount struct {
	Value string
	Count int
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// Profile summarises every column of ds.
func Profile(ds *dataset.Dataset, opt Options) (*Report, error) {
	rep := &Report{Name: ds.Name, Rows: ds.Len(), Duplicates: dataset.Duplicates(ds)}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	head := ds.Head(sampleRows)
	for i := 0; i < head.Len(); i++ {
		rep.Samples = append(rep.Samples, head.Row(i))
	}

	kinds := ds.Kinds()
	for j, name := range ds.Columns() {
		raw, err := ds.Strings(name)
		if err != nil {
			return nil, err
		}
		s := ColumnSummary{Name: name, Kind: kinds[j]}
		cats := map[string]int{}
		for _, v := range raw {
			if dataset.IsMissing(v) {
				s.Missing++
				continue
			}
			s.NonNull++
			cats[v]++
		}
		s.Unique = len(cats)
		switch s.Kind {
		case dataset.KindNumeric:
			vals, err := ds.Floats(name)
			if err != nil {
				return nil, err
			}
			if err := describe(&s, dropNaN(vals)); err != nil {
				return nil, fmt.Errorf("describe %q: %w", name, err)
			}
		case dataset.KindCategorical:
			s.TopValues = topValues(cats, opt.TopValues)
		}
		rep.Cols = append(rep.Cols, s)
	}

	if rep.Duplicates.Count > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d rows (%.2f%%) belong to duplicate groups", rep.Duplicates.Count, rep.Duplicates.Percent))
	}
	if opt.Correlations {
		corr, err := Correlation(ds)
		if err != nil {
			return nil, err
		}
		rep.Corr = corr
	}
	return rep, nil
}

func describe(s *ColumnSummary, xs []float64) error {
	if len(xs) == 0 {
		return nil
	}
	var err error
	if s.Mean, err = stats.Mean(xs); err != nil {
		return err
	}
	if s.Min, err = stats.Min(xs); err != nil {
		return err
	}
	if s.Max, err = stats.Max(xs); err != nil {
		return err
	}
	if s.Median, err = stats.Median(xs); err != nil {
		return err
	}
	if len(xs) > 1 {
		if s.Std, err = stats.StandardDeviationSample(xs); err != nil {
			return err
		}
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	s.Q1 = quantile(sorted, 0.25)
	s.Q3 = quantile(sorted, 0.75)
	return nil
}

func topValues(cats map[string]int, limit int) []CategoryCount {
	if limit <= 0 {
		limit = 8
	}
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sortCounts(tops)
	if len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

func sortCounts(c []CategoryCount) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].Count == c[j].Count {
			return c[i].Value < c[j].Value
		}
		return c[i].Count > c[j].Count
	})
}

// Correlation computes pairwise-complete Pearson correlations between numeric
// columns. Pairs with fewer than two complete rows or no variance report 0.
func Correlation(ds *dataset.Dataset) (*CorrMatrix, error) {
	names := ds.NumericColumns()
	if len(names) < 2 {
		return nil, nil
	}
	cols := make([][]float64, len(names))
	for i, n := range names {
		v, err := ds.Floats(n)
		if err != nil {
			return nil, err
		}
		cols[i] = v
	}
	n := len(names)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			r := pearson(cols[a], cols[b])
			mat[a][b], mat[b][a] = r, r
		}
	}
	return &CorrMatrix{Columns: names, Values: mat}, nil
}

func pearson(x, y []float64) float64 {
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

// TopPairs lists the strongest off-diagonal correlations by |r|.
func (m *CorrMatrix) TopPairs(limit int) []PairCorr {
	if m == nil {
		return nil
	}
	var pairs []PairCorr
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

func dropNaN(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
