// Package outlier removes rows whose Z-score exceeds a threshold, one numeric
// column at a time.
//
// Columns are processed in dataset order and each column's mean and standard
// deviation are computed over the rows that survived the previous columns, so a
// row removed for one column no longer influences the statistics of the next.
// Reordering or parallelising the columns changes the result.
package outlier

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/eda-cli/internal/dataset"
)

// DefaultThreshold is the |Z| cut-off in standard deviations.
const DefaultThreshold = 3.0

// ErrInvalidThreshold is returned for thresholds that are not strictly positive.
var ErrInvalidThreshold = errors.New("outlier threshold must be greater than zero")

// ColumnResult records one step of the filter.
type ColumnResult struct {
	Column string
	// Mean and Std (population) over the retained rows that had a value.
	Mean float64
	Std  float64
	// Considered is the number of retained rows with a value in this column.
	Considered int
	Outliers   int
	// Rows holds the input-dataset indices removed at this step.
	Rows    []int
	MaxAbsZ float64
}

// Report summarises a filter run.
type Report struct {
	Threshold  float64
	InputRows  int
	OutputRows int
	Columns    []ColumnResult
}

// Removed returns the number of rows dropped across all columns.
func (r *Report) Removed() int { return r.InputRows - r.OutputRows }

// Filter drops outlier rows column by column and returns the surviving rows
// together with a per-column report. The input dataset is not modified.
func Filter(ds *dataset.Dataset, threshold float64) (*dataset.Dataset, *Report, error) {
	if !(threshold > 0) {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}
	rep := &Report{Threshold: threshold, InputRows: ds.Len(), OutputRows: ds.Len()}
	cols := ds.NumericColumns()
	if len(cols) == 0 {
		return ds, rep, nil
	}

	retained := make([]int, ds.Len())
	for i := range retained {
		retained[i] = i
	}
	for _, col := range cols {
		vals, err := ds.Floats(col)
		if err != nil {
			return nil, nil, fmt.Errorf("column %q: %w", col, err)
		}
		res := ColumnResult{Column: col}
		xs := make([]float64, 0, len(retained))
		for _, i := range retained {
			if !math.IsNaN(vals[i]) {
				xs = append(xs, vals[i])
			}
		}
		res.Considered = len(xs)
		res.Mean, res.Std = meanStd(xs)

		kept := make([]int, 0, len(retained))
		for _, i := range retained {
			az := math.Abs(zscore(vals[i], res.Mean, res.Std))
			if az > res.MaxAbsZ {
				res.MaxAbsZ = az
			}
			if az > threshold {
				res.Rows = append(res.Rows, i)
				continue
			}
			kept = append(kept, i)
		}
		res.Outliers = len(res.Rows)
		rep.Columns = append(rep.Columns, res)
		retained = kept
	}

	out := ds.Subset(retained)
	rep.OutputRows = out.Len()
	return out, rep, nil
}

// Scores returns the Z-score of every value using the population standard
// deviation of the non-NaN values. NaN inputs stay NaN; a constant column
// scores 0 everywhere.
func Scores(values []float64) []float64 {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			xs = append(xs, v)
		}
	}
	mean, std := meanStd(xs)
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		out[i] = zscore(v, mean, std)
	}
	return out
}

// meanStd returns the mean and population standard deviation. A column whose
// values are all equal reports a zero deviation even when rounding in the mean
// would leave a tiny residual.
func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo == hi {
		return lo, 0
	}
	return stat.PopMeanStdDev(xs, nil)
}

// zscore is 0 when std is 0; NaN values propagate and never exceed a threshold.
func zscore(v, mean, std float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	if std == 0 {
		return 0
	}
	return (v - mean) / std
}
