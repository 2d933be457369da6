// Package charts turns datasets into chart descriptions and renders them.
//
// Build extracts plain data from a dataset and never draws anything, so the
// chart content can be tested without a renderer. RenderSVG draws a built
// chart with gonum/plot.
package charts

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/KaramelBytes/eda-cli/internal/dataset"
)

// Kind selects the chart type.
type Kind string

const (
	Histogram Kind = "histogram"
	Bar       Kind = "bar"
	Scatter   Kind = "scatter"
	Heatmap   Kind = "heatmap"
	Boxplot   Kind = "boxplot"
)

// Source names the dataset a chart is drawn from.
type Source string

const (
	// SourceRaw is the dataset as loaded.
	SourceRaw Source = "raw"
	// SourceClean is the pruned dataset that feeds the outlier filter.
	SourceClean Source = "clean"
	// SourceFiltered is the dataset after outlier removal.
	SourceFiltered Source = "filtered"
)

// Aggregations for bar charts.
const (
	AggCount = "count"
	AggMean  = "mean"
)

// ErrNoData is returned when the referenced columns hold no usable values.
var ErrNoData = errors.New("no data to plot")

// Spec declares one chart of the dashboard.
type Spec struct {
	ID     string
	Title  string
	Kind   Kind
	Source Source
	// X is the histogram/bar/scatter column; Y is the scatter or aggregated column.
	X string
	Y string
	// Columns lists boxplot series; empty heatmap Columns means all numeric columns.
	Columns []string
	XLabel  string
	YLabel  string
	Bins    int
	// Aggregate is AggCount (value counts of X) or AggMean (mean of Y per X).
	Aggregate string
	// PositiveOnly drops bar groups whose mean is not above zero.
	PositiveOnly bool
}

// Point is one scatter observation.
type Point struct{ X, Y float64 }

// Series is a named list of values for a boxplot.
type Series struct {
	Name   string
	Values []float64
}

// Chart is a Spec together with the data it will draw.
type Chart struct {
	Spec    Spec
	Values  []float64
	Labels  []string
	Heights []float64
	Points  []Point
	Matrix  *analysis.CorrMatrix
	Series  []Series
}

// Build extracts the data for spec from ds. Missing columns surface as
// dataset.ErrColumnNotFound so callers can skip just this chart.
func Build(spec Spec, ds *dataset.Dataset) (*Chart, error) {
	c := &Chart{Spec: spec}
	switch spec.Kind {
	case Histogram:
		vals, err := ds.Floats(spec.X)
		if err != nil {
			return nil, err
		}
		c.Values = finite(vals)
		if len(c.Values) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoData, spec.X)
		}
	case Bar:
		if err := buildBar(c, ds); err != nil {
			return nil, err
		}
	case Scatter:
		xs, err := ds.Floats(spec.X)
		if err != nil {
			return nil, err
		}
		ys, err := ds.Floats(spec.Y)
		if err != nil {
			return nil, err
		}
		for i := range xs {
			if isFinite(xs[i]) && isFinite(ys[i]) {
				c.Points = append(c.Points, Point{X: xs[i], Y: ys[i]})
			}
		}
		if len(c.Points) == 0 {
			return nil, fmt.Errorf("%w: %q vs %q", ErrNoData, spec.X, spec.Y)
		}
	case Heatmap:
		src := ds
		if len(spec.Columns) > 0 {
			for _, col := range spec.Columns {
				if !ds.Has(col) {
					return nil, fmt.Errorf("%w: %q", dataset.ErrColumnNotFound, col)
				}
			}
			src, _ = dataset.Drop(ds, complement(ds.Columns(), spec.Columns))
		}
		m, err := analysis.Correlation(src)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("%w: fewer than two numeric columns", ErrNoData)
		}
		c.Matrix = m
	case Boxplot:
		for _, col := range spec.Columns {
			vals, err := ds.Floats(col)
			if err != nil {
				return nil, err
			}
			if v := finite(vals); len(v) > 0 {
				c.Series = append(c.Series, Series{Name: col, Values: v})
			}
		}
		if len(c.Series) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrNoData, spec.Columns)
		}
	default:
		return nil, fmt.Errorf("unknown chart kind %q", spec.Kind)
	}
	return c, nil
}

func buildBar(c *Chart, ds *dataset.Dataset) error {
	spec := c.Spec
	switch spec.Aggregate {
	case AggMean:
		groups, err := analysis.GroupMeans(ds, spec.X, spec.Y, spec.PositiveOnly)
		if err != nil {
			return err
		}
		for _, g := range groups {
			c.Labels = append(c.Labels, g.Key)
			c.Heights = append(c.Heights, g.Mean)
		}
	case AggCount, "":
		counts, err := analysis.ValueCounts(ds, spec.X)
		if err != nil {
			return err
		}
		for _, vc := range counts {
			c.Labels = append(c.Labels, vc.Value)
			c.Heights = append(c.Heights, float64(vc.Count))
		}
	default:
		return fmt.Errorf("unknown aggregate %q", spec.Aggregate)
	}
	if len(c.Labels) == 0 {
		return fmt.Errorf("%w: %q", ErrNoData, spec.X)
	}
	return nil
}

func complement(all, keep []string) []string {
	k := make(map[string]bool, len(keep))
	for _, c := range keep {
		k[c] = true
	}
	var out []string
	for _, c := range all {
		if !k[c] {
			out = append(out, c)
		}
	}
	return out
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func finite(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}
