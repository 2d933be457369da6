package charts

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/eda-cli/internal/dataset"
)

func emissions() *dataset.Dataset {
	header := []string{"Man", "Ft", "Ct", "m (kg)", "Enedc (g/km)", "ec (cm3)", "W (mm)"}
	rows := [][]string{
		{"VW", "petrol", "M1", "1200", "120", "1395", "2600"},
		{"VW", "diesel", "M1", "1250", "118", "1598", "2630"},
		{"BMW", "diesel", "M1", "1500", "140", "1995", "2850"},
		{"BMW", "petrol", "N1", "1550", "", "1995", "2850"},
		{"Fiat", "petrol", "M1", "950", "99", "1242", "2300"},
		{"Tesla", "electric", "M1", "1800", "0", "", "2875"},
	}
	return dataset.New("cars.csv", header, rows, dataset.NumberFormat{})
}

func TestBuildHistogramSkipsMissing(t *testing.T) {
	c, err := Build(Spec{ID: "h", Kind: Histogram, X: "Enedc (g/km)", Bins: 5}, emissions())
	require.NoError(t, err)
	require.Equal(t, []float64{120, 118, 140, 99, 0}, c.Values)
}

func TestBuildBarCountsAndMeans(t *testing.T) {
	ds := emissions()
	c, err := Build(Spec{ID: "ft", Kind: Bar, X: "Ft", Aggregate: AggCount}, ds)
	require.NoError(t, err)
	require.Equal(t, []string{"petrol", "diesel", "electric"}, c.Labels)
	require.Equal(t, []float64{3, 2, 1}, c.Heights)

	c, err = Build(Spec{ID: "man", Kind: Bar, X: "Man", Y: "Enedc (g/km)", Aggregate: AggMean, PositiveOnly: true}, ds)
	require.NoError(t, err)
	require.Equal(t, []string{"BMW", "Fiat", "VW"}, c.Labels)
	require.InDelta(t, 119.0, c.Heights[2], 1e-9)
}

func TestRenderBarDrawsEveryGroup(t *testing.T) {
	var rows [][]string
	for i := 0; i < 60; i++ {
		rows = append(rows, []string{fmt.Sprintf("M%03d", i), fmt.Sprint(100 + i)})
	}
	ds := dataset.New("makes.csv", []string{"Man", "Enedc (g/km)"}, rows, dataset.NumberFormat{})
	c, err := Build(Spec{ID: "man", Kind: Bar, X: "Man", Y: "Enedc (g/km)", Aggregate: AggMean}, ds)
	require.NoError(t, err)
	require.Len(t, c.Labels, 60)

	w, h := Size(c)
	require.Greater(t, float64(w), float64(Width))
	require.Equal(t, Height, h)
	svg, err := RenderSVG(c, w, h)
	require.NoError(t, err)
	require.Contains(t, string(svg), "M059")

	small, err := Build(Spec{ID: "ft", Kind: Bar, X: "Man", Aggregate: AggCount}, emissions())
	require.NoError(t, err)
	w, _ = Size(small)
	require.Equal(t, Width, w)
}

func TestBuildScatterAndBoxplot(t *testing.T) {
	ds := emissions()
	c, err := Build(Spec{ID: "s", Kind: Scatter, X: "m (kg)", Y: "Enedc (g/km)"}, ds)
	require.NoError(t, err)
	require.Len(t, c.Points, 5)
	require.Equal(t, Point{X: 1200, Y: 120}, c.Points[0])

	c, err = Build(Spec{ID: "b", Kind: Boxplot, Columns: []string{"ec (cm3)", "W (mm)"}}, ds)
	require.NoError(t, err)
	require.Len(t, c.Series, 2)
	require.Len(t, c.Series[0].Values, 5)
	require.Len(t, c.Series[1].Values, 6)
}

func TestBuildHeatmap(t *testing.T) {
	c, err := Build(Spec{ID: "corr", Kind: Heatmap, Columns: []string{"m (kg)", "W (mm)"}}, emissions())
	require.NoError(t, err)
	require.Equal(t, []string{"m (kg)", "W (mm)"}, c.Matrix.Columns)
	require.InDelta(t, 1.0, c.Matrix.Values[0][0], 1e-9)

	all, err := Build(Spec{ID: "corr", Kind: Heatmap}, emissions())
	require.NoError(t, err)
	require.Len(t, all.Matrix.Columns, 4)
}

func TestBuildMissingColumn(t *testing.T) {
	ds := emissions()
	for _, spec := range []Spec{
		{ID: "h", Kind: Histogram, X: "At1 (mm)"},
		{ID: "b", Kind: Bar, X: "Fm", Y: "Enedc (g/km)", Aggregate: AggMean},
		{ID: "s", Kind: Scatter, X: "m (kg)", Y: "z (Wh/km)"},
		{ID: "box", Kind: Boxplot, Columns: []string{"ec (cm3)", "At2 (mm)"}},
		{ID: "hm", Kind: Heatmap, Columns: []string{"m (kg)", "At1 (mm)"}},
	} {
		_, err := Build(spec, ds)
		require.Truef(t, errors.Is(err, dataset.ErrColumnNotFound), "%s: %v", spec.ID, err)
	}
}

func TestBuildNoData(t *testing.T) {
	ds := dataset.New("empty.csv", []string{"x", "y"}, [][]string{{"", "a"}}, dataset.NumberFormat{})
	_, err := Build(Spec{ID: "h", Kind: Histogram, X: "x"}, ds)
	require.ErrorIs(t, err, ErrNoData)
}

func TestRenderSVG(t *testing.T) {
	ds := emissions()
	for _, spec := range []Spec{
		{ID: "h", Title: "Masa", Kind: Histogram, X: "m (kg)", Bins: 4},
		{ID: "b", Kind: Bar, X: "Ft", Aggregate: AggCount},
		{ID: "s", Kind: Scatter, X: "m (kg)", Y: "Enedc (g/km)"},
		{ID: "hm", Kind: Heatmap},
		{ID: "box", Kind: Boxplot, Columns: []string{"ec (cm3)", "W (mm)"}},
	} {
		c, err := Build(spec, ds)
		require.NoError(t, err, spec.ID)
		svg, err := RenderSVG(c, Width, Height)
		require.NoError(t, err, spec.ID)
		require.True(t, strings.Contains(string(svg), "<svg"), spec.ID)
	}
}

func TestDefaultSpecsPairing(t *testing.T) {
	specs := DefaultSpecs(0)
	sources := map[string]Source{}
	ids := map[string]bool{}
	for _, s := range specs {
		require.False(t, ids[s.ID], "duplicate id %s", s.ID)
		ids[s.ID] = true
		sources[s.ID] = s.Source
	}
	require.Equal(t, 30, specs[0].Bins)
	require.Equal(t, SourceClean, sources["mass-hist"])
	require.Equal(t, SourceClean, sources["corr"])
	require.Equal(t, SourceFiltered, sources["dimensions-box"])
	require.Equal(t, SourceFiltered, sources["co2-by-fuel-mode"])
	require.Equal(t, SourceFiltered, sources["co2-hist-filtered"])
}
