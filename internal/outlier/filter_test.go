package outlier

import (
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/eda-cli/internal/dataset"
)

func build(header []string, rows [][]string) *dataset.Dataset {
	return dataset.New("fixture.csv", header, rows, dataset.NumberFormat{})
}

func column(name string, vals []string) *dataset.Dataset {
	rows := make([][]string, len(vals))
	for i, v := range vals {
		rows[i] = []string{v}
	}
	return build([]string{name}, rows)
}

// sequentialFixture has 17 rows. Row 16 is an outlier in "a"; once it is gone,
// row 15 becomes an outlier in "b". Against the full dataset row 15 is not.
func sequentialFixture() *dataset.Dataset {
	var rows [][]string
	for i := 0; i < 17; i++ {
		a, b := "0", "0"
		switch i {
		case 15:
			b = "10"
		case 16:
			a, b = "100", "1000"
		}
		rows = append(rows, []string{"VW", a, b})
	}
	return build([]string{"Man", "a", "b"}, rows)
}

func TestSingleExtremeValueSurvivesAtThree(t *testing.T) {
	require := require.New(t)

	z := Scores([]float64{10, 10, 10, 10, 1000})
	require.InDelta(2.0, z[4], 1e-9, "z of 1000")
	require.InDelta(-0.5, z[0], 1e-9, "z of 10")

	ds := column("x", []string{"10", "10", "10", "10", "1000"})
	out, rep, err := Filter(ds, DefaultThreshold)
	require.NoError(err)
	require.Equal(5, out.Len())
	require.Len(rep.Columns, 1)
	require.InDelta(208.0, rep.Columns[0].Mean, 1e-9)
	require.InDelta(396.0, rep.Columns[0].Std, 1e-9)
	require.Equal(0, rep.Columns[0].Outliers)

	out, rep, err = Filter(ds, 1.5)
	require.NoError(err)
	require.Equal(4, out.Len())
	require.Equal([]int{4}, rep.Columns[0].Rows)
}

func TestFilterIsSequential(t *testing.T) {
	require := require.New(t)
	ds := sequentialFixture()

	out, rep, err := Filter(ds, 3)
	require.NoError(err)
	require.Equal(15, out.Len())
	require.Equal(2, rep.Removed())
	require.Len(rep.Columns, 2, "only numeric columns are processed")

	require.Equal("a", rep.Columns[0].Column)
	require.Equal([]int{16}, rep.Columns[0].Rows)
	require.Equal(17, rep.Columns[0].Considered)
	require.InDelta(4.0, rep.Columns[0].MaxAbsZ, 1e-9)

	require.Equal("b", rep.Columns[1].Column)
	require.Equal([]int{15}, rep.Columns[1].Rows)
	require.Equal(16, rep.Columns[1].Considered, "statistics use the rows left by column a")
	require.InDelta(math.Sqrt(15), rep.Columns[1].MaxAbsZ, 1e-9)

	// Scored against the unfiltered column, row 15 is unremarkable.
	b, err := ds.Floats("b")
	require.NoError(err)
	z := Scores(b)
	require.Less(math.Abs(z[15]), 3.0)
	require.Greater(math.Abs(z[16]), 3.0)
}

func TestFilterKeepsColumnsAndInput(t *testing.T) {
	require := require.New(t)
	ds := sequentialFixture()

	out, _, err := Filter(ds, 3)
	require.NoError(err)
	require.Equal(ds.Columns(), out.Columns())
	require.Equal(ds.Kinds(), out.Kinds())
	require.Equal(17, ds.Len(), "input must not shrink")
	require.Equal([]string{"VW", "0", "0"}, out.Row(0))
}

func TestZeroVarianceColumnHasNoOutliers(t *testing.T) {
	require := require.New(t)
	ds := column("c", []string{"0.1", "0.1", "0.1", "0.1", "0.1", "0.1", "0.1"})

	for _, thr := range []float64{0.01, 1, 3} {
		out, rep, err := Filter(ds, thr)
		require.NoError(err)
		require.Equal(7, out.Len())
		require.Equal(0, rep.Columns[0].Outliers)
		require.Equal(0.0, rep.Columns[0].Std)
	}
	for _, z := range Scores([]float64{4, 4, 4}) {
		require.Equal(0.0, z)
	}
}

func TestNoNumericColumnsIsNoop(t *testing.T) {
	require := require.New(t)
	ds := build([]string{"Man", "Ft"}, [][]string{{"VW", "petrol"}, {"BMW", "diesel"}})

	out, rep, err := Filter(ds, 3)
	require.NoError(err)
	require.Same(ds, out)
	require.Empty(rep.Columns)
	require.Equal(0, rep.Removed())
}

func TestInvalidThreshold(t *testing.T) {
	ds := column("x", []string{"1", "2"})
	for _, thr := range []float64{0, -1, math.NaN()} {
		_, _, err := Filter(ds, thr)
		require.ErrorIs(t, err, ErrInvalidThreshold)
	}
}

func TestMissingValuesAreNeverOutliers(t *testing.T) {
	require := require.New(t)
	vals := []string{"1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "", "NaN", "100"}
	ds := column("x", vals)

	out, rep, err := Filter(ds, 3)
	require.NoError(err)
	require.Equal(12, rep.Columns[0].Considered)
	require.Equal([]int{13}, rep.Columns[0].Rows)
	require.Equal(13, out.Len())

	z := Scores([]float64{1, math.NaN(), 3})
	require.True(math.IsNaN(z[1]))
}

func TestMonotonicInThreshold(t *testing.T) {
	require := require.New(t)
	var vals []string
	for i := 1; i <= 20; i++ {
		vals = append(vals, strconv.Itoa(i))
	}
	vals = append(vals, "50", "80", "-40")
	ds := column("x", vals)

	prev := math.MaxInt
	for _, thr := range []float64{0.5, 1, 1.5, 2, 3, 4} {
		_, rep, err := Filter(ds, thr)
		require.NoError(err)
		require.LessOrEqual(rep.Removed(), prev, "threshold %v", thr)
		prev = rep.Removed()
	}
}

func TestRefilterNeverGrows(t *testing.T) {
	require := require.New(t)

	out, _, err := Filter(sequentialFixture(), 3)
	require.NoError(err)
	again, rep, err := Filter(out, 3)
	require.NoError(err)
	require.Equal(out.Len(), again.Len())
	require.Equal(0, rep.Removed())

	rng := rand.New(rand.NewSource(7))
	var rows [][]string
	for i := 0; i < 300; i++ {
		row := make([]string, 3)
		for j := range row {
			v := rng.NormFloat64() * 10
			if rng.Intn(40) == 0 {
				v *= 25
			}
			row[j] = strconv.FormatFloat(v, 'f', 3, 64)
		}
		rows = append(rows, row)
	}
	ds := build([]string{"p", "q", "r"}, rows)
	first, rep1, err := Filter(ds, 3)
	require.NoError(err)
	require.LessOrEqual(first.Len(), ds.Len())
	require.Equal(ds.Columns(), first.Columns())

	second, rep2, err := Filter(first, 3)
	require.NoError(err)
	require.LessOrEqual(second.Len(), first.Len())
	require.Equal(rep1.OutputRows, rep2.InputRows)
}
