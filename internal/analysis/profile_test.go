package analysis

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/KaramelBytes/eda-cli/internal/dataset"
)

var emissionRows = [][]string{
	{"VW", "petrol", "1200", "120", "1395"},
	{"VW", "petrol", "1250", "125", "1395"},
	{"BMW", "diesel", "1500", "140", "1995"},
	{"BMW", "diesel", "1550", "", "1995"},
	{"Fiat", "petrol", "950", "99", "1242"},
	{"Fiat", "lpg", "980", "101", ""},
	{"VW", "petrol", "1200", "120", "1395"},
}

var (
	massVals     = []float64{1200, 1250, 1500, 1550, 950, 980, 1200}
	emissionVals = []float64{120, 125, 140, 99, 101, 120} // rows with mass and emissions: 0,1,2,4,5,6
	pairedMass   = []float64{1200, 1250, 1500, 950, 980, 1200}
)

func fixture() *dataset.Dataset {
	return dataset.New("cars.csv", []string{"Man", "Ft", "m (kg)", "Enedc (g/km)", "ec (cm3)"}, emissionRows, dataset.NumberFormat{})
}

func TestProfileAndMarkdown(t *testing.T) {
	opt := DefaultOptions()
	opt.SampleRows = 3
	rep, err := Profile(fixture(), opt)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if rep.Rows != 7 || len(rep.Samples) != 3 {
		t.Fatalf("rows=%d samples=%d", rep.Rows, len(rep.Samples))
	}

	mass := columnByName(t, rep, "m (kg)")
	checkStats(t, mass, massVals)
	sorted := append([]float64(nil), massVals...)
	sortFloats(sorted)
	if !almostEqual(mass.Q1, quantileValue(sorted, 0.25), 1e-9) || !almostEqual(mass.Q3, quantileValue(sorted, 0.75), 1e-9) {
		t.Fatalf("quartiles = %f/%f", mass.Q1, mass.Q3)
	}
	if !almostEqual(mass.Median, 1200, 1e-9) {
		t.Fatalf("median = %f", mass.Median)
	}

	em := columnByName(t, rep, "Enedc (g/km)")
	if em.Missing != 1 || !almostEqual(em.MissingPct(), 100.0/7, 1e-9) {
		t.Fatalf("emissions missing = %d (%f)", em.Missing, em.MissingPct())
	}

	ft := columnByName(t, rep, "Ft")
	if ft.Kind != dataset.KindCategorical || ft.TopValues[0].Value != "petrol" || ft.TopValues[0].Count != 4 {
		t.Fatalf("ft = %#v", ft)
	}

	if rep.Duplicates.Count != 2 {
		t.Fatalf("duplicates = %#v", rep.Duplicates)
	}
	if rep.Corr == nil || !equalStrings(rep.Corr.Columns, []string{"m (kg)", "Enedc (g/km)", "ec (cm3)"}) {
		t.Fatalf("corr = %#v", rep.Corr)
	}
	want := correlation(pairedMass, emissionVals)
	if !almostEqual(rep.Corr.Values[0][1], want, 1e-9) || !almostEqual(rep.Corr.Values[1][0], want, 1e-9) {
		t.Fatalf("corr mass-emissions = %f, want %f", rep.Corr.Values[0][1], want)
	}

	md := rep.Markdown()
	for _, s := range []string{
		"[DATASET SUMMARY]",
		"File: cars.csv",
		"Rows: 7",
		"- m (kg): numeric (non-null 7, missing 0.0%)",
		"- Ft: categorical",
		"petrol(4)",
		"[DUPLICATES]",
		"duplicated rows: 2 of 7 (28.57%) in 1 groups",
		"[CORRELATIONS]",
		"[HEAD]",
		"[NOTES]",
	} {
		if !strings.Contains(md, s) {
			t.Fatalf("markdown missing %q:\n%s", s, md)
		}
	}
	if d := rep.DescribeMarkdown(); !strings.Contains(d, "| m (kg) | 7 |") {
		t.Fatalf("describe markdown = %s", d)
	}
	if m := rep.MissingMarkdown(); !strings.Contains(m, "| Enedc (g/km) | numeric | 1 | 14.29% |") {
		t.Fatalf("missing markdown = %s", m)
	}
	mv := rep.MissingValues()
	if mv[0].Column != "Enedc (g/km)" || mv[1].Column != "ec (cm3)" || mv[2].Count != 0 {
		t.Fatalf("missing values = %#v", mv)
	}
}

func TestValueCountsAndGroupMeans(t *testing.T) {
	ds := fixture()
	vc, err := ValueCounts(ds, "Ft")
	if err != nil {
		t.Fatalf("ValueCounts: %v", err)
	}
	if len(vc) != 3 || vc[0] != (CategoryCount{"petrol", 4}) || vc[1] != (CategoryCount{"diesel", 2}) || vc[2] != (CategoryCount{"lpg", 1}) {
		t.Fatalf("value counts = %#v", vc)
	}

	gm, err := GroupMeans(ds, "Man", "Enedc (g/km)", true)
	if err != nil {
		t.Fatalf("GroupMeans: %v", err)
	}
	if len(gm) != 3 || gm[0].Key != "BMW" || gm[0].Count != 1 || !almostEqual(gm[2].Mean, mean([]float64{120, 125, 120}), 1e-9) {
		t.Fatalf("group means = %#v", gm)
	}

	if _, err := GroupMeans(ds, "Man", "Missing", false); err == nil {
		t.Fatalf("expected error for missing column")
	}
}

func TestCorrelationNeedsTwoNumericColumns(t *testing.T) {
	ds := dataset.New("one.csv", []string{"Man", "x"}, [][]string{{"a", "1"}, {"b", "2"}}, dataset.NumberFormat{})
	corr, err := Correlation(ds)
	if err != nil || corr != nil {
		t.Fatalf("corr = %#v, err = %v", corr, err)
	}
	flat := dataset.New("flat.csv", []string{"x", "y"}, [][]string{{"1", "5"}, {"2", "5"}, {"3", "5"}}, dataset.NumberFormat{})
	corr, err = Correlation(flat)
	if err != nil {
		t.Fatalf("Correlation: %v", err)
	}
	if corr.Values[0][1] != 0 {
		t.Fatalf("constant column should correlate 0, got %f", corr.Values[0][1])
	}
}

func columnByName(t *testing.T, rep *Report, name string) ColumnSummary {
	t.Helper()
	for _, c := range rep.Cols {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("column %q not found", name)
	return ColumnSummary{}
}

func checkStats(t *testing.T, col ColumnSummary, vals []float64) {
	t.Helper()
	if col.NonNull != len(vals) {
		t.Fatalf("non-null = %d, want %d", col.NonNull, len(vals))
	}
	if !almostEqual(col.Min, minFloat(vals), 1e-6) {
		t.Fatalf("min = %f, want %f", col.Min, minFloat(vals))
	}
	if !almostEqual(col.Max, maxFloat(vals), 1e-6) {
		t.Fatalf("max = %f, want %f", col.Max, maxFloat(vals))
	}
	if !almostEqual(col.Mean, mean(vals), 1e-6) {
		t.Fatalf("mean = %f, want %f", col.Mean, mean(vals))
	}
	if !almostEqual(col.Std, sampleStd(vals), 1e-6) {
		t.Fatalf("std = %f, want %f", col.Std, sampleStd(vals))
	}
}

func quantileValue(sortedVals []float64, q float64) float64 {
	pos := q * float64(len(sortedVals)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sortedVals[lo]
	}
	w := pos - float64(lo)
	return sortedVals[lo]*(1-w) + sortedVals[hi]*w
}

func sortFloats(v []float64) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func sampleStd(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		diff := v - m
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

func minFloat(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxFloat(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func correlation(a, b []float64) float64 {
	ma := mean(a)
	mb := mean(b)
	var num, da2, db2 float64
	for i := range a {
		da := a[i] - ma
		db := b[i] - mb
		num += da * db
		da2 += da * da
		db2 += db * db
	}
	if da2 == 0 || db2 == 0 {
		return 0
	}
	return num / math.Sqrt(da2*db2)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestTableMarkdownTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("Citroën Škoda ", 10)
	md := TableMarkdown([]string{"Man"}, [][]string{{long}, {"Škoda"}})
	if !utf8.ValidString(md) {
		t.Fatalf("invalid UTF-8 in table:\n%q", md)
	}
	lines := strings.Split(strings.TrimSpace(md), "\n")
	cell := strings.TrimSuffix(strings.TrimPrefix(lines[2], "| "), " |")
	if utf8.RuneCountInString(cell) != 80 || !strings.HasSuffix(cell, "...") {
		t.Fatalf("cell = %q (%d runes)", cell, utf8.RuneCountInString(cell))
	}
	if !strings.Contains(lines[3], "| Škoda |") {
		t.Fatalf("short cell changed: %q", lines[3])
	}
}
