package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the inferred content type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindDatetime    Kind = "datetime"
	KindCategorical Kind = "categorical"
	KindText        Kind = "text"
	KindUnknown     Kind = "unknown"
)

// ErrColumnNotFound is returned when a named column is not part of the dataset.
var ErrColumnNotFound = errors.New("column not found")

// NumberFormat controls numeric parsing. Zero separators auto-detect per value.
type NumberFormat struct {
	Decimal   rune
	Thousands rune
}

// Dataset is an immutable table of string cells with per-column inferred kinds.
// Operations that change rows or columns return a new Dataset; row slices are
// shared between datasets and never written after construction.
type Dataset struct {
	Name    string
	columns []string
	kinds   []Kind
	rows    [][]string
	index   map[string]int
	num     NumberFormat
}

// New builds a dataset from a header and rows, inferring column kinds from content.
// Rows shorter than the header are padded with empty cells; longer rows are truncated.
func New(name string, header []string, rows [][]string, num NumberFormat) *Dataset {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}
	norm := make([][]string, len(rows))
	for i, rec := range rows {
		if len(rec) == len(cols) {
			norm[i] = rec
			continue
		}
		row := make([]string, len(cols))
		copy(row, rec)
		norm[i] = row
	}
	d := &Dataset{Name: name, columns: cols, rows: norm, num: num}
	d.buildIndex()
	d.kinds = make([]Kind, len(cols))
	for j := range cols {
		d.kinds[j] = d.inferKind(j)
	}
	return d
}

func (d *Dataset) buildIndex() {
	d.index = make(map[string]int, len(d.columns))
	for i, c := range d.columns {
		if _, dup := d.index[c]; !dup {
			d.index[c] = i
		}
	}
}

// derive returns a dataset sharing schema and number format with d.
func (d *Dataset) derive(rows [][]string) *Dataset {
	return &Dataset{Name: d.Name, columns: d.columns, kinds: d.kinds, rows: rows, index: d.index, num: d.num}
}

// Named returns a view of d under another name. Rows are shared.
func (d *Dataset) Named(name string) *Dataset {
	out := d.derive(d.rows)
	out.Name = name
	return out
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Columns returns a copy of the column names in order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// Kinds returns a copy of the inferred kinds, aligned with Columns.
func (d *Dataset) Kinds() []Kind {
	out := make([]Kind, len(d.kinds))
	copy(out, d.kinds)
	return out
}

// Has reports whether the column exists.
func (d *Dataset) Has(col string) bool {
	_, ok := d.index[col]
	return ok
}

func (d *Dataset) lookup(col string) (int, error) {
	j, ok := d.index[col]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrColumnNotFound, col)
	}
	return j, nil
}

// Kind returns the inferred kind for a column.
func (d *Dataset) Kind(col string) (Kind, error) {
	j, err := d.lookup(col)
	if err != nil {
		return KindUnknown, err
	}
	return d.kinds[j], nil
}

// NumericColumns lists numeric columns in column order.
func (d *Dataset) NumericColumns() []string {
	var out []string
	for j, k := range d.kinds {
		if k == KindNumeric {
			out = append(out, d.columns[j])
		}
	}
	return out
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []string {
	out := make([]string, len(d.rows[i]))
	copy(out, d.rows[i])
	return out
}

// Records returns the header followed by every row, suitable for csv.Writer.WriteAll.
func (d *Dataset) Records() [][]string {
	out := make([][]string, 0, len(d.rows)+1)
	out = append(out, d.Columns())
	for i := range d.rows {
		out = append(out, d.Row(i))
	}
	return out
}

// Strings returns the trimmed raw values of a column.
func (d *Dataset) Strings(col string) ([]string, error) {
	j, err := d.lookup(col)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(d.rows))
	for i, r := range d.rows {
		out[i] = strings.TrimSpace(r[j])
	}
	return out, nil
}

// Floats returns the parsed values of a column. Missing or unparseable cells are NaN.
func (d *Dataset) Floats(col string) ([]float64, error) {
	j, err := d.lookup(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(d.rows))
	for i, r := range d.rows {
		out[i] = math.NaN()
		v := strings.TrimSpace(r[j])
		if IsMissing(v) {
			continue
		}
		if x, ok := ParseNumber(v, d.num); ok {
			out[i] = x
		}
	}
	return out, nil
}

// Subset returns the rows at the given indices, in the given order. The column
// set and inferred kinds are unchanged.
func (d *Dataset) Subset(idx []int) *Dataset {
	rows := make([][]string, len(idx))
	for k, i := range idx {
		rows[k] = d.rows[i]
	}
	return d.derive(rows)
}

// Head returns the first n rows.
func (d *Dataset) Head(n int) *Dataset {
	if n > len(d.rows) {
		n = len(d.rows)
	}
	if n < 0 {
		n = 0
	}
	return d.derive(d.rows[:n:n])
}

// IsMissing reports whether a trimmed cell counts as a missing value.
func IsMissing(v string) bool {
	switch strings.ToLower(v) {
	case "", "na", "nan", "null", "none", "<nil>":
		return true
	}
	return false
}

func (d *Dataset) inferKind(j int) Kind {
	var numCnt, dtCnt, txtCnt int
	cats := map[string]struct{}{}
	for _, r := range d.rows {
		v := strings.TrimSpace(r[j])
		if IsMissing(v) {
			continue
		}
		if _, ok := ParseNumber(v, d.num); ok {
			numCnt++
			continue
		}
		if _, ok := ParseTime(v); ok {
			dtCnt++
			continue
		}
		txtCnt++
		if len(cats) <= 10000 && len(v) <= 64 {
			cats[v] = struct{}{}
		}
	}
	switch {
	case numCnt >= dtCnt && numCnt >= txtCnt && numCnt > 0:
		return KindNumeric
	case dtCnt >= txtCnt && dtCnt > 0:
		return KindDatetime
	case len(cats) > 0:
		return KindCategorical
	case txtCnt > 0:
		return KindText
	}
	return KindUnknown
}

// ParseTime tries a fixed set of common date layouts.
func ParseTime(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses a number written with either '.' or ',' decimals, optional
// thousands separators and an optional trailing percent sign. Without a
// configured format, commas that split the integer into groups of three digits
// ("1,000", "12,345,678") are thousands separators; any other comma is the
// decimal mark ("1,5").
func ParseNumber(s string, nf NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	// Reject words strconv would accept.
	switch strings.ToLower(strings.TrimLeft(raw, "+-")) {
	case "inf", "infinity", "nan":
		return 0, false
	}
	dec, thou := nf.Decimal, nf.Thousands
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0 && isGrouped(raw, ','):
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// isGrouped reports whether s is an optionally signed integer whose digits are
// split by sep into groups of three after a leading group of one to three
// digits. A leading zero ("0,125") is a decimal fraction, not a group.
func isGrouped(s string, sep rune) bool {
	s = strings.TrimLeft(s, "+-")
	parts := strings.Split(s, string(sep))
	if len(parts) < 2 || len(parts[0]) == 0 || len(parts[0]) > 3 || parts[0][0] == '0' {
		return false
	}
	for i, p := range parts {
		if i > 0 && len(p) != 3 {
			return false
		}
		for _, c := range p {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}
