package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat indicates no reader handles the file extension.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// ErrEmpty indicates the source has no header row.
var ErrEmpty = errors.New("dataset has no header")

// LoadOptions controls how a source file is read.
type LoadOptions struct {
	// Delimiter for delimited text. If 0, sniffed from the header line.
	Delimiter rune
	// Encoding forces a text encoding; empty means detect.
	Encoding string
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet  string
	Number NumberFormat
}

// LoadInfo reports what the loader saw while reading a source.
type LoadInfo struct {
	Path      string
	Format    string
	Encoding  EncodingInfo
	Delimiter rune
	// Records is the number of data records read, including skipped ones.
	Records int
	// Skipped lists the 1-based source line of each record that was dropped.
	Skipped []int
	// Padded counts records with fewer fields than the header.
	Padded int
}

// Reader loads one family of file formats.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt LoadOptions) (*Dataset, *LoadInfo, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

func init() {
	Register(delimitedReader{})
	Register(xlsxReader{})
}

// Load reads a dataset from path using the first registered reader that accepts it.
func Load(path string, opt LoadOptions) (*Dataset, *LoadInfo, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(path, opt)
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

type delimitedReader struct{}

func (delimitedReader) CanRead(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return true
	}
	return false
}

func (delimitedReader) Read(path string, opt LoadOptions) (*Dataset, *LoadInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}
	text, enc, err := DecodeText(raw, opt.Encoding)
	if err != nil {
		return nil, nil, err
	}
	info := &LoadInfo{Path: path, Format: "csv", Encoding: enc}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path, text)
	}
	info.Delimiter = delim
	ds, err := ReadDelimited(filepath.Base(path), strings.NewReader(text), delim, opt.Number, info)
	if err != nil {
		return nil, nil, err
	}
	return ds, info, nil
}

// ReadDelimited parses delimited text. Records with more fields than the header
// or with broken quoting are skipped; records with fewer fields are padded.
func ReadDelimited(name string, r io.Reader, delim rune, nf NumberFormat, info *LoadInfo) (*Dataset, error) {
	if info == nil {
		info = &LoadInfo{}
	}
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrEmpty, name)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				info.Records++
				info.Skipped = append(info.Skipped, pe.StartLine)
				continue
			}
			return nil, fmt.Errorf("read row %d: %w", info.Records+1, err)
		}
		info.Records++
		rec, ok := fitRecord(rec, len(header), info)
		if !ok {
			line, _ := cr.FieldPos(0)
			info.Skipped = append(info.Skipped, line)
			continue
		}
		rows = append(rows, rec)
	}
	return New(name, header, rows, nf), nil
}

// fitRecord applies the skip-or-pad rule to one record.
func fitRecord(rec []string, width int, info *LoadInfo) ([]string, bool) {
	switch {
	case len(rec) > width:
		return nil, false
	case len(rec) < width:
		info.Padded++
		row := make([]string, width)
		copy(row, rec)
		return row, true
	}
	return rec, true
}

func sniffDelimiter(path, text string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	first := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		first = text[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(first, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
