package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func (xlsxReader) Read(path string, opt LoadOptions) (*Dataset, *LoadInfo, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("%w: %s has no sheets", ErrEmpty, filepath.Base(path))
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q", ErrEmpty, sheet)
	}
	info := &LoadInfo{Path: path, Format: "xlsx", Encoding: EncodingInfo{Name: "utf-8", Confidence: 100}}
	header := rows[0]
	var data [][]string
	for i, rec := range rows[1:] {
		info.Records++
		// Spreadsheet rows are line-addressable: row 1 is the header.
		fitted, ok := fitRecord(rec, len(header), info)
		if !ok {
			info.Skipped = append(info.Skipped, i+2)
			continue
		}
		data = append(data, fitted)
	}
	return New(filepath.Base(path), header, data, opt.Number), info, nil
}
