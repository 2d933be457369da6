package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/eda-cli/internal/dataset"
)

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", `\t`, "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s (use ','|';'|'tab'|'|')", s)
}

func parseNumberFormat(decimal, thousands string) (dataset.NumberFormat, error) {
	var nf dataset.NumberFormat
	switch strings.ToLower(strings.TrimSpace(decimal)) {
	case ",", "comma":
		nf.Decimal = ','
	case ".", "dot":
		nf.Decimal = '.'
	case "":
	default:
		return nf, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", decimal)
	}
	switch strings.ToLower(thousands) {
	case ",":
		nf.Thousands = ','
	case ".":
		nf.Thousands = '.'
	case "space", " ":
		nf.Thousands = ' '
	case "":
	default:
		return nf, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", thousands)
	}
	return nf, nil
}
