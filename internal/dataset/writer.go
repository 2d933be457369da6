package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/KaramelBytes/eda-cli/internal/utils"
)

// WriteCSV writes the header and rows as comma-separated UTF-8, replacing any
// existing file at path. No index column is added.
func WriteCSV(d *Dataset, path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(d.Records()); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
