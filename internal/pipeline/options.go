package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/eda-cli/internal/charts"
	"github.com/KaramelBytes/eda-cli/internal/config"
	"github.com/KaramelBytes/eda-cli/internal/dataset"
)

// DedupeMode decides where duplicate rows are removed.
type DedupeMode string

const (
	// BeforeOutliers drops duplicates first so the filter sees unique rows.
	BeforeOutliers DedupeMode = "before_outliers"
	// OutputOnly drops duplicates only from the persisted clean file; the
	// filter runs on the pruned dataset with duplicates kept.
	OutputOnly DedupeMode = "output_only"
)

// ErrInvalidDedupeMode is returned for unknown dedupe_mode values.
var ErrInvalidDedupeMode = errors.New("invalid dedupe mode")

// ParseDedupeMode accepts the config spelling; empty means BeforeOutliers.
func ParseDedupeMode(s string) (DedupeMode, error) {
	switch DedupeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", BeforeOutliers:
		return BeforeOutliers, nil
	case OutputOnly:
		return OutputOnly, nil
	}
	return "", fmt.Errorf("%w: %q (use %s or %s)", ErrInvalidDedupeMode, s, BeforeOutliers, OutputOnly)
}

// Options describes one run.
type Options struct {
	InputPath        string
	Load             dataset.LoadOptions
	DropColumns      []string
	NormalizeColumns []string
	Threshold        float64
	DedupeMode       DedupeMode

	// CleanOutput and FilteredOutput are skipped when empty.
	CleanOutput    string
	FilteredOutput string
	// ReportDir receives dashboard.html and run.yaml; empty disables both.
	ReportDir  string
	Title      string
	SampleRows int
	// Charts defaults to charts.DefaultSpecs(Bins).
	Charts []charts.Spec
	Bins   int
}

// FromConfig maps the resolved configuration onto run options.
func FromConfig(c *config.Global) (Options, error) {
	mode, err := ParseDedupeMode(c.DedupeMode)
	if err != nil {
		return Options{}, err
	}
	delim, err := c.DelimiterRune()
	if err != nil {
		return Options{}, err
	}
	return Options{
		InputPath:        c.InputPath,
		Load:             dataset.LoadOptions{Delimiter: delim, Encoding: c.Encoding},
		DropColumns:      c.DropColumns,
		NormalizeColumns: c.NormalizeColumns,
		Threshold:        c.ZScoreThreshold,
		DedupeMode:       mode,
		CleanOutput:      c.CleanOutput,
		FilteredOutput:   c.FilteredOutput,
		ReportDir:        c.ReportDir,
		Title:            c.DashboardTitle,
		SampleRows:       c.SampleRows,
		Bins:             c.HistogramBins,
	}, nil
}
