package pipeline

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/eda-cli/internal/history"
	"github.com/KaramelBytes/eda-cli/internal/utils"
)

// Manifest is the run.yaml summary written next to the dashboard.
type Manifest struct {
	RunID     string        `yaml:"run_id"`
	StartedAt time.Time     `yaml:"started_at"`
	Duration  string        `yaml:"duration"`
	Input     InputSummary  `yaml:"input"`
	Settings  RunSettings   `yaml:"settings"`
	Rows      RowCounts     `yaml:"rows"`
	Duplicate DupSummary    `yaml:"duplicates"`
	Outliers  []OutlierStep `yaml:"outliers"`
	Outputs   OutputPaths   `yaml:"outputs"`
	Warnings  []string      `yaml:"warnings,omitempty"`
}

type InputSummary struct {
	Path             string `yaml:"path"`
	Format           string `yaml:"format"`
	Encoding         string `yaml:"encoding"`
	EncodingFallback bool   `yaml:"encoding_fallback"`
	Delimiter        string `yaml:"delimiter,omitempty"`
	Records          int    `yaml:"records"`
	SkippedLines     []int  `yaml:"skipped_lines,omitempty"`
	PaddedRows       int    `yaml:"padded_rows"`
}

type RunSettings struct {
	Threshold      float64  `yaml:"zscore_threshold"`
	DedupeMode     string   `yaml:"dedupe_mode"`
	DroppedColumns []string `yaml:"drop_columns"`
	AbsentColumns  []string `yaml:"absent_columns,omitempty"`
}

type RowCounts struct {
	Raw      int `yaml:"raw"`
	Clean    int `yaml:"clean"`
	Deduped  int `yaml:"deduped"`
	Filtered int `yaml:"filtered"`
}

type DupSummary struct {
	Rows    int     `yaml:"duplicated_rows"`
	Groups  int     `yaml:"groups"`
	Percent float64 `yaml:"percent"`
}

type OutlierStep struct {
	Column     string  `yaml:"column"`
	Mean       float64 `yaml:"mean"`
	Std        float64 `yaml:"std"`
	Considered int     `yaml:"considered"`
	Removed    int     `yaml:"removed"`
	MaxAbsZ    float64 `yaml:"max_abs_z"`
}

type OutputPaths struct {
	Clean     string `yaml:"clean,omitempty"`
	Filtered  string `yaml:"filtered,omitempty"`
	Dashboard string `yaml:"dashboard,omitempty"`
}

// Manifest summarises the run.
func (r *Result) Manifest() Manifest {
	m := Manifest{
		RunID:     r.RunID,
		StartedAt: r.Started,
		Duration:  r.Duration.Round(time.Millisecond).String(),
		Input: InputSummary{
			Path:             r.Load.Path,
			Format:           r.Load.Format,
			Encoding:         r.Load.Encoding.Name,
			EncodingFallback: r.Load.Encoding.Fallback,
			Records:          r.Load.Records,
			SkippedLines:     r.Load.Skipped,
			PaddedRows:       r.Load.Padded,
		},
		Settings: RunSettings{
			Threshold:      r.Outliers.Threshold,
			DedupeMode:     string(r.Options.DedupeMode),
			DroppedColumns: r.Options.DropColumns,
			AbsentColumns:  r.AbsentColumns,
		},
		Rows: RowCounts{
			Raw:      r.Raw.Len(),
			Clean:    r.Clean.Len(),
			Deduped:  r.Deduped.Len(),
			Filtered: r.Filtered.Len(),
		},
		Duplicate: DupSummary{Rows: r.Duplicates.Count, Groups: r.Duplicates.Groups, Percent: r.Duplicates.Percent},
		Outputs: OutputPaths{
			Clean:     r.Options.CleanOutput,
			Filtered:  r.Options.FilteredOutput,
			Dashboard: r.DashboardPath,
		},
		Warnings: r.Warnings,
	}
	if r.Load.Delimiter != 0 {
		m.Input.Delimiter = string(r.Load.Delimiter)
	}
	for _, c := range r.Outliers.Columns {
		m.Outliers = append(m.Outliers, OutlierStep{
			Column: c.Column, Mean: c.Mean, Std: c.Std, Considered: c.Considered, Removed: c.Outliers, MaxAbsZ: c.MaxAbsZ,
		})
	}
	return m
}

// WriteManifest writes Manifest as YAML to path.
func (r *Result) WriteManifest(path string) error {
	b, err := yaml.Marshal(r.Manifest())
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// HistoryRun converts the result into a history record.
func (r *Result) HistoryRun() history.Run {
	run := history.Run{
		ID:           r.RunID,
		StartedAt:    r.Started.UTC(),
		InputPath:    r.Options.InputPath,
		Encoding:     r.Load.Encoding.Name,
		Threshold:    r.Outliers.Threshold,
		DedupeMode:   string(r.Options.DedupeMode),
		RawRows:      r.Raw.Len(),
		SkippedRows:  len(r.Load.Skipped),
		CleanRows:    r.Clean.Len(),
		DedupRows:    r.Deduped.Len(),
		FilteredRows: r.Filtered.Len(),
		Duplicates:   r.Duplicates.Count,
		Warnings:     len(r.Warnings),
	}
	for _, c := range r.Outliers.Columns {
		run.Columns = append(run.Columns, history.ColumnOutliers{
			Column: c.Column, Mean: c.Mean, Std: c.Std, Considered: c.Considered, Removed: c.Outliers, MaxAbsZ: c.MaxAbsZ,
		})
	}
	return run
}
