// Package pipeline runs the full analysis: load, prune, duplicate handling,
// outlier filtering, persistence and the dashboard.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/KaramelBytes/eda-cli/internal/charts"
	"github.com/KaramelBytes/eda-cli/internal/dashboard"
	"github.com/KaramelBytes/eda-cli/internal/dataset"
	"github.com/KaramelBytes/eda-cli/internal/outlier"
)

// Output file names inside the report directory.
const (
	DashboardFile = "dashboard.html"
	ManifestFile  = "run.yaml"
)

// Titles of the head tables, before and after pruning.
const (
	RawHeadTitle   = "Primeros datos del dataset sin columnas eliminadas"
	CleanHeadTitle = "Primeros datos del dataset con columnas eliminadas"
)

// Result holds every dataset produced by a run under its own name, so charts
// and outputs can state exactly which one they use.
type Result struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Options  Options
	Load     *dataset.LoadInfo

	// Raw is the dataset as loaded.
	Raw *dataset.Dataset
	// Clean is Raw with columns pruned and text normalized.
	Clean *dataset.Dataset
	// Deduped is Clean without duplicate rows; it is the persisted clean file.
	Deduped *dataset.Dataset
	// Filtered is the outlier filter output.
	Filtered *dataset.Dataset

	AbsentColumns   []string
	AbsentNormalize []string
	Duplicates      dataset.DuplicateReport
	Profile         *analysis.Report
	Outliers        *outlier.Report
	Page            *dashboard.Page
	Warnings        []string

	DashboardPath string
	ManifestPath  string
}

// Source resolves a chart source to the dataset it reads. The clean charts
// show the same rows the filter started from.
func (r *Result) Source(s charts.Source) (*dataset.Dataset, error) {
	switch s {
	case charts.SourceRaw:
		return r.Raw, nil
	case charts.SourceClean:
		if r.Options.DedupeMode == OutputOnly {
			return r.Clean, nil
		}
		return r.Deduped, nil
	case charts.SourceFiltered:
		return r.Filtered, nil
	}
	return nil, fmt.Errorf("unknown chart source %q", s)
}

// FilterInput returns the dataset handed to the outlier filter.
func (r *Result) FilterInput() *dataset.Dataset {
	if r.Options.DedupeMode == OutputOnly {
		return r.Clean
	}
	return r.Deduped
}

// Runner executes runs with a shared logger.
type Runner struct {
	log *zap.Logger
	now func() time.Time
}

// NewRunner returns a Runner; a nil logger discards diagnostics.
func NewRunner(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{log: log, now: time.Now}
}

// Run executes every stage in order. ctx is checked between stages; chart
// failures are reported as warnings and never abort the run.
func (r *Runner) Run(ctx context.Context, opt Options) (*Result, error) {
	if opt.DedupeMode == "" {
		opt.DedupeMode = BeforeOutliers
	}
	if !(opt.Threshold > 0) {
		return nil, fmt.Errorf("%w: %v", outlier.ErrInvalidThreshold, opt.Threshold)
	}
	res := &Result{RunID: uuid.NewString(), Started: r.now(), Options: opt}
	log := r.log.With(zap.String("run", res.RunID))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, info, err := dataset.Load(opt.InputPath, opt.Load)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", opt.InputPath, err)
	}
	res.Raw, res.Load = raw, info
	log.Info("loaded dataset",
		zap.String("path", opt.InputPath),
		zap.String("encoding", info.Encoding.Name),
		zap.Bool("encoding_fallback", info.Encoding.Fallback),
		zap.Int("rows", raw.Len()),
		zap.Int("columns", len(raw.Columns())))
	if len(info.Skipped) > 0 {
		res.warn(log, fmt.Sprintf("skipped %d malformed rows (lines %v)", len(info.Skipped), preview(info.Skipped, 10)))
	}
	if info.Padded > 0 {
		log.Debug("padded short rows", zap.Int("rows", info.Padded))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, absent := dataset.Drop(raw, opt.DropColumns)
	res.AbsentColumns = absent
	if len(absent) > 0 {
		res.warn(log, fmt.Sprintf("columns not found, not dropped: %v", absent))
	}
	clean, absent = dataset.NormalizeText(clean, opt.NormalizeColumns)
	res.AbsentNormalize = absent
	if len(absent) > 0 {
		res.warn(log, fmt.Sprintf("columns not found, not normalized: %v", absent))
	}
	clean = clean.Named("clean")
	res.Clean = clean

	res.Duplicates = dataset.Duplicates(clean)
	res.Deduped = dataset.DropDuplicates(clean).Named("deduped")
	log.Info("duplicates",
		zap.Int("duplicated_rows", res.Duplicates.Count),
		zap.Int("groups", res.Duplicates.Groups),
		zap.Int("removed", clean.Len()-res.Deduped.Len()))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filtered, orep, err := outlier.Filter(res.FilterInput(), opt.Threshold)
	if err != nil {
		return nil, fmt.Errorf("filter outliers: %w", err)
	}
	res.Filtered, res.Outliers = filtered.Named("filtered"), orep
	for _, c := range orep.Columns {
		log.Debug("outlier column",
			zap.String("column", c.Column),
			zap.Float64("mean", c.Mean),
			zap.Float64("std", c.Std),
			zap.Int("removed", c.Outliers))
	}
	log.Info("outliers removed", zap.Int("rows", orep.Removed()), zap.Int("remaining", orep.OutputRows))

	popt := analysis.DefaultOptions()
	if opt.SampleRows > 0 {
		popt.SampleRows = opt.SampleRows
	}
	prof, err := analysis.Profile(clean, popt)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	prof.Name = filepath.Base(opt.InputPath)
	res.Profile = prof

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opt.CleanOutput != "" {
		if err := dataset.WriteCSV(res.Deduped, opt.CleanOutput); err != nil {
			return nil, fmt.Errorf("write clean output: %w", err)
		}
		log.Info("wrote clean dataset", zap.String("path", opt.CleanOutput), zap.Int("rows", res.Deduped.Len()))
	}
	if opt.FilteredOutput != "" {
		if err := dataset.WriteCSV(res.Filtered, opt.FilteredOutput); err != nil {
			return nil, fmt.Errorf("write filtered output: %w", err)
		}
		log.Info("wrote filtered dataset", zap.String("path", opt.FilteredOutput), zap.Int("rows", res.Filtered.Len()))
	}

	if opt.ReportDir != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Page = r.buildPage(ctx, log, res)
		res.DashboardPath = filepath.Join(opt.ReportDir, DashboardFile)
		if err := res.Page.WriteFile(res.DashboardPath); err != nil {
			return nil, fmt.Errorf("write dashboard: %w", err)
		}
		res.Duration = r.now().Sub(res.Started)
		res.ManifestPath = filepath.Join(opt.ReportDir, ManifestFile)
		if err := res.WriteManifest(res.ManifestPath); err != nil {
			return nil, err
		}
		log.Info("wrote report", zap.String("dashboard", res.DashboardPath), zap.String("manifest", res.ManifestPath))
	}
	res.Duration = r.now().Sub(res.Started)
	return res, nil
}

// buildPage lays out the summary tables and the configured charts. Each chart
// is built from the dataset its spec names.
func (r *Runner) buildPage(ctx context.Context, log *zap.Logger, res *Result) *dashboard.Page {
	opt := res.Options
	title := opt.Title
	if title == "" {
		title = "Análisis exploratorio"
	}
	page := dashboard.NewPage(title, res.RunID, opt.InputPath)
	page.Generated = res.Started

	summary := page.AddSection("Resumen", loadMarkdown(res))
	summary.Add(dashboard.MarkdownPanel("Estadísticas descriptivas", res.Profile.DescribeMarkdown()))
	summary.Add(dashboard.MarkdownPanel("Valores faltantes", res.Profile.MissingMarkdown()))
	summary.Add(dashboard.MarkdownPanel("Duplicados", duplicatesMarkdown(res.Duplicates)))
	summary.Add(dashboard.MarkdownPanel("Outliers (Z-score)", dashboard.OutlierMarkdown(res.Outliers)))
	n := len(res.Profile.Samples)
	summary.Add(dashboard.MarkdownPanel(RawHeadTitle, analysis.DatasetMarkdown(res.Raw, n)))
	summary.Add(dashboard.MarkdownPanel(CleanHeadTitle, analysis.DatasetMarkdown(res.Clean, n)))

	specs := opt.Charts
	if specs == nil {
		specs = charts.DefaultSpecs(opt.Bins)
	}
	sections := map[charts.Source]*dashboard.Section{}
	for _, spec := range specs {
		if ctx.Err() != nil {
			break
		}
		sec := sections[spec.Source]
		if sec == nil {
			sec = page.AddSection(sectionTitle(spec.Source), "")
			sections[spec.Source] = sec
		}
		panel, err := r.chartPanel(res, spec)
		if err != nil {
			log.Warn("chart skipped", zap.String("chart", spec.ID), zap.String("source", string(spec.Source)), zap.Error(err))
			res.Warnings = append(res.Warnings, fmt.Sprintf("chart %s: %v", spec.ID, err))
			panel = dashboard.WarningPanel(spec.Title, err.Error())
		}
		sec.Add(panel)
	}
	return page
}

func (r *Runner) chartPanel(res *Result, spec charts.Spec) (dashboard.Panel, error) {
	ds, err := res.Source(spec.Source)
	if err != nil {
		return dashboard.Panel{}, err
	}
	c, err := charts.Build(spec, ds)
	if err != nil {
		return dashboard.Panel{}, err
	}
	w, h := charts.Size(c)
	svg, err := charts.RenderSVG(c, w, h)
	if err != nil {
		return dashboard.Panel{}, err
	}
	panel := dashboard.ChartPanel(spec.Title, svg)
	panel.Wide = w > charts.Width
	return panel, nil
}

func (r *Result) warn(log *zap.Logger, msg string) {
	log.Warn(msg)
	r.Warnings = append(r.Warnings, msg)
}

func sectionTitle(s charts.Source) string {
	switch s {
	case charts.SourceRaw:
		return "Datos originales"
	case charts.SourceFiltered:
		return "Después de eliminar outliers"
	}
	return "Exploración"
}

func loadMarkdown(res *Result) string {
	info := res.Load
	enc := info.Encoding.Name
	if info.Encoding.Fallback {
		enc += " (fallback)"
	}
	rows := [][]string{
		{"archivo", info.Path},
		{"formato", info.Format},
		{"codificación", enc},
		{"filas leídas", fmt.Sprint(res.Raw.Len())},
		{"filas descartadas", fmt.Sprint(len(info.Skipped))},
		{"filas limpias", fmt.Sprint(res.Deduped.Len())},
		{"filas sin outliers", fmt.Sprint(res.Filtered.Len())},
		{"umbral Z", fmt.Sprintf("%g", res.Outliers.Threshold)},
		{"duplicados", string(res.Options.DedupeMode)},
	}
	if info.Delimiter != 0 {
		rows = append(rows[:2], append([][]string{{"delimitador", fmt.Sprintf("%q", info.Delimiter)}}, rows[2:]...)...)
	}
	return analysis.TableMarkdown([]string{"", ""}, rows)
}

func duplicatesMarkdown(d dataset.DuplicateReport) string {
	return analysis.TableMarkdown(
		[]string{"filas", "duplicadas", "grupos", "%"},
		[][]string{{fmt.Sprint(d.Rows), fmt.Sprint(d.Count), fmt.Sprint(d.Groups), fmt.Sprintf("%.2f", d.Percent)}},
	)
}

func preview(xs []int, n int) []int {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
