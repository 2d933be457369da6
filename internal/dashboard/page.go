// Package dashboard lays out charts and tables as a single HTML page and prints
// the same tables to the terminal.
package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/KaramelBytes/eda-cli/internal/utils"
)

// PanelKind tells the template how to draw a panel.
type PanelKind string

const (
	PanelChart    PanelKind = "chart"
	PanelMarkdown PanelKind = "markdown"
	PanelWarning  PanelKind = "warning"
)

// Panel is one cell of the dashboard grid.
type Panel struct {
	Title    string
	Kind     PanelKind
	SVG      []byte
	Markdown string
	Message  string
	// Wide charts keep their natural width and scroll inside the panel.
	Wide bool
}

// ChartPanel wraps a rendered SVG chart.
func ChartPanel(title string, svg []byte) Panel {
	return Panel{Title: title, Kind: PanelChart, SVG: svg}
}

// MarkdownPanel wraps a markdown block, usually a table.
func MarkdownPanel(title, md string) Panel {
	return Panel{Title: title, Kind: PanelMarkdown, Markdown: md}
}

// WarningPanel stands in for a chart that could not be built.
func WarningPanel(title, msg string) Panel {
	return Panel{Title: title, Kind: PanelWarning, Message: msg}
}

// Section is a heading followed by panels laid out two per row.
type Section struct {
	Heading string
	Intro   string
	Panels  []Panel
}

// Add appends a panel to the section.
func (s *Section) Add(p Panel) { s.Panels = append(s.Panels, p) }

// Rows groups panels in pairs; the last row holds one panel when the count is odd.
func (s *Section) Rows() [][]Panel {
	var rows [][]Panel
	for i := 0; i < len(s.Panels); i += 2 {
		end := i + 2
		if end > len(s.Panels) {
			end = len(s.Panels)
		}
		rows = append(rows, s.Panels[i:end])
	}
	return rows
}

// Page is the whole dashboard.
type Page struct {
	Title     string
	RunID     string
	Source    string
	Generated time.Time
	Sections  []*Section
}

// NewPage starts an empty dashboard.
func NewPage(title, runID, source string) *Page {
	return &Page{Title: title, RunID: runID, Source: source, Generated: time.Now()}
}

// AddSection appends a section and returns it for filling.
func (p *Page) AddSection(heading, intro string) *Section {
	s := &Section{Heading: heading, Intro: intro}
	p.Sections = append(p.Sections, s)
	return s
}

// Warnings returns the messages of every warning panel in page order.
func (p *Page) Warnings() []string {
	var out []string
	for _, s := range p.Sections {
		for _, pn := range s.Panels {
			if pn.Kind == PanelWarning {
				out = append(out, pn.Title+": "+pn.Message)
			}
		}
	}
	return out
}

type cellView struct {
	Title   string
	Kind    PanelKind
	Body    template.HTML
	Message string
}

type sectionView struct {
	Heading string
	Intro   template.HTML
	Rows    [][]cellView
}

type pageView struct {
	Title     string
	RunID     string
	Source    string
	Generated string
	Sections  []sectionView
}

// HTML renders the page as a standalone document.
func (p *Page) HTML() ([]byte, error) {
	view := pageView{
		Title:     p.Title,
		RunID:     p.RunID,
		Source:    p.Source,
		Generated: p.Generated.Format("2006-01-02 15:04:05"),
	}
	for _, s := range p.Sections {
		sv := sectionView{Heading: s.Heading, Intro: markdownHTML(s.Intro)}
		for _, row := range s.Rows() {
			cells := make([]cellView, len(row))
			for i, pn := range row {
				c := cellView{Title: pn.Title, Kind: pn.Kind, Message: pn.Message}
				switch pn.Kind {
				case PanelChart:
					c.Body = inlineSVG(pn.SVG)
				case PanelMarkdown:
					c.Body = markdownHTML(pn.Markdown)
				}
				cells[i] = c
			}
			sv.Rows = append(sv.Rows, cells)
		}
		view.Sections = append(view.Sections, sv)
	}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders the page to path, replacing any previous file.
func (p *Page) WriteFile(path string) error {
	b, err := p.HTML()
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}

// markdownHTML converts generated markdown. Table cells carry text from the
// input file, so raw HTML is dropped and links are restricted to safe schemes.
// A fresh parser is needed per document.
func markdownHTML(md string) template.HTML {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.Safelink})
	return template.HTML(markdown.ToHTML([]byte(md), p, r))
}

// inlineSVG drops the XML prolog so the chart can sit inside the HTML body.
func inlineSVG(svg []byte) template.HTML {
	s := string(svg)
	if i := strings.Index(s, "<svg"); i > 0 {
		s = s[i:]
	}
	return template.HTML(s)
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
header p { color: #666; margin: 0.2rem 0; }
.row { display: flex; gap: 1.5rem; margin-bottom: 1.5rem; }
.panel { flex: 1 1 0; min-width: 0; border: 1px solid #ddd; border-radius: 4px; padding: 0.8rem; overflow-x: auto; }
.panel svg { max-width: 100%; height: auto; }
.panel.wide svg { max-width: none; }
.panel.warning { background: #fff8e1; border-color: #f0c36d; }
table { border-collapse: collapse; font-size: 0.85rem; }
th, td { border: 1px solid #ccc; padding: 0.2rem 0.5rem; text-align: left; }
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
{{if .Source}}<p>Fuente: {{.Source}}</p>{{end}}
<p>Ejecución {{.RunID}} · {{.Generated}}</p>
</header>
{{range .Sections}}
<section>
<h2>{{.Heading}}</h2>
{{.Intro}}
{{range .Rows}}<div class="row">
{{range .}}<div class="panel {{.Kind}}{{if .Wide}} wide{{end}}">
{{if .Title}}<h3>{{.Title}}</h3>{{end}}
{{if eq .Kind "warning"}}<p>⚠ {{.Message}}</p>{{else}}{{.Body}}{{end}}
</div>
{{end}}</div>
{{end}}</section>
{{end}}
</body>
</html>
`))
