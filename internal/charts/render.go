package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Default canvas size for dashboard panels.
const (
	Width  = 16 * vg.Centimeter
	Height = 10 * vg.Centimeter
)

// barSlot is the horizontal space given to each bar once a chart has more
// bars than fit the default width.
const barSlot = 0.5 * vg.Centimeter

var (
	barColor     = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	scatterColor = color.NRGBA{G: 128, A: 128}
)

// Size returns the canvas for c: the default panel size, widened for bar
// charts so every category keeps a readable slot.
func Size(c *Chart) (width, height vg.Length) {
	width, height = Width, Height
	if c.Spec.Kind == Bar {
		if w := vg.Length(len(c.Labels)) * barSlot; w > width {
			width = w
		}
	}
	return width, height
}

// RenderSVG draws c and returns the SVG document.
func RenderSVG(c *Chart, width, height vg.Length) ([]byte, error) {
	p, err := newPlot(c)
	if err != nil {
		return nil, err
	}
	wt, err := p.WriterTo(width, height, "svg")
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", c.Spec.ID, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write svg %s: %w", c.Spec.ID, err)
	}
	return buf.Bytes(), nil
}

func newPlot(c *Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Spec.Title
	p.X.Label.Text = c.Spec.XLabel
	p.Y.Label.Text = c.Spec.YLabel

	switch c.Spec.Kind {
	case Histogram:
		bins := c.Spec.Bins
		if bins <= 0 {
			bins = 30
		}
		h, err := plotter.NewHist(plotter.Values(c.Values), bins)
		if err != nil {
			return nil, fmt.Errorf("histogram: %w", err)
		}
		h.FillColor = barColor
		p.Add(h)
	case Bar:
		bars, err := plotter.NewBarChart(plotter.Values(c.Heights), vg.Points(8))
		if err != nil {
			return nil, fmt.Errorf("bar chart: %w", err)
		}
		bars.Color = barColor
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.NominalX(c.Labels...)
		rotateTicks(p)
	case Scatter:
		xys := make(plotter.XYs, len(c.Points))
		for i, pt := range c.Points {
			xys[i].X, xys[i].Y = pt.X, pt.Y
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("scatter: %w", err)
		}
		s.GlyphStyle.Color = scatterColor
		s.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(s)
	case Heatmap:
		m := c.Matrix
		pal := palette.Heat(12, 1)
		hm := plotter.NewHeatMap(corrGrid{values: m.Values}, pal)
		hm.Min, hm.Max = -1, 1
		p.Add(hm)
		p.NominalX(m.Columns...)
		p.NominalY(m.Columns...)
		rotateTicks(p)
	case Boxplot:
		names := make([]string, len(c.Series))
		for i, s := range c.Series {
			b, err := plotter.NewBoxPlot(vg.Points(30), float64(i), plotter.Values(s.Values))
			if err != nil {
				return nil, fmt.Errorf("boxplot %s: %w", s.Name, err)
			}
			b.FillColor = barColor
			p.Add(b)
			names[i] = s.Name
		}
		p.NominalX(names...)
	default:
		return nil, fmt.Errorf("unknown chart kind %q", c.Spec.Kind)
	}
	return p, nil
}

func rotateTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// corrGrid adapts a square matrix to plotter.GridXYZ; row 0 is drawn at the bottom.
type corrGrid struct {
	values [][]float64
}

func (g corrGrid) Dims() (c, r int)   { return len(g.values), len(g.values) }
func (g corrGrid) Z(c, r int) float64 { return g.values[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }
