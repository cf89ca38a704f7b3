// Package render draws prepared chart series with gonum/plot and encodes
// them as PNG or PDF.
package render

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"

	"expense-analyzer/internal/chart"
)

const (
	titleSize = 16
	labelSize = 12
	amountAx  = "Amount ($)"
	day       = 24 * 60 * 60
)

var (
	cyan     = color.RGBA{R: 0, G: 200, B: 220, A: 255}
	cyanFill = color.NRGBA{R: 0, G: 200, B: 220, A: 64}
	gridGray = color.Gray{Y: 176}
	dashes   = []vg.Length{vg.Points(4), vg.Points(4)}
)

// Plotter implements chart.Renderer on top of gonum/plot.
type Plotter struct{}

var _ chart.Renderer = (*Plotter)(nil)

// New creates a gonum/plot renderer.
func New() *Plotter {
	return &Plotter{}
}

// Render draws s and writes it to w in opts.Format.
func (r *Plotter) Render(ctx context.Context, s chart.Series, opts chart.Options, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := Build(s, opts)
	if err != nil {
		return fmt.Errorf("build %s chart: %w", s.Kind, err)
	}
	if err := Encode(p, opts, w); err != nil {
		return fmt.Errorf("encode %s chart: %w", s.Kind, err)
	}
	return nil
}

// Build lays out the plot for a series.
func Build(s chart.Series, opts chart.Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = s.Kind.Title()
	p.Title.TextStyle.Font.Size = vg.Points(titleSize)
	p.X.Label.TextStyle.Font.Size = vg.Points(labelSize)
	p.Y.Label.TextStyle.Font.Size = vg.Points(labelSize)

	var err error
	switch s.Kind {
	case chart.Bar:
		err = buildBar(p, s.Categories)
	case chart.Pie:
		err = buildPie(p, s.Categories)
	case chart.Line:
		err = buildLine(p, s.Months)
	case chart.Box:
		err = buildBox(p, s.Groups)
	case chart.Scatter:
		err = buildScatter(p, s.Points)
	case chart.Polar:
		err = buildPolar(p, s.Polar, aspect(opts))
	default:
		err = fmt.Errorf("%w: %q", chart.ErrUnknownKind, s.Kind)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Encode writes p at the requested size, format and resolution.
func Encode(p *plot.Plot, opts chart.Options, w io.Writer) error {
	width := vg.Length(opts.Width) * vg.Inch
	height := vg.Length(opts.Height) * vg.Inch

	switch opts.Format {
	case chart.PNG:
		c := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(opts.DPI))
		p.Draw(draw.New(c))
		_, err := vgimg.PngCanvas{Canvas: c}.WriteTo(w)
		return err
	case chart.PDF:
		c := vgpdf.New(width, height)
		p.Draw(draw.New(c))
		_, err := c.WriteTo(w)
		return err
	default:
		return fmt.Errorf("%w: %q", chart.ErrUnknownFormat, opts.Format)
	}
}

func aspect(opts chart.Options) float64 {
	if opts.Width <= 0 || opts.Height <= 0 {
		return chart.DefaultWidth / chart.DefaultHeight
	}
	return opts.Width / opts.Height
}

func addGrid(p *plot.Plot) {
	g := plotter.NewGrid()
	g.Vertical.Dashes = dashes
	g.Horizontal.Dashes = dashes
	p.Add(g)
}

func rotateXLabels(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// ensureSpan widens an axis whose data collapsed to a single value.
func ensureSpan(a *plot.Axis, pad float64) {
	if a.Max > a.Min {
		return
	}
	a.Min -= pad
	a.Max += pad
}

func valuePad(v float64) float64 {
	return math.Max(1, math.Abs(v)*0.1)
}

func buildBar(p *plot.Plot, points []chart.CategoryPoint) error {
	p.X.Label.Text = "Category"
	p.Y.Label.Text = amountAx
	addGrid(p)

	labels := make([]string, len(points))
	for i, pt := range points {
		b, err := plotter.NewBarChart(plotter.Values{pt.Value}, vg.Points(40))
		if err != nil {
			return err
		}
		b.XMin = float64(i)
		b.Color = plotutil.Color(i)
		b.LineStyle.Width = 0
		p.Add(b)
		labels[i] = pt.Label
	}
	p.NominalX(labels...)
	rotateXLabels(p)
	return nil
}

func buildBox(p *plot.Plot, groups []chart.BoxGroup) error {
	p.X.Label.Text = amountAx
	p.Y.Label.Text = "Category"
	addGrid(p)

	labels := make([]string, len(groups))
	for i, g := range groups {
		if len(g.Values) == 0 {
			return fmt.Errorf("%w: category %q has no amounts", chart.ErrDegenerateChart, g.Label)
		}
		b, err := plotter.NewBoxPlot(vg.Points(24), float64(i), plotter.Values(g.Values))
		if err != nil {
			return err
		}
		b.Horizontal = true
		b.FillColor = plotutil.Color(i)
		p.Add(b)
		labels[i] = g.Label
	}
	p.NominalY(labels...)
	rotateXLabels(p)
	return nil
}

func buildLine(p *plot.Plot, buckets []chart.MonthBucket) error {
	p.X.Label.Text = "Date"
	p.Y.Label.Text = amountAx
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 2006"}
	addGrid(p)

	for _, seg := range chart.Segments(buckets) {
		xys := make(plotter.XYs, len(seg))
		for i, b := range seg {
			xys[i] = plotter.XY{X: float64(b.Month.Unix()), Y: b.Total}
		}
		if len(xys) > 1 {
			l, err := plotter.NewLine(xys)
			if err != nil {
				return err
			}
			l.Color = cyan
			l.Width = vg.Points(2)
			p.Add(l)
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		s.Color = cyan
		s.Shape = draw.CircleGlyph{}
		s.Radius = vg.Points(4)
		p.Add(s)
	}
	ensureSpan(&p.X, 15*day)
	ensureSpan(&p.Y, valuePad(p.Y.Max))
	rotateXLabels(p)
	return nil
}

func buildScatter(p *plot.Plot, points []chart.Point) error {
	p.X.Label.Text = "Date"
	p.Y.Label.Text = amountAx
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	addGrid(p)

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: float64(pt.Date.Unix()), Y: pt.Amount}
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	s.Color = cyan
	s.Shape = draw.CircleGlyph{}
	s.Radius = vg.Points(5)
	p.Add(s)

	ensureSpan(&p.X, 15*day)
	ensureSpan(&p.Y, valuePad(p.Y.Max))
	rotateXLabels(p)
	return nil
}
