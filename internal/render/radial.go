package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"expense-analyzer/internal/chart"
)

// pieExtent is the data range around the unit circle, leaving room for
// the labels outside the slices.
const pieExtent = 1.35

// pieChart draws wedges around the origin of a unit circle. Wedges run
// counter-clockwise from three o'clock.
type pieChart struct {
	labels []string
	shares []float64
	line   draw.LineStyle
}

var (
	_ plot.Plotter    = (*pieChart)(nil)
	_ plot.DataRanger = (*pieChart)(nil)
)

// Plot implements plot.Plotter.
func (pc *pieChart) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	center := vg.Point{X: trX(0), Y: trY(0)}
	r := trX(1) - trX(0)
	if ry := trY(1) - trY(0); ry < r {
		r = ry
	}

	sty := p.X.Tick.Label
	sty.Rotation = 0
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YCenter

	start := 0.0
	for i, share := range pc.shares {
		sweep := 2 * math.Pi * share
		if sweep > 0 {
			var path vg.Path
			path.Move(center)
			path.Arc(center, r, start, sweep)
			path.Close()
			c.SetColor(plotutil.Color(i))
			c.Fill(path)
			c.SetLineStyle(pc.line)
			c.Stroke(path)
		}

		mid := start + sweep/2
		c.FillText(sty, polarPoint(center, r*1.15, mid), pc.labels[i])
		c.FillText(sty, polarPoint(center, r*0.6, mid), fmt.Sprintf("%.1f%%", share*100))
		start += sweep
	}
}

// DataRange implements plot.DataRanger.
func (pc *pieChart) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -pieExtent, pieExtent, -pieExtent, pieExtent
}

func polarPoint(center vg.Point, r vg.Length, angle float64) vg.Point {
	return vg.Point{
		X: center.X + r*vg.Length(math.Cos(angle)),
		Y: center.Y + r*vg.Length(math.Sin(angle)),
	}
}

func buildPie(p *plot.Plot, points []chart.CategoryPoint) error {
	shares, err := chart.Shares(points)
	if err != nil {
		return err
	}
	labels := make([]string, len(points))
	for i, pt := range points {
		labels[i] = pt.Label
	}
	p.HideAxes()
	p.Add(&pieChart{
		labels: labels,
		shares: shares,
		line:   draw.LineStyle{Color: color.White, Width: vg.Points(1)},
	})
	return nil
}

// buildPolar draws the category polygon on a cartesian plane with rings
// and spokes standing in for the polar grid. ratio is the figure's width
// over its height and keeps the rings circular.
func buildPolar(p *plot.Plot, points []chart.PolarPoint, ratio float64) error {
	if len(points) < 2 {
		return fmt.Errorf("%w: polar chart needs at least 2 categories, got %d", chart.ErrDegenerateChart, len(points))
	}
	var outer float64
	for _, pt := range points {
		outer = math.Max(outer, pt.Radius)
	}
	if outer <= 0 {
		return fmt.Errorf("%w: every polar radius is zero or negative", chart.ErrDegenerateChart)
	}

	p.HideAxes()
	for k := 1; k <= 4; k++ {
		ring, err := plotter.NewLine(circle(outer*float64(k)/4, 72))
		if err != nil {
			return err
		}
		ring.Color = gridGray
		ring.Dashes = dashes
		p.Add(ring)
	}

	shape := make(plotter.XYs, len(points))
	tips := make(plotter.XYs, len(points))
	labels := make([]string, len(points))
	for i, pt := range points {
		cos, sin := math.Cos(pt.Angle), math.Sin(pt.Angle)
		spoke, err := plotter.NewLine(plotter.XYs{{}, {X: outer * cos, Y: outer * sin}})
		if err != nil {
			return err
		}
		spoke.Color = gridGray
		spoke.Dashes = dashes
		p.Add(spoke)

		r := math.Max(pt.Radius, 0)
		shape[i] = plotter.XY{X: r * cos, Y: r * sin}
		tips[i] = plotter.XY{X: 1.12 * outer * cos, Y: 1.12 * outer * sin}
		labels[i] = pt.Label
	}

	if len(shape) == 2 {
		// Two opposite vertices enclose nothing; draw the diameter.
		l, err := plotter.NewLine(shape)
		if err != nil {
			return err
		}
		l.Color = cyan
		l.Width = vg.Points(2)
		p.Add(l)
	} else {
		poly, err := plotter.NewPolygon(shape)
		if err != nil {
			return err
		}
		poly.Color = cyanFill
		poly.LineStyle.Color = cyan
		poly.LineStyle.Width = vg.Points(2)
		p.Add(poly)
	}

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: tips, Labels: labels})
	if err != nil {
		return err
	}
	for i := range names.TextStyle {
		names.TextStyle[i].XAlign = draw.XCenter
		names.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(names)

	extent := 1.3 * outer
	p.Y.Min, p.Y.Max = -extent, extent
	p.X.Min, p.X.Max = -extent*ratio, extent*ratio
	return nil
}

func circle(r float64, n int) plotter.XYs {
	xys := make(plotter.XYs, n+1)
	for i := range xys {
		a := 2 * math.Pi * float64(i) / float64(n)
		xys[i] = plotter.XY{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	return xys
}
