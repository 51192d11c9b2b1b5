package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

//=============================================================================
// Plot assembly
//=============================================================================

// newPlot creates a plot with title, labels, padding and grid set.
func (o Options) newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()

	// new lines pad the labels away from the axes
	p.Title.Text = title + "\n"
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	p.Title.Padding = vg.Points(10)
	p.Title.TextStyle.Font.Size = vg.Points(o.Style.FontSize)
	p.X.Label.Padding = vg.Points(5)
	p.Y.Label.Padding = vg.Points(5)

	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

// scaleY applies the log toggle to the Y axis. Only charts whose values are
// strictly positive may use it.
func (o Options) scaleY(p *plot.Plot) {
	if o.Log {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		// a flat range would be widened additively below zero
		if p.Y.Min == p.Y.Max && p.Y.Min > 0 {
			p.Y.Min /= 2
			p.Y.Max *= 2
		}
		return
	}
	p.Y.Tick.Marker = decimalTicks{}
}

// transform is the log toggle for charts with bars, which cannot use a log axis.
func (o Options) transform(v float64) float64 {
	if o.Log {
		return math.Log10(v)
	}
	return v
}

func (o Options) logLabel(label string) string {
	if o.Log {
		return label + " (log10)"
	}
	return label
}

// pad widens the axis ranges by 2% on each side.
func pad(p *plot.Plot) {
	xPadding := (p.X.Max - p.X.Min) * 0.02
	yPadding := (p.Y.Max - p.Y.Min) * 0.02
	p.X.Min -= xPadding
	p.X.Max += xPadding
	if _, ok := p.Y.Scale.(plot.LogScale); ok {
		return
	}
	p.Y.Min -= yPadding
	p.Y.Max += yPadding
}

// references draws expert and default values as horizontal lines. 'convert'
// maps a runtime to the chart's Y value.
func (o Options) references(p *plot.Plot, convert func(float64) float64) {
	lines := []struct {
		name   string
		value  float64
		dashes []vg.Length
	}{
		{"Expert", o.Expert, nil},
		{"Default", o.Default, []vg.Length{vg.Points(4), vg.Points(2)}},
	}
	for _, l := range lines {
		if l.value <= 0 {
			continue
		}
		y := convert(l.value)

		hline := plotter.NewFunction(func(float64) float64 { return y })
		hline.LineStyle.Color = translucent(color.Black, 0.5)
		hline.LineStyle.Width = vg.Points(o.Style.LineWidth)
		hline.LineStyle.Dashes = l.dashes
		p.Add(hline)
		p.Legend.Add(l.name, hline)

		// functions have no data range of their own
		p.Y.Min = math.Min(p.Y.Min, y)
		p.Y.Max = math.Max(p.Y.Max, y)
	}
}

// shareY gives every plot the union of their Y ranges.
func shareY(plots []*plot.Plot) {
	low, high := math.Inf(1), math.Inf(-1)
	for _, p := range plots {
		low = math.Min(low, p.Y.Min)
		high = math.Max(high, p.Y.Max)
	}
	for _, p := range plots {
		p.Y.Min, p.Y.Max = low, high
	}
}

//=============================================================================
// Plotters
//=============================================================================

// series returns the points (i, ys[i]) starting at x = offset.
func series(ys []float64, offset int) plotter.XYs {
	pts := make(plotter.XYs, len(ys))
	for i, y := range ys {
		pts[i].X = float64(i + offset)
		pts[i].Y = y
	}
	return pts
}

func (o Options) line(pts plotter.XYs, c color.Color, width float64) (*plotter.Line, error) {
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Width = vg.Points(width)
	l.LineStyle.Color = c
	return l, nil
}

func (o Options) scatter(pts plotter.XYs, c color.Color) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(o.Style.PointRadius)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	return s, nil
}

// band returns the filled area between lower and upper around the center
// line. On a log axis non-positive lower bounds are lifted to the center.
func (o Options) band(center plotter.XYs, lower, upper []float64, c color.Color) (*plotter.Polygon, error) {
	pts := make(plotter.XYs, 0, 2*len(center))
	for i := range center {
		pts = append(pts, plotter.XY{X: center[i].X, Y: upper[i]})
	}
	for i := len(center) - 1; i >= 0; i-- {
		low := lower[i]
		if o.Log && low <= 0 {
			low = center[i].Y
		}
		pts = append(pts, plotter.XY{X: center[i].X, Y: low})
	}
	poly, err := plotter.NewPolygon(pts)
	if err != nil {
		return nil, err
	}
	poly.Color = translucent(c, o.Style.BandAlpha)
	poly.LineStyle.Width = 0
	return poly, nil
}

// transparent makes a bar chart invisible, used as the floor of floating bars.
func transparent(b *plotter.BarChart) {
	b.Color = color.Transparent
	b.LineStyle.Width = 0
	b.LineStyle.Color = color.Transparent
}

//=============================================================================
// Saving
//=============================================================================

func (o Options) save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	width := vg.Length(o.Style.Width) * vg.Inch
	height := vg.Length(o.Style.Height) * vg.Inch
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	log.WithField("file", path).Info("wrote chart")
	return nil
}

// saveTiles draws the plots into one file, row by row with 'cols' plots per
// row.
func (o Options) saveTiles(plots []*plot.Plot, cols int, path string) error {
	if len(plots) == 0 {
		return fmt.Errorf("saving %s: no plots", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	cols = min(max(cols, 1), len(plots))
	rows := (len(plots) + cols - 1) / cols
	grid := make([][]*plot.Plot, rows)
	for r := range grid {
		// cells past the last plot stay nil and are left blank
		grid[r] = make([]*plot.Plot, cols)
		copy(grid[r], plots[r*cols:])
	}

	width := vg.Length(o.Style.Width) * vg.Inch * vg.Length(cols)
	height := vg.Length(o.Style.Height) * vg.Inch * vg.Length(rows)
	canvas, err := draw.NewFormattedCanvas(width, height, o.Format)
	if err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(grid, tiles, draw.New(canvas))
	for i, p := range plots {
		p.Draw(canvases[i/cols][i%cols])
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := canvas.WriteTo(file); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	log.WithField("file", path).Info("wrote chart")
	return nil
}
