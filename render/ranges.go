package render

import (
	"fmt"
	"image/color"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"tuningplot/exploration"
	"tuningplot/metrics"
)

// TuningRanges writes one file per method with a panel per run. Each tuning
// group is a floating bar from its best runtime to its first runtime; a line
// follows the best runtime found so far.
func TuningRanges(b *exploration.Benchmark, o Options) error {
	drawn := 0
	for _, m := range b.Methods {
		var panels []*plot.Plot
		for _, run := range m.Runs {
			panel, err := o.rangesPanel(run)
			if err != nil {
				skip(log.Fields{"method": m.Name, "run": run.Name}, err)
				continue
			}
			panels = append(panels, panel)
		}
		if len(panels) == 0 {
			skip(log.Fields{"method": m.Name}, exploration.ErrEmptyValidSet)
			continue
		}

		parts := []string{m.Name, "tuning_ranges"}
		if o.IncludeInvalid {
			parts = append(parts, "invalid")
		}
		if err := o.saveTiles(panels, len(panels), o.path(parts...)); err != nil {
			return err
		}
		drawn++
	}
	return nothingDrawn(drawn, "tuning_ranges", b.Name)
}

// bounds returns the bar of one tuning group in chart units. A group starting
// with an invalid sample reaches up to its worst valid runtime. Groups without
// a valid sample sit just below the invalid ceiling and are only drawn on
// request.
func (o Options) bounds(r metrics.Range) (low, high float64, ok bool) {
	ceiling := o.Style.InvalidCeiling
	switch {
	case r.Valid && r.StartValid:
		low, high = o.value(r.Minimum), o.value(r.Start)
	case r.Valid:
		low, high = o.value(r.Minimum), o.value(r.Worst)
	case o.IncludeInvalid:
		low, high = ceiling*0.9, ceiling
	default:
		return 0, 0, false
	}

	low, high = math.Min(low, high), math.Max(low, high)
	low, high = o.transform(low), o.transform(high)
	// equal bounds still get a visible bar
	if low == high {
		high += o.transform(1.1)
	}
	return low, high, true
}

// bestGroups is the number of tuning groups marked in a tuning-ranges panel.
const bestGroups = 3

// rangesTitle names a run with the speedup its rewrites accumulated and the
// median speedup of its tuning groups.
func (o Options) rangesTitle(name string, groups []exploration.TuningGroup) string {
	cumulative, err := metrics.CumulativeSpeedup(groups, o.Limit)
	if err != nil {
		return name
	}
	title := fmt.Sprintf("%s\ncumulative speedup %.2fx", name, cumulative)
	if median, err := metrics.Median(metrics.GroupSpeedups(groups, o.Limit)); err == nil {
		title += fmt.Sprintf(", median group speedup %.2fx", median)
	}
	return title
}

// frontier returns the best bound reached up to each bar; higher is better
// for GFLOPS.
func (o Options) frontier(lows []float64) []float64 {
	frontier := make([]float64, len(lows))
	for i, low := range lows {
		frontier[i] = low
		if i == 0 {
			continue
		}
		if o.Unit == UnitGFLOPS {
			frontier[i] = math.Max(frontier[i-1], low)
		} else {
			frontier[i] = math.Min(frontier[i-1], low)
		}
	}
	return frontier
}

func (o Options) rangesPanel(run *exploration.Run) (*plot.Plot, error) {
	groups, err := exploration.PartitionRun(run)
	if err != nil {
		return nil, err
	}

	best := make(map[int]bool, bestGroups)
	for _, g := range metrics.BestGroups(groups, bestGroups) {
		best[g.Start] = true
	}

	var lows, heights plotter.Values
	var highlights plotter.XYs
	for i, r := range metrics.Ranges(groups) {
		low, high, ok := o.bounds(r)
		if !ok {
			continue
		}
		if best[groups[i].Start] {
			highlights = append(highlights, plotter.XY{X: float64(len(lows)), Y: low})
		}
		lows = append(lows, low)
		heights = append(heights, high-low)
	}
	if len(lows) == 0 {
		return nil, fmt.Errorf("%w: run %s has no tuning group to draw", exploration.ErrEmptyValidSet, run.Name)
	}

	p := o.newPlot(o.rangesTitle(run.Name, groups), "Rewrites", o.logLabel("Performance Range "+o.unitLabel()))

	width := vg.Length(o.Style.Width) * vg.Inch * 0.8 / vg.Length(len(lows))
	floor, err := plotter.NewBarChart(lows, width)
	if err != nil {
		return nil, err
	}
	transparent(floor)
	bars, err := plotter.NewBarChart(heights, width)
	if err != nil {
		return nil, err
	}
	bars.StackOn(floor)
	bars.Color = o.Style.Color(0)
	bars.LineStyle.Width = 0

	l, err := o.line(series(o.frontier(lows), 0), o.Style.Color(3), 2*o.Style.LineWidth)
	if err != nil {
		return nil, err
	}

	p.Add(floor, bars, l)
	p.Legend.Add(runStem(run.Name), l)

	if len(highlights) > 0 {
		marks, err := o.scatter(highlights, color.Black)
		if err != nil {
			return nil, err
		}
		marks.GlyphStyle.Shape = draw.PyramidGlyph{}
		marks.GlyphStyle.Radius = vg.Points(4 * o.Style.PointRadius)
		p.Add(marks)
		p.Legend.Add(fmt.Sprintf("best %d rewrites", len(highlights)), marks)
	}
	p.X.Tick.Marker = sampleTicks{}
	p.Y.Tick.Marker = decimalTicks{}
	o.references(p, func(v float64) float64 { return o.transform(o.value(v)) })
	return p, nil
}
