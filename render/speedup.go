package render

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"tuningplot/exploration"
	"tuningplot/metrics"
)

// Speedup writes a bar chart with the median speedup of every method over its
// runs, with one standard deviation error bars. Without a default runtime the
// baseline of each run is its first valid sample.
func Speedup(b *exploration.Benchmark, o Options) error {
	var names []string
	var medians plotter.Values
	var spread plotter.YErrors

	for _, m := range b.Methods {
		speedups := make([]float64, 0, len(m.Runs))
		for _, run := range m.Runs {
			s, err := metrics.Speedup(run.Samples, o.Default, o.Limit)
			if err != nil {
				skip(log.Fields{"method": m.Name, "run": run.Name}, err)
				continue
			}
			speedups = append(speedups, o.transform(s))
		}
		if len(speedups) == 0 {
			skip(log.Fields{"method": m.Name}, exploration.ErrEmptyValidSet)
			continue
		}

		median, _ := metrics.Median(speedups)
		deviation := 0.0
		if len(speedups) > 1 {
			deviation = stat.StdDev(speedups, nil)
		}
		names = append(names, m.Name)
		medians = append(medians, median)
		spread = append(spread, struct{ Low, High float64 }{deviation, deviation})
	}
	if err := nothingDrawn(len(names), "speedup", b.Name); err != nil {
		return err
	}

	p := o.newPlot(o.Name+" - Speedup", "Method", o.logLabel("Speedup over Baseline"))

	bars, err := plotter.NewBarChart(medians, vg.Points(20))
	if err != nil {
		return err
	}
	bars.Color = o.Style.Color(0)
	bars.LineStyle.Width = 0

	points := make(plotter.XYs, len(medians))
	for i, v := range medians {
		points[i] = plotter.XY{X: float64(i), Y: v}
	}
	errorBars, err := plotter.NewYErrorBars(struct {
		plotter.XYs
		plotter.YErrors
	}{points, spread})
	if err != nil {
		return err
	}
	errorBars.LineStyle.Width = vg.Points(o.Style.LineWidth)

	p.Add(bars, errorBars)
	p.NominalX(names...)
	p.Y.Tick.Marker = decimalTicks{}
	return o.save(p, o.path("speedup"))
}

//=============================================================================
// Violin
//=============================================================================

// kdePoints is the resolution of a violin outline.
const kdePoints = 100

// Violin writes the distribution of default / runtime over all valid samples,
// one violin per run overlapping at the position of its method.
func Violin(b *exploration.Benchmark, o Options) error {
	if o.Default <= 0 {
		return fmt.Errorf("%w: violin needs a default runtime", exploration.ErrInvalidInput)
	}

	p := o.newPlot("Speedup Violin Plot", "Method", o.logLabel("Speedup over Baseline"))

	var names []string
	for _, m := range b.Methods {
		position := float64(len(names))
		c := o.Style.Color(len(names))

		outlines := 0
		for _, run := range m.Runs {
			runtimes := metrics.ValidRuntimes(run.Samples)
			if len(runtimes) == 0 {
				skip(log.Fields{"method": m.Name, "run": run.Name}, exploration.ErrEmptyValidSet)
				continue
			}
			speedups := make([]float64, len(runtimes))
			for i, r := range runtimes {
				speedups[i] = o.transform(o.Default / r)
			}

			outline, err := plotter.NewPolygon(violin(speedups, position, 0.45))
			if err != nil {
				return err
			}
			outline.Color = translucent(c, o.Style.BandAlpha)
			outline.LineStyle.Color = c
			outline.LineStyle.Width = vg.Points(o.Style.LineWidth)
			p.Add(outline)
			outlines++
		}
		if outlines == 0 {
			continue
		}
		names = append(names, m.Name)
	}
	if err := nothingDrawn(len(names), "violin", b.Name); err != nil {
		return err
	}

	p.NominalX(names...)
	p.Y.Tick.Marker = decimalTicks{}
	pad(p)
	return o.save(p, o.path("violin", "speedup"))
}

// violin returns the outline of a gaussian kernel density estimate of values,
// mirrored around x = position and scaled to the given half width.
func violin(values []float64, position, halfWidth float64) plotter.XYs {
	bandwidth := silverman(values)
	low := floats.Min(values) - 3*bandwidth
	high := floats.Max(values) + 3*bandwidth

	ys := make([]float64, kdePoints)
	floats.Span(ys, low, high)

	kernels := make([]distuv.Normal, len(values))
	for i, v := range values {
		kernels[i] = distuv.Normal{Mu: v, Sigma: bandwidth}
	}
	density := make([]float64, kdePoints)
	for i, y := range ys {
		for _, k := range kernels {
			density[i] += k.Prob(y)
		}
		density[i] /= float64(len(kernels))
	}
	floats.Scale(halfWidth/floats.Max(density), density)

	outline := make(plotter.XYs, 0, 2*kdePoints)
	for i, y := range ys {
		outline = append(outline, plotter.XY{X: position + density[i], Y: y})
	}
	for i := kdePoints - 1; i >= 0; i-- {
		outline = append(outline, plotter.XY{X: position - density[i], Y: ys[i]})
	}
	return outline
}

// silverman returns the rule-of-thumb bandwidth of values. Degenerate inputs
// get a bandwidth proportional to their magnitude.
func silverman(values []float64) float64 {
	n := float64(len(values))
	if len(values) > 1 {
		if deviation := stat.StdDev(values, nil); deviation > 0 {
			return 1.06 * deviation * math.Pow(n, -0.2)
		}
	}
	if mean := math.Abs(stat.Mean(values, nil)); mean > 0 {
		return mean * 0.01
	}
	return 0.01
}
