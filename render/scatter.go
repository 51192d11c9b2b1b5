package render

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"tuningplot/exploration"
	"tuningplot/metrics"
)

// Scatter writes one chart per method with every sample of every run, runs
// laid out one after another.
func Scatter(b *exploration.Benchmark, o Options) error {
	drawn := 0
	for _, m := range b.Methods {
		p := o.newPlot("Scatter Plot - "+m.Name, "Samples", o.unitLabel())

		var ys []float64
		for _, run := range m.Runs {
			values, err := o.displayed(run)
			if err != nil {
				skip(log.Fields{"method": m.Name, "run": run.Name}, err)
				continue
			}
			ys = append(ys, values...)
		}
		if len(ys) == 0 {
			skip(log.Fields{"method": m.Name}, exploration.ErrEmptyValidSet)
			continue
		}

		points, err := o.scatter(series(ys, 0), color.Black)
		if err != nil {
			return err
		}
		p.Add(points)
		o.scaleY(p)
		p.X.Tick.Marker = sampleTicks{}

		if err := o.save(p, o.path(m.Name, "scatter")); err != nil {
			return err
		}
		drawn++
	}
	return nothingDrawn(drawn, "scatter", b.Name)
}

// ScatterPE writes one chart per method overlaying the samples of each run
// with that run's performance evolution.
func ScatterPE(b *exploration.Benchmark, o Options) error {
	drawn := 0
	for _, m := range b.Methods {
		p := o.newPlot(o.Name+" - Scatter", "Samples", o.unitLabel())

		lines := 0
		for i, run := range m.Runs {
			fields := log.Fields{"method": m.Name, "run": run.Name}
			values, err := o.displayed(run)
			if err != nil {
				skip(fields, err)
				continue
			}
			c := o.Style.Color(i)

			points, err := o.scatter(series(values, 0), c)
			if err != nil {
				return err
			}

			// the evolution starts at the first valid sample
			_, first, _ := metrics.FirstValid(run.Samples)
			evolution, err := metrics.PerformanceEvolution(run.Samples[first:])
			if err != nil {
				skip(fields, err)
				continue
			}
			l, err := o.line(series(o.values(evolution), first), c, o.Style.LineWidth)
			if err != nil {
				return err
			}

			p.Add(points, l)
			p.Legend.Add(runStem(run.Name), l)
			lines++
		}
		if lines == 0 {
			skip(log.Fields{"method": m.Name}, exploration.ErrEmptyValidSet)
			continue
		}

		o.scaleY(p)
		p.X.Tick.Marker = sampleTicks{}
		if err := o.save(p, o.path(m.Name, "scatter_pe")); err != nil {
			return err
		}
		drawn++
	}
	return nothingDrawn(drawn, "scatter_pe", b.Name)
}

// displayed returns the runtimes of a run in the chart's unit. Invalid samples
// are drawn 1% above the slowest valid sample of the run.
func (o Options) displayed(run *exploration.Run) ([]float64, error) {
	maximum, _, err := metrics.Maximum(run.Samples)
	if err != nil {
		return nil, err
	}
	values := make([]float64, run.Len())
	for i, s := range run.Samples {
		runtime := s.Runtime
		if !s.Valid {
			runtime = maximum * 1.01
		}
		values[i] = o.value(runtime)
	}
	return values, nil
}

func runStem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// skip reports a unit of work that could not be drawn.
func skip(fields log.Fields, err error) {
	log.WithFields(fields).WithError(err).Warn("skipped")
}

// nothingDrawn fails a renderer that produced no chart at all.
func nothingDrawn(drawn int, chart, benchmark string) error {
	if drawn > 0 {
		return nil
	}
	return fmt.Errorf("%w: no %s chart could be drawn for %s", exploration.ErrEmptyValidSet, chart, benchmark)
}
