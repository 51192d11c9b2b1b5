package render

import (
	"fmt"
	"image/color"
	"sort"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"

	"tuningplot/exploration"
	"tuningplot/metrics"
)

// PerformanceEvolution writes one chart with the median performance evolution
// of every method, with a 95% confidence band when the style asks for it.
// Methods are drawn in name order.
func PerformanceEvolution(b *exploration.Benchmark, o Options) error {
	p := o.newPlot(o.Name+" - Performance Evolution", "Samples", o.unitLabel())

	drawn := 0
	for i, m := range byName(b.Methods) {
		if _, err := o.addMedian(p, m, o.Style.Color(i), m.Name); err != nil {
			skip(log.Fields{"method": m.Name}, err)
			continue
		}
		drawn++
	}
	if err := nothingDrawn(drawn, "performance_evolution", b.Name); err != nil {
		return err
	}
	return o.finishEvolution(p, o.path("performance_evolution"))
}

// PerformanceEvolutionSeparate writes one chart with one evolution line per run,
// colored by method.
func PerformanceEvolutionSeparate(b *exploration.Benchmark, o Options) error {
	p := o.newPlot(o.Name+" - Performance Evolution", "Samples", o.unitLabel())

	drawn := 0
	for i, m := range byName(b.Methods) {
		for _, run := range m.Runs {
			evolution, err := o.evolution(run)
			if err != nil {
				skip(log.Fields{"method": m.Name, "run": run.Name}, err)
				continue
			}
			l, err := o.line(series(evolution, 0), o.Style.Color(i), o.Style.LineWidth)
			if err != nil {
				return err
			}
			p.Add(l)
			p.Legend.Add(m.Name+"_"+runStem(run.Name), l)
			drawn++
		}
	}
	if err := nothingDrawn(drawn, "performance_evolution_separate", b.Name); err != nil {
		return err
	}
	return o.finishEvolution(p, o.path("performance_evolution_separate"))
}

// byName returns a copy of the methods sorted by name, which fixes their colors
// and legend order.
func byName(methods []*exploration.Method) []*exploration.Method {
	sorted := append([]*exploration.Method(nil), methods...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}

func (o Options) finishEvolution(p *plot.Plot, path string) error {
	o.scaleY(p)
	p.X.Tick.Marker = sampleTicks{}
	o.references(p, o.value)
	pad(p)
	return o.save(p, path)
}

// evolution returns the performance evolution of a run in the chart's unit,
// cut to the limit. Runs without a valid sample have none.
func (o Options) evolution(run *exploration.Run) ([]float64, error) {
	if _, _, err := metrics.FirstValid(run.Samples); err != nil {
		return nil, fmt.Errorf("run %s: %w", run.Name, err)
	}
	evolution, err := metrics.PerformanceEvolution(run.Samples)
	if err != nil {
		return nil, err
	}
	return o.truncate(o.values(evolution)), nil
}

// medianEvolution aggregates the evolutions of all runs of a method. Runs that
// have no samples are left out.
func (o Options) medianEvolution(m *exploration.Method) (metrics.Aggregate, int, error) {
	runs := make([][]float64, 0, len(m.Runs))
	for _, run := range m.Runs {
		evolution, err := o.evolution(run)
		if err != nil {
			skip(log.Fields{"method": m.Name, "run": run.Name}, err)
			continue
		}
		runs = append(runs, evolution)
	}
	if len(runs) == 0 {
		return metrics.Aggregate{}, 0, fmt.Errorf("%w: method %s has no usable run", exploration.ErrEmptyValidSet, m.Name)
	}
	aggregate, err := metrics.AcrossRuns(runs)
	return aggregate, len(runs), err
}

// addMedian draws the median evolution of a method and its confidence band.
func (o Options) addMedian(p *plot.Plot, m *exploration.Method, c color.Color, label string) (metrics.Aggregate, error) {
	aggregate, runs, err := o.medianEvolution(m)
	if err != nil {
		return aggregate, err
	}
	center := series(aggregate.Median, 0)

	if o.Style.Band && runs > 1 {
		band, err := o.band(center, aggregate.Lower(), aggregate.Upper(), c)
		if err != nil {
			return aggregate, err
		}
		p.Add(band)
	}

	l, err := o.line(center, c, o.Style.MeanWidth)
	if err != nil {
		return aggregate, err
	}
	p.Add(l)
	p.Legend.Add(label, l)
	return aggregate, nil
}
