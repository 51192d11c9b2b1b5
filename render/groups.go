package render

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"

	"tuningplot/exploration"
	"tuningplot/metrics"
)

// Charts of the tuning groups inside single runs.

// facetColumns is the number of group panels per row of a facet chart.
const facetColumns = 5

// SpeedupTuning writes one file per method with a panel per run. Every tuning
// group of a run is a line of the speedup its tuning reached over its first
// valid sample. Groups without a valid sample have no line.
func SpeedupTuning(b *exploration.Benchmark, o Options) error {
	drawn := 0
	for _, m := range b.Methods {
		var panels []*plot.Plot
		for _, run := range m.Runs {
			panel, err := o.speedupTuningPanel(run)
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
		if err := o.saveTiles(panels, len(panels), o.path(m.Name, "speedup_tuning")); err != nil {
			return err
		}
		drawn++
	}
	return nothingDrawn(drawn, "speedup_tuning", b.Name)
}

func (o Options) speedupTuningPanel(run *exploration.Run) (*plot.Plot, error) {
	groups, err := exploration.PartitionRun(run)
	if err != nil {
		return nil, err
	}

	p := o.newPlot(run.Name, "Tuning Samples", "Speedup over first valid sample")
	lines := 0
	for i, g := range groups {
		speedups, first, err := metrics.GroupSpeedupEvolution(g, o.Limit)
		if err != nil {
			continue
		}
		l, err := o.line(series(speedups, first), o.Style.Color(i), o.Style.LineWidth)
		if err != nil {
			return nil, err
		}
		p.Add(l)
		lines++
	}
	if lines == 0 {
		return nil, fmt.Errorf("%w: run %s has no valid tuning group", exploration.ErrEmptyValidSet, run.Name)
	}

	o.scaleY(p)
	p.X.Tick.Marker = sampleTicks{}
	return p, nil
}

// Facet writes one file per run with a panel per tuning group showing the
// group's performance evolution. The panels of a file share their Y range.
func Facet(b *exploration.Benchmark, o Options) error {
	drawn := 0
	for _, m := range b.Methods {
		for _, run := range m.Runs {
			panels, err := o.facetPanels(run)
			if err != nil {
				skip(log.Fields{"method": m.Name, "run": run.Name}, err)
				continue
			}
			if err := o.saveTiles(panels, facetColumns, o.path(m.Name, runStem(run.Name), "facet")); err != nil {
				return err
			}
			drawn++
		}
	}
	return nothingDrawn(drawn, "facet", b.Name)
}

func (o Options) facetPanels(run *exploration.Run) ([]*plot.Plot, error) {
	groups, err := exploration.PartitionRun(run)
	if err != nil {
		return nil, err
	}

	var panels []*plot.Plot
	for i, g := range groups {
		samples := o.window(g.Samples)
		_, first, err := metrics.FirstValid(samples)
		if err != nil {
			continue
		}
		evolution, err := metrics.PerformanceEvolution(samples[first:])
		if err != nil {
			return nil, err
		}

		p := o.newPlot(g.Rewrite, "Samples", o.unitLabel())
		l, err := o.line(series(o.values(evolution), first), o.Style.Color(i), o.Style.LineWidth)
		if err != nil {
			return nil, err
		}
		p.Add(l)
		p.X.Tick.Marker = sampleTicks{}
		panels = append(panels, p)
	}
	if len(panels) == 0 {
		return nil, fmt.Errorf("%w: run %s has no valid tuning group", exploration.ErrEmptyValidSet, run.Name)
	}

	shareY(panels)
	for _, p := range panels {
		o.scaleY(p)
	}
	return panels, nil
}
