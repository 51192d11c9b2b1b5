package render

import (
	"fmt"
	"image/color"
	"sort"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"tuningplot/exploration"
	"tuningplot/metrics"
)

// Charts over a whole experiment: one bar, line or panel per benchmark.

// AdjustedSuffix marks the budget-adjusted twin of a method.
const AdjustedSuffix = "_adjusted"

//=============================================================================
// Speedup stacking
//=============================================================================

var stackColors = map[string]color.RGBA{
	"tuning":    {R: 128, G: 128, B: 128, A: 255}, // grey
	"lowest":    {R: 90, G: 155, B: 212, A: 255},  // muted blue
	"heuristic": {R: 31, G: 119, B: 180, A: 255},  // blue
	"tuned":     {R: 255, G: 127, B: 14, A: 255},  // orange
}

// SpeedupStacking writes, for every run of 'method' in every benchmark, a
// tuning-only bar next to a stacked bar of rewriting and tuning speedups.
// A second chart shows the tuning-only speedup per benchmark over all methods.
func SpeedupStacking(e *exploration.Experiment, method string, o Options) error {
	var labels []string
	var tuningOnly, lowest, heuristic, tuned plotter.Values

	for _, b := range e.Benchmarks {
		m := b.Method(method)
		if m == nil {
			skip(log.Fields{"benchmark": b.Name}, fmt.Errorf("%w: no method %q", exploration.ErrInvalidInput, method))
			continue
		}
		for _, run := range m.Runs {
			stack, err := runStack(run)
			if err != nil {
				skip(log.Fields{"benchmark": b.Name, "run": run.Name}, err)
				continue
			}

			// each segment starts where the previous one ends
			low := o.transform(stack.RewritingLowest)
			heuristicTop := max(o.transform(stack.RewritingHeuristic), low)
			tunedTop := max(o.transform(stack.RewritingAndTuning), heuristicTop)

			labels = append(labels, b.Name)
			tuningOnly = append(tuningOnly, o.transform(stack.TuningOnly))
			lowest = append(lowest, low)
			heuristic = append(heuristic, heuristicTop-low)
			tuned = append(tuned, tunedTop-heuristicTop)
		}
	}
	if err := nothingDrawn(len(labels), "speedup_stacking", e.Name); err != nil {
		return err
	}

	p := o.newPlot(o.Name+" - Speedup Stacking", "Benchmark", o.logLabel("Speedup over Baseline"))

	width := vg.Points(12)
	bars := make(map[string]*plotter.BarChart, len(stackColors))
	for key, values := range map[string]plotter.Values{
		"tuning": tuningOnly, "lowest": lowest, "heuristic": heuristic, "tuned": tuned,
	} {
		b, err := plotter.NewBarChart(values, width)
		if err != nil {
			return err
		}
		b.Color = stackColors[key]
		b.LineStyle.Width = 0
		bars[key] = b
	}
	bars["tuning"].Offset = -width / 2
	bars["lowest"].Offset = width / 2
	bars["heuristic"].StackOn(bars["lowest"])
	bars["tuned"].StackOn(bars["heuristic"])

	p.Add(bars["tuning"], bars["lowest"], bars["heuristic"], bars["tuned"])
	p.Legend.Add("Tuning Only", bars["tuning"])
	p.Legend.Add("Rewriting Only (Lowest)", bars["lowest"])
	p.Legend.Add("Rewriting Only (Heuristic)", bars["heuristic"])
	p.Legend.Add("Rewriting & Tuning", bars["tuned"])
	p.NominalX(labels...)
	p.Y.Tick.Marker = decimalTicks{}

	if err := o.save(p, o.path("speedup_stacking")); err != nil {
		return err
	}
	return speedupTuningOnly(e, o)
}

func runStack(run *exploration.Run) (metrics.Stack, error) {
	groups, err := exploration.PartitionRun(run)
	if err != nil {
		return metrics.Stack{}, err
	}
	return metrics.Stacking(groups)
}

// speedupTuningOnly writes the mean tuning-only speedup of every benchmark.
func speedupTuningOnly(e *exploration.Experiment, o Options) error {
	var labels []string
	var means plotter.Values
	for _, b := range e.Benchmarks {
		var speedups []float64
		for _, m := range b.Methods {
			for _, run := range m.Runs {
				stack, err := runStack(run)
				if err != nil {
					continue
				}
				speedups = append(speedups, o.transform(stack.TuningOnly))
			}
		}
		if len(speedups) == 0 {
			skip(log.Fields{"benchmark": b.Name}, exploration.ErrEmptyValidSet)
			continue
		}
		labels = append(labels, b.Name)
		means = append(means, stat.Mean(speedups, nil))
	}
	if err := nothingDrawn(len(labels), "speedup_tuning_only", e.Name); err != nil {
		return err
	}

	p := o.newPlot(o.Name+" - Parameter Tuning", "Benchmark", o.logLabel("Speedup over Baseline achieved by tuning only"))
	bars, err := plotter.NewBarChart(means, vg.Points(20))
	if err != nil {
		return err
	}
	bars.Color = o.Style.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.Legend.Add("Speedup Parameter Tuning", bars)
	p.NominalX(labels...)
	p.Y.Tick.Marker = decimalTicks{}
	return o.save(p, o.path("speedup_tuning_only"))
}

//=============================================================================
// Tuning budget
//=============================================================================

type budgetFunc func(groups []exploration.TuningGroup, limits []int) ([]metrics.BudgetPoint, error)

// TuningBudget writes two charts with one curve per benchmark over all its
// tuning groups: the mean share of the achievable group speedup reached after
// each number of samples, and the mean absolute speedup.
func TuningBudget(e *exploration.Experiment, o Options) error {
	if err := o.budgetChart(e, metrics.RelativeBudget, "Mean of relative Speedup of all Tuning runs",
		"Percentage of Total Speedup", 0.95, "tuning_budget"); err != nil {
		return err
	}
	return o.budgetChart(e, metrics.TotalBudget, "Mean Speedup of all Tuning runs",
		"Speedup over first valid sample", 0, "tuning_budget_total")
}

// budgetChart draws one curve per benchmark. A positive 'target' adds a
// horizontal line at that value.
func (o Options) budgetChart(e *exploration.Experiment, compute budgetFunc, title, yLabel string, target float64, kind string) error {
	p := o.newPlot(title, "Tuning Samples", yLabel)

	longest := 0
	drawn := 0
	for i, b := range e.Benchmarks {
		groups, err := benchmarkGroups(b)
		if err != nil {
			skip(log.Fields{"benchmark": b.Name}, err)
			continue
		}

		n := o.Limit
		if n <= 0 {
			for _, g := range groups {
				n = max(n, g.Len())
			}
		}
		points, err := compute(groups, metrics.Limits(n))
		if err != nil {
			skip(log.Fields{"benchmark": b.Name}, err)
			continue
		}

		center := make(plotter.XYs, len(points))
		lower := make([]float64, len(points))
		upper := make([]float64, len(points))
		for j, pt := range points {
			center[j] = plotter.XY{X: float64(pt.Limit), Y: pt.Mean}
			lower[j] = pt.Mean - pt.HalfWidth
			upper[j] = pt.Mean + pt.HalfWidth
		}

		c := o.Style.Color(i)
		if o.Style.Band {
			band, err := o.band(center, lower, upper, c)
			if err != nil {
				return err
			}
			p.Add(band)
		}
		l, err := o.line(center, c, o.Style.MeanWidth)
		if err != nil {
			return err
		}
		p.Add(l)
		p.Legend.Add(b.Name, l)

		longest = max(longest, n)
		drawn++
	}
	if err := nothingDrawn(drawn, kind, e.Name); err != nil {
		return err
	}

	if target > 0 {
		hline := plotter.NewFunction(func(float64) float64 { return target })
		hline.LineStyle.Color = color.Black
		hline.LineStyle.Width = vg.Points(2 * o.Style.LineWidth)
		p.Add(hline)
		p.Legend.Add(fmt.Sprintf("%.0f%%", target*100), hline)
		p.Y.Max = max(p.Y.Max, target)
	}

	p.X.Tick.Marker = limitTicks{Limits: metrics.Limits(longest)}
	p.Y.Tick.Marker = decimalTicks{}
	pad(p)
	return o.save(p, o.path(kind))
}

// benchmarkGroups collects the tuning groups of every run of every method.
func benchmarkGroups(b *exploration.Benchmark) ([]exploration.TuningGroup, error) {
	var groups []exploration.TuningGroup
	for _, m := range b.Methods {
		for _, run := range m.Runs {
			g, err := exploration.PartitionRun(run)
			if err != nil {
				skip(log.Fields{"benchmark": b.Name, "method": m.Name, "run": run.Name}, err)
				continue
			}
			groups = append(groups, g...)
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: benchmark %s has no tuning groups", exploration.ErrEmptyValidSet, b.Name)
	}
	return groups, nil
}

//=============================================================================
// Performance evolution per benchmark
//=============================================================================

// groupedColumns is the number of benchmark panels per row.
const groupedColumns = 3

// PerformanceEvolutionGrouped writes one file with a panel per benchmark, in
// name order. Each panel holds the median evolution of every method with its
// end marked.
func PerformanceEvolutionGrouped(e *exploration.Experiment, o Options) error {
	benchmarks := append([]*exploration.Benchmark(nil), e.Benchmarks...)
	sort.SliceStable(benchmarks, func(i, j int) bool { return benchmarks[i].Name < benchmarks[j].Name })

	var panels []*plot.Plot
	for _, b := range benchmarks {
		p := o.newPlot(b.Name, "Samples", o.unitLabel())
		lines := 0
		for i, m := range byName(b.Methods) {
			c := o.Style.Color(i)
			aggregate, err := o.addMedian(p, m, c, m.Name)
			if err != nil {
				skip(log.Fields{"benchmark": b.Name, "method": m.Name}, err)
				continue
			}
			if err := o.lastPoint(p, aggregate.Median, c); err != nil {
				return err
			}
			lines++
		}
		if lines == 0 {
			skip(log.Fields{"benchmark": b.Name}, exploration.ErrEmptyValidSet)
			continue
		}
		o.scaleY(p)
		p.X.Tick.Marker = sampleTicks{}
		o.references(p, o.value)
		panels = append(panels, p)
	}
	if err := nothingDrawn(len(panels), "performance_evolution_grouped", e.Name); err != nil {
		return err
	}
	return o.saveTiles(panels, groupedColumns, o.path("performance_evolution_grouped"))
}

// lastPoint marks the end of a median evolution with a cross.
func (o Options) lastPoint(p *plot.Plot, median []float64, c color.Color) error {
	if len(median) == 0 {
		return nil
	}
	end := plotter.XYs{{X: float64(len(median) - 1), Y: median[len(median)-1]}}
	mark, err := o.scatter(end, c)
	if err != nil {
		return err
	}
	mark.GlyphStyle.Shape = draw.CrossGlyph{}
	mark.GlyphStyle.Radius = vg.Points(4 * o.Style.PointRadius)
	p.Add(mark)
	return nil
}

//=============================================================================
// Performance evolution under a budget
//=============================================================================

// PerformanceEvolutionBudget writes one file per benchmark with a panel per
// method M that has a twin M_adjusted. Each panel compares the two median
// evolutions and annotates which share of the speedup the adjusted budget
// reached with which share of the samples.
func PerformanceEvolutionBudget(e *exploration.Experiment, o Options) error {
	drawn := 0
	for _, b := range e.Benchmarks {
		var panels []*plot.Plot
		for _, m := range b.Methods {
			adjusted := b.Method(m.Name + AdjustedSuffix)
			if adjusted == nil {
				continue
			}
			panel, err := o.budgetPanel(m, adjusted)
			if err != nil {
				skip(log.Fields{"benchmark": b.Name, "method": m.Name}, err)
				continue
			}
			panels = append(panels, panel)
		}
		if len(panels) == 0 {
			skip(log.Fields{"benchmark": b.Name}, fmt.Errorf("%w: no method has a %q twin", exploration.ErrInvalidInput, AdjustedSuffix))
			continue
		}
		if err := o.saveTiles(panels, len(panels), o.path(b.Name, "performance_evolution_budget")); err != nil {
			return err
		}
		drawn++
	}
	return nothingDrawn(drawn, "performance_evolution_budget", e.Name)
}

func (o Options) budgetPanel(full, adjusted *exploration.Method) (*plot.Plot, error) {
	p := o.newPlot(full.Name, "Samples", o.unitLabel())

	fullMedian, err := o.addMedian(p, full, o.Style.Color(0), full.Name)
	if err != nil {
		return nil, err
	}
	budgetMedian, err := o.addMedian(p, adjusted, o.Style.Color(1), adjusted.Name)
	if err != nil {
		return nil, err
	}

	fullEnd := plotter.XY{X: float64(fullMedian.Len() - 1), Y: fullMedian.Median[fullMedian.Len()-1]}
	budgetEnd := plotter.XY{X: float64(budgetMedian.Len() - 1), Y: budgetMedian.Median[budgetMedian.Len()-1]}

	// share of the full speedup, higher is better for GFLOPS
	share := fullEnd.Y / budgetEnd.Y
	if o.Unit == UnitGFLOPS {
		share = budgetEnd.Y / fullEnd.Y
	}
	samples := float64(budgetMedian.Len()) / float64(fullMedian.Len())

	l, err := o.line(plotter.XYs{fullEnd, budgetEnd}, color.Black, o.Style.LineWidth)
	if err != nil {
		return nil, err
	}
	p.Add(l)
	p.Legend.Add(fmt.Sprintf("Speedup: %.2f%% Samples: %.2f%%", share*100, samples*100), l)

	o.scaleY(p)
	p.X.Tick.Marker = sampleTicks{}
	o.references(p, o.value)
	return p, nil
}
