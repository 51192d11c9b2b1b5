// Package scheduler runs the plot a configuration asks for: it loads the input
// tree in the shape that plot needs and hands it to the renderers.
package scheduler

import (
	"fmt"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"

	"tuningplot/exploration"
	"tuningplot/render"
)

type plotFunc func(config Config) error

type benchmarkRenderer func(*exploration.Benchmark, render.Options) error

type experimentRenderer func(*exploration.Experiment, render.Options) error

type orderedRenderer func(*exploration.OrderedExperiment, render.Options) error

// plots maps plot names to their runners. Inputs are a benchmark directory
// unless the runner loads an experiment or an ordered experiment.
var plots = map[string]plotFunc{
	"scatter":                             onBenchmark(render.Scatter),
	"scatter_pe":                          onBenchmark(render.ScatterPE),
	"performance_evolution":               onBenchmark(render.PerformanceEvolution),
	"performance_evolution_separate":      onBenchmark(render.PerformanceEvolutionSeparate),
	"speedup":                             onBenchmark(render.Speedup),
	"violin":                              onBenchmark(render.Violin),
	"tuning_ranges":                       onBenchmark(render.TuningRanges),
	"speedup_tuning":                      onBenchmark(render.SpeedupTuning),
	"facet":                               onBenchmark(render.Facet),
	"stats":                               onBenchmark(stats),
	"all":                                 runAll,
	"speedup_stacking":                    runSpeedupStacking,
	"tuning_budget":                       onExperiment(render.TuningBudget),
	"performance_evolution_budget":        onExperiment(render.PerformanceEvolutionBudget),
	"performance_evolution_grouped":       onExperiment(render.PerformanceEvolutionGrouped),
	"order_stats":                         onOrdered(render.OrderStats),
	"order_ranges":                        onOrdered(render.OrderRanges),
	"grouped_order_performance_evolution": onOrdered(render.GroupedOrderPerformanceEvolution),
}

// Plots returns the names of all plots, sorted.
func Plots() []string {
	names := make([]string, 0, len(plots))
	for name := range plots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schedule runs the plot named by the configuration. The configuration is
// expected to be resolved.
func Schedule(config Config) error {
	plot, ok := plots[config.Plot]
	if !ok {
		return fmt.Errorf("%w: unknown plot %q", ErrConfig, config.Plot)
	}
	log.WithFields(log.Fields{"plot": config.Plot, "input": config.Input, "output": config.Output}).Debug("scheduling")
	return plot(config)
}

func onBenchmark(draw benchmarkRenderer) plotFunc {
	return func(config Config) error {
		b, err := exploration.LoadBenchmark(config.Input)
		if err != nil {
			return err
		}
		return draw(b, config.Options())
	}
}

func onExperiment(draw experimentRenderer) plotFunc {
	return func(config Config) error {
		e, err := exploration.LoadExperiment(config.Input)
		if err != nil {
			return err
		}
		return draw(e, config.Options())
	}
}

func runSpeedupStacking(config Config) error {
	e, err := exploration.LoadExperiment(config.Input)
	if err != nil {
		return err
	}
	return render.SpeedupStacking(e, config.Method, config.Options())
}

func onOrdered(draw orderedRenderer) plotFunc {
	return func(config Config) error {
		e, err := exploration.LoadOrderedExperiment(config.Input)
		if err != nil {
			return err
		}
		return draw(e, config.Options())
	}
}

// stats writes the statistics file and prints the rows, as a table when
// standard output is a terminal.
func stats(b *exploration.Benchmark, o render.Options) error {
	rows, err := render.Stats(b, o)
	if err != nil {
		return err
	}
	fd := os.Stdout.Fd()
	styled := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return render.Summary(os.Stdout, rows, styled)
}

// runAll draws every benchmark chart. A failing chart is logged and the others
// are still drawn; only a run where every chart fails is an error.
func runAll(config Config) error {
	b, err := exploration.LoadBenchmark(config.Input)
	if err != nil {
		return err
	}
	o := config.Options()

	steps := []string{"scatter", "scatter_pe", "performance_evolution", "stats", "speedup", "tuning_ranges", "speedup_tuning"}
	if o.Default > 0 {
		steps = append(steps, "violin")
	}
	renderers := map[string]benchmarkRenderer{
		"scatter":               render.Scatter,
		"scatter_pe":            render.ScatterPE,
		"performance_evolution": render.PerformanceEvolution,
		"stats":                 stats,
		"speedup":               render.Speedup,
		"tuning_ranges":         render.TuningRanges,
		"speedup_tuning":        render.SpeedupTuning,
		"violin":                render.Violin,
	}

	failed := 0
	for _, step := range steps {
		if err := renderers[step](b, o); err != nil {
			log.WithFields(log.Fields{"benchmark": b.Name, "plot": step}).WithError(err).Error("plot failed")
			failed++
		}
	}
	if failed == len(steps) {
		return fmt.Errorf("%w: every plot failed for %s", exploration.ErrEmptyValidSet, b.Name)
	}
	return nil
}
