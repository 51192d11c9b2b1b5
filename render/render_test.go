package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"

	"tuningplot/exploration"
	"tuningplot/metrics"
)

// newRun builds a timestamped run; non-positive runtimes are invalid samples.
// Every three samples share a rewrite.
func newRun(name string, runtimes ...float64) *exploration.Run {
	samples := make([]exploration.Sample, len(runtimes))
	for i, r := range runtimes {
		samples[i] = exploration.Sample{
			Runtime:   r,
			Valid:     r > 0,
			Rewrite:   fmt.Sprintf("r%d", i/3),
			Timestamp: float64(i * 60000),
		}
		if r <= 0 {
			samples[i].Runtime = exploration.InvalidRuntime
		}
	}
	return &exploration.Run{Name: name, Samples: samples, Timestamped: true}
}

func newMethod(name string, index int, runs ...*exploration.Run) *exploration.Method {
	return &exploration.Method{Name: name, Index: index, Runs: runs}
}

func newBenchmark(name string) *exploration.Benchmark {
	return &exploration.Benchmark{
		Name: name,
		Methods: []*exploration.Method{
			newMethod("random", 0,
				newRun("run_0.csv", 10, 8, -1, 9, 6, 7, 5, -1, 4),
				newRun("run_1.csv", 12, 11, 9, -1, -1, -1, 8, 3, 6),
			),
			newMethod("annealing", 1,
				newRun("run_0.csv", 11, 10, 10, 7, 7, 8, 6, 6, 2),
				newRun("run_1.csv", 9, -1, 9, 9, 5, 5, 5, 4, 4),
			),
		},
	}
}

func testOptions(t *testing.T) Options {
	return Options{
		Output: t.TempDir(),
		Name:   "mm",
		Format: "svg",
		Unit:   UnitRuntime,
		Style:  DefaultStyle(),
	}
}

func assertFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if assert.NoError(t, err, name) {
			assert.Positive(t, info.Size(), name)
		}
	}
}

// TestOptionsPath verifies the output naming scheme.
func TestOptionsPath(t *testing.T) {
	o := Options{Output: "out", Name: "mm", Format: "pdf"}
	assert.Equal(t, filepath.Join("out", "mm_random_scatter.pdf"), o.path("random", "scatter"))

	o.Log = true
	assert.Equal(t, filepath.Join("out", "mm_performance_evolution_log.pdf"), o.path("performance_evolution"))
}

// TestOptionsValue verifies unit conversion and limits.
func TestOptionsValue(t *testing.T) {
	o := Options{Unit: UnitRuntime}
	assert.Equal(t, 4.0, o.value(4))

	o.Unit = UnitGFLOPS
	assert.InDelta(t, metrics.GFLOPS(4), o.value(4), 1e-12)

	o.Limit = 2
	assert.Equal(t, []float64{1, 2}, o.truncate([]float64{1, 2, 3}))
	o.Limit = 5
	assert.Equal(t, []float64{1, 2, 3}, o.truncate([]float64{1, 2, 3}))
}

// TestBenchmarkCharts verifies every per-benchmark chart is written.
func TestBenchmarkCharts(t *testing.T) {
	o := testOptions(t)
	o.Expert = 3
	o.Default = 12
	b := newBenchmark("mm")

	require.NoError(t, Scatter(b, o))
	require.NoError(t, ScatterPE(b, o))
	require.NoError(t, PerformanceEvolution(b, o))
	require.NoError(t, PerformanceEvolutionSeparate(b, o))
	require.NoError(t, Speedup(b, o))
	require.NoError(t, Violin(b, o))
	require.NoError(t, TuningRanges(b, o))

	assertFiles(t, o.Output,
		"mm_random_scatter.svg",
		"mm_annealing_scatter.svg",
		"mm_random_scatter_pe.svg",
		"mm_performance_evolution.svg",
		"mm_performance_evolution_separate.svg",
		"mm_speedup.svg",
		"mm_violin_speedup.svg",
		"mm_random_tuning_ranges.svg",
		"mm_annealing_tuning_ranges.svg",
	)
}

// TestBenchmarkCharts_LogGFLOPS verifies the log toggle and the GFLOPS unit.
func TestBenchmarkCharts_LogGFLOPS(t *testing.T) {
	o := testOptions(t)
	o.Log = true
	o.Unit = UnitGFLOPS
	o.Limit = 5
	o.IncludeInvalid = true
	b := newBenchmark("mm")

	require.NoError(t, PerformanceEvolution(b, o))
	require.NoError(t, TuningRanges(b, o))

	assertFiles(t, o.Output,
		"mm_performance_evolution_log.svg",
		"mm_random_tuning_ranges_invalid_log.svg",
	)
}

// TestViolin_NeedsDefault verifies the violin chart is not drawn without a baseline.
func TestViolin_NeedsDefault(t *testing.T) {
	err := Violin(newBenchmark("mm"), testOptions(t))
	assert.ErrorIs(t, err, exploration.ErrInvalidInput)
}

// TestScatter_NothingValid verifies a benchmark without valid samples draws nothing.
func TestScatter_NothingValid(t *testing.T) {
	b := &exploration.Benchmark{
		Name:    "mm",
		Methods: []*exploration.Method{newMethod("random", 0, newRun("run_0.csv", -1, -1))},
	}
	err := Scatter(b, testOptions(t))
	assert.ErrorIs(t, err, exploration.ErrEmptyValidSet)
}

// TestViolinOutline verifies the outline is mirrored around its position.
func TestViolinOutline(t *testing.T) {
	outline := violin([]float64{1, 2, 2, 3, 8}, 4, 0.45)
	require.Len(t, outline, 2*kdePoints)

	widest := 0.0
	for i := 0; i < kdePoints; i++ {
		right, left := outline[i], outline[2*kdePoints-1-i]
		assert.Equal(t, right.Y, left.Y)
		assert.InDelta(t, right.X-4, 4-left.X, 1e-12)
		widest = max(widest, right.X-4)
	}
	assert.InDelta(t, 0.45, widest, 1e-12)

	// a single value still has a visible outline
	assert.Len(t, violin([]float64{5}, 0, 0.45), 2*kdePoints)
}

// TestStats verifies the statistics file and the returned rows.
func TestStats(t *testing.T) {
	o := testOptions(t)
	rows, err := Stats(newBenchmark("mm"), o)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	file, err := os.Open(filepath.Join(o.Output, "mm.csv"))
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, metrics.StatsHeader, records[0])
	assert.Equal(t, rows[0].Record(), records[1])
	assert.Equal(t, "annealing", records[3][0])
	assert.Equal(t, "0", records[3][1])
}

// TestSummary verifies both terminal renderings of the statistics.
func TestSummary(t *testing.T) {
	rows, err := Stats(newBenchmark("mm"), testOptions(t))
	require.NoError(t, err)

	var plain bytes.Buffer
	require.NoError(t, Summary(&plain, rows, false))
	records, err := csv.NewReader(&plain).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, len(rows)+1)

	var styled bytes.Buffer
	require.NoError(t, Summary(&styled, rows, true))
	assert.Contains(t, styled.String(), "valid samples")
	assert.Contains(t, styled.String(), "annealing")
}

// TestOrderStats verifies one file per benchmark of an ordered experiment.
func TestOrderStats(t *testing.T) {
	o := testOptions(t)
	order := newBenchmark("order_0")
	e := &exploration.OrderedExperiment{
		Name: "orders",
		Benchmarks: []*exploration.OrderedBenchmark{
			{Name: "mm", Orders: []*exploration.Benchmark{order}},
		},
	}
	require.NoError(t, OrderStats(e, o))
	assertFiles(t, o.Output, "mm_mm_order_stats.csv")
}

func newExperiment() *exploration.Experiment {
	mm := newBenchmark("mm")
	asum := newBenchmark("asum")
	adjusted := newMethod("random"+AdjustedSuffix, 2, newRun("run_0.csv", 10, 8, 7), newRun("run_1.csv", 12, 11, 9))
	asum.Methods = append(asum.Methods, adjusted)
	return &exploration.Experiment{Name: "experiment", Benchmarks: []*exploration.Benchmark{mm, asum}}
}

// TestExperimentCharts verifies every experiment chart is written.
func TestExperimentCharts(t *testing.T) {
	o := testOptions(t)
	o.Default = 12
	e := newExperiment()

	require.NoError(t, SpeedupStacking(e, "random", o))
	require.NoError(t, TuningBudget(e, o))
	require.NoError(t, PerformanceEvolutionBudget(e, o))

	assertFiles(t, o.Output,
		"mm_speedup_stacking.svg",
		"mm_speedup_tuning_only.svg",
		"mm_tuning_budget.svg",
		"mm_tuning_budget_total.svg",
		"mm_asum_performance_evolution_budget.svg",
	)
	_, err := os.Stat(filepath.Join(o.Output, "mm_mm_performance_evolution_budget.svg"))
	assert.ErrorIs(t, err, os.ErrNotExist, "benchmarks without an adjusted twin are skipped")
}

// TestSpeedupStacking_UnknownMethod verifies a method missing everywhere draws nothing.
func TestSpeedupStacking_UnknownMethod(t *testing.T) {
	err := SpeedupStacking(newExperiment(), "exhaustive", testOptions(t))
	assert.ErrorIs(t, err, exploration.ErrEmptyValidSet)
}

// TestRangesTitle verifies the speedups a tuning-ranges panel is titled with.
func TestRangesTitle(t *testing.T) {
	run := newRun("run_0.csv", 10, 8, -1, 9, 6, 7, 5, -1, 4)
	groups, err := exploration.PartitionRun(run)
	require.NoError(t, err)

	o := testOptions(t)
	assert.Equal(t, "run_0.csv\ncumulative speedup 2.50x, median group speedup 1.25x", o.rangesTitle(run.Name, groups))

	invalid := newRun("run_1.csv", -1, -1)
	groups, err = exploration.PartitionRun(invalid)
	require.NoError(t, err)
	assert.Equal(t, "run_1.csv", o.rangesTitle(invalid.Name, groups))
}

// TestFrontier verifies the best bound so far follows the unit's direction.
func TestFrontier(t *testing.T) {
	o := testOptions(t)
	assert.Equal(t, []float64{5, 5, 3, 3}, o.frontier([]float64{5, 7, 3, 4}))

	o.Unit = UnitGFLOPS
	assert.Equal(t, []float64{5, 7, 7, 7}, o.frontier([]float64{5, 7, 3, 4}))
	assert.Empty(t, o.frontier(nil))
}

// TestPerformanceEvolution_NothingValid verifies runs without a valid sample
// draw no evolution.
func TestPerformanceEvolution_NothingValid(t *testing.T) {
	b := &exploration.Benchmark{
		Name:    "mm",
		Methods: []*exploration.Method{newMethod("random", 0, newRun("run_0.csv", -1, -1, -1))},
	}
	err := PerformanceEvolution(b, testOptions(t))
	assert.ErrorIs(t, err, exploration.ErrEmptyValidSet)
}

// TestByName verifies methods are ordered by name without touching the input.
func TestByName(t *testing.T) {
	methods := []*exploration.Method{newMethod("random", 0), newMethod("annealing", 1), newMethod("exhaustive", 2)}
	sorted := byName(methods)

	names := make([]string, len(sorted))
	for i, m := range sorted {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"annealing", "exhaustive", "random"}, names)
	assert.Equal(t, "random", methods[0].Name)
}

// TestBounds verifies the bar of every kind of tuning group.
func TestBounds(t *testing.T) {
	o := testOptions(t)

	low, high, ok := o.bounds(metrics.Range{Start: 8, StartValid: true, Minimum: 4, Worst: 8, Valid: true})
	require.True(t, ok)
	assert.Equal(t, 4.0, low)
	assert.Equal(t, 8.0, high)

	lateStart := metrics.Range{Start: exploration.InvalidRuntime, Minimum: 4, Worst: 8, Valid: true}
	low, high, ok = o.bounds(lateStart)
	require.True(t, ok)
	assert.Equal(t, 4.0, low)
	assert.Equal(t, 8.0, high)

	o.Unit = UnitGFLOPS
	low, high, ok = o.bounds(lateStart)
	require.True(t, ok)
	assert.InDelta(t, metrics.GFLOPS(8), low, 1e-12)
	assert.InDelta(t, metrics.GFLOPS(4), high, 1e-12)

	invalid := metrics.Range{Start: exploration.InvalidRuntime, Minimum: exploration.InvalidRuntime, Worst: exploration.InvalidRuntime}
	_, _, ok = o.bounds(invalid)
	assert.False(t, ok)

	o.IncludeInvalid = true
	low, high, ok = o.bounds(invalid)
	require.True(t, ok)
	assert.Equal(t, o.Style.InvalidCeiling, high)
	assert.Less(t, low, high)
}

// TestGroupCharts verifies the per-group charts of a benchmark.
func TestGroupCharts(t *testing.T) {
	o := testOptions(t)
	b := newBenchmark("mm")

	require.NoError(t, SpeedupTuning(b, o))
	require.NoError(t, Facet(b, o))

	assertFiles(t, o.Output,
		"mm_random_speedup_tuning.svg",
		"mm_annealing_speedup_tuning.svg",
		"mm_random_run_0_facet.svg",
		"mm_random_run_1_facet.svg",
		"mm_annealing_run_0_facet.svg",
		"mm_annealing_run_1_facet.svg",
	)
}

// TestGroupCharts_NothingValid verifies runs without a valid group draw nothing.
func TestGroupCharts_NothingValid(t *testing.T) {
	b := &exploration.Benchmark{
		Name:    "mm",
		Methods: []*exploration.Method{newMethod("random", 0, newRun("run_0.csv", -1, -1, -1, -1))},
	}
	o := testOptions(t)
	assert.ErrorIs(t, SpeedupTuning(b, o), exploration.ErrEmptyValidSet)
	assert.ErrorIs(t, Facet(b, o), exploration.ErrEmptyValidSet)
}

// TestFacetPanels verifies one panel per valid group, sharing the Y range.
func TestFacetPanels(t *testing.T) {
	o := testOptions(t)
	panels, err := o.facetPanels(newRun("run_1.csv", 12, 11, 9, -1, -1, -1, 8, 3, 6))
	require.NoError(t, err)
	require.Len(t, panels, 2)

	assert.Equal(t, "r0\n", panels[0].Title.Text)
	assert.Equal(t, "r2\n", panels[1].Title.Text)
	assert.Equal(t, panels[0].Y.Min, panels[1].Y.Min)
	assert.Equal(t, panels[0].Y.Max, panels[1].Y.Max)
	assert.Equal(t, 3.0, panels[0].Y.Min)
	assert.Equal(t, 12.0, panels[0].Y.Max)
}

func newOrderedExperiment() *exploration.OrderedExperiment {
	partial := &exploration.Benchmark{
		Name:  "order_1",
		Index: 1,
		Methods: []*exploration.Method{
			newMethod("annealing", 0, newRun("run_0.csv", 9, 7, 7, 6, 5, 3)),
		},
	}
	return &exploration.OrderedExperiment{
		Name: "orders",
		Benchmarks: []*exploration.OrderedBenchmark{
			{Name: "mm", Orders: []*exploration.Benchmark{newBenchmark("order_0"), partial}},
		},
	}
}

// TestOrderCharts verifies both charts of an ordered experiment.
func TestOrderCharts(t *testing.T) {
	o := testOptions(t)
	e := newOrderedExperiment()

	require.NoError(t, OrderRanges(e, o))
	require.NoError(t, GroupedOrderPerformanceEvolution(e, o))
	assertFiles(t, o.Output, "mm_mm_orders.svg", "mm_mm_order_evolution.svg")

	o.Log = true
	require.NoError(t, OrderRanges(e, o))
	assertFiles(t, o.Output, "mm_mm_orders_log.svg")
}

// TestOrderStats_MissingMethod verifies orders with different methods still
// share one rectangular table.
func TestOrderStats_MissingMethod(t *testing.T) {
	o := testOptions(t)
	require.NoError(t, OrderStats(newOrderedExperiment(), o))

	file, err := os.Open(filepath.Join(o.Output, "mm_mm_order_stats.csv"))
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Len(t, records[0], 10)
	assert.Equal(t, []string{"", "", "", ""}, records[2][2:6])
}

// TestPerformanceEvolutionGrouped verifies one file holds every benchmark.
func TestPerformanceEvolutionGrouped(t *testing.T) {
	o := testOptions(t)
	require.NoError(t, PerformanceEvolutionGrouped(newExperiment(), o))
	assertFiles(t, o.Output, "mm_performance_evolution_grouped.svg")

	empty := &exploration.Experiment{
		Name: "experiment",
		Benchmarks: []*exploration.Benchmark{{
			Name:    "mm",
			Methods: []*exploration.Method{newMethod("random", 0, newRun("run_0.csv", -1, -1))},
		}},
	}
	assert.ErrorIs(t, PerformanceEvolutionGrouped(empty, o), exploration.ErrEmptyValidSet)
}

// TestSaveTiles verifies a last row with fewer plots than columns.
func TestSaveTiles(t *testing.T) {
	o := testOptions(t)
	var plots []*plot.Plot
	for i := 0; i < 3; i++ {
		p := o.newPlot(fmt.Sprintf("panel %d", i), "x", "y")
		l, err := o.line(series([]float64{1, 2, float64(i + 3)}, 0), o.Style.Color(i), o.Style.LineWidth)
		require.NoError(t, err)
		p.Add(l)
		plots = append(plots, p)
	}

	require.NoError(t, o.saveTiles(plots, 2, o.path("tiles")))
	assertFiles(t, o.Output, "mm_tiles.svg")
	assert.Error(t, o.saveTiles(nil, 2, o.path("none")))
}

// TestShareY verifies every plot gets the union of the Y ranges.
func TestShareY(t *testing.T) {
	o := testOptions(t)
	a, b := o.newPlot("a", "x", "y"), o.newPlot("b", "x", "y")
	a.Y.Min, a.Y.Max = 2, 5
	b.Y.Min, b.Y.Max = 1, 4

	shareY([]*plot.Plot{a, b})
	assert.Equal(t, 1.0, a.Y.Min)
	assert.Equal(t, 5.0, a.Y.Max)
	assert.Equal(t, 1.0, b.Y.Min)
	assert.Equal(t, 5.0, b.Y.Max)
}
