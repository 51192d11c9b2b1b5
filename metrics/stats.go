package metrics

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"tuningplot/exploration"
)

// StatsHeader is the fixed header of the statistics CSV.
var StatsHeader = []string{
	"method",
	"run",
	"samples",
	"valid samples",
	"valid samples percent",
	"rewrites",
	"valid rewrites",
	"valid rewrites percent",
	"duration (h)",
	"minimum (ms)",
	"maximum (ms)",
	"speedup",
	"minimum after",
	"minimum after percent",
}

// StatsRow summarises one run.
type StatsRow struct {
	Method               string
	Run                  int // index of the run within its method
	Samples              int
	ValidSamples         int
	ValidPercent         float64
	Rewrites             int // tuning groups
	ValidRewrites        int // tuning groups with at least one valid sample
	ValidRewritesPercent float64
	DurationHours        float64
	Minimum              float64
	Maximum              float64
	Speedup              float64 // first valid runtime / minimum
	MinimumAfter         int     // index of the sample that found the minimum
	MinimumAfterPercent  float64
}

// RunStats computes the statistics row of a run. Timestamps are expected in
// milliseconds.
func RunStats(method string, index int, run *exploration.Run) (StatsRow, error) {
	row := StatsRow{Method: method, Run: index, Samples: run.Len()}

	groups, err := exploration.PartitionRun(run)
	if err != nil {
		return row, err
	}
	if !run.Timestamped {
		return row, fmt.Errorf("%w: run %s has no %q column", exploration.ErrSchema, run.Name, exploration.TimestampColumn)
	}

	minimum, minimumIndex, err := Minimum(run.Samples)
	if err != nil {
		return row, fmt.Errorf("run %s: %w", run.Name, err)
	}
	maximum, _, _ := Maximum(run.Samples)
	baseline, _, _ := FirstValid(run.Samples)

	row.ValidSamples = CountValid(run.Samples)
	row.ValidPercent = percent(row.ValidSamples, row.Samples)

	row.Rewrites = len(groups)
	for _, g := range groups {
		if CountValid(g.Samples) > 0 {
			row.ValidRewrites++
		}
	}
	row.ValidRewritesPercent = percent(row.ValidRewrites, row.Rewrites)

	start := run.Samples[0].Timestamp
	end := run.Samples[run.Len()-1].Timestamp
	row.DurationHours = (end - start) / 1000 / 60 / 60

	row.Minimum = minimum
	row.Maximum = maximum
	row.Speedup = baseline / minimum
	row.MinimumAfter = minimumIndex
	row.MinimumAfterPercent = percent(minimumIndex, row.Samples)
	return row, nil
}

// Record formats the row in StatsHeader column order.
func (r StatsRow) Record() []string {
	return []string{
		r.Method,
		strconv.Itoa(r.Run),
		strconv.Itoa(r.Samples),
		strconv.Itoa(r.ValidSamples),
		fmt.Sprintf("%.2f", r.ValidPercent),
		strconv.Itoa(r.Rewrites),
		strconv.Itoa(r.ValidRewrites),
		fmt.Sprintf("%.2f", r.ValidRewritesPercent),
		fmt.Sprintf("%.2f", r.DurationHours),
		strconv.FormatFloat(r.Minimum, 'f', -1, 64),
		strconv.FormatFloat(r.Maximum, 'f', -1, 64),
		fmt.Sprintf("%.2f", r.Speedup),
		strconv.Itoa(r.MinimumAfter),
		fmt.Sprintf("%.2f", r.MinimumAfterPercent),
	}
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

//=============================================================================
// Order statistics
//=============================================================================

// DefaultMethod is the method whose first sample is taken as default
// performance of an order, when present.
const DefaultMethod = "embedding_random_sampling"

// MethodSummary describes the best runtimes reached by the runs of a method.
type MethodSummary struct {
	Name string
	Mean float64
	Min  float64
	Max  float64
	Std  float64 // population standard deviation
}

// OrderRow summarises all methods of one tuning order.
type OrderRow struct {
	Order   int
	Default float64 // runtime of the default configuration
	Methods []MethodSummary
}

// OrderStats computes the row of one order. Values are rounded to two decimals.
func OrderStats(order *exploration.Benchmark) (OrderRow, error) {
	row := OrderRow{Order: order.Index}
	if len(order.Methods) == 0 {
		return row, fmt.Errorf("%w: order %s has no methods", exploration.ErrInvalidInput, order.Name)
	}

	reference := order.Method(DefaultMethod)
	if reference == nil || len(reference.Runs) == 0 {
		reference = order.Methods[0]
	}
	if len(reference.Runs) == 0 || reference.Runs[0].Len() == 0 {
		return row, fmt.Errorf("%w: order %s has no default run", exploration.ErrInvalidInput, order.Name)
	}
	row.Default = round2(reference.Runs[0].Samples[0].Runtime)

	for _, m := range order.Methods {
		if len(m.Runs) == 0 {
			return row, fmt.Errorf("%w: method %s of order %s has no runs", exploration.ErrInvalidInput, m.Name, order.Name)
		}
		best := make([]float64, 0, len(m.Runs))
		for _, run := range m.Runs {
			minimum, _, err := Minimum(run.Samples)
			if err != nil {
				return row, fmt.Errorf("method %s run %s: %w", m.Name, run.Name, err)
			}
			best = append(best, minimum)
		}
		row.Methods = append(row.Methods, MethodSummary{
			Name: m.Name,
			Mean: round2(stat.Mean(best, nil)),
			Min:  round2(floats.Min(best)),
			Max:  round2(floats.Max(best)),
			Std:  round2(stat.PopStdDev(best, nil)),
		})
	}
	return row, nil
}

// OrderTable lays out the rows of several orders under one header. Methods are
// the union over all rows in first-seen order; a method missing from an order
// gets empty cells.
func OrderTable(rows []OrderRow) ([]string, [][]string) {
	var methods []string
	seen := make(map[string]bool)
	for _, r := range rows {
		for _, m := range r.Methods {
			if !seen[m.Name] {
				seen[m.Name] = true
				methods = append(methods, m.Name)
			}
		}
	}

	header := []string{"order", "default"}
	for _, name := range methods {
		header = append(header, name+"_mean", name+"_min", name+"_max", name+"_std")
	}

	records := make([][]string, len(rows))
	for i, r := range rows {
		byName := make(map[string]MethodSummary, len(r.Methods))
		for _, m := range r.Methods {
			byName[m.Name] = m
		}
		record := []string{strconv.Itoa(r.Order), formatFloat(r.Default)}
		for _, name := range methods {
			m, ok := byName[name]
			if !ok {
				record = append(record, "", "", "", "")
				continue
			}
			record = append(record, formatFloat(m.Mean), formatFloat(m.Min), formatFloat(m.Max), formatFloat(m.Std))
		}
		records[i] = record
	}
	return header, records
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

//=============================================================================
// Units
//=============================================================================

// GFLOPS converts the runtime of a 1024x1024 matrix multiplication to GFLOPS.
func GFLOPS(runtime float64) float64 {
	const matrixSize = 1024
	ops := 2.0 * matrixSize * matrixSize * matrixSize
	return 1.0e-9 * ops / runtime
}
