package render

import (
	"path/filepath"
	"strings"

	"tuningplot/exploration"
	"tuningplot/metrics"
)

// Units a chart can show runtimes in.
const (
	UnitRuntime = "runtime"
	UnitGFLOPS  = "gflops"
)

// Options carries everything a renderer needs besides the data.
type Options struct {
	Output string // directory charts are written to
	Name   string // prefix of every file name
	Format string // file extension, selects the gonum/plot backend

	Log            bool
	Expert         float64 // reference runtime, 0 when absent
	Default        float64 // runtime of the default configuration, 0 when absent
	Limit          int     // samples per run or group to consider, 0 for all
	Unit           string
	IncludeInvalid bool // draw fully invalid tuning groups

	Style Style
}

// value converts a runtime into the configured unit.
func (o Options) value(runtime float64) float64 {
	if o.Unit == UnitGFLOPS {
		return metrics.GFLOPS(runtime)
	}
	return runtime
}

func (o Options) values(runtimes []float64) []float64 {
	out := make([]float64, len(runtimes))
	for i, r := range runtimes {
		out[i] = o.value(r)
	}
	return out
}

func (o Options) unitLabel() string {
	if o.Unit == UnitGFLOPS {
		return "Performance (GFLOPS)"
	}
	return "Runtime (ms)"
}

// path returns <Output>/<Name>_<parts...>[_log].<Format>.
func (o Options) path(parts ...string) string {
	name := strings.Join(append([]string{o.Name}, parts...), "_")
	if o.Log {
		name += "_log"
	}
	return filepath.Join(o.Output, name+"."+o.Format)
}

// truncate cuts a series to the configured limit.
func (o Options) truncate(series []float64) []float64 {
	if o.Limit > 0 && o.Limit < len(series) {
		return series[:o.Limit]
	}
	return series
}

// window cuts samples to the configured limit.
func (o Options) window(samples []exploration.Sample) []exploration.Sample {
	if o.Limit > 0 && o.Limit < len(samples) {
		return samples[:o.Limit]
	}
	return samples
}
