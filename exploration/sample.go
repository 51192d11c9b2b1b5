// Package exploration loads autotuning exploration logs from disk and
// arranges them into benchmarks, methods, runs and tuning groups.
package exploration

// InvalidRuntime replaces the runtime of failed or invalid samples. It is
// larger than any real timing so it never becomes a minimum.
const InvalidRuntime float64 = 2147483647

//=============================================================================
// Sample and Run
//=============================================================================

// ParamValue is one entry of a parameter configuration: either a single
// number or a tuple (e.g. a permutation written as "(0, 2, 1)").
type ParamValue struct {
	Number float64
	Tuple  []float64 // nil unless the value was written as a tuple
}

// IsTuple reports whether the value was parsed from a tuple.
func (v ParamValue) IsTuple() bool { return v.Tuple != nil }

// Sample is one measured trial of a program variant.
// 'Runtime' equals InvalidRuntime whenever 'Valid' is false.
type Sample struct {
	Params     map[string]ParamValue // parameter configuration of the trial
	Runtime    float64               // measured runtime in ms
	Valid      bool                  // false for failed trials
	Rewrite    string                // identity of the code variant (tuning group key)
	ErrorLevel string                // content of the 'error-level' column, "" if absent
	Timestamp  float64               // elapsed time when the sample was taken
	Fields     map[string]string     // raw row keyed by header
}

// Run is the ordered sequence of samples of one execution trace (one CSV file).
type Run struct {
	Name        string
	Path        string
	Samples     []Sample
	Timestamped bool // the file had a 'timestamp' column
}

// Len returns the number of samples in the run.
func (r *Run) Len() int { return len(r.Samples) }

// Runtimes returns the runtimes of all samples, invalid ones included.
func (r *Run) Runtimes() []float64 {
	runtimes := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		runtimes[i] = s.Runtime
	}
	return runtimes
}

//=============================================================================
// Containers
//=============================================================================

// Method holds the repeated runs of one search strategy.
type Method struct {
	Name  string
	Index int // position in modification-time order among its siblings
	Runs  []*Run
}

// Run returns the run with the given name, or nil.
func (m *Method) Run(name string) *Run {
	for _, r := range m.Runs {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Benchmark holds the methods explored on one workload.
type Benchmark struct {
	Name    string
	Index   int
	Methods []*Method
}

// Method returns the method with the given name, or nil.
func (b *Benchmark) Method(name string) *Method {
	for _, m := range b.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Experiment holds several benchmarks.
type Experiment struct {
	Name       string
	Benchmarks []*Benchmark
}

// Benchmark returns the benchmark with the given name, or nil.
func (e *Experiment) Benchmark(name string) *Benchmark {
	for _, b := range e.Benchmarks {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// OrderedBenchmark is a benchmark explored under several tuning orders.
// Each order has the shape of a Benchmark (methods below it).
type OrderedBenchmark struct {
	Name   string
	Index  int
	Orders []*Benchmark
}

// OrderedExperiment holds benchmarks that carry an extra order level.
type OrderedExperiment struct {
	Name       string
	Benchmarks []*OrderedBenchmark
}
