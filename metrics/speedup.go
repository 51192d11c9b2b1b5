package metrics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"tuningplot/exploration"
)

// Groups or windows without a valid sample have no speedup. They are
// excluded from every aggregate below instead of counting as 0 or 1.

//=============================================================================
// Speedup of single groups and runs
//=============================================================================

// GroupSpeedup returns baseline / minimum over the first 'limit' samples of the
// group (limit <= 0: all samples). The baseline is the first valid sample of
// that window.
func GroupSpeedup(group exploration.TuningGroup, limit int) (float64, error) {
	samples := window(group.Samples, limit)

	baseline, _, err := FirstValid(samples)
	if err != nil {
		return 0, fmt.Errorf("group %q: %w", group.Rewrite, err)
	}
	minimum, _, err := Minimum(samples)
	if err != nil {
		return 0, fmt.Errorf("group %q: %w", group.Rewrite, err)
	}
	return baseline / minimum, nil
}

// GroupSpeedups returns the speedup of every group that has a valid sample
// within 'limit', in group order.
func GroupSpeedups(groups []exploration.TuningGroup, limit int) []float64 {
	speedups := make([]float64, 0, len(groups))
	for _, g := range groups {
		speedup, err := GroupSpeedup(g, limit)
		if err != nil {
			continue
		}
		speedups = append(speedups, speedup)
	}
	return speedups
}

// Speedup returns baseline / best valid runtime among the first 'limit'
// samples. A baseline <= 0 means the first valid sample of that window.
func Speedup(samples []exploration.Sample, baseline float64, limit int) (float64, error) {
	samples = window(samples, limit)
	minimum, _, err := Minimum(samples)
	if err != nil {
		return 0, err
	}
	if baseline <= 0 {
		baseline, _, _ = FirstValid(samples)
	}
	return baseline / minimum, nil
}

// GroupSpeedupEvolution returns, from the first valid sample of the group's
// window on, the speedup of the best runtime so far over that first valid
// runtime. The second value is the index within the group the series starts at.
func GroupSpeedupEvolution(group exploration.TuningGroup, limit int) ([]float64, int, error) {
	samples := window(group.Samples, limit)
	baseline, first, err := FirstValid(samples)
	if err != nil {
		return nil, 0, err
	}
	evolution, err := PerformanceEvolution(samples[first:])
	if err != nil {
		return nil, 0, err
	}
	speedups := make([]float64, len(evolution))
	for i, best := range evolution {
		speedups[i] = baseline / best
	}
	return speedups, first, nil
}

// CumulativeSpeedup multiplies the speedups of the groups that improve on the
// best runtime seen so far, each group limited to its first 'limit' samples.
// The best runtime starts at the run's first valid sample.
func CumulativeSpeedup(groups []exploration.TuningGroup, limit int) (float64, error) {
	best := 0.0
	seeded := false
	for _, g := range groups {
		if first, _, err := FirstValid(g.Samples); err == nil {
			best, seeded = first, true
			break
		}
	}
	if !seeded {
		return 0, exploration.ErrEmptyValidSet
	}

	product := 1.0
	for _, g := range groups {
		minimum, _, err := Minimum(window(g.Samples, limit))
		if err != nil {
			continue
		}
		if minimum < best {
			product *= best / minimum
			best = minimum
		}
	}
	return product, nil
}

// BestGroups returns up to 'amount' groups with the lowest valid minimum,
// best first. Groups without valid samples are left out.
func BestGroups(groups []exploration.TuningGroup, amount int) []exploration.TuningGroup {
	type ranked struct {
		minimum float64
		group   exploration.TuningGroup
	}
	candidates := make([]ranked, 0, len(groups))
	for _, g := range groups {
		minimum, _, err := Minimum(g.Samples)
		if err != nil {
			continue
		}
		candidates = append(candidates, ranked{minimum: minimum, group: g})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].minimum < candidates[j].minimum })

	if amount < len(candidates) {
		candidates = candidates[:amount]
	}
	best := make([]exploration.TuningGroup, len(candidates))
	for i, c := range candidates {
		best[i] = c.group
	}
	return best
}

//=============================================================================
// Tuning ranges and speedup stacking
//=============================================================================

// Range is the span a tuning group covered: from the runtime it started with
// to the best runtime tuning found.
type Range struct {
	Rewrite    string
	Start      float64 // runtime of the group's first sample
	StartValid bool
	Minimum    float64 // best valid runtime; InvalidRuntime if none
	Worst      float64 // worst valid runtime; InvalidRuntime if none
	Valid      bool    // the group has at least one valid sample
}

// Ranges returns one Range per group.
func Ranges(groups []exploration.TuningGroup) []Range {
	ranges := make([]Range, len(groups))
	for i, g := range groups {
		r := Range{
			Rewrite:    g.Rewrite,
			Start:      g.Samples[0].Runtime,
			StartValid: g.Samples[0].Valid,
			Minimum:    exploration.InvalidRuntime,
			Worst:      exploration.InvalidRuntime,
		}
		if minimum, _, err := Minimum(g.Samples); err == nil {
			r.Minimum = minimum
			r.Worst, _, _ = Maximum(g.Samples)
			r.Valid = true
		}
		ranges[i] = r
	}
	return ranges
}

// Stack splits the speedup of one run into what tuning alone achieved and
// what rewriting added.
type Stack struct {
	TuningOnly         float64 // first group: first valid / minimum
	RewritingLowest    float64 // mean of baseline / worst valid runtime per group
	RewritingHeuristic float64 // mean of baseline / first valid runtime per group
	RewritingAndTuning float64 // mean of baseline / best valid runtime per group
}

// Stacking computes the Stack of a partitioned run. The baseline is the first
// valid sample of the first group that has one.
func Stacking(groups []exploration.TuningGroup) (Stack, error) {
	var stack Stack
	if len(groups) == 0 {
		return stack, fmt.Errorf("%w: no tuning groups", exploration.ErrInvalidInput)
	}

	tuningOnly, err := GroupSpeedup(groups[0], 0)
	if err != nil {
		return stack, err
	}
	stack.TuningOnly = tuningOnly

	var lowest, heuristic, tuned []float64
	baseline := 0.0
	for _, g := range groups {
		first, _, err := FirstValid(g.Samples)
		if err != nil {
			continue
		}
		if baseline == 0 {
			baseline = first
		}
		minimum, _, _ := Minimum(g.Samples)
		maximum, _, _ := Maximum(g.Samples)

		lowest = append(lowest, baseline/maximum)
		heuristic = append(heuristic, baseline/first)
		tuned = append(tuned, baseline/minimum)
	}

	stack.RewritingLowest = stat.Mean(lowest, nil)
	stack.RewritingHeuristic = stat.Mean(heuristic, nil)
	stack.RewritingAndTuning = stat.Mean(tuned, nil)
	return stack, nil
}
