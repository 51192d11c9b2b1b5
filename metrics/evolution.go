// Package metrics derives statistics from loaded explorations: performance
// evolution, speedups, cross-run aggregates, tuning-budget curves and the
// per-run statistics rows. Every function is pure.
package metrics

import (
	"fmt"

	"tuningplot/exploration"
)

// PerformanceEvolution returns the best runtime seen after each sample.
// The first value is the first sample's runtime even when that sample is
// invalid; later invalid samples never lower the minimum.
func PerformanceEvolution(samples []exploration.Sample) ([]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: performance evolution of an empty run", exploration.ErrInvalidInput)
	}

	evolution := make([]float64, len(samples))
	minimum := samples[0].Runtime
	for i, s := range samples {
		if s.Valid && s.Runtime < minimum {
			minimum = s.Runtime
		}
		evolution[i] = minimum
	}
	return evolution, nil
}

// Minimum returns the smallest valid runtime and the index of its first occurrence.
func Minimum(samples []exploration.Sample) (float64, int, error) {
	return extreme(samples, func(a, b float64) bool { return a < b })
}

// Maximum returns the largest valid runtime and the index of its first occurrence.
func Maximum(samples []exploration.Sample) (float64, int, error) {
	return extreme(samples, func(a, b float64) bool { return a > b })
}

func extreme(samples []exploration.Sample, better func(a, b float64) bool) (float64, int, error) {
	index := -1
	for i, s := range samples {
		if !s.Valid {
			continue
		}
		if index < 0 || better(s.Runtime, samples[index].Runtime) {
			index = i
		}
	}
	if index < 0 {
		return 0, -1, exploration.ErrEmptyValidSet
	}
	return samples[index].Runtime, index, nil
}

// FirstValid returns the runtime and index of the first valid sample.
func FirstValid(samples []exploration.Sample) (float64, int, error) {
	for i, s := range samples {
		if s.Valid {
			return s.Runtime, i, nil
		}
	}
	return 0, -1, exploration.ErrEmptyValidSet
}

// ValidRuntimes returns the runtimes of the valid samples, in order.
func ValidRuntimes(samples []exploration.Sample) []float64 {
	runtimes := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Valid {
			runtimes = append(runtimes, s.Runtime)
		}
	}
	return runtimes
}

// CountValid returns the number of valid samples.
func CountValid(samples []exploration.Sample) int {
	count := 0
	for _, s := range samples {
		if s.Valid {
			count++
		}
	}
	return count
}

// window returns the first 'limit' samples; limit <= 0 means all of them.
func window(samples []exploration.Sample, limit int) []exploration.Sample {
	if limit > 0 && limit < len(samples) {
		return samples[:limit]
	}
	return samples
}
