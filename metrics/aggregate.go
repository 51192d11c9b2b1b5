package metrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"tuningplot/exploration"
)

// z-score of a two-sided 95% confidence interval
const z95 = 1.96

// Aggregate is the index-wise summary of several repeated runs.
type Aggregate struct {
	Median    []float64
	HalfWidth []float64 // 95% confidence half-width around Median
}

// Len returns the number of aggregated positions.
func (a Aggregate) Len() int { return len(a.Median) }

// Lower returns Median - HalfWidth per position.
func (a Aggregate) Lower() []float64 {
	lower := make([]float64, len(a.Median))
	floats.SubTo(lower, a.Median, a.HalfWidth)
	return lower
}

// Upper returns Median + HalfWidth per position.
func (a Aggregate) Upper() []float64 {
	upper := make([]float64, len(a.Median))
	floats.AddTo(upper, a.Median, a.HalfWidth)
	return upper
}

// Truncate cuts every series to the length of the shortest one.
func Truncate(series [][]float64) [][]float64 {
	if len(series) == 0 {
		return nil
	}
	shortest := len(series[0])
	for _, s := range series[1:] {
		if len(s) < shortest {
			shortest = len(s)
		}
	}

	truncated := make([][]float64, len(series))
	for i, s := range series {
		truncated[i] = s[:shortest]
	}
	return truncated
}

// AcrossRuns aggregates repeated runs position by position. Runs of unequal
// length are truncated to the shortest first, so the result has exactly that
// length.
func AcrossRuns(series [][]float64) (Aggregate, error) {
	if len(series) == 0 {
		return Aggregate{}, fmt.Errorf("%w: no runs to aggregate", exploration.ErrInvalidInput)
	}
	series = Truncate(series)
	n := len(series[0])

	aggregate := Aggregate{
		Median:    make([]float64, n),
		HalfWidth: make([]float64, n),
	}
	column := make([]float64, len(series))
	for i := 0; i < n; i++ {
		for r, s := range series {
			column[r] = s[i]
		}
		aggregate.Median[i] = median(column)
		aggregate.HalfWidth[i] = HalfWidth95(column)
	}
	return aggregate, nil
}

// Median returns the middle value, averaging the two middle values for an
// even count.
func Median(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: median of no values", exploration.ErrInvalidInput)
	}
	return median(values), nil
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// HalfWidth95 returns 1.96 times the standard error of the mean. Fewer than
// two values, or identical values, have no spread.
func HalfWidth95(values []float64) float64 {
	if len(values) < 2 || floats.Max(values) == floats.Min(values) {
		return 0
	}
	sem := stat.StdDev(values, nil) / math.Sqrt(float64(len(values)))
	return z95 * sem
}

// MeanCI returns the mean and its 95% confidence half-width.
func MeanCI(values []float64) (float64, float64, error) {
	if len(values) == 0 {
		return 0, 0, fmt.Errorf("%w: mean of no values", exploration.ErrInvalidInput)
	}
	return stat.Mean(values, nil), HalfWidth95(values), nil
}

// Extremes returns the indices of the series with the lowest and the highest
// last value. Empty series are never chosen.
func Extremes(series [][]float64) (lowest, highest int, err error) {
	lowest, highest = -1, -1
	for i, s := range series {
		if len(s) == 0 {
			continue
		}
		last := s[len(s)-1]
		if lowest < 0 || last < series[lowest][len(series[lowest])-1] {
			lowest = i
		}
		if highest < 0 || last > series[highest][len(series[highest])-1] {
			highest = i
		}
	}
	if lowest < 0 {
		return -1, -1, fmt.Errorf("%w: no series to compare", exploration.ErrInvalidInput)
	}
	return lowest, highest, nil
}
