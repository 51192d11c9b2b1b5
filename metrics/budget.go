package metrics

import (
	"fmt"

	"tuningplot/exploration"
)

// BudgetPoint summarises the groups of a run at one tuning budget.
type BudgetPoint struct {
	Limit     int     // samples per group considered
	Mean      float64 // mean over contributing groups
	HalfWidth float64 // 95% confidence half-width of Mean
	Groups    int     // groups with a valid sample within Limit
}

// budgetGroup caches what every limit needs from a group.
type budgetGroup struct {
	samples  []exploration.Sample
	baseline float64 // first valid runtime of the whole group
	best     float64 // minimum valid runtime of the whole group
}

// RelativeBudget returns, per limit, the mean fraction of each group's
// achievable speedup that is already realised after 'limit' samples:
// (baseline/min_limit) / (baseline/min_group).
func RelativeBudget(groups []exploration.TuningGroup, limits []int) ([]BudgetPoint, error) {
	return budget(groups, limits, func(g budgetGroup, minimum float64) float64 {
		return (g.baseline / minimum) / (g.baseline / g.best)
	})
}

// TotalBudget returns, per limit, the mean speedup baseline/min_limit of the
// groups.
func TotalBudget(groups []exploration.TuningGroup, limits []int) ([]BudgetPoint, error) {
	return budget(groups, limits, func(g budgetGroup, minimum float64) float64 {
		return g.baseline / minimum
	})
}

// Limits returns 1..n, the budgets used by the tuning budget analysis.
func Limits(n int) []int {
	limits := make([]int, n)
	for i := range limits {
		limits[i] = i + 1
	}
	return limits
}

func budget(groups []exploration.TuningGroup, limits []int, speedup func(g budgetGroup, minimum float64) float64) ([]BudgetPoint, error) {
	candidates := make([]budgetGroup, 0, len(groups))
	for _, g := range groups {
		baseline, _, err := FirstValid(g.Samples)
		if err != nil {
			continue
		}
		best, _, _ := Minimum(g.Samples)
		candidates = append(candidates, budgetGroup{samples: g.Samples, baseline: baseline, best: best})
	}

	points := make([]BudgetPoint, 0, len(limits))
	for _, limit := range limits {
		if limit <= 0 {
			return nil, fmt.Errorf("%w: budget limit %d", exploration.ErrInvalidInput, limit)
		}

		values := make([]float64, 0, len(candidates))
		for _, g := range candidates {
			minimum, _, err := Minimum(window(g.samples, limit))
			if err != nil {
				continue
			}
			values = append(values, speedup(g, minimum))
		}
		if len(values) == 0 {
			continue
		}

		mean, halfWidth, _ := MeanCI(values)
		points = append(points, BudgetPoint{Limit: limit, Mean: mean, HalfWidth: halfWidth, Groups: len(values)})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no group has a valid sample within the budget", exploration.ErrEmptyValidSet)
	}
	return points, nil
}
