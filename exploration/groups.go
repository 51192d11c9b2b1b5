package exploration

import "fmt"

// TuningGroup is a maximal contiguous stretch of a run whose samples share
// one rewrite, i.e. one parameter-tuning sub-search on one code variant.
type TuningGroup struct {
	Rewrite string
	Start   int      // index of the first sample within the run
	Samples []Sample // shares memory with the run
}

// Len returns the number of samples in the group.
func (g TuningGroup) Len() int { return len(g.Samples) }

// Partition splits a run into tuning groups. A new group starts whenever the
// rewrite differs from the previous sample's; a rewrite that shows up again
// later opens a new group rather than extending the earlier one.
func Partition(samples []Sample) ([]TuningGroup, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: cannot partition an empty run", ErrInvalidInput)
	}

	groups := make([]TuningGroup, 0)
	start := 0
	current := samples[0].Rewrite

	for i, s := range samples {
		if s.Rewrite != current {
			groups = append(groups, TuningGroup{Rewrite: current, Start: start, Samples: samples[start:i:i]})
			current = s.Rewrite
			start = i
		}
	}
	groups = append(groups, TuningGroup{Rewrite: current, Start: start, Samples: samples[start:]})

	return groups, nil
}

// PartitionRun is Partition applied to a run's samples.
func PartitionRun(run *Run) ([]TuningGroup, error) {
	groups, err := Partition(run.Samples)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", run.Name, err)
	}
	return groups, nil
}
