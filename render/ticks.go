package render

import (
	"fmt"

	"gonum.org/v1/plot"
)

// decimalTicks labels every default tick with two decimals.
type decimalTicks struct{}

func (decimalTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = fmt.Sprintf("%.2f", ticks[i].Value)
		}
	}
	return ticks
}

// sampleTicks labels integral sample indices only, keeping the default spacing.
type sampleTicks struct{}

func (sampleTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for _, t := range (plot.DefaultTicks{}).Ticks(min, max) {
		if t.Label == "" || t.Value != float64(int(t.Value)) {
			t.Label = ""
		} else {
			t.Label = fmt.Sprintf("%d", int(t.Value))
		}
		ticks = append(ticks, t)
	}
	return ticks
}

// limitTicks forces a tick on every budget limit inside the axis range.
type limitTicks struct {
	Limits []int
}

func (t limitTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	step := 1
	if len(t.Limits) > 20 {
		step = len(t.Limits) / 10
	}
	for i, limit := range t.Limits {
		if float64(limit) < min || float64(limit) > max {
			continue
		}
		tick := plot.Tick{Value: float64(limit)}
		if i%step == 0 {
			tick.Label = fmt.Sprintf("%d", limit)
		}
		ticks = append(ticks, tick)
	}
	return ticks
}
