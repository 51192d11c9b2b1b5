package render

import (
	"fmt"
	"image/color"
	"sort"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"

	"tuningplot/exploration"
	"tuningplot/metrics"
)

// Charts over experiments tuned under several orders.

// orderColumns is the number of order panels per row.
const orderColumns = 4

// OrderRanges writes one file per benchmark with a panel per method. A panel
// shows the median evolutions of the orders that ended lowest and highest,
// and the area between them.
func OrderRanges(e *exploration.OrderedExperiment, o Options) error {
	drawn := 0
	for _, b := range e.Benchmarks {
		var panels []*plot.Plot
		for _, name := range methodNames(b.Orders) {
			panel, err := o.orderRangePanel(b, name)
			if err != nil {
				skip(log.Fields{"benchmark": b.Name, "method": name}, err)
				continue
			}
			panels = append(panels, panel)
		}
		if len(panels) == 0 {
			skip(log.Fields{"benchmark": b.Name}, exploration.ErrEmptyValidSet)
			continue
		}
		if err := o.saveTiles(panels, len(panels), o.path(b.Name, "orders")); err != nil {
			return err
		}
		drawn++
	}
	return nothingDrawn(drawn, "order_ranges", e.Name)
}

func (o Options) orderRangePanel(b *exploration.OrderedBenchmark, method string) (*plot.Plot, error) {
	var medians [][]float64
	for _, order := range b.Orders {
		m := order.Method(method)
		if m == nil {
			continue
		}
		aggregate, _, err := o.medianEvolution(m)
		if err != nil {
			skip(log.Fields{"benchmark": b.Name, "order": order.Name, "method": method}, err)
			continue
		}
		medians = append(medians, aggregate.Median)
	}
	lowest, highest, err := metrics.Extremes(medians)
	if err != nil {
		return nil, fmt.Errorf("method %s: %w", method, err)
	}

	low, high := medians[lowest], medians[highest]
	n := min(len(low), len(high))
	center := series(low[:n], 0)
	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := 0; i < n; i++ {
		lower[i] = min(low[i], high[i])
		upper[i] = max(low[i], high[i])
	}

	p := o.newPlot("method_"+method, "Samples", o.unitLabel())
	area, err := o.band(center, lower, upper, color.Black)
	if err != nil {
		return nil, err
	}
	p.Add(area)
	for _, edge := range []struct {
		label  string
		values []float64
	}{{"min", low}, {"max", high}} {
		l, err := o.line(series(edge.values, 0), color.Black, o.Style.MeanWidth)
		if err != nil {
			return nil, err
		}
		p.Add(l)
		p.Legend.Add(edge.label, l)
	}

	o.scaleY(p)
	p.X.Tick.Marker = sampleTicks{}
	return p, nil
}

// GroupedOrderPerformanceEvolution writes one file per benchmark with a panel
// per order holding the median evolution of every method. A method keeps its
// color across panels and all panels share their Y range.
func GroupedOrderPerformanceEvolution(e *exploration.OrderedExperiment, o Options) error {
	drawn := 0
	for _, b := range e.Benchmarks {
		colors := make(map[string]int)
		names := methodNames(b.Orders)
		sort.Strings(names)
		for i, name := range names {
			colors[name] = i
		}

		var panels []*plot.Plot
		for _, order := range b.Orders {
			p := o.newPlot(order.Name, "Samples", o.unitLabel())
			lines := 0
			for _, m := range byName(order.Methods) {
				if _, err := o.addMedian(p, m, o.Style.Color(colors[m.Name]), m.Name); err != nil {
					skip(log.Fields{"benchmark": b.Name, "order": order.Name, "method": m.Name}, err)
					continue
				}
				lines++
			}
			if lines == 0 {
				skip(log.Fields{"benchmark": b.Name, "order": order.Name}, exploration.ErrEmptyValidSet)
				continue
			}
			p.X.Tick.Marker = sampleTicks{}
			panels = append(panels, p)
		}
		if len(panels) == 0 {
			skip(log.Fields{"benchmark": b.Name}, exploration.ErrEmptyValidSet)
			continue
		}

		shareY(panels)
		for _, p := range panels {
			o.scaleY(p)
		}
		if err := o.saveTiles(panels, orderColumns, o.path(b.Name, "order_evolution")); err != nil {
			return err
		}
		drawn++
	}
	return nothingDrawn(drawn, "grouped_order_performance_evolution", e.Name)
}

// methodNames returns the union of the method names of all orders in
// first-seen order.
func methodNames(orders []*exploration.Benchmark) []string {
	var names []string
	seen := make(map[string]bool)
	for _, order := range orders {
		for _, m := range order.Methods {
			if !seen[m.Name] {
				seen[m.Name] = true
				names = append(names, m.Name)
			}
		}
	}
	return names
}
