package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	log "github.com/sirupsen/logrus"

	"tuningplot/exploration"
	"tuningplot/metrics"
)

// Stats computes the statistics row of every run and writes them to
// <Output>/<Name>.csv. Runs without statistics are skipped.
func Stats(b *exploration.Benchmark, o Options) ([]metrics.StatsRow, error) {
	var rows []metrics.StatsRow
	for _, m := range b.Methods {
		for i, run := range m.Runs {
			row, err := metrics.RunStats(m.Name, i, run)
			if err != nil {
				skip(log.Fields{"method": m.Name, "run": run.Name}, err)
				continue
			}
			rows = append(rows, row)
		}
	}
	if err := nothingDrawn(len(rows), "stats", b.Name); err != nil {
		return nil, err
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = row.Record()
	}
	path := filepath.Join(o.Output, o.Name+".csv")
	if err := writeCSV(path, metrics.StatsHeader, records); err != nil {
		return nil, err
	}
	return rows, nil
}

// OrderStats writes <Output>/<Name>_<benchmark>_order_stats.csv for every
// benchmark of an ordered experiment, one row per order.
func OrderStats(e *exploration.OrderedExperiment, o Options) error {
	written := 0
	for _, b := range e.Benchmarks {
		var rows []metrics.OrderRow
		for _, order := range b.Orders {
			row, err := metrics.OrderStats(order)
			if err != nil {
				skip(log.Fields{"benchmark": b.Name, "order": order.Name}, err)
				continue
			}
			rows = append(rows, row)
		}
		if len(rows) == 0 {
			skip(log.Fields{"benchmark": b.Name}, exploration.ErrEmptyValidSet)
			continue
		}

		header, records := metrics.OrderTable(rows)
		path := filepath.Join(o.Output, fmt.Sprintf("%s_%s_order_stats.csv", o.Name, b.Name))
		if err := writeCSV(path, header, records); err != nil {
			return err
		}
		written++
	}
	return nothingDrawn(written, "order_stats", e.Name)
}

func writeCSV(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := writeRecords(file, header, records); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.WithField("file", path).Info("wrote table")
	return nil
}

func writeRecords(w io.Writer, header []string, records [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}

//=============================================================================
// Terminal summary
//=============================================================================

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4C72B0")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// Summary prints the statistics rows to w, as a table when 'styled' is set
// (w is a terminal) and as CSV otherwise.
func Summary(w io.Writer, rows []metrics.StatsRow, styled bool) error {
	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = row.Record()
	}
	if !styled {
		return writeRecords(w, metrics.StatsHeader, records)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(metrics.StatsHeader...).
		Rows(records...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
