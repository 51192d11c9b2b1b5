// Command explore draws charts and statistics from autotuning exploration logs.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tuningplot/render"
	"tuningplot/scheduler"
)

func newRootCommand() *cobra.Command {
	config := scheduler.Defaults()
	verbose := false

	cmd := &cobra.Command{
		Use:   "explore -p <plot> -i <input>",
		Short: "Plot autotuning exploration logs",
		Long: `explore reads the CSV logs of an autotuning exploration and writes charts
and statistics about it.

The input is a benchmark directory (<input>/<method>/csv/<run>.csv) for most
plots. The experiment plots (speedup_stacking, tuning_budget,
performance_evolution_budget and performance_evolution_grouped) read a
directory holding several benchmarks. The order plots (order_stats,
order_ranges and grouped_order_performance_evolution) read an ordered
experiment laid out as <input>/<benchmark>/<order>/<method>/csv/<run>.csv.

Plots: ` + strings.Join(scheduler.Plots(), ", "),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Resolve(); err != nil {
				return err
			}

			start := time.Now()
			if err := scheduler.Schedule(config); err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"plot":    config.Plot,
				"seconds": fmt.Sprintf("%.2f", time.Since(start).Seconds()),
			}).Info("done")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&config.Plot, "plot", "p", "", "plot to draw")
	flags.StringVarP(&config.Input, "input", "i", "", "exploration directory to read")
	flags.StringVarP(&config.Output, "output", "o", "", "directory to write to (default the input directory)")
	flags.StringVarP(&config.Name, "name", "n", "", "prefix of the written files (default the last element of the output directory)")
	flags.Float64VarP(&config.Expert, "expert", "e", 0, "runtime of the expert configuration, drawn as a reference line")
	flags.Float64VarP(&config.Default, "default", "d", 0, "runtime of the default configuration, baseline of the speedups")
	flags.BoolVarP(&config.Log, "log", "l", false, "logarithmic y axis")
	flags.IntVar(&config.Limit, "limit", 0, "only consider the first samples of each run (0 for all)")
	flags.StringVarP(&config.Format, "format", "f", config.Format, "file format of the charts (pdf, png, svg, eps, jpg, tif)")
	flags.StringVarP(&config.Unit, "unit", "u", render.UnitRuntime, "unit of the y axis (runtime or gflops)")
	flags.BoolVar(&config.IncludeInvalid, "include-invalid", false, "draw fully invalid tuning groups in tuning_ranges")
	flags.StringVarP(&config.Method, "method", "m", config.Method, "method compared against the others by speedup_stacking")
	flags.StringVar(&config.StylePath, "style", "", "yaml file overriding the chart style")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug messages")

	_ = cmd.MarkFlagRequired("plot")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.WithError(err).Error("explore failed")
		os.Exit(1)
	}
}
