package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbsim/internal/automation"
	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/experiment"
	"github.com/san-kum/orbsim/internal/optim"
)

func scenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "replay a scripted sequence of host events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			player := automation.NewPlayer(cfg, sc, automation.WithLogger(cliLogger()))
			result, err := player.Run(cmd.Context(), sc)
			if err != nil {
				return err
			}

			fmt.Printf("scenario: %s\n", result.Name)
			if sc.Description != "" {
				fmt.Printf("%s\n", sc.Description)
			}
			fmt.Println()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tACTION\tRUNNING\tTICKS\tBODIES")
			for _, r := range result.Steps {
				fmt.Fprintf(w, "%d\t%s\t%t\t%d\t%d\n", r.Index, r.Action, r.Running, r.Ticks, r.Bodies)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\nframes: %d  restarts: %d\n", len(result.Frames), result.Restarts)
			return nil
		},
	}
	addSimFlags(cmd)
	return cmd
}

func sweepCmd() *cobra.Command {
	var sweep automation.ParameterSweep
	var metric string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one experiment per value of a parameter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			registry := experiment.NewRegistry()
			if _, err := registry.GetMetric(metric); err != nil {
				return err
			}

			results, err := automation.RunSweep(cmd.Context(), cfg, &sweep, registry, cliLogger())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(sweep.Param), strings.ToUpper(metric))
			values := make([]float64, len(results))
			for i, r := range results {
				values[i] = r.Metrics[metric]
				fmt.Fprintf(w, "%.4f\t%.4f\n", r.ParamValue, values[i])
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if len(values) > 1 {
				fmt.Println()
				fmt.Println(asciigraph.Plot(values,
					asciigraph.Height(8),
					asciigraph.Width(60),
					asciigraph.Caption(fmt.Sprintf("%s vs %s", metric, sweep.Param)),
				))
			}
			return nil
		},
	}
	addSimFlags(cmd)
	cmd.Flags().StringVar(&sweep.Param, "param", "restitution", "parameter to sweep")
	cmd.Flags().Float64Var(&sweep.Min, "min", 0, "first value")
	cmd.Flags().Float64Var(&sweep.Max, "max", 1, "last value")
	cmd.Flags().IntVar(&sweep.NumSteps, "steps", 11, "number of values")
	cmd.Flags().StringVar(&metric, "metric", "energy_decay", "metric to report")
	cmd.Flags().IntVar(&sweep.Workers, "workers", 0, "parallel runs (default GOMAXPROCS)")
	return cmd
}

func trialsCmd() *cobra.Command {
	var tc automation.TrialConfig
	cmd := &cobra.Command{
		Use:   "trials",
		Short: "repeat a run with derived seeds and count contained runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			results, err := automation.RunTrials(cmd.Context(), cfg, &tc, experiment.NewRegistry(), cliLogger())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TRIAL\tSEED\tCONTAINED\tENERGY_DECAY\tCOLLISIONS")
			for _, r := range results {
				fmt.Fprintf(w, "%d\t%d\t%t\t%.4f\t%.0f\n",
					r.TrialID, r.Seed, r.Contained, r.Metrics["energy_decay"], r.Metrics["collisions"])
			}
			if err := w.Flush(); err != nil {
				return err
			}
			contained, escaped := automation.TrialStats(results)
			fmt.Printf("\ncontained: %d  escaped: %d\n", contained, escaped)
			return nil
		},
	}
	addSimFlags(cmd)
	cmd.Flags().IntVar(&tc.NumTrials, "trials", 20, "number of trials")
	cmd.Flags().Int64Var(&tc.Seed, "trial-seed", 1, "seed for trial seeds")
	cmd.Flags().IntVar(&tc.Workers, "workers", 0, "parallel runs (default GOMAXPROCS)")
	return cmd
}

// parseRange reads "min:max:steps" into evenly spaced values.
func parseRange(s string) ([]float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("range %q: want min:max:steps", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return nil, fmt.Errorf("range %q: steps must be a positive integer", s)
	}
	if n == 1 {
		return []float64{lo}, nil
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return values, nil
}

func tuneCmd() *cobra.Command {
	var params, ranges []string
	var metric string
	var maximize bool
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search physics parameters for the best metric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(params) != len(ranges) {
				return fmt.Errorf("%d params but %d ranges", len(params), len(ranges))
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			values := make([][]float64, len(ranges))
			for i, r := range ranges {
				if values[i], err = parseRange(r); err != nil {
					return err
				}
			}
			for _, p := range params {
				if _, err := cfg.Param(p); err != nil {
					return fmt.Errorf("%w (available: %v)", err, config.ListParams())
				}
			}

			gs := optim.NewGridSearch(params, values)
			gs.Maximize = maximize
			best, score, err := gs.Search(cmd.Context(), optim.ConfigBuilder(cfg, experiment.NewRegistry()), metric)
			if err != nil {
				return err
			}

			fmt.Printf("best %s: %.4f\n", metric, score)
			for _, p := range params {
				fmt.Printf("  %s = %.4f\n", p, best[p])
			}
			return nil
		},
	}
	addSimFlags(cmd)
	cmd.Flags().StringSliceVar(&params, "params", []string{"damping", "restitution"}, "parameters to tune")
	cmd.Flags().StringSliceVar(&ranges, "ranges", []string{"0.9:1:3", "0.5:1:3"}, "min:max:steps per parameter")
	cmd.Flags().StringVar(&metric, "metric", "energy_decay", "metric to optimise")
	cmd.Flags().BoolVar(&maximize, "maximize", true, "maximise instead of minimise")
	return cmd
}
