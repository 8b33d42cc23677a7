package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbsim/internal/analysis"
	"github.com/san-kum/orbsim/internal/audio"
	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/experiment"
	"github.com/san-kum/orbsim/internal/export"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/storage"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(cmd)
	cmd.Flags().StringVar(&runName, "name", "orbs", "run name")
	cmd.Flags().StringSliceVar(&metricNames, "metrics", nil, "metrics to record (default all)")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cliLogger()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ms, err := experiment.NewRegistry().Metrics(metricNames...)
	if err != nil {
		return err
	}
	exp := experiment.New(cfg, experiment.WithLogger(logger))
	if err := exp.Setup(ms); err != nil {
		return err
	}

	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	runID, err := st.Save(runName, cfg, result.Frames, result.Metrics)
	if err != nil {
		return err
	}
	logger.Info("run saved", "id", runID, "elapsed", time.Since(start).Round(time.Millisecond))

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("frames: %d (%s simulated)\n\n", result.Ticks, result.Duration)
	return printMetrics(result.Metrics)
}

func printMetrics(metrics map[string]float64) error {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.4f\n", name, metrics[name])
	}
	return w.Flush()
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tFRAMES\tBODIES\tVIEWPORT\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.0fx%.0f\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Bodies,
			run.Width, run.Height,
			run.Seed,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, frames, nil
}

func plotCmd() *cobra.Command {
	var series string
	var body int
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a series from a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, frames, err := loadRun(args[0])
			if err != nil {
				return err
			}
			data := analysis.Series(frames, series, body)
			if len(data) == 0 {
				return fmt.Errorf("no data for series %q", series)
			}

			caption := series
			switch series {
			case "x", "y", "vx", "vy", "speed":
				caption = fmt.Sprintf("body %d %s", body, series)
			}
			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("samples: %d\n\n", len(data))
			fmt.Println(asciigraph.Plot(data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(caption),
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&series, "series", "energy", "energy, collisions, bounces, x, y, vx, vy or speed")
	cmd.Flags().IntVar(&body, "body", 0, "body index for per-body series")
	return cmd
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, frames, err := loadRun(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("samples: %d at %.0f fps\n\n", len(frames), meta.FPS)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SERIES\tFREQ (Hz)\tPERIOD (s)\tPOWER")
			row := func(name string, data []float64) {
				freq, power := analysis.DominantFrequency(data, meta.FPS)
				period := "-"
				if freq > 0 {
					period = fmt.Sprintf("%.3f", 1/freq)
				}
				fmt.Fprintf(w, "%s\t%.4f\t%s\t%.2f\n", name, freq, period, power)
			}
			row("energy", analysis.EnergySeries(frames))
			row("contacts", analysis.CollisionSeries(frames))
			for i := 0; i < min(meta.Bodies, 6); i++ {
				row(fmt.Sprintf("body %d x", i), analysis.BodySeries(frames, i, "x"))
				row(fmt.Sprintf("body %d y", i), analysis.BodySeries(frames, i, "y"))
			}
			return w.Flush()
		},
	}
}

func phaseCmd() *cobra.Command {
	var body int
	var axis string
	cmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of one body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, frames, err := loadRun(args[0])
			if err != nil {
				return err
			}
			portrait := analysis.GeneratePhasePortrait(frames, body, axis)
			if portrait == nil || len(portrait.Points) == 0 {
				return fmt.Errorf("no phase data for body %d axis %q", body, axis)
			}
			fmt.Printf("body %d: %s vs v%s\n\n", body, axis, axis)
			fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 24))
			return nil
		},
	}
	cmd.Flags().IntVar(&body, "body", 0, "body index")
	cmd.Flags().StringVar(&axis, "axis", "x", "x or y")
	return cmd
}

func divergeCmd() *cobra.Command {
	var eps float64
	cmd := &cobra.Command{
		Use:   "diverge",
		Short: "compare a run against one with perturbed initial speed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			perturbed := cfg.Clone()
			perturbed.Physics.Speed *= 1 + eps

			logger := cliLogger()
			var runs [2]*experiment.Result
			for i, c := range []*config.Config{cfg, perturbed} {
				exp := experiment.New(c, experiment.WithLogger(logger))
				if err := exp.Setup(nil); err != nil {
					return err
				}
				if runs[i], err = exp.Run(cmd.Context()); err != nil {
					return err
				}
			}

			sep := analysis.Divergence(runs[0].Frames, runs[1].Frames)
			if len(sep) == 0 {
				return fmt.Errorf("runs share no frames")
			}
			fmt.Printf("perturbation: %g\n", eps)
			fmt.Printf("final separation: %.4f\n", sep[len(sep)-1])
			fmt.Printf("growth rate: %.6f per frame\n\n", analysis.GrowthRate(sep))
			fmt.Println(asciigraph.Plot(sep,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption("rms separation"),
			))
			return nil
		},
	}
	addSimFlags(cmd)
	cmd.Flags().Float64Var(&eps, "eps", 1e-6, "relative speed perturbation")
	return cmd
}

func exportCSVCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, frames, err := loadRun(args[0])
			if err != nil {
				return err
			}
			return storage.ExportCSV(outPath, frames)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")
	return cmd
}

func exportJSONCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, frames, err := loadRun(args[0])
			if err != nil {
				return err
			}
			return storage.ExportJSON(outPath, *meta, frames)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")
	return cmd
}

func exportSVGCmd() *cobra.Command {
	var frameIdx int
	var outPath string
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render trajectories or a single frame as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, frames, err := loadRun(args[0])
			if err != nil {
				return err
			}

			var svg string
			switch {
			case frameIdx < 0:
				svg = export.TrajectoriesToSVG(frames, nil)
			case frameIdx < len(frames):
				svg = export.FrameToSVG(frames[frameIdx], nil)
			default:
				return fmt.Errorf("frame %d out of range (run has %d)", frameIdx, len(frames))
			}

			if outPath == "-" {
				_, err = fmt.Println(svg)
				return err
			}
			return os.WriteFile(outPath, []byte(svg), 0644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().IntVar(&frameIdx, "frame", -1, "render one frame instead of trajectories")
	return cmd
}

func sonifyCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "sonify [run_id]",
		Short: "render collisions and bounces of a stored run to WAV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, frames, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = meta.ID + ".wav"
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()

			interval := time.Duration(float64(time.Second) / meta.FPS)
			if err := audio.NewSonifier(interval).WriteWAV(f, frames); err != nil {
				return err
			}
			cliLogger().Info("wav written", "path", outPath, "frames", len(frames))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.wav)")
	return cmd
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tCOUNT\tRADIUS\tSPEED\tDAMPING\tRESTITUTION")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%d\t%g-%g\t%g\t%g\t%g\n",
					name,
					p.Orbs.Count,
					p.Orbs.MinRadius, p.Orbs.MaxRadius,
					p.Physics.Speed,
					p.Physics.Damping,
					p.Physics.Restitution,
				)
			}
			return w.Flush()
		},
	}
}

func benchCmd() *cobra.Command {
	var runs int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "time headless runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var total time.Duration
			ticks := 0
			for i := 0; i < runs; i++ {
				c := cfg.Clone()
				c.Run.Seed += int64(i)
				exp := experiment.New(c)
				if err := exp.Setup(nil); err != nil {
					return err
				}
				start := time.Now()
				res, err := exp.Run(cmd.Context())
				if err != nil {
					return err
				}
				total += time.Since(start)
				ticks += res.Ticks
			}

			fmt.Printf("runs: %d\n", runs)
			fmt.Printf("bodies: %d\n", cfg.Orbs.Count)
			fmt.Printf("ticks: %d\n", ticks)
			fmt.Printf("time: %v\n", total.Round(time.Microsecond))
			if total > 0 {
				fmt.Printf("ticks/sec: %.0f\n", float64(ticks)/total.Seconds())
			}
			return nil
		},
	}
	addSimFlags(cmd)
	cmd.Flags().IntVar(&runs, "runs", 10, "number of runs")
	return cmd
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err == nil {
				return fmt.Errorf("%s already exists", args[0])
			}
			return config.Save(args[0], config.DefaultConfig())
		},
	}
}
