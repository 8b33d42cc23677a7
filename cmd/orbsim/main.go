package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/orb"
	"github.com/san-kum/orbsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	logFile    string

	count        int
	minRadius    float64
	maxRadius    float64
	damping      float64
	restitution  float64
	speed        float64
	fps          float64
	frames       int
	seed         int64
	width        float64
	height       float64
	reduceMotion bool
	trailLength  int

	runName     string
	metricNames []string
	theme       string
	gifPath     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "orbsim",
		Short:         "bouncing orb simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := hostLogger()
			if err != nil {
				return err
			}
			defer closeLog()
			viz.SetTheme(theme)
			return viz.RunInteractive(viz.WithLogger(logger), viz.WithGIFPath(gifPath))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orbsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file for terminal hosts")
	rootCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")
	rootCmd.Flags().StringVar(&gifPath, "gif", "orbsim.gif", "gif recording path")

	rootCmd.AddCommand(
		runCmd(),
		liveCmd(),
		termCmd(),
		listCmd(),
		plotCmd(),
		analyzeCmd(),
		phaseCmd(),
		divergeCmd(),
		exportCSVCmd(),
		exportJSONCmd(),
		exportSVGCmd(),
		sonifyCmd(),
		presetsCmd(),
		benchCmd(),
		scenarioCmd(),
		sweepCmd(),
		trialsCmd(),
		tuneCmd(),
		initConfigCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// addSimFlags registers the flags that override the loaded configuration.
func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVar(&count, "count", config.DefaultCount, "number of orbs")
	f.Float64Var(&minRadius, "min-radius", config.DefaultMinRadius, "smallest orb radius")
	f.Float64Var(&maxRadius, "max-radius", config.DefaultMaxRadius, "largest orb radius")
	f.Float64Var(&damping, "damping", orb.DefaultDamping, "velocity kept per frame")
	f.Float64Var(&restitution, "restitution", orb.DefaultRestitution, "bounce elasticity")
	f.Float64Var(&speed, "speed", orb.DefaultSpeed, "initial velocity spread")
	f.Float64Var(&fps, "fps", config.DefaultFPS, "frames per second")
	f.IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.Float64Var(&width, "width", config.DefaultWidth, "viewport width")
	f.Float64Var(&height, "height", config.DefaultHeight, "viewport height")
	f.BoolVar(&reduceMotion, "reduce-motion", false, "start with motion reduced")
	f.IntVar(&trailLength, "trail", config.DefaultTrailLength, "trail length in frames")
}

// loadConfig layers defaults, preset, config file and changed flags, in
// that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("count") {
		cfg.Orbs.Count = count
	}
	if flags.Changed("min-radius") {
		cfg.Orbs.MinRadius = minRadius
	}
	if flags.Changed("max-radius") {
		cfg.Orbs.MaxRadius = maxRadius
	}
	if flags.Changed("damping") {
		cfg.Physics.Damping = damping
	}
	if flags.Changed("restitution") {
		cfg.Physics.Restitution = restitution
	}
	if flags.Changed("speed") {
		cfg.Physics.Speed = speed
	}
	if flags.Changed("fps") {
		cfg.Physics.FPS = fps
	}
	if flags.Changed("frames") {
		cfg.Run.Frames = frames
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	} else if cfg.Run.Seed == 0 {
		cfg.Run.Seed = time.Now().UnixNano()
	}
	if flags.Changed("width") {
		cfg.Viewport.Width = width
	}
	if flags.Changed("height") {
		cfg.Viewport.Height = height
	}
	if flags.Changed("reduce-motion") {
		cfg.Host.ReduceMotion = reduceMotion
	}
	if flags.Changed("trail") {
		cfg.Host.TrailLength = trailLength
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "orbsim",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// cliLogger logs to stderr for headless commands.
func cliLogger() *log.Logger {
	return newLogger(os.Stderr)
}

// hostLogger keeps full-screen hosts quiet unless --log-file is set.
func hostLogger() (*log.Logger, func(), error) {
	if logFile == "" {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := tea.LogToFile(logFile, "orbsim")
	if err != nil {
		return nil, nil, err
	}
	return newLogger(f), func() { f.Close() }, nil
}
