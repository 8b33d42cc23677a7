package automation

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/experiment"
	"github.com/san-kum/orbsim/internal/sim"
)

// ParameterSweep runs one headless experiment per value of Param, spaced
// evenly over [Min, Max], on up to Workers goroutines.
type ParameterSweep struct {
	Param    string
	Min, Max float64
	NumSteps int
	Workers  int
}

type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
}

func runOnce(ctx context.Context, cfg *config.Config, registry *experiment.Registry, logger *log.Logger) (*experiment.Result, error) {
	ms, err := registry.Metrics()
	if err != nil {
		return nil, err
	}
	exp := experiment.New(cfg, experiment.WithLogger(logger))
	if err := exp.Setup(ms); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}

func RunSweep(ctx context.Context, base *config.Config, sweep *ParameterSweep, registry *experiment.Registry, logger *log.Logger) ([]SweepResult, error) {
	logger = orDiscard(logger)
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}
	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, sweep.NumSteps)
	var done atomic.Int64
	err := forEach(ctx, sweep.NumSteps, sweep.Workers, func(ctx context.Context, i int) error {
		paramVal := sweep.Min + float64(i)*paramStep
		cfg := base.Clone()
		if err := cfg.SetParam(sweep.Param, paramVal); err != nil {
			return err
		}

		result, err := runOnce(ctx, cfg, registry, logger)
		if err != nil {
			return fmt.Errorf("%s=%g: %w", sweep.Param, paramVal, err)
		}
		results[i] = SweepResult{ParamValue: paramVal, Metrics: result.Metrics}

		logger.Info("sweep", "done", done.Add(1), "of", sweep.NumSteps, sweep.Param, paramVal)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// TrialConfig runs the same configuration under many seeds.
type TrialConfig struct {
	NumTrials int
	Workers   int
	// Seed picks the trial seeds; zero uses the wall clock.
	Seed int64
}

type TrialResult struct {
	TrialID   int
	Seed      int64
	Contained bool
	Final     sim.Frame
	Metrics   map[string]float64
}

// RunTrials checks containment and collects metrics across random seeds.
func RunTrials(ctx context.Context, base *config.Config, tc *TrialConfig, registry *experiment.Registry, logger *log.Logger) ([]TrialResult, error) {
	logger = orDiscard(logger)
	if tc.NumTrials < 0 {
		return nil, fmt.Errorf("negative trial count %d", tc.NumTrials)
	}
	seed := tc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	seeds := make([]int64, tc.NumTrials)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	results := make([]TrialResult, tc.NumTrials)
	var done atomic.Int64
	err := forEach(ctx, tc.NumTrials, tc.Workers, func(ctx context.Context, trial int) error {
		cfg := base.Clone()
		cfg.Run.Seed = seeds[trial]

		result, err := runOnce(ctx, cfg, registry, logger)
		if err != nil {
			return err
		}

		tr := TrialResult{
			TrialID:   trial,
			Seed:      cfg.Run.Seed,
			Contained: result.Metrics["containment"] == 1,
			Metrics:   result.Metrics,
		}
		if n := len(result.Frames); n > 0 {
			tr.Final = result.Frames[n-1]
		}
		results[trial] = tr

		if n := done.Add(1); n%10 == 0 {
			logger.Info("trials", "done", n, "of", tc.NumTrials)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func TrialStats(results []TrialResult) (contained int, escaped int) {
	for _, r := range results {
		if r.Contained {
			contained++
		} else {
			escaped++
		}
	}
	return
}
