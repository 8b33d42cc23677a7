// Package optim searches physics parameters for the best run metric.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/experiment"
)

// GridSearch evaluates every combination of the given parameter values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	// Maximize flips the objective; by default the lowest metric wins.
	Maximize bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Builder turns one parameter combination into a ready experiment.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// ConfigBuilder applies the parameters to a copy of base and sets up an
// experiment with the registry's metrics.
func ConfigBuilder(base *config.Config, registry *experiment.Registry, opts ...experiment.Option) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		ms, err := registry.Metrics()
		if err != nil {
			return nil, err
		}
		exp := experiment.New(cfg, opts...)
		if err := exp.Setup(ms); err != nil {
			return nil, err
		}
		return exp, nil
	}
}

// Search returns the best parameters and metric value. Combinations whose
// configuration is invalid are skipped; run errors abort the search.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	s := &search{build: build, metric: metricName, maximize: g.Maximize, best: math.Inf(1)}
	if g.Maximize {
		s.best = math.Inf(-1)
	}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), s); err != nil {
		return nil, 0, err
	}
	if s.bestParams == nil {
		return nil, 0, fmt.Errorf("no valid parameter combination")
	}
	return s.bestParams, s.best, nil
}

type search struct {
	build      Builder
	metric     string
	maximize   bool
	best       float64
	bestParams map[string]float64
}

func (s *search) better(v float64) bool {
	if s.maximize {
		return v > s.best
	}
	return v < s.best
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, s *search) error {
	if depth == len(g.paramNames) {
		exp, err := s.build(current)
		if err != nil {
			return nil
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}

		val, ok := result.Metrics[s.metric]
		if !ok {
			return fmt.Errorf("unknown metric: %s", s.metric)
		}
		if s.bestParams == nil || s.better(val) {
			s.best = val
			s.bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				s.bestParams[k] = v
			}
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val

		if err := g.searchRecursive(ctx, depth+1, next, s); err != nil {
			return err
		}
	}
	return nil
}
