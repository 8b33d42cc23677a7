// Package automation drives simulations from scripts: scenarios that replay
// host events, parameter sweeps and seeded trials.
package automation

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/experiment"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/source"
)

// Scenario replays a sequence of host events against a controller.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Seed        int64          `yaml:"seed"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep holds exactly one action.
type ScenarioStep struct {
	// Frames advances the clock one frame interval at a time, firing the
	// scheduler and polling the controller after each.
	Frames int `yaml:"frames,omitempty"`
	// Wait advances the clock without firing frames.
	WaitMs int `yaml:"wait_ms,omitempty"`
	Resize *struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
	} `yaml:"resize,omitempty"`
	ReduceMotion *bool `yaml:"reduce_motion,omitempty"`
	Restart      bool  `yaml:"restart,omitempty"`
}

func (s ScenarioStep) action() (string, error) {
	actions := make([]string, 0, 1)
	if s.Frames > 0 {
		actions = append(actions, fmt.Sprintf("frames %d", s.Frames))
	}
	if s.WaitMs > 0 {
		actions = append(actions, fmt.Sprintf("wait %dms", s.WaitMs))
	}
	if s.Resize != nil {
		actions = append(actions, fmt.Sprintf("resize %gx%g", s.Resize.Width, s.Resize.Height))
	}
	if s.ReduceMotion != nil {
		actions = append(actions, fmt.Sprintf("reduce_motion %t", *s.ReduceMotion))
	}
	if s.Restart {
		actions = append(actions, "restart")
	}
	if len(actions) != 1 {
		return "", fmt.Errorf("step must have exactly one action, got %d", len(actions))
	}
	return actions[0], nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if s.Preset != "" && config.GetPreset(s.Preset) == nil {
		return fmt.Errorf("unknown preset %q", s.Preset)
	}
	for i, step := range s.Steps {
		if _, err := step.action(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// StepReport describes the state after a step ran.
type StepReport struct {
	Index   int
	Action  string
	Running bool
	Ticks   int
	Bodies  int
}

type ScenarioResult struct {
	Name     string
	Steps    []StepReport
	Frames   []sim.Frame
	Restarts int
}

// Player runs scenarios on a fake clock. It owns the viewport and the
// controller the way a live host does.
type Player struct {
	cfg    *config.Config
	logger *log.Logger

	clock *sim.FakeClock
	sched *sim.FrameScheduler
	view  *source.Viewport
	ctrl  *sim.Controller
	seeds *experiment.Seeds

	frames   []sim.Frame
	restarts int
}

type Option func(*Player)

func WithLogger(l *log.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// NewPlayer prepares a player for scenario. The scenario's preset, when
// set, replaces base.
func NewPlayer(base *config.Config, scenario *Scenario, opts ...Option) *Player {
	cfg := base.Clone()
	if scenario.Preset != "" {
		if preset := config.GetPreset(scenario.Preset); preset != nil {
			cfg = preset
		}
	}
	if scenario.Seed != 0 {
		cfg.Run.Seed = scenario.Seed
	}

	p := &Player{
		cfg:    cfg,
		logger: log.New(io.Discard),
		clock:  sim.NewFakeClock(time.Unix(0, 0)),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.sched = sim.NewFrameScheduler(p.clock.Now)
	p.seeds = experiment.NewSeeds(cfg.Run.Seed)
	p.view = &source.Viewport{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height}
	p.ctrl = sim.NewController(p.build,
		sim.WithResizeDebounce(cfg.ResizeDebounce()),
		sim.WithControllerLogger(p.logger))
	return p
}

func (p *Player) build() (*sim.Simulation, error) {
	_, s, err := experiment.NewSimulation(p.cfg, p.view, p.sched, p.seeds.Next(), sim.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}
	s.AddObserver(sim.ObserverFunc(func(f sim.Frame) {
		p.frames = append(p.frames, f)
	}))
	p.restarts++
	return s, nil
}

func (p *Player) Controller() *sim.Controller { return p.ctrl }

func (p *Player) Run(ctx context.Context, scenario *Scenario) (*ScenarioResult, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	if p.cfg.Host.ReduceMotion {
		p.ctrl.SetReducedMotion(true)
	}
	if err := p.ctrl.Replace(); err != nil {
		return nil, err
	}
	defer p.ctrl.Stop()

	res := &ScenarioResult{Name: scenario.Name}
	interval := p.cfg.FrameInterval()

	for i, step := range scenario.Steps {
		action, _ := step.action()
		p.logger.Debug("scenario step", "index", i+1, "action", action)

		switch {
		case step.Frames > 0:
			for n := 0; n < step.Frames; n++ {
				if err := ctx.Err(); err != nil {
					return res, err
				}
				sim.RunFrames(p.clock, p.sched, interval, 1)
				if _, err := p.ctrl.Poll(p.clock.Now()); err != nil {
					return res, fmt.Errorf("step %d: %w", i+1, err)
				}
			}
		case step.WaitMs > 0:
			p.clock.Advance(time.Duration(step.WaitMs) * time.Millisecond)
			if _, err := p.ctrl.Poll(p.clock.Now()); err != nil {
				return res, fmt.Errorf("step %d: %w", i+1, err)
			}
		case step.Resize != nil:
			p.view.Resize(step.Resize.Width, step.Resize.Height)
			p.ctrl.NoteResize(p.clock.Now())
		case step.ReduceMotion != nil:
			if err := p.ctrl.SetReducedMotion(*step.ReduceMotion); err != nil {
				return res, fmt.Errorf("step %d: %w", i+1, err)
			}
		case step.Restart:
			if err := p.ctrl.Replace(); err != nil {
				return res, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		report := StepReport{Index: i + 1, Action: action}
		if cur := p.ctrl.Current(); cur != nil {
			report.Running = cur.State() == sim.Running
			report.Ticks = cur.Ticks()
			report.Bodies = len(cur.Bodies())
		}
		res.Steps = append(res.Steps, report)
	}

	res.Frames = p.frames
	res.Restarts = p.restarts
	return res, nil
}
