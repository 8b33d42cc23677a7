package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbsim/internal/orb"
	"github.com/san-kum/orbsim/internal/sim"
)

const (
	DefaultWidth          = 800.0
	DefaultHeight         = 600.0
	DefaultCount          = 10
	DefaultMinRadius      = 20.0
	DefaultMaxRadius      = 60.0
	DefaultFPS            = 60.0
	DefaultFrames         = 600
	DefaultResizeDebounce = 250
	DefaultTrailLength    = 32
)

type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`
	Orbs     OrbsConfig     `yaml:"orbs"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Run      RunConfig      `yaml:"run"`
	Host     HostConfig     `yaml:"host"`
}

type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// OrbsConfig either lists explicit rectangles or asks for Count orbs
// scattered at random with radius in [MinRadius, MaxRadius].
type OrbsConfig struct {
	Count     int        `yaml:"count"`
	MinRadius float64    `yaml:"min_radius"`
	MaxRadius float64    `yaml:"max_radius"`
	Rects     []orb.Rect `yaml:"rects,omitempty"`
}

type PhysicsConfig struct {
	Damping     float64 `yaml:"damping"`
	Restitution float64 `yaml:"restitution"`
	Speed       float64 `yaml:"speed"`
	MaxStep     float64 `yaml:"max_step"`
	FPS         float64 `yaml:"fps"`
}

type RunConfig struct {
	Frames int   `yaml:"frames"`
	Seed   int64 `yaml:"seed"`
}

type HostConfig struct {
	ResizeDebounceMs int  `yaml:"resize_debounce_ms"`
	ReduceMotion     bool `yaml:"reduce_motion"`
	TrailLength      int  `yaml:"trail_length"`
}

func DefaultConfig() *Config {
	return &Config{
		Viewport: ViewportConfig{Width: DefaultWidth, Height: DefaultHeight},
		Orbs: OrbsConfig{
			Count:     DefaultCount,
			MinRadius: DefaultMinRadius,
			MaxRadius: DefaultMaxRadius,
		},
		Physics: PhysicsConfig{
			Damping:     orb.DefaultDamping,
			Restitution: orb.DefaultRestitution,
			Speed:       orb.DefaultSpeed,
			MaxStep:     sim.DefaultMaxStep,
			FPS:         DefaultFPS,
		},
		Run: RunConfig{Frames: DefaultFrames},
		Host: HostConfig{
			ResizeDebounceMs: DefaultResizeDebounce,
			TrailLength:      DefaultTrailLength,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Viewport.Width < 0 || c.Viewport.Height < 0:
		return fmt.Errorf("viewport %gx%g: %w", c.Viewport.Width, c.Viewport.Height, ErrInvalid)
	case c.Orbs.Count < 0:
		return fmt.Errorf("orb count %d: %w", c.Orbs.Count, ErrInvalid)
	case len(c.Orbs.Rects) == 0 && c.Orbs.Count > 0 && !(c.Orbs.MinRadius > 0 && c.Orbs.MaxRadius >= c.Orbs.MinRadius):
		return fmt.Errorf("radius range [%g, %g]: %w", c.Orbs.MinRadius, c.Orbs.MaxRadius, ErrInvalid)
	case !(c.Physics.Damping > 0 && c.Physics.Damping <= 1):
		return fmt.Errorf("damping %g not in (0,1]: %w", c.Physics.Damping, ErrInvalid)
	case !(c.Physics.Restitution >= 0 && c.Physics.Restitution <= 1):
		return fmt.Errorf("restitution %g not in [0,1]: %w", c.Physics.Restitution, ErrInvalid)
	case c.Physics.Speed < 0:
		return fmt.Errorf("speed %g: %w", c.Physics.Speed, ErrInvalid)
	case !(c.Physics.MaxStep > 0):
		return fmt.Errorf("max step %g: %w", c.Physics.MaxStep, ErrInvalid)
	case !(c.Physics.FPS > 0):
		return fmt.Errorf("fps %g: %w", c.Physics.FPS, ErrInvalid)
	case c.Run.Frames < 0:
		return fmt.Errorf("frames %d: %w", c.Run.Frames, ErrInvalid)
	case c.Host.ResizeDebounceMs < 0:
		return fmt.Errorf("resize debounce %dms: %w", c.Host.ResizeDebounceMs, ErrInvalid)
	}
	return nil
}

func (c *Config) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.Physics.FPS)
}

func (c *Config) ResizeDebounce() time.Duration {
	return time.Duration(c.Host.ResizeDebounceMs) * time.Millisecond
}

// Sim returns the tick loop configuration.
func (c *Config) Sim() sim.Config {
	return sim.Config{
		Damping:       c.Physics.Damping,
		Restitution:   c.Physics.Restitution,
		Speed:         c.Physics.Speed,
		FrameInterval: c.FrameInterval(),
		MaxStep:       c.Physics.MaxStep,
		Seed:          c.Run.Seed,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	if c.Orbs.Rects != nil {
		cp.Orbs.Rects = append([]orb.Rect(nil), c.Orbs.Rects...)
	}
	return &cp
}
