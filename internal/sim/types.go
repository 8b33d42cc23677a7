package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/orbsim/internal/orb"
)

// Handle receives the updated position of one discovered element.
type Handle interface {
	Place(center orb.Vec2, radius float64)
}

// Element is one orb as seen at discovery time.
type Element struct {
	Bounds orb.Rect
	Handle Handle
}

// Source produces the elements a simulation is built over.
type Source interface {
	Discover() []Element
}

// Viewport supplies the current boundary extent. It is queried every tick.
type Viewport interface {
	Extent() orb.Vec2
}

type TickID uint64

type TickFunc func(now time.Time)

// Scheduler is the host's frame clock.
type Scheduler interface {
	Now() time.Time
	RequestTick(fn TickFunc) TickID
	Cancel(id TickID)
}

// Frame summarises one completed tick.
type Frame struct {
	Tick       int
	Elapsed    time.Duration
	Dt         float64
	Extent     orb.Vec2
	Bodies     []orb.Snapshot
	Collisions int
	Bounces    int
}

type Observer interface {
	OnTick(f Frame)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnTick(f Frame) { fn(f) }

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	// DefaultFrameInterval is one nominal 60fps frame.
	DefaultFrameInterval = 16670 * time.Microsecond
	// DefaultMaxStep caps dt after the host was paused or backgrounded.
	DefaultMaxStep = 2.0
)

type Config struct {
	Damping       float64
	Restitution   float64
	Speed         float64
	FrameInterval time.Duration
	MaxStep       float64
	Seed          int64
}

func DefaultConfig() Config {
	return Config{
		Damping:       orb.DefaultDamping,
		Restitution:   orb.DefaultRestitution,
		Speed:         orb.DefaultSpeed,
		FrameInterval: DefaultFrameInterval,
		MaxStep:       DefaultMaxStep,
	}
}

func (c Config) validate() error {
	if !(c.Damping > 0 && c.Damping <= 1) {
		return fmt.Errorf("damping must be in (0,1], got %f: %w", c.Damping, ErrInvalidConfig)
	}
	if !(c.Restitution >= 0 && c.Restitution <= 1) {
		return fmt.Errorf("restitution must be in [0,1], got %f: %w", c.Restitution, ErrInvalidConfig)
	}
	if c.Speed < 0 {
		return fmt.Errorf("speed must be non-negative, got %f: %w", c.Speed, ErrInvalidConfig)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frame interval must be positive, got %v: %w", c.FrameInterval, ErrInvalidConfig)
	}
	if !(c.MaxStep > 0) {
		return fmt.Errorf("max step must be positive, got %f: %w", c.MaxStep, ErrInvalidConfig)
	}
	return nil
}
