package sim

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultResizeDebounce is how long resizes must settle before the
// simulation is rebuilt.
const DefaultResizeDebounce = 250 * time.Millisecond

// Factory builds a fresh, stopped simulation over the current host state.
type Factory func() (*Simulation, error)

// Controller owns the one running simulation of a host. Reinitialisation
// always stops the old instance before the new one is constructed.
type Controller struct {
	factory  Factory
	current  *Simulation
	reduced  bool
	gate     func() bool
	debounce Debouncer
	logger   *log.Logger
}

type ControllerOption func(*Controller)

// WithMotionGate installs an extra check consulted before every start.
func WithMotionGate(allow func() bool) ControllerOption {
	return func(c *Controller) { c.gate = allow }
}

func WithResizeDebounce(d time.Duration) ControllerOption {
	return func(c *Controller) { c.debounce.Delay = d }
}

func WithControllerLogger(l *log.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

func NewController(factory Factory, opts ...ControllerOption) *Controller {
	c := &Controller{
		factory:  factory,
		debounce: Debouncer{Delay: DefaultResizeDebounce},
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the running simulation, or nil.
func (c *Controller) Current() *Simulation { return c.current }

func (c *Controller) motionAllowed() bool {
	if c.reduced {
		return false
	}
	return c.gate == nil || c.gate()
}

// Replace stops the current simulation and, when motion is allowed,
// starts a new one from the factory.
func (c *Controller) Replace() error {
	c.Stop()
	if !c.motionAllowed() {
		c.logger.Debug("motion disabled, not starting")
		return nil
	}

	s, err := c.factory()
	if err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}
	c.current = s
	return nil
}

func (c *Controller) Stop() {
	if c.current == nil {
		return
	}
	c.current.Stop()
	c.current = nil
}

func (c *Controller) ReducedMotion() bool { return c.reduced }

// SetReducedMotion stops the simulation when on, and restarts it when off.
func (c *Controller) SetReducedMotion(on bool) error {
	c.reduced = on
	if on {
		c.Stop()
		return nil
	}
	return c.Replace()
}

// NoteResize records a viewport change; the rebuild happens in Poll once
// the debounce delay has passed without further resizes.
func (c *Controller) NoteResize(now time.Time) {
	c.debounce.Touch(now)
}

// Poll rebuilds the simulation if a debounced resize is due and reports
// whether it did.
func (c *Controller) Poll(now time.Time) (bool, error) {
	if !c.debounce.Due(now) {
		return false, nil
	}
	c.logger.Debug("viewport settled, reinitialising")
	return true, c.Replace()
}

// Debouncer fires once after Delay has elapsed since the last Touch.
type Debouncer struct {
	Delay    time.Duration
	deadline time.Time
	armed    bool
}

func (d *Debouncer) Touch(now time.Time) {
	d.deadline = now.Add(d.Delay)
	d.armed = true
}

// Due reports whether the deadline passed, disarming the debouncer if so.
func (d *Debouncer) Due(now time.Time) bool {
	if !d.armed || now.Before(d.deadline) {
		return false
	}
	d.armed = false
	return true
}
