// Package tui is a raw terminal host: it owns a tcell screen, turns its
// size into the viewport and fires the frame scheduler from its own loop.
package tui

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/experiment"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/source"
)

// World units covered by one terminal cell. Cells are about twice as tall
// as they are wide.
const (
	cellW = 8.0
	cellH = 16.0
)

var palette = []tcell.Color{
	tcell.ColorAqua,
	tcell.ColorFuchsia,
	tcell.ColorYellow,
	tcell.ColorLime,
	tcell.ColorOrange,
	tcell.ColorSkyblue,
}

type Host struct {
	screen tcell.Screen
	cfg    *config.Config
	logger *log.Logger
	now    func() time.Time

	view  *source.Viewport
	sched *sim.FrameScheduler
	ctrl  *sim.Controller
	seeds *experiment.Seeds
	src   experiment.MarkerSource

	cols, rows int
	paused     bool
	last       sim.Frame
	collisions int
	bounces    int
}

type Option func(*Host)

func WithLogger(l *log.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// WithClock replaces the wall clock used for frames and resize debouncing.
func WithClock(now func() time.Time) Option {
	return func(h *Host) { h.now = now }
}

// NewHost wraps an initialised screen.
func NewHost(screen tcell.Screen, cfg *config.Config, opts ...Option) *Host {
	h := &Host{
		screen: screen,
		cfg:    cfg,
		logger: log.New(io.Discard),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.sched = sim.NewFrameScheduler(h.now)
	h.seeds = experiment.NewSeeds(cfg.Run.Seed)
	h.view = &source.Viewport{}
	h.setSize(screen.Size())
	h.ctrl = sim.NewController(h.build,
		sim.WithResizeDebounce(cfg.ResizeDebounce()),
		sim.WithControllerLogger(h.logger))
	return h
}

// setSize maps the terminal, minus the status row, onto the viewport.
func (h *Host) setSize(cols, rows int) {
	h.cols, h.rows = cols, rows
	h.view.Resize(float64(cols)*cellW, float64(max(rows-1, 0))*cellH)
}

func (h *Host) build() (*sim.Simulation, error) {
	src, s, err := experiment.NewSimulation(h.cfg, h.view, h.sched, h.seeds.Next(), sim.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}
	h.src = src
	s.AddObserver(sim.ObserverFunc(func(f sim.Frame) {
		h.last = f
		h.collisions += f.Collisions
		h.bounces += f.Bounces
	}))
	h.collisions, h.bounces = 0, 0
	h.last = sim.Frame{}
	return s, nil
}

func (h *Host) Controller() *sim.Controller { return h.ctrl }

// Start launches the first simulation unless motion is reduced.
func (h *Host) Start() error {
	if h.cfg.Host.ReduceMotion {
		h.ctrl.SetReducedMotion(true)
	}
	return h.ctrl.Replace()
}

// Frame runs one host frame: fire pending ticks, settle resizes, redraw.
func (h *Host) Frame() error {
	if !h.paused {
		h.sched.Fire()
	}
	if _, err := h.ctrl.Poll(h.now()); err != nil {
		return err
	}
	h.draw()
	h.screen.Show()
	return nil
}

// HandleEvent applies a terminal event and reports whether the host
// should keep running.
func (h *Host) HandleEvent(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false, nil
		}
		if ev.Key() != tcell.KeyRune {
			return true, nil
		}
		switch ev.Rune() {
		case 'q':
			return false, nil
		case ' ':
			h.paused = !h.paused
		case 'r':
			return true, h.ctrl.Replace()
		case 'm':
			return true, h.ctrl.SetReducedMotion(!h.ctrl.ReducedMotion())
		}
	case *tcell.EventResize:
		h.setSize(ev.Size())
		h.ctrl.NoteResize(h.now())
		h.screen.Sync()
	}
	return true, nil
}

// Run loops until the user quits or ctx ends, then stops the simulation.
func (h *Host) Run(ctx context.Context) error {
	if err := h.Start(); err != nil {
		return err
	}
	defer h.ctrl.Stop()

	ticker := time.NewTicker(h.cfg.FrameInterval())
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go h.screen.ChannelEvents(events, quit)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			more, err := h.HandleEvent(ev)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		case <-ticker.C:
			if err := h.Frame(); err != nil {
				return err
			}
		}
	}
}

func (h *Host) draw() {
	h.screen.Clear()

	if h.src != nil {
		for i, m := range h.src.Markers() {
			color := palette[i%len(palette)]
			trail := tcell.StyleDefault.Foreground(color).Dim(true)
			for _, p := range m.Trail {
				h.screen.SetContent(int(p.X/cellW), int(p.Y/cellH), '·', nil, trail)
			}
			h.drawOrb(m, tcell.StyleDefault.Foreground(color))
		}
	}

	h.drawStatus()
}

// drawOrb fills every cell whose center lies inside the orb; an orb too
// small to cover a center still gets its own cell.
func (h *Host) drawOrb(m *source.Marker, style tcell.Style) {
	c, r := m.Center, m.Radius
	x0, x1 := int((c.X-r)/cellW), int((c.X+r)/cellW)
	y0, y1 := int((c.Y-r)/cellH), int((c.Y+r)/cellH)

	filled := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := (float64(x)+0.5)*cellW - c.X
			dy := (float64(y)+0.5)*cellH - c.Y
			if math.Hypot(dx, dy) <= r {
				h.screen.SetContent(x, y, '█', nil, style)
				filled = true
			}
		}
	}
	if !filled {
		h.screen.SetContent(int(c.X/cellW), int(c.Y/cellH), '●', nil, style)
	}
}

func (h *Host) status() string {
	state := "running"
	switch {
	case h.ctrl.ReducedMotion():
		state = "reduced motion"
	case h.ctrl.Current() == nil:
		state = "stopped"
	case h.paused:
		state = "paused"
	}
	return fmt.Sprintf(" orbsim | %s | bodies %d | tick %d | collisions %d | bounces %d | space:pause r:restart m:motion q:quit",
		state, len(h.last.Bodies), h.last.Tick, h.collisions, h.bounces)
}

func (h *Host) drawStatus() {
	if h.rows < 1 {
		return
	}
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range h.status() {
		if x >= h.cols {
			break
		}
		h.screen.SetContent(x, h.rows-1, r, nil, style)
		x++
	}
	for ; x < h.cols; x++ {
		h.screen.SetContent(x, h.rows-1, ' ', nil, style)
	}
}
