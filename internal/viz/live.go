package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/experiment"
	"github.com/san-kum/orbsim/internal/metrics"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/source"
)

const (
	statsWidth      = 45
	historyCapacity = 120
	// World units covered by one braille sub-pixel.
	unitsPerDot = 4.0
	// Screen columns and rows taken by the stats panel and padding.
	chromeCols = statsWidth + 9
	chromeRows = 3
	gifDot     = 2
)

type TickMsg time.Time

// hud collects per-frame statistics for the side panel.
type hud struct {
	last       sim.Frame
	energy     []float64
	contacts   []float64
	initial    float64
	collisions int
	bounces    int
}

func (h *hud) observe(f sim.Frame) {
	e := metrics.Kinetic(f)
	if len(h.energy) == 0 {
		h.initial = e
	}
	h.energy = appendCapped(h.energy, e)
	h.contacts = appendCapped(h.contacts, float64(f.Collisions+f.Bounces))
	h.collisions += f.Collisions
	h.bounces += f.Bounces
	h.last = f
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[len(s)-historyCapacity:]
	}
	return s
}

// session is the state shared by every copy of a Model.
type session struct {
	cfg    *config.Config
	logger *log.Logger
	now    func() time.Time

	view  *source.Viewport
	sched *sim.FrameScheduler
	ctrl  *sim.Controller
	seeds *experiment.Seeds
	src   experiment.MarkerSource
	hud   hud

	frames []*image.Paletted
}

func (s *session) build() (*sim.Simulation, error) {
	src, sm, err := experiment.NewSimulation(s.cfg, s.view, s.sched, s.seeds.Next(), sim.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.src = src
	s.hud = hud{}
	sm.AddObserver(sim.ObserverFunc(s.hud.observe))
	return sm, nil
}

// Model is the bubbletea host: it sizes the viewport from the window and
// fires the frame scheduler on every TickMsg.
type Model struct {
	s             *session
	canvas        *Canvas
	width, height int
	gifPath       string
	started       bool
	paused        bool
	trails        bool
	recording     bool
	showHelp      bool
	err           error
}

type Option func(*Model)

func WithLogger(l *log.Logger) Option {
	return func(m *Model) { m.s.logger = l }
}

// WithClock replaces the wall clock used for frames and resize debouncing.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.s.now = now }
}

func WithGIFPath(path string) Option {
	return func(m *Model) { m.gifPath = path }
}

func NewModel(cfg *config.Config, opts ...Option) Model {
	m := Model{
		s: &session{
			cfg:    cfg,
			logger: log.New(io.Discard),
			now:    time.Now,
			view:   &source.Viewport{},
		},
		gifPath: "orbsim.gif",
		trails:  true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.s.sched = sim.NewFrameScheduler(m.s.now)
	m.s.seeds = experiment.NewSeeds(cfg.Run.Seed)
	m.s.ctrl = sim.NewController(m.s.build,
		sim.WithResizeDebounce(cfg.ResizeDebounce()),
		sim.WithControllerLogger(m.s.logger))
	m.resize(80, 24)
	return m
}

func (m Model) Controller() *sim.Controller { return m.s.ctrl }

func (m Model) Viewport() *source.Viewport { return m.s.view }

// Err reports the error that ended the program, if any.
func (m Model) Err() error { return m.err }

// resize fits the canvas to a terminal of cols x rows and scales the
// viewport to match.
func (m *Model) resize(cols, rows int) {
	m.width, m.height = max(cols-chromeCols, 10), max(rows-chromeRows, 5)
	m.canvas = NewCanvas(m.width, m.height)
	m.s.view.Resize(float64(m.canvas.SubWidth())*unitsPerDot, float64(m.canvas.SubHeight())*unitsPerDot)
}

func (m *Model) start() error {
	m.started = true
	if m.s.cfg.Host.ReduceMotion {
		m.s.ctrl.SetReducedMotion(true)
	}
	return m.s.ctrl.Replace()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.s.cfg.FrameInterval(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.err = err
	m.s.logger.Error("live host failed", "err", err)
	return m, tea.Quit
}

// Update handles input events and drives the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.s.ctrl.Stop()
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "r":
			if err := m.s.ctrl.Replace(); err != nil {
				return m.fail(err)
			}
		case "m":
			if err := m.s.ctrl.SetReducedMotion(!m.s.ctrl.ReducedMotion()); err != nil {
				return m.fail(err)
			}
		case "l":
			m.trails = !m.trails
		case "t":
			NextTheme()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.started {
			m.s.ctrl.NoteResize(m.s.now())
		}
	case TickMsg:
		if !m.started {
			if err := m.start(); err != nil {
				return m.fail(err)
			}
		}
		if !m.paused {
			m.s.sched.Fire()
		}
		if _, err := m.s.ctrl.Poll(m.s.now()); err != nil {
			return m.fail(err)
		}
		if m.recording {
			m.draw()
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.s.frames = m.s.frames[:0]
		return
	}
	m.recording = false
	if err := m.saveGIF(); err != nil {
		m.s.logger.Warn("gif not saved", "path", m.gifPath, "err", err)
		return
	}
	m.s.logger.Info("gif saved", "path", m.gifPath, "frames", len(m.s.frames))
}

func (m Model) status(st styleSet) string {
	switch {
	case m.recording:
		return st.recording.Render("● REC")
	case m.s.ctrl.ReducedMotion():
		return st.paused.Render("REDUCED MOTION")
	case m.s.ctrl.Current() == nil:
		return st.paused.Render("STOPPED")
	case m.paused:
		return st.paused.Render("PAUSED")
	}
	return st.running.Render("RUNNING")
}

// View renders the canvas and the stats panel side by side.
func (m Model) View() string {
	st := styles()
	m.draw()
	canvasView := st.canvas.Render(m.canvas.String())

	h := &m.s.hud
	var s strings.Builder
	s.WriteString(st.header.Render("ORBSIM") + "\n")
	s.WriteString(m.status(st) + "\n\n")

	if len(h.energy) > 1 {
		chart := asciigraph.Plot(h.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}
	s.WriteString(st.label.Render("Contacts") + Sparkline(h.contacts, 30) + "\n\n")

	energy := 0.0
	if len(h.energy) > 0 {
		energy = h.energy[len(h.energy)-1]
	}
	remaining := 1.0
	if h.initial > 0 {
		remaining = energy / h.initial
	}
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Bodies", fmt.Sprintf("%d", len(h.last.Bodies)))
	row("Tick", fmt.Sprintf("%d", h.last.Tick))
	row("Elapsed", h.last.Elapsed.Truncate(time.Millisecond).String())
	row("Energy", fmt.Sprintf("%.0f", energy))
	s.WriteString(st.label.Render("Remaining") + ProgressBar(remaining, 20) + "\n")
	row("Collisions", fmt.Sprintf("%d", h.collisions))
	row("Bounces", fmt.Sprintf("%d", h.bounces))
	row("Viewport", fmt.Sprintf("%.0fx%.0f", m.s.view.Width, m.s.view.Height))
	row("Theme", CurrentTheme.Name)

	s.WriteString(st.help.Render("─────────────────────\nSP:Pause R:Restart Q:Quit\nM:Motion L:Trails T:Theme\nG:Record ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Restart with new layout  ║
║  M        - Toggle reduced motion    ║
║  L        - Toggle trails            ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// draw rasterises the viewport border, the trails and every orb outline.
func (m Model) draw() {
	m.canvas.Clear()
	p := NewProjection(m.s.view.Extent(), m.canvas)
	m.canvas.DrawBorder(p)
	if m.s.src == nil {
		return
	}
	for _, mk := range m.s.src.Markers() {
		if m.trails {
			for _, t := range mk.Trail {
				m.canvas.Set(p.Point(t))
			}
		}
		x, y := p.Point(mk.Center)
		m.canvas.DrawCircle(x, y, p.Length(mk.Radius))
	}
}

func (m Model) captureFrame() {
	w, h := m.canvas.SubWidth(), m.canvas.SubHeight()
	img := image.NewPaletted(image.Rect(0, 0, w*gifDot, h*gifDot), color.Palette{color.Black, color.White})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < gifDot; py++ {
				for px := 0; px < gifDot; px++ {
					img.SetColorIndex(x*gifDot+px, y*gifDot+py, 1)
				}
			}
		}
	}
	m.s.frames = append(m.s.frames, img)
}

func (m Model) saveGIF() error {
	if len(m.s.frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	delay := max(int(m.s.cfg.FrameInterval()/(10*time.Millisecond)), 1)
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.s.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// RunLive runs the live host until the user quits.
func RunLive(cfg *config.Config, opts ...Option) error {
	m := NewModel(cfg, opts...)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	m.s.ctrl.Stop()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
