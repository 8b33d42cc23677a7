package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/orbsim/internal/config"
)

var presetInfo = map[string]string{
	"default":   "ten orbs, gentle damping",
	"calm":      "few slow orbs",
	"billiards": "elastic, undamped",
	"crowd":     "forty small orbs",
	"sluggish":  "heavy damping, soft bounces",
}

// Parameters offered on the config screen.
var editable = []string{"count", "speed", "damping", "restitution", "min_radius", "max_radius", "fps"}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

type picker struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	notice        string
	opts          []Option
	width, height int
	live          Model
	hasLive       bool
}

// NewInteractiveApp returns a preset picker that launches the live view.
func NewInteractiveApp(opts ...Option) tea.Model {
	return picker{
		presets: append([]string{"default"}, config.ListPresets()...),
		opts:    opts,
		width:   80,
		height:  24,
	}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	if m.state == stateSim {
		return m.forward(msg)
	}
	return m, nil
}

func (m picker) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.live.Update(msg)
	m.live = next.(Model)
	return m, cmd
}

func (m picker) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	}
	return m.forward(msg)
}

func (m picker) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		if m.cfg = config.GetPreset(m.selected); m.cfg == nil {
			m.cfg = config.DefaultConfig()
		}
		m.state, m.paramCursor, m.notice = stateConfig, 0, ""
	}
	return m, nil
}

func (m picker) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	name := editable[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			m.editing = false
			v, err := strconv.ParseFloat(m.editBuf, 64)
			if err == nil {
				err = m.cfg.SetParam(name, v)
			}
			m.notice = ""
			if err != nil {
				m.notice = err.Error()
			}
			m.editBuf = ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-") {
				m.editBuf += s
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(editable)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		v, _ := m.cfg.Param(name)
		m.editing, m.editBuf = true, strconv.FormatFloat(v, 'f', -1, 64)
	case "s":
		return m.start()
	}
	return m, nil
}

func (m picker) start() (tea.Model, tea.Cmd) {
	if err := m.cfg.Validate(); err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.live = NewModel(m.cfg, m.opts...)
	m.hasLive = true
	m.state = stateSim
	next, _ := m.live.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	m.live = next.(Model)
	return m, m.live.Init()
}

// Err reports the error that ended the live view, if any.
func (m picker) Err() error {
	if !m.hasLive {
		return nil
	}
	return m.live.Err()
}

func (m picker) View() string {
	switch m.state {
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return m.viewMenu()
}

func (m picker) header(b *strings.Builder, title, subtitle string) {
	t := CurrentTheme
	h, sub := lipgloss.NewStyle().Foreground(t.Orb).Bold(true), lipgloss.NewStyle().Foreground(t.Muted)
	b.WriteString("\n\n    " + h.Render(title) + "\n    " + sub.Render(subtitle) + "\n    " + sub.Render("─────────────────────────") + "\n\n")
}

func keyHints(pairs ...string) string {
	t := CurrentTheme
	key, text := lipgloss.NewStyle().Foreground(t.Accent).Bold(true), lipgloss.NewStyle().Foreground(t.Muted)
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(key.Render(pairs[i]) + text.Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (m picker) row(b *strings.Builder, active bool, label, value string) {
	t := CurrentTheme
	if active {
		fmt.Fprintf(b, "    %s %s  %s\n",
			lipgloss.NewStyle().Foreground(t.Orb).Bold(true).Render("▸"),
			lipgloss.NewStyle().Foreground(t.Text).Bold(true).Render(fmt.Sprintf("%-12s", label)),
			lipgloss.NewStyle().Foreground(t.Accent).Render(value))
		return
	}
	fmt.Fprintf(b, "    %s  %s\n",
		lipgloss.NewStyle().Foreground(t.Muted).Render(fmt.Sprintf("  %-12s", label)),
		lipgloss.NewStyle().Foreground(t.Border).Render(value))
}

func (m picker) viewMenu() string {
	var b strings.Builder
	m.header(&b, "ORBSIM", "bouncing orbs in the terminal")
	for i, name := range m.presets {
		m.row(&b, i == m.cursor, name, presetInfo[name])
	}
	b.WriteString(keyHints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m picker) viewConfig() string {
	var b strings.Builder
	m.header(&b, strings.ToUpper(m.selected), presetInfo[m.selected])
	for i, name := range editable {
		v, _ := m.cfg.Param(name)
		val := fmt.Sprintf("%8.3f", v)
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		m.row(&b, i == m.paramCursor, name, val)
	}
	if m.notice != "" {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(CurrentTheme.Bad).Render(m.notice) + "\n")
	}
	b.WriteString(keyHints("j/k", "select", "enter", "edit", "s", "start", "esc", "back"))
	return b.String()
}

// RunInteractive runs the preset picker and the live view it launches.
func RunInteractive(opts ...Option) error {
	final, err := tea.NewProgram(NewInteractiveApp(opts...), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if p, ok := final.(picker); ok {
		if p.hasLive {
			p.live.Controller().Stop()
		}
		return p.Err()
	}
	return nil
}
