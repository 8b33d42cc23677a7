package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styleSet is derived from the current theme on every render.
type styleSet struct {
	canvas    lipgloss.Style
	stats     lipgloss.Style
	header    lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	graph     lipgloss.Style
	help      lipgloss.Style
	running   lipgloss.Style
	paused    lipgloss.Style
	recording lipgloss.Style
	selected  lipgloss.Style
}

func styles() styleSet {
	t := CurrentTheme
	return styleSet{
		canvas: lipgloss.NewStyle().Foreground(t.Orb).Padding(1, 2),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Border).
			Padding(1, 2).
			Width(statsWidth),
		header:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1),
		label:     lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:     lipgloss.NewStyle().Foreground(t.Text),
		graph:     lipgloss.NewStyle().Foreground(t.Good).Padding(1, 0),
		help:      lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		running:   lipgloss.NewStyle().Bold(true).Foreground(t.Good),
		paused:    lipgloss.NewStyle().Bold(true).Foreground(t.Warn),
		recording: lipgloss.NewStyle().Bold(true).Foreground(t.Bad).Blink(true),
		selected:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
	}
}

// ProgressBar renders a bar filled to percent, colored by level.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = max(0, min(filled, width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	t := CurrentTheme
	switch {
	case percent > 0.6:
		return lipgloss.NewStyle().Foreground(t.Good).Render(bar)
	case percent > 0.25:
		return lipgloss.NewStyle().Foreground(t.Warn).Render(bar)
	}
	return lipgloss.NewStyle().Foreground(t.Bad).Render(bar)
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders the last width values as block characters scaled to
// the largest of them.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	hi := 0.0
	for _, v := range values {
		hi = max(hi, v)
	}
	if hi == 0 {
		hi = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int(v / hi * float64(len(sparkChars)-1))
		sb.WriteRune(sparkChars[max(0, min(idx, len(sparkChars)-1))])
	}
	return sb.String()
}
