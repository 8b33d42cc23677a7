package analysis

import (
	"strings"

	"github.com/san-kum/orbsim/internal/orb"
	"github.com/san-kum/orbsim/internal/sim"
)

// PhasePortrait2D holds one body's position against its velocity on a
// single axis.
type PhasePortrait2D struct {
	Body   int
	Axis   string
	Points []orb.Vec2
}

// GeneratePhasePortrait collects (position, velocity) pairs for body along
// axis "x" or "y".
func GeneratePhasePortrait(frames []sim.Frame, body int, axis string) *PhasePortrait2D {
	if axis != "x" && axis != "y" {
		return nil
	}
	portrait := &PhasePortrait2D{
		Body:   body,
		Axis:   axis,
		Points: make([]orb.Vec2, 0, len(frames)),
	}
	for _, f := range frames {
		if body < 0 || body >= len(f.Bodies) {
			continue
		}
		b := f.Bodies[body]
		p := orb.Vec2{X: b.Pos.X, Y: b.Vel.X}
		if axis == "y" {
			p = orb.Vec2{X: b.Pos.Y, Y: b.Vel.Y}
		}
		portrait.Points = append(portrait.Points, p)
	}
	return portrait
}

// PhasePortraitToASCII plots the portrait on a width x height character grid.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// zero-velocity line
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
