// Package export renders frames and trajectories as SVG.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/orbsim/internal/orb"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/viz"
)

// DefaultPalette cycles through body colors.
var DefaultPalette = []string{"#00ff9f", "#ff6ac1", "#57c7ff", "#f3f99d", "#ff9f43", "#c792ea"}

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

func color(palette []string, i int) string {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return palette[i%len(palette)]
}

// FrameToSVG draws every body of f as a filled circle in viewport
// coordinates.
func FrameToSVG(f sim.Frame, palette []string) string {
	var sb strings.Builder
	header(&sb, f.Extent.X, f.Extent.Y)
	circles(&sb, f, palette)
	sb.WriteString("</svg>")
	return sb.String()
}

func circles(sb *strings.Builder, f sim.Frame, palette []string) {
	for i, b := range f.Bodies {
		fmt.Fprintf(sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.8"/>
`, b.Pos.X, b.Pos.Y, b.Radius, color(palette, i))
	}
}

// TrajectoriesToSVG draws the path of every body across frames, with the
// final positions as circles. The viewport is taken from the last frame.
func TrajectoriesToSVG(frames []sim.Frame, palette []string) string {
	if len(frames) == 0 {
		return ""
	}
	last := frames[len(frames)-1]

	var sb strings.Builder
	header(&sb, last.Extent.X, last.Extent.Y)

	for i := range last.Bodies {
		points := make([]orb.Vec2, 0, len(frames))
		for _, f := range frames {
			if i < len(f.Bodies) {
				points = append(points, f.Bodies[i].Pos)
			}
		}
		if len(points) < 2 {
			continue
		}

		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" stroke-opacity="0.6" d="M%.1f,%.1f`,
			color(palette, i), points[0].X, points[0].Y)
		for _, p := range points[1:] {
			fmt.Fprintf(&sb, " L%.1f,%.1f", p.X, p.Y)
		}
		sb.WriteString(`"/>
`)
	}

	circles(&sb, last, palette)
	sb.WriteString("</svg>")
	return sb.String()
}

// CanvasToSVG converts a braille canvas to dots, scale pixels per sub-pixel.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	var sb strings.Builder
	header(&sb, float64(canvas.Width)*scale*2, float64(canvas.Height)*scale*4)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", DefaultPalette[0])

	dot := scale * 0.4
	for y := 0; y < canvas.Height*4; y++ {
		for x := 0; x < canvas.Width*2; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, float64(x)*scale+scale/2, float64(y)*scale+scale/2, dot)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
