package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/orbsim/internal/sim"
)

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteFramesCSV writes one row per frame: frame counters followed by
// x, y, vx, vy and r for every body.
func WriteFramesCSV(w io.Writer, frames []sim.Frame) error {
	cw := csv.NewWriter(w)

	header := []string{"tick", "elapsed_ms", "dt", "width", "height", "collisions", "bounces"}
	if len(frames) > 0 {
		for i := range frames[0].Bodies {
			header = append(header,
				fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i),
				fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i),
				fmt.Sprintf("r%d", i))
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, f := range frames {
		row := []string{
			strconv.Itoa(f.Tick),
			format(float64(f.Elapsed.Microseconds()) / 1000),
			format(f.Dt),
			format(f.Extent.X),
			format(f.Extent.Y),
			strconv.Itoa(f.Collisions),
			strconv.Itoa(f.Bounces),
		}
		for _, b := range f.Bodies {
			row = append(row, format(b.Pos.X), format(b.Pos.Y), format(b.Vel.X), format(b.Vel.Y), format(b.Radius))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

type ExportBody struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
}

type ExportFrame struct {
	Tick       int          `json:"tick"`
	ElapsedMs  float64      `json:"elapsed_ms"`
	Dt         float64      `json:"dt"`
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Collisions int          `json:"collisions"`
	Bounces    int          `json:"bounces"`
	Bodies     []ExportBody `json:"bodies"`
}

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Steps  int           `json:"steps"`
	Frames []ExportFrame `json:"frames"`
}

func exportData(meta RunMetadata, frames []sim.Frame) ExportData {
	data := ExportData{
		Run:    meta,
		Steps:  len(frames),
		Frames: make([]ExportFrame, len(frames)),
	}
	for i, f := range frames {
		ef := ExportFrame{
			Tick:       f.Tick,
			ElapsedMs:  float64(f.Elapsed.Microseconds()) / 1000,
			Dt:         f.Dt,
			Width:      f.Extent.X,
			Height:     f.Extent.Y,
			Collisions: f.Collisions,
			Bounces:    f.Bounces,
			Bodies:     make([]ExportBody, len(f.Bodies)),
		}
		for j, b := range f.Bodies {
			ef.Bodies[j] = ExportBody{X: b.Pos.X, Y: b.Pos.Y, VX: b.Vel.X, VY: b.Vel.Y, Radius: b.Radius}
		}
		data.Frames[i] = ef
	}
	return data
}

func WriteJSON(w io.Writer, meta RunMetadata, frames []sim.Frame) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(meta, frames))
}

// ExportJSON writes the run to path, or to stdout when path is "-".
func ExportJSON(path string, meta RunMetadata, frames []sim.Frame) error {
	if path == "-" {
		return WriteJSON(os.Stdout, meta, frames)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, frames)
}

// ExportCSV writes frames to path, or to stdout when path is "-".
func ExportCSV(path string, frames []sim.Frame) error {
	if path == "-" {
		return WriteFramesCSV(os.Stdout, frames)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteFramesCSV(file, frames)
}
