package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/orb"
	"github.com/san-kum/orbsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"

	// frameColumns precede the per-body columns in every row.
	frameColumns = 7
	bodyColumns  = 5
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Frames      int                `json:"frames"`
	FPS         float64            `json:"fps"`
	Bodies      int                `json:"bodies"`
	Width       float64            `json:"width"`
	Height      float64            `json:"height"`
	Damping     float64            `json:"damping"`
	Restitution float64            `json:"restitution"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json and frames.csv and
// returns its id.
func (s *Store) Save(name string, cfg *config.Config, frames []sim.Frame, metrics map[string]float64) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	bodies := 0
	if len(frames) > 0 {
		bodies = len(frames[0].Bodies)
	}
	meta := RunMetadata{
		ID:          runID,
		Name:        name,
		Timestamp:   now,
		Seed:        cfg.Run.Seed,
		Frames:      len(frames),
		FPS:         cfg.Physics.FPS,
		Bodies:      bodies,
		Width:       cfg.Viewport.Width,
		Height:      cfg.Viewport.Height,
		Damping:     cfg.Physics.Damping,
		Restitution: cfg.Physics.Restitution,
		Metrics:     metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteFramesCSV(csvFile, frames); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrames reads frames.csv back into frames. Body mass is rederived
// from the stored radius.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	frames := make([]sim.Frame, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		f, err := parseFrame(records[i])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, i+1, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func parseFrame(record []string) (sim.Frame, error) {
	if len(record) < frameColumns || (len(record)-frameColumns)%bodyColumns != 0 {
		return sim.Frame{}, fmt.Errorf("unexpected column count %d", len(record))
	}
	vals := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return sim.Frame{}, err
		}
		vals[i] = v
	}

	f := sim.Frame{
		Tick:       int(vals[0]),
		Elapsed:    time.Duration(vals[1] * float64(time.Millisecond)),
		Dt:         vals[2],
		Extent:     orb.Vec2{X: vals[3], Y: vals[4]},
		Collisions: int(vals[5]),
		Bounces:    int(vals[6]),
	}
	for i := frameColumns; i < len(vals); i += bodyColumns {
		r := vals[i+4]
		f.Bodies = append(f.Bodies, orb.Snapshot{
			Pos:    orb.Vec2{X: vals[i], Y: vals[i+1]},
			Vel:    orb.Vec2{X: vals[i+2], Y: vals[i+3]},
			Radius: r,
			Mass:   math.Pi * r * r,
		})
	}
	return f, nil
}
