package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var frameHeader = []string{"time", "id", "x", "y", "vx", "vy", "mass", "radius", "charge"}

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
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Substeps   int                `json:"substeps"`
	Integrator string             `json:"integrator"`
	G          float64            `json:"g"`
	K          float64            `json:"k,omitempty"`
	Bodies     int                `json:"bodies"`
	Merges     int                `json:"merges"`
	Steps      int                `json:"steps"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes meta and the recorded frames of result under a new run
// directory. ID, Timestamp, Merges and Steps are filled in from the run.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	if err := s.Init(); err != nil {
		return "", err
	}

	runID := fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	for i := 1; ; i++ {
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", err
		}
		runID = fmt.Sprintf("%s_%d_%d", meta.Name, now.UnixNano(), i)
		runDir = filepath.Join(s.baseDir, runID)
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Merges = len(result.Merges)
	meta.Steps = result.StepsTaken
	if meta.Metrics == nil {
		meta.Metrics = result.Metrics
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(frameHeader); err != nil {
		return err
	}

	for _, frame := range frames {
		t := formatFloat(frame.Time)
		if len(frame.Bodies) == 0 {
			if err := w.Write(emptyFrameRow(t)); err != nil {
				return err
			}
			continue
		}
		for _, b := range frame.Bodies {
			row := []string{
				t,
				strconv.FormatUint(uint64(b.ID), 10),
				formatFloat(b.Pos[0]),
				formatFloat(b.Pos[1]),
				formatFloat(b.Vel[0]),
				formatFloat(b.Vel[1]),
				formatFloat(b.Mass),
				formatFloat(b.Radius),
				formatFloat(b.Charge),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// emptyFrameRow marks a frame with no bodies. Body IDs start at 1, so an id
// of 0 never names a real body.
func emptyFrameRow(t string) []string {
	row := make([]string, len(frameHeader))
	for i := range row {
		row[i] = "0"
	}
	row[0] = t
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every run, oldest first. Directories without
// readable metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
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

// LoadFrames reads the recorded frames back. Consecutive rows sharing a
// timestamp form one frame.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadFrames(file)
}

// ReadFrames parses the frames.csv format. A row with id 0 stands for a
// frame in which no bodies were left.
func ReadFrames(r io.Reader) ([]sim.Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(frameHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	frames := make([]sim.Frame, 0)
	lastTime := ""
	for line, record := range records[1:] {
		state, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("frames line %d: %w", line+2, err)
		}

		if len(frames) == 0 || record[0] != lastTime {
			t, _ := strconv.ParseFloat(record[0], 64)
			frames = append(frames, sim.Frame{Time: t})
			lastTime = record[0]
		}
		if state.ID == dynamo.NoBody {
			continue
		}
		last := &frames[len(frames)-1]
		last.Bodies = append(last.Bodies, state)
	}
	return frames, nil
}

func parseRow(record []string) (dynamo.State, error) {
	id, err := strconv.ParseUint(record[1], 10, 64)
	if err != nil {
		return dynamo.State{}, err
	}

	vals := make([]float64, len(record))
	for i, field := range record {
		if i == 1 {
			continue
		}
		vals[i], err = strconv.ParseFloat(field, 64)
		if err != nil {
			return dynamo.State{}, err
		}
	}

	return dynamo.State{
		ID:     dynamo.BodyID(id),
		Pos:    mgl64.Vec2{vals[2], vals[3]},
		Vel:    mgl64.Vec2{vals[4], vals[5]},
		Mass:   vals[6],
		Radius: vals[7],
		Charge: vals[8],
	}, nil
}
