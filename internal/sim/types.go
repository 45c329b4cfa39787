package sim

import (
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/physics"
)

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(states []dynamo.State, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every frame of a run.
type Observer interface {
	OnFrame(states []dynamo.State, t float64)
}

// Config drives Run. Duration is simulated time; each frame advances
// Substeps ticks of Dt.
type Config struct {
	Dt            float64
	Duration      float64
	Substeps      int
	Scheme        integrators.Scheme
	RecordEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.1,
		Duration:      100.0,
		Substeps:      1,
		Scheme:        integrators.Verlet,
		RecordEvery:   1,
		ValidateState: true,
	}
}

// Frame is one recorded sample of a run.
type Frame struct {
	Time   float64
	Bodies []dynamo.State
}

type Result struct {
	Frames      []Frame
	Merges      []physics.Merge
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

// Times returns the timestamp of every recorded frame.
func (r *Result) Times() []float64 {
	times := make([]float64, len(r.Frames))
	for i, f := range r.Frames {
		times[i] = f.Time
	}
	return times
}

// Report summarises one Advance call.
type Report struct {
	Ticks  int
	Merges []physics.Merge
}
