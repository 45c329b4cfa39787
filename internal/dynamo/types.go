package dynamo

import (
	"math"
	"runtime"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyID identifies a body for its whole lifetime. IDs are never reused
// within a store; the zero value means "no body".
type BodyID uint64

const NoBody BodyID = 0

// DefaultTrailCapacity is the number of past positions kept per body.
const DefaultTrailCapacity = 120

type Body struct {
	ID     BodyID
	Pos    mgl64.Vec2
	Vel    mgl64.Vec2
	Mass   float64
	Radius float64
	Charge float64

	// Acc is rebuilt from scratch by every force pass. PrevAcc carries the
	// previous tick's value for the Verlet scheme.
	Acc     mgl64.Vec2
	PrevAcc mgl64.Vec2

	Trail *Trail

	// Pending is the first overlapping body found by the force pass of the
	// current tick, consumed by the collision resolver.
	Pending BodyID
}

// State returns the body's kinematic state without its trail.
func (b *Body) State() State {
	return State{
		ID:     b.ID,
		Pos:    b.Pos,
		Vel:    b.Vel,
		Mass:   b.Mass,
		Radius: b.Radius,
		Charge: b.Charge,
	}
}

// IsValid reports whether every numeric field of b is finite.
func (b *Body) IsValid() bool {
	return finite(b.Pos[0]) && finite(b.Pos[1]) &&
		finite(b.Vel[0]) && finite(b.Vel[1]) &&
		finite(b.Mass) && finite(b.Radius)
}

// BodySpec describes a body to create.
type BodySpec struct {
	Pos    mgl64.Vec2
	Vel    mgl64.Vec2
	Mass   float64
	Radius float64
	Charge float64
	// TrailCapacity bounds the trail; zero selects DefaultTrailCapacity and
	// Unbounded keeps every point.
	TrailCapacity int
}

// State is a trail-free copy of a body, cheap enough to sample every frame.
type State struct {
	ID     BodyID
	Pos    mgl64.Vec2
	Vel    mgl64.Vec2
	Mass   float64
	Radius float64
	Charge float64
}

// View is the read-only shape handed to renderers.
type View struct {
	State
	Trail []mgl64.Vec2
}

// Params holds the constants consumed, never computed, by the engine.
type Params struct {
	// G is the gravitational constant.
	G float64
	// K is the charge-force constant; zero disables the electrostatic term.
	K float64
	// Epsilon is the distance below which a pair contributes nothing.
	Epsilon float64
	// Workers bounds data-parallel phases; values below 1 mean one worker
	// per CPU.
	Workers int
}

// DefaultG is G scaled up by 1e11 so pixel-sized scenes move visibly.
const DefaultG = 6.674

// DefaultEpsilon guards the inverse-square law against coincident bodies.
const DefaultEpsilon = 1e-9

func DefaultParams() Params {
	return Params{
		G:       DefaultG,
		Epsilon: DefaultEpsilon,
		Workers: runtime.NumCPU(),
	}
}

// WorkerCount resolves Workers to a usable value.
func (p Params) WorkerCount() int {
	if p.Workers < 1 {
		return runtime.NumCPU()
	}
	return p.Workers
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteVec(v mgl64.Vec2) bool {
	return finite(v[0]) && finite(v[1])
}
