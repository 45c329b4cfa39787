package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
)

// EnergyDrift reports the largest relative departure of total energy from
// its value at the first observed frame. Merges are inelastic, so runs with
// collisions always show some drift.
type EnergyDrift struct {
	name          string
	params        dynamo.Params
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(params dynamo.Params) *EnergyDrift {
	return &EnergyDrift{
		name:   "energy_drift",
		params: params,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(states []dynamo.State, t float64) {
	energy := physics.TotalEnergy(states, e.params)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift reports the largest absolute change of total linear
// momentum. It stays at rounding level whether or not bodies merge.
type MomentumDrift struct {
	name     string
	initial  mgl64.Vec2
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(states []dynamo.State, t float64) {
	p := physics.Momentum(states)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Len())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = mgl64.Vec2{}
	m.maxDrift = 0
	m.samples = 0
}

// AngularMomentumDrift reports the largest absolute change of angular
// momentum about the origin.
type AngularMomentumDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift"}
}

func (a *AngularMomentumDrift) Name() string { return a.name }

func (a *AngularMomentumDrift) Observe(states []dynamo.State, t float64) {
	L := physics.AngularMomentum(states)
	if a.samples == 0 {
		a.initial = L
	}
	a.samples++
	a.maxDrift = math.Max(a.maxDrift, math.Abs(L-a.initial))
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = 0
	a.maxDrift = 0
	a.samples = 0
}
