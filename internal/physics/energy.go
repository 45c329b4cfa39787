package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// KineticEnergy returns Σ ½·m·|v|².
func KineticEnergy(states []dynamo.State) float64 {
	ke := 0.0
	for _, s := range states {
		ke += 0.5 * s.Mass * s.Vel.Dot(s.Vel)
	}
	return ke
}

// PotentialEnergy returns the pairwise gravitational and electrostatic
// potential. Pairs closer than eps are skipped, as in the force pass.
func PotentialEnergy(states []dynamo.State, p dynamo.Params) float64 {
	pe := 0.0
	for i := 0; i < len(states); i++ {
		for j := i + 1; j < len(states); j++ {
			r := states[j].Pos.Sub(states[i].Pos).Len()
			if r < p.Epsilon {
				continue
			}
			pe -= p.G * states[i].Mass * states[j].Mass / r
			if p.K != 0 {
				pe += p.K * states[i].Charge * states[j].Charge / r
			}
		}
	}
	return pe
}

func TotalEnergy(states []dynamo.State, p dynamo.Params) float64 {
	return KineticEnergy(states) + PotentialEnergy(states, p)
}

// Momentum returns Σ m·v.
func Momentum(states []dynamo.State) mgl64.Vec2 {
	var p mgl64.Vec2
	for _, s := range states {
		p = p.Add(s.Vel.Mul(s.Mass))
	}
	return p
}

// AngularMomentum returns Σ m·(x × v) about the origin.
func AngularMomentum(states []dynamo.State) float64 {
	L := 0.0
	for _, s := range states {
		L += s.Mass * (s.Pos[0]*s.Vel[1] - s.Pos[1]*s.Vel[0])
	}
	return L
}

// CenterOfMass returns the mass-weighted mean position, or false when the
// total mass is zero.
func CenterOfMass(states []dynamo.State) (mgl64.Vec2, bool) {
	var sum mgl64.Vec2
	m := 0.0
	for _, s := range states {
		sum = sum.Add(s.Pos.Mul(s.Mass))
		m += s.Mass
	}
	if m == 0 || math.IsNaN(m) {
		return mgl64.Vec2{}, false
	}
	return sum.Mul(1 / m), true
}
