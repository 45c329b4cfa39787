package integrators

import "github.com/san-kum/orbitsim/internal/dynamo"

// VelocityVerlet averages this tick's and the previous tick's acceleration
// for the velocity kick and adds the second-order term to the drift.
type VelocityVerlet struct{}

func NewVerlet() *VelocityVerlet {
	return &VelocityVerlet{}
}

func (v *VelocityVerlet) Step(b *dynamo.Body, dt float64) {
	avg := b.Acc.Add(b.PrevAcc).Mul(0.5)
	b.Vel = b.Vel.Add(avg.Mul(dt))
	b.Pos = b.Pos.Add(b.Vel.Mul(dt)).Add(b.Acc.Mul(0.5 * dt * dt))
	b.PrevAcc = b.Acc
}
