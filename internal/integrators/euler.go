package integrators

import "github.com/san-kum/orbitsim/internal/dynamo"

// SemiImplicitEuler updates velocity first, then moves with the new
// velocity. Cheaper than Verlet, with worse energy behaviour.
type SemiImplicitEuler struct{}

func NewEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Step(b *dynamo.Body, dt float64) {
	b.Vel = b.Vel.Add(b.Acc.Mul(dt))
	b.Pos = b.Pos.Add(b.Vel.Mul(dt))
	b.PrevAcc = b.Acc
}
