package physics

import (
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Merge records one collision: two consumed bodies and the body that
// replaced them.
type Merge struct {
	A, B   dynamo.BodyID
	Result dynamo.State
}

// Resolve merges every body with a pending collision target into one new
// body, pairwise, in store order. A body takes part in at most one merge per
// call; later claims on an already merged body are dropped and the claimant
// passes through unchanged.
func Resolve(store *dynamo.Store) []Merge {
	bodies := store.Bodies()

	byID := make(map[dynamo.BodyID]*dynamo.Body, len(bodies))
	for _, b := range bodies {
		byID[b.ID] = b
	}

	visited := make(map[dynamo.BodyID]struct{})
	var merged []*dynamo.Body
	var events []Merge

	for _, a := range bodies {
		if a.Pending == dynamo.NoBody {
			continue
		}
		target := a.Pending
		a.Pending = dynamo.NoBody

		if _, done := visited[a.ID]; done {
			continue
		}
		if _, done := visited[target]; done {
			continue
		}
		b, ok := byID[target]
		if !ok {
			continue
		}

		visited[a.ID] = struct{}{}
		visited[b.ID] = struct{}{}
		m := Combine(a, b)
		merged = append(merged, m)
		events = append(events, Merge{A: a.ID, B: b.ID})
	}

	if len(merged) == 0 {
		return nil
	}

	store.Retain(func(b *dynamo.Body) bool {
		_, gone := visited[b.ID]
		if gone {
			return false
		}
		b.Pending = dynamo.NoBody
		return true
	})
	for i, m := range merged {
		store.Adopt(m)
		events[i].Result = m.State()
	}
	return events
}

// Combine builds the body produced by a perfectly inelastic collision of a
// and b. Momentum, mass, charge and sphere volume are conserved. The larger
// body donates its position and the heavier body its trail; ties favour a.
// The result has no ID until adopted by a store.
func Combine(a, b *dynamo.Body) *dynamo.Body {
	mass := a.Mass + b.Mass
	momentum := a.Vel.Mul(a.Mass).Add(b.Vel.Mul(b.Mass))

	// A repulsor cancelling its partner's mass leaves no inertia to divide by.
	vel := a.Vel.Add(b.Vel).Mul(0.5)
	if mass != 0 {
		vel = momentum.Mul(1 / mass)
	}

	posDonor := a
	if b.Radius > a.Radius {
		posDonor = b
	}
	trailDonor := a
	if b.Mass > a.Mass {
		trailDonor = b
	}

	return &dynamo.Body{
		Pos:     posDonor.Pos,
		Vel:     vel,
		Mass:    mass,
		Radius:  MergedRadius(a.Radius, b.Radius),
		Charge:  a.Charge + b.Charge,
		Acc:     posDonor.Acc,
		PrevAcc: posDonor.PrevAcc,
		Trail:   trailDonor.Trail.Clone(),
	}
}

// MergedRadius returns the radius of a sphere whose volume equals the sum of
// spheres of radius r1 and r2. The 4/3·π factors cancel.
func MergedRadius(r1, r2 float64) float64 {
	return math.Cbrt(r1*r1*r1 + r2*r2*r2)
}
