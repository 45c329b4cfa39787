package physics

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// minForceChunk keeps small systems on the calling goroutine.
const minForceChunk = 16

// source is the frozen view of one body used while forces are evaluated.
type source struct {
	id     dynamo.BodyID
	pos    mgl64.Vec2
	mass   float64
	radius float64
	charge float64
}

var snapshotPool = sync.Pool{
	New: func() any {
		s := make([]source, 0, 64)
		return &s
	},
}

func takeSnapshot(bodies []*dynamo.Body) *[]source {
	snap := snapshotPool.Get().(*[]source)
	s := (*snap)[:0]
	for _, b := range bodies {
		s = append(s, source{id: b.ID, pos: b.Pos, mass: b.Mass, radius: b.Radius, charge: b.Charge})
	}
	*snap = s
	return snap
}

// Accumulate rebuilds every body's acceleration from all other bodies and
// records the first overlapping body as its pending collision target.
//
// All reads go through a snapshot taken before the first write, so the
// result does not depend on iteration order. Each body's slot is written by
// exactly one worker.
func Accumulate(store *dynamo.Store, p dynamo.Params) {
	bodies := store.Bodies()
	snap := takeSnapshot(bodies)
	defer snapshotPool.Put(snap)
	src := *snap

	dynamo.ParallelFor(len(bodies), p.WorkerCount(), minForceChunk, func(start, end int) {
		for i := start; i < end; i++ {
			acc, pending := accelerationOn(i, src, p)
			bodies[i].Acc = acc
			bodies[i].Pending = pending
		}
	})
}

// accelerationOn sums the pull of every source on src[i].
func accelerationOn(i int, src []source, p dynamo.Params) (mgl64.Vec2, dynamo.BodyID) {
	self := src[i]
	var acc mgl64.Vec2
	pending := dynamo.NoBody

	for j := range src {
		if j == i {
			continue
		}
		other := src[j]

		d := other.pos.Sub(self.pos)
		r := d.Len()
		if r < p.Epsilon {
			continue
		}

		if r <= self.radius+other.radius {
			if pending == dynamo.NoBody {
				pending = other.id
			}
			continue
		}

		dir := d.Mul(1 / r)
		r2 := r * r
		acc = acc.Add(dir.Mul(p.G * other.mass / r2))

		if p.K != 0 && self.charge != 0 && other.charge != 0 {
			// Positive product pushes away from other.
			acc = acc.Sub(dir.Mul(p.K * self.charge * other.charge / r2))
		}
	}

	return acc, pending
}

// AccelerationAt returns the acceleration a test body at pos would feel
// from every body in the store, ignoring overlaps. It reads the store only.
func AccelerationAt(store *dynamo.Store, pos mgl64.Vec2, charge float64, p dynamo.Params) mgl64.Vec2 {
	var acc mgl64.Vec2
	for _, b := range store.Bodies() {
		d := b.Pos.Sub(pos)
		r := d.Len()
		if r < p.Epsilon {
			continue
		}
		dir := d.Mul(1 / r)
		r2 := r * r
		acc = acc.Add(dir.Mul(p.G * b.Mass / r2))
		if p.K != 0 && charge != 0 && b.Charge != 0 {
			acc = acc.Sub(dir.Mul(p.K * charge * b.Charge / r2))
		}
	}
	return acc
}
