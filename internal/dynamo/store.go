package dynamo

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Store holds every simulated body in insertion order. Merged bodies are
// appended at the end, so iteration order is stable between ticks.
type Store struct {
	bodies         []*Body
	nextID         BodyID
	allowRepulsors bool
}

type StoreOption func(*Store)

// WithRepulsors lets Insert accept zero and negative masses.
func WithRepulsors() StoreOption {
	return func(s *Store) { s.allowRepulsors = true }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{bodies: make([]*Body, 0)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AllowsRepulsors reports whether the store was built WithRepulsors.
func (s *Store) AllowsRepulsors() bool { return s.allowRepulsors }

// Validate checks spec against the store's admission rules.
func (s *Store) Validate(spec BodySpec) error {
	if !finite(spec.Radius) || spec.Radius <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidRadius, spec.Radius)
	}
	if !finite(spec.Mass) {
		return fmt.Errorf("%w: got %v", ErrInvalidMass, spec.Mass)
	}
	if spec.Mass <= 0 && !s.allowRepulsors {
		return fmt.Errorf("%w: got %v", ErrRepulsor, spec.Mass)
	}
	if !finiteVec(spec.Pos) || !finiteVec(spec.Vel) || !finite(spec.Charge) {
		return ErrInvalidVector
	}
	return nil
}

// Insert validates spec and adds a new body, returning its ID.
func (s *Store) Insert(spec BodySpec) (BodyID, error) {
	if err := s.Validate(spec); err != nil {
		return NoBody, err
	}

	capacity := spec.TrailCapacity
	if capacity == 0 {
		capacity = DefaultTrailCapacity
	}

	// Seeded off-centre so the first rendered segment has non-zero length.
	seed := spec.Pos.Add(mgl64.Vec2{spec.Radius / 2, spec.Radius / 2})

	return s.Adopt(&Body{
		Pos:    spec.Pos,
		Vel:    spec.Vel,
		Mass:   spec.Mass,
		Radius: spec.Radius,
		Charge: spec.Charge,
		Trail:  NewTrail(capacity, seed),
	}), nil
}

// Adopt appends an already-built body, assigning it a fresh ID. It is the
// entry point for bodies produced by the engine itself, which are valid by
// construction.
func (s *Store) Adopt(b *Body) BodyID {
	s.nextID++
	b.ID = s.nextID
	if b.Trail == nil {
		b.Trail = NewTrail(DefaultTrailCapacity)
	}
	s.bodies = append(s.bodies, b)
	return b.ID
}

// Remove deletes the body with the given ID.
func (s *Store) Remove(id BodyID) error {
	for i, b := range s.bodies {
		if b.ID == id {
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownBody, id)
}

// Retain keeps only the bodies for which keep returns true, preserving order.
func (s *Store) Retain(keep func(*Body) bool) {
	n := 0
	for _, b := range s.bodies {
		if keep(b) {
			s.bodies[n] = b
			n++
		}
	}
	for i := n; i < len(s.bodies); i++ {
		s.bodies[i] = nil
	}
	s.bodies = s.bodies[:n]
}

func (s *Store) Get(id BodyID) (*Body, bool) {
	for _, b := range s.bodies {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

func (s *Store) Len() int { return len(s.bodies) }

// Bodies exposes the live bodies to the engine phases. Callers outside a
// tick should use Query.
func (s *Store) Bodies() []*Body { return s.bodies }

// Query returns read-only copies of every body including trails.
func (s *Store) Query() []View {
	views := make([]View, len(s.bodies))
	for i, b := range s.bodies {
		views[i] = View{State: b.State(), Trail: b.Trail.Points()}
	}
	return views
}

// States returns trail-free copies of every body.
func (s *Store) States() []State {
	states := make([]State, len(s.bodies))
	for i, b := range s.bodies {
		states[i] = b.State()
	}
	return states
}

// Clear removes every body. IDs keep increasing afterwards.
func (s *Store) Clear() {
	for i := range s.bodies {
		s.bodies[i] = nil
	}
	s.bodies = s.bodies[:0]
}

// Clone returns a deep copy sharing no mutable state with s.
func (s *Store) Clone() *Store {
	c := &Store{
		bodies:         make([]*Body, len(s.bodies)),
		nextID:         s.nextID,
		allowRepulsors: s.allowRepulsors,
	}
	for i, b := range s.bodies {
		cp := *b
		cp.Trail = b.Trail.Clone()
		c.bodies[i] = &cp
	}
	return c
}

// CheckFinite returns the first body holding a NaN or Inf value.
func (s *Store) CheckFinite() (BodyID, bool) {
	for _, b := range s.bodies {
		if !b.IsValid() {
			return b.ID, false
		}
	}
	return NoBody, true
}

// TotalMass sums the mass of every body.
func (s *Store) TotalMass() float64 {
	m := 0.0
	for _, b := range s.bodies {
		m += b.Mass
	}
	return m
}

// Bounds returns the axis-aligned box enclosing every body disc.
func (s *Store) Bounds() (lo, hi mgl64.Vec2, ok bool) {
	if len(s.bodies) == 0 {
		return lo, hi, false
	}
	lo = mgl64.Vec2{math.Inf(1), math.Inf(1)}
	hi = mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, b := range s.bodies {
		lo[0] = math.Min(lo[0], b.Pos[0]-b.Radius)
		lo[1] = math.Min(lo[1], b.Pos[1]-b.Radius)
		hi[0] = math.Max(hi[0], b.Pos[0]+b.Radius)
		hi[1] = math.Max(hi[1], b.Pos[1]+b.Radius)
	}
	return lo, hi, true
}
