package dynamo

import "github.com/go-gl/mathgl/mgl64"

// Unbounded is a trail capacity that never drops points.
const Unbounded = -1

// Trail is a bounded position history, oldest first.
type Trail struct {
	points   []mgl64.Vec2
	capacity int
}

func NewTrail(capacity int, seed ...mgl64.Vec2) *Trail {
	t := &Trail{capacity: capacity}
	for _, p := range seed {
		t.Push(p)
	}
	return t
}

// Push appends p and drops the oldest points until the trail fits its
// capacity.
func (t *Trail) Push(p mgl64.Vec2) {
	t.points = append(t.points, p)
	t.trim()
}

func (t *Trail) trim() {
	if t.capacity == Unbounded || len(t.points) <= t.capacity {
		return
	}
	drop := len(t.points) - t.capacity
	n := copy(t.points, t.points[drop:])
	t.points = t.points[:n]
}

func (t *Trail) Len() int      { return len(t.points) }
func (t *Trail) Capacity() int { return t.capacity }

// SetCapacity changes the bound; shrinking drops the oldest points at once.
func (t *Trail) SetCapacity(capacity int) {
	if capacity < 0 {
		capacity = Unbounded
	}
	t.capacity = capacity
	t.trim()
}

// Points returns a copy of the history, oldest first.
func (t *Trail) Points() []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(t.points))
	copy(out, t.points)
	return out
}

// Last returns the newest point.
func (t *Trail) Last() (mgl64.Vec2, bool) {
	if len(t.points) == 0 {
		return mgl64.Vec2{}, false
	}
	return t.points[len(t.points)-1], true
}

func (t *Trail) Clone() *Trail {
	return &Trail{points: t.Points(), capacity: t.capacity}
}
