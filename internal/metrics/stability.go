package metrics

import (
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
)

// Containment is the fraction of frames in which every body stays within
// radius of the centre of mass. Escapes and slingshots lower it.
type Containment struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewContainment(radius float64) *Containment {
	return &Containment{
		name:   "containment",
		radius: radius,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(states []dynamo.State, t float64) {
	c.samples++
	com, ok := physics.CenterOfMass(states)
	if !ok {
		return
	}
	for _, s := range states {
		if s.Pos.Sub(com).Len() > c.radius {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}

// BodyCount reports the number of bodies in the last observed frame.
type BodyCount struct {
	last int
}

func NewBodyCount() *BodyCount { return &BodyCount{} }

func (b *BodyCount) Name() string                             { return "body_count" }
func (b *BodyCount) Observe(states []dynamo.State, t float64) { b.last = len(states) }
func (b *BodyCount) Value() float64                           { return float64(b.last) }
func (b *BodyCount) Reset()                                   { b.last = 0 }
