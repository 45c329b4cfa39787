package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/physics"
)

// Predict traces the path a body described by spec would follow if it were
// placed now. The preview feels every real body but exerts no pull, and the
// real bodies are held still. The store is never modified. The path stops
// early at the first step that overlaps a real body.
func (s *Simulator) Predict(spec dynamo.BodySpec, dt float64, scheme integrators.Scheme, steps int) ([]mgl64.Vec2, error) {
	if err := s.store.Validate(spec); err != nil {
		return nil, err
	}
	if err := validateStep(dt, 1); err != nil {
		return nil, err
	}
	if steps < 0 {
		return nil, fmt.Errorf("%w: got %d", dynamo.ErrInvalidSteps, steps)
	}

	preview := &dynamo.Body{Pos: spec.Pos, Vel: spec.Vel, Mass: spec.Mass, Radius: spec.Radius, Charge: spec.Charge}
	integ := integrators.New(scheme)
	path := make([]mgl64.Vec2, 0, steps+1)
	path = append(path, preview.Pos)

	for i := 0; i < steps; i++ {
		if s.overlapsAny(preview) {
			break
		}
		preview.Acc = physics.AccelerationAt(s.store, preview.Pos, preview.Charge, s.params)
		integ.Step(preview, dt)
		path = append(path, preview.Pos)
	}

	return path, nil
}

func (s *Simulator) overlapsAny(p *dynamo.Body) bool {
	for _, b := range s.store.Bodies() {
		if b.Pos.Sub(p.Pos).Len() <= b.Radius+p.Radius {
			return true
		}
	}
	return false
}
