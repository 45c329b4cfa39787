package analysis

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/sim"
)

// LyapunovExponent estimates the largest Lyapunov exponent of the system in
// base by nudging body id along x and following the separation between the
// reference and perturbed copies. A positive value indicates chaos. The
// estimate stops early if the two copies stop having matching body counts,
// since a merge in only one of them makes the separation meaningless.
//
// The deviation is rescaled back to the initial size after every step and
// λ ≈ Σ ln(|δx_k|/|δx_0|) / (steps·dt).
func LyapunovExponent(base *dynamo.Store, params dynamo.Params, scheme integrators.Scheme, id dynamo.BodyID, dt float64, steps int, perturbation float64) (float64, error) {
	if perturbation <= 0 {
		return 0, fmt.Errorf("perturbation must be positive, got %v", perturbation)
	}
	if steps < 0 {
		return 0, fmt.Errorf("%w: got %d", dynamo.ErrInvalidSteps, steps)
	}
	if _, ok := base.Get(id); !ok {
		return 0, fmt.Errorf("%w: %d", dynamo.ErrUnknownBody, id)
	}

	ref := base.Clone()
	pert := base.Clone()
	b, _ := pert.Get(id)
	b.Pos = b.Pos.Add(mgl64.Vec2{perturbation, 0})

	refSim := sim.New(ref, params)
	pertSim := sim.New(pert, params)

	d0 := perturbation
	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		if _, err := refSim.Advance(dt, scheme, 1); err != nil {
			return 0, err
		}
		if _, err := pertSim.Advance(dt, scheme, 1); err != nil {
			return 0, err
		}
		if ref.Len() != pert.Len() {
			break
		}

		sep := separation(ref.Bodies(), pert.Bodies())
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)
		count++

		scale := d0 / sep
		rb, pb := ref.Bodies(), pert.Bodies()
		for j := range pb {
			pb[j].Pos = rb[j].Pos.Add(pb[j].Pos.Sub(rb[j].Pos).Mul(scale))
			pb[j].Vel = rb[j].Vel.Add(pb[j].Vel.Sub(rb[j].Vel).Mul(scale))
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(count) * dt), nil
}

func separation(a, b []*dynamo.Body) float64 {
	sum := 0.0
	for i := range a {
		d := b[i].Pos.Sub(a[i].Pos)
		sum += d.Dot(d)
	}
	return math.Sqrt(sum)
}
