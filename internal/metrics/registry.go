package metrics

import (
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/sim"
)

// DefaultContainmentRadius is generous enough for every built-in preset.
const DefaultContainmentRadius = 1e6

// Default returns a fresh set of the standard run metrics.
func Default(params dynamo.Params) []sim.Metric {
	return []sim.Metric{
		NewEnergyDrift(params),
		NewMomentumDrift(),
		NewAngularMomentumDrift(),
		NewContainment(DefaultContainmentRadius),
		NewBodyCount(),
	}
}
