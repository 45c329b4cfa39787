package integrators

import (
	"fmt"
	"strings"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Scheme selects the state-transition rule applied to every body in a tick.
// The zero value is Verlet.
type Scheme int

const (
	Verlet Scheme = iota
	Euler
)

var schemeNames = map[Scheme]string{
	Verlet: "verlet",
	Euler:  "euler",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scheme(%d)", int(s))
}

// Toggle returns the other scheme.
func (s Scheme) Toggle() Scheme {
	if s == Euler {
		return Verlet
	}
	return Euler
}

func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "verlet", "velocity-verlet", "":
		return Verlet, nil
	case "euler", "semi-implicit-euler", "symplectic-euler":
		return Euler, nil
	}
	return 0, fmt.Errorf("unknown integrator: %s", name)
}

func (s Scheme) MarshalText() ([]byte, error) {
	if _, ok := schemeNames[s]; !ok {
		return nil, fmt.Errorf("unknown integrator: %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Scheme) UnmarshalText(text []byte) error {
	parsed, err := ParseScheme(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Schemes lists the accepted scheme names.
func Schemes() []string {
	return []string{Verlet.String(), Euler.String()}
}

// Integrator advances one body by dt from its accumulated acceleration.
type Integrator interface {
	Step(b *dynamo.Body, dt float64)
}

func New(s Scheme) Integrator {
	if s == Euler {
		return NewEuler()
	}
	return NewVerlet()
}

const minIntegrateChunk = 64

// Apply advances every body in store with the same scheme. Bodies are
// independent, so the work is split across workers.
func Apply(store *dynamo.Store, s Scheme, dt float64, workers int) {
	integ := New(s)
	bodies := store.Bodies()
	dynamo.ParallelFor(len(bodies), workers, minIntegrateChunk, func(start, end int) {
		for _, b := range bodies[start:end] {
			integ.Step(b, dt)
		}
	})
}
