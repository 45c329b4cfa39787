package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for store and simulation operations.
var (
	// ErrInvalidRadius indicates a body radius that is not finite and positive.
	ErrInvalidRadius = errors.New("dynamo: radius must be finite and positive")

	// ErrInvalidMass indicates a body mass that is NaN or infinite.
	ErrInvalidMass = errors.New("dynamo: mass must be finite")

	// ErrRepulsor indicates a zero or negative mass on a store that does not
	// accept repulsors.
	ErrRepulsor = errors.New("dynamo: non-positive mass requires the repulsor extension")

	// ErrInvalidVector indicates a position or velocity with NaN or Inf components.
	ErrInvalidVector = errors.New("dynamo: position and velocity must be finite")

	// ErrUnknownBody indicates an ID that is not present in the store.
	ErrUnknownBody = errors.New("dynamo: unknown body")

	// ErrInvalidStep indicates a non-positive or non-finite time step.
	ErrInvalidStep = errors.New("dynamo: time step must be positive")

	// ErrInvalidSubsteps indicates a sub-step count below one.
	ErrInvalidSubsteps = errors.New("dynamo: substeps must be at least 1")

	// ErrInvalidSteps indicates a negative preview or analysis step count.
	ErrInvalidSteps = errors.New("dynamo: step count must not be negative")

	// ErrInvalidState indicates a body state with NaN or Inf detected.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Body    BodyID
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f) body %d: %v", e.Step, e.Time, e.Body, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
