// Package dynamo provides the core simulation primitives for the n-body engine.
//
// The package defines the data shared by every phase of a tick:
//
//   - [Body]: a disc with mass, radius, charge, kinematic state and a trail
//   - [Store]: the single-writer collection of bodies owned by a simulator
//   - [Trail]: bounded position history, oldest first
//   - [Params]: physical constants supplied by the caller
//
// # Example
//
//	store := dynamo.NewStore()
//	id, err := store.Insert(dynamo.BodySpec{
//	    Pos:    mgl64.Vec2{500, 400},
//	    Mass:   300000,
//	    Radius: 100,
//	})
//
// # Thread Safety
//
// A Store is NOT safe for concurrent use. The simulator owns it during a
// tick; readers must only call [Store.Query] between ticks. Phases that run
// in parallel use [ParallelFor] and write only to their own body's slot.
package dynamo
