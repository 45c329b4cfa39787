// Package physics implements the per-tick phases of the n-body engine that
// operate on a whole [dynamo.Store]:
//
//   - [Accumulate]: all-pairs gravity (and optional charge) from a snapshot
//   - [Resolve]: pairwise momentum-conserving merges of overlapping bodies
//   - [Track]: append positions to bounded trails
//
// Integration lives in package integrators; phase ordering in package sim.
//
// # Conservation
//
// Observables for checking a run are provided over trail-free states:
//
//	states := store.States()
//	e := physics.TotalEnergy(states, params)
//	p := physics.Momentum(states)
package physics
