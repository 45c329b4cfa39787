// Package sim orchestrates the n-body engine.
//
// A [Simulator] owns a [dynamo.Store] and advances it one tick at a time
// through a fixed pipeline:
//
//	physics.Accumulate → integrators.Apply → physics.Resolve → physics.Track
//
// Interactive front ends call [Simulator.Advance] once per displayed frame
// with a sub-step count for fast-forward; batch runs use [Simulator.Run],
// which records frames and metrics. [RunVariants] compares configurations
// on clones of the same initial store.
package sim
