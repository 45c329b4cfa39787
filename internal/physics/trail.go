package physics

import "github.com/san-kum/orbitsim/internal/dynamo"

const minTrailChunk = 64

// Track appends every body's current position to its trail. Trails trim
// themselves to capacity.
func Track(store *dynamo.Store, workers int) {
	bodies := store.Bodies()
	dynamo.ParallelFor(len(bodies), workers, minTrailChunk, func(start, end int) {
		for _, b := range bodies[start:end] {
			b.Trail.Push(b.Pos)
		}
	})
}
