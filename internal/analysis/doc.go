// Package analysis post-processes recorded runs.
//
//   - [PowerSpectrum] and [DominantPeriod]: spectral estimate of an orbital
//     period from a position series
//   - [Crossings] and [CrossingPeriod]: the same estimate in the time domain
//   - [Trajectory], [EnergySeries], [CountSeries]: series extraction from
//     recorded frames
//   - [LyapunovExponent]: sensitivity of a configuration to a small nudge
//
// # Orbital period
//
//	times, pts := analysis.Trajectory(frames, id)
//	period, ok := analysis.DominantPeriod(analysis.Component(pts, 0), times[1]-times[0])
package analysis
