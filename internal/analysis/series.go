package analysis

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
)

// Trajectory collects the recorded positions of one body. Frames in which
// the body does not exist (before insertion or after a merge) are skipped.
func Trajectory(frames []sim.Frame, id dynamo.BodyID) (times []float64, points []mgl64.Vec2) {
	for _, f := range frames {
		for _, b := range f.Bodies {
			if b.ID == id {
				times = append(times, f.Time)
				points = append(points, b.Pos)
				break
			}
		}
	}
	return times, points
}

// Component extracts one axis of a trajectory.
func Component(points []mgl64.Vec2, axis int) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p[axis]
	}
	return out
}

// EnergySeries is the total energy of every frame.
func EnergySeries(frames []sim.Frame, p dynamo.Params) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = physics.TotalEnergy(f.Bodies, p)
	}
	return out
}

// CountSeries is the number of bodies in every frame.
func CountSeries(frames []sim.Frame) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = float64(len(f.Bodies))
	}
	return out
}

// Crossings returns the interpolated times at which values rises through
// threshold.
func Crossings(times, values []float64, threshold float64) []float64 {
	var out []float64
	for i := 1; i < len(values) && i < len(times); i++ {
		prev, curr := values[i-1], values[i]
		if prev < threshold && curr >= threshold {
			frac := (threshold - prev) / (curr - prev)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// CrossingPeriod is the mean interval between successive upward crossings
// of the series mean.
func CrossingPeriod(times, values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	c := Crossings(times, values, mean)
	if len(c) < 2 {
		return 0, false
	}
	return (c[len(c)-1] - c[0]) / float64(len(c)-1), true
}

// TrajectoryToASCII draws points on a width×height character grid scaled
// to their bounding box.
func TrajectoryToASCII(points []mgl64.Vec2, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0][0], points[0][0]
	minY, maxY := points[0][1], points[0][1]
	for _, p := range points {
		minX = math.Min(minX, p[0])
		maxX = math.Max(maxX, p[0])
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p[0] - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p[1]-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && grid[row][col] == ' ' {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
