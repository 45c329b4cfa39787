package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	zoomFactor = 1.25
	panPixels  = 10
	minScale   = 1e-6
)

// Camera maps world coordinates onto canvas dots. Scale is world units per
// dot; the world y axis points down the screen.
type Camera struct {
	Center mgl64.Vec2
	Scale  float64
}

func NewCamera(center mgl64.Vec2, scale float64) Camera {
	if scale < minScale {
		scale = minScale
	}
	return Camera{Center: center, Scale: scale}
}

// ToPixel projects p onto a pw×ph dot area.
func (c Camera) ToPixel(p mgl64.Vec2, pw, ph int) (int, int) {
	x := (p[0]-c.Center[0])/c.Scale + float64(pw)/2
	y := (p[1]-c.Center[1])/c.Scale + float64(ph)/2
	return int(math.Floor(x)), int(math.Floor(y))
}

// ToWorld is the inverse of ToPixel for the centre of a dot.
func (c Camera) ToWorld(x, y, pw, ph int) mgl64.Vec2 {
	return mgl64.Vec2{
		(float64(x)+0.5-float64(pw)/2)*c.Scale + c.Center[0],
		(float64(y)+0.5-float64(ph)/2)*c.Scale + c.Center[1],
	}
}

// Radius converts a world length to whole dots, never less than one.
func (c Camera) Radius(r float64) int {
	return max(1, int(math.Round(r/c.Scale)))
}

// Pan shifts the view by dx, dy dots.
func (c *Camera) Pan(dx, dy int) {
	c.Center = c.Center.Add(mgl64.Vec2{float64(dx), float64(dy)}.Mul(c.Scale))
}

func (c *Camera) ZoomIn()  { c.Scale = math.Max(c.Scale/zoomFactor, minScale) }
func (c *Camera) ZoomOut() { c.Scale *= zoomFactor }

// Fit centres the box lo..hi and scales it to fill pw×ph with a margin.
func (c *Camera) Fit(lo, hi mgl64.Vec2, pw, ph int) {
	c.Center = lo.Add(hi).Mul(0.5)
	span := hi.Sub(lo)
	scale := math.Max(span[0]/float64(pw), span[1]/float64(ph)) * 1.1
	c.Scale = math.Max(scale, minScale)
}
