package viz

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	if w, h := c.PixelSize(); w != 4 || h != 4 {
		t.Fatalf("PixelSize() = %d,%d, want 4,4", w, h)
	}

	c.Set(0, 0)
	c.Set(1, 3)
	if c.Grid[0][0] != 0x2800|0x1|0x80 {
		t.Errorf("cell = %U, want %U", c.Grid[0][0], rune(0x2800|0x1|0x80))
	}
	if !c.IsSet(1, 3) || c.IsSet(1, 2) {
		t.Error("IsSet disagrees with Set")
	}

	c.Unset(0, 0)
	if c.Grid[0][0] != 0x2800|0x80 {
		t.Errorf("after Unset cell = %U", c.Grid[0][0])
	}

	// Out of range is ignored.
	c.Set(-1, 0)
	c.Set(100, 100)

	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("expected a blank canvas after Clear")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 3)
	c.DrawLine(0, 0, 19, 0)
	for x := 0; x < 20; x++ {
		if !c.IsSet(x, 0) {
			t.Fatalf("dot %d not set", x)
		}
	}

	c.Clear()
	c.DrawLine(0, 0, 5, 5)
	for i := 0; i <= 5; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal dot %d not set", i)
		}
	}
}

func TestCanvasCircles(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawCircle(10, 10, 4)
	for _, p := range [][2]int{{14, 10}, {6, 10}, {10, 14}, {10, 6}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("outline missing %v", p)
		}
	}
	if c.IsSet(10, 10) {
		t.Error("outline should leave the centre empty")
	}

	c.Clear()
	c.FillCircle(10, 10, 2)
	if !c.IsSet(10, 10) || !c.IsSet(11, 11) || c.IsSet(12, 12) {
		t.Error("unexpected filled disc")
	}
}

func TestCamera(t *testing.T) {
	cam := NewCamera(mgl64.Vec2{100, 50}, 2)

	x, y := cam.ToPixel(mgl64.Vec2{100, 50}, 40, 20)
	if x != 20 || y != 10 {
		t.Errorf("centre maps to %d,%d, want 20,10", x, y)
	}
	x, y = cam.ToPixel(mgl64.Vec2{110, 40}, 40, 20)
	if x != 25 || y != 5 {
		t.Errorf("offset maps to %d,%d, want 25,5", x, y)
	}

	w := cam.ToWorld(25, 5, 40, 20)
	if px, py := cam.ToPixel(w, 40, 20); px != 25 || py != 5 {
		t.Errorf("ToWorld round trip = %d,%d", px, py)
	}

	if cam.Radius(0.1) != 1 || cam.Radius(10) != 5 {
		t.Errorf("Radius = %d,%d", cam.Radius(0.1), cam.Radius(10))
	}

	cam.Pan(10, 0)
	if cam.Center != (mgl64.Vec2{120, 50}) {
		t.Errorf("Pan center = %v", cam.Center)
	}

	cam.ZoomIn()
	if cam.Scale >= 2 {
		t.Error("ZoomIn should shrink the scale")
	}
	cam.ZoomOut()
	if math.Abs(cam.Scale-2) > 1e-12 {
		t.Errorf("ZoomOut scale = %v, want 2", cam.Scale)
	}
}

func TestCameraFit(t *testing.T) {
	var cam Camera
	cam.Fit(mgl64.Vec2{0, 0}, mgl64.Vec2{100, 10}, 50, 50)

	if cam.Center != (mgl64.Vec2{50, 5}) {
		t.Errorf("center = %v", cam.Center)
	}
	x0, _ := cam.ToPixel(mgl64.Vec2{0, 5}, 50, 50)
	x1, _ := cam.ToPixel(mgl64.Vec2{100, 5}, 50, 50)
	if x0 < 0 || x1 >= 50 {
		t.Errorf("fitted box spans %d..%d, want inside 0..49", x0, x1)
	}
}
