package viz

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"

	printerWidth  = 70
	printerHeight = 20
)

// FramePrinter is a run observer that redraws the bodies in place on a
// plain terminal. Frames arriving faster than frameRate are dropped; a
// frameRate of zero prints every frame.
type FramePrinter struct {
	w         io.Writer
	title     string
	frameRate int
	lastFrame time.Time
	canvas    *Canvas
	camera    Camera
	fitted    bool
}

func NewFramePrinter(w io.Writer, title string, frameRate int) *FramePrinter {
	return &FramePrinter{
		w:         w,
		title:     title,
		frameRate: frameRate,
		canvas:    NewCanvas(printerWidth, printerHeight),
		camera:    NewCamera(mgl64.Vec2{}, 1),
	}
}

func (p *FramePrinter) OnFrame(states []dynamo.State, t float64) {
	if p.frameRate > 0 {
		if time.Since(p.lastFrame) < time.Second/time.Duration(p.frameRate) {
			return
		}
		p.lastFrame = time.Now()
	}

	pw, ph := p.canvas.PixelSize()
	if !p.fitted && len(states) > 0 {
		lo := mgl64.Vec2{math.Inf(1), math.Inf(1)}
		hi := mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
		for _, s := range states {
			lo[0] = math.Min(lo[0], s.Pos[0]-s.Radius)
			lo[1] = math.Min(lo[1], s.Pos[1]-s.Radius)
			hi[0] = math.Max(hi[0], s.Pos[0]+s.Radius)
			hi[1] = math.Max(hi[1], s.Pos[1]+s.Radius)
		}
		// Leave room for bodies to move before they fall off the edge.
		span := hi.Sub(lo)
		lo = lo.Sub(span)
		hi = hi.Add(span)
		p.camera.Fit(lo, hi, pw, ph)
		p.fitted = true
	}

	p.canvas.Clear()
	for _, s := range states {
		x, y := p.camera.ToPixel(s.Pos, pw, ph)
		p.canvas.FillCircle(x, y, min(p.camera.Radius(s.Radius), 3))
	}

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2f  bodies=%d\n", p.title, t, len(states)))
	b.WriteString("  " + strings.Repeat("-", printerWidth) + "\n")
	for _, row := range p.canvas.Grid {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", printerWidth) + "\n")
	fmt.Fprint(p.w, b.String())
}

func (p *FramePrinter) Start() { fmt.Fprint(p.w, hideCursor) }
func (p *FramePrinter) Stop()  { fmt.Fprint(p.w, showCursor) }
