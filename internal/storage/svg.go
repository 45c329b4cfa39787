package storage

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/sim"
)

var svgPalette = []string{"#00d7ff", "#ff5f87", "#ffd75f", "#87ff87", "#af87ff", "#ff875f"}

// ExportSVG draws the path of every body across frames, with each body's
// last recorded disc at the end of its path. The y axis points up.
func ExportSVG(w io.Writer, frames []sim.Frame, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid svg size %dx%d", width, height)
	}

	paths := make(map[dynamo.BodyID][]mgl64.Vec2)
	last := make(map[dynamo.BodyID]dynamo.State)
	var order []dynamo.BodyID

	lo := mgl64.Vec2{math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, f := range frames {
		for _, b := range f.Bodies {
			if _, seen := paths[b.ID]; !seen {
				order = append(order, b.ID)
			}
			paths[b.ID] = append(paths[b.ID], b.Pos)
			last[b.ID] = b
			lo[0] = math.Min(lo[0], b.Pos[0]-b.Radius)
			lo[1] = math.Min(lo[1], b.Pos[1]-b.Radius)
			hi[0] = math.Max(hi[0], b.Pos[0]+b.Radius)
			hi[1] = math.Max(hi[1], b.Pos[1]+b.Radius)
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	if len(order) > 0 {
		// Uniform scale keeps orbits round.
		span := hi.Sub(lo)
		scale := math.Min(float64(width)/math.Max(span[0], 1e-9), float64(height)/math.Max(span[1], 1e-9)) / 1.1
		mid := lo.Add(hi).Mul(0.5)
		project := func(p mgl64.Vec2) (float64, float64) {
			return float64(width)/2 + (p[0]-mid[0])*scale,
				float64(height)/2 - (p[1]-mid[1])*scale
		}

		for i, id := range order {
			color := svgPalette[i%len(svgPalette)]
			pts := paths[id]
			if len(pts) > 1 {
				fmt.Fprintf(bw, `<path fill="none" stroke="%s" stroke-width="1" stroke-opacity="0.7" d="`, color)
				for j, p := range pts {
					x, y := project(p)
					if j == 0 {
						fmt.Fprintf(bw, "M%.1f,%.1f", x, y)
					} else {
						fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
					}
				}
				bw.WriteString("\"/>\n")
			}

			b := last[id]
			x, y := project(b.Pos)
			fmt.Fprintf(bw, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"><title>body %d</title></circle>
`, x, y, math.Max(b.Radius*scale, 1), color, id)
		}
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}
