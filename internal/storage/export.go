package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/orbitsim/internal/sim"
)

type ExportBody struct {
	ID     uint64     `json:"id"`
	Pos    [2]float64 `json:"pos"`
	Vel    [2]float64 `json:"vel"`
	Mass   float64    `json:"mass"`
	Radius float64    `json:"radius"`
	Charge float64    `json:"charge,omitempty"`
}

type ExportFrame struct {
	Time   float64      `json:"time"`
	Bodies []ExportBody `json:"bodies"`
}

type ExportData struct {
	Name       string             `json:"name"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Substeps   int                `json:"substeps"`
	G          float64            `json:"g"`
	Steps      int                `json:"steps"`
	Merges     int                `json:"merges"`
	Frames     []ExportFrame      `json:"frames"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes the run as a single indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, frames []sim.Frame) error {
	data := ExportData{
		Name:       meta.Name,
		Integrator: meta.Integrator,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Substeps:   meta.Substeps,
		G:          meta.G,
		Steps:      meta.Steps,
		Merges:     meta.Merges,
		Frames:     make([]ExportFrame, len(frames)),
		Metrics:    meta.Metrics,
	}

	for i, f := range frames {
		bodies := make([]ExportBody, len(f.Bodies))
		for j, b := range f.Bodies {
			bodies[j] = ExportBody{
				ID:     uint64(b.ID),
				Pos:    b.Pos,
				Vel:    b.Vel,
				Mass:   b.Mass,
				Radius: b.Radius,
				Charge: b.Charge,
			}
		}
		data.Frames[i] = ExportFrame{Time: f.Time, Bodies: bodies}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
