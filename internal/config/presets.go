package config

import (
	"math"
	"sort"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

type generator func(p PresetConfig, g float64) []BodyConfig

var generators = map[string]generator{
	"single":       single,
	"grid":         grid,
	"nested_orbit": nestedOrbit,
	"binary":       binary,
	"head_on":      headOn,
}

var Presets = map[string]*Config{
	"single": {
		Name: "single", Integrator: "verlet", Dt: 0.1, Duration: 100.0, Preset: "single",
	},
	"grid": {
		Name: "grid", Integrator: "verlet", Dt: 0.1, Duration: 500.0, Substeps: 4, Preset: "grid",
	},
	"nested_orbit": {
		Name: "nested_orbit", Integrator: "verlet", Dt: 1.0, Duration: 20000.0, Substeps: 10, Preset: "nested_orbit",
	},
	"binary": {
		Name: "binary", Integrator: "verlet", Dt: 0.05, Duration: 400.0, Preset: "binary",
	},
	"head_on": {
		Name: "head_on", Integrator: "euler", Dt: 0.1, Duration: 200.0, Preset: "head_on",
	},
}

// GetPreset returns a fresh copy of the named preset with unset fields
// filled from DefaultConfig.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Name = p.Name
	cfg.Integrator = p.Integrator
	cfg.Dt = p.Dt
	cfg.Duration = p.Duration
	cfg.Preset = p.Preset
	if p.Substeps > 0 {
		cfg.Substeps = p.Substeps
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MassFromDensity is the mass of a sphere of the given radius and density.
func MassFromDensity(radius, density float64) float64 {
	return 4.0 / 3.0 * math.Pi * radius * radius * radius * density
}

// SetOrbitalVelocities puts every body after the first on a circular orbit
// around the first, counter-clockwise. Bodies on top of the primary are left
// alone.
func SetOrbitalVelocities(specs []dynamo.BodySpec, g float64) {
	if len(specs) < 2 {
		return
	}
	primary := specs[0]
	for i := 1; i < len(specs); i++ {
		d := specs[i].Pos.Sub(primary.Pos)
		r := d.Len()
		if r == 0 || primary.Mass <= 0 {
			continue
		}
		speed := math.Sqrt(g * primary.Mass / r)
		tangent := d.Mul(1 / r)
		tangent[0], tangent[1] = -tangent[1], tangent[0]
		specs[i].Vel = primary.Vel.Add(tangent.Mul(speed))
	}
}

func single(p PresetConfig, g float64) []BodyConfig {
	return []BodyConfig{
		{Pos: [2]float64{500, 400}, Mass: 300000, Radius: 100},
	}
}

// grid lays out 10×10 resting bodies spaced 50 radii apart.
func grid(p PresetConfig, g float64) []BodyConfig {
	spacing := p.Radius * 50
	mass := MassFromDensity(p.Radius, p.Density)

	bodies := make([]BodyConfig, 0, 100)
	for y := 1; y <= 10; y++ {
		for x := 1; x <= 10; x++ {
			bodies = append(bodies, BodyConfig{
				Pos:    [2]float64{p.Origin[0] + float64(x)*spacing, p.Origin[1] + float64(y)*spacing},
				Mass:   mass,
				Radius: p.Radius,
			})
		}
	}
	return bodies
}

func nestedOrbit(p PresetConfig, g float64) []BodyConfig {
	return []BodyConfig{
		{Pos: [2]float64{500, 400}, Mass: 30_000_000, Radius: 1000},
		{Pos: [2]float64{150_000, 400}, Vel: [2]float64{0, -40}, Mass: 150_000, Radius: 100},
	}
}

// binary places two equal stars on a shared circular orbit.
func binary(p PresetConfig, g float64) []BodyConfig {
	const (
		mass = 100_000.0
		sep  = 1000.0
	)
	v := math.Sqrt(g * mass / (2 * sep))
	o := p.Origin
	return []BodyConfig{
		{Pos: [2]float64{o[0] - sep/2, o[1]}, Vel: [2]float64{0, -v}, Mass: mass, Radius: 40},
		{Pos: [2]float64{o[0] + sep/2, o[1]}, Vel: [2]float64{0, v}, Mass: mass, Radius: 40},
	}
}

func headOn(p PresetConfig, g float64) []BodyConfig {
	o := p.Origin
	return []BodyConfig{
		{Pos: [2]float64{o[0] - 500, o[1]}, Vel: [2]float64{5, 0}, Mass: 10_000, Radius: 50},
		{Pos: [2]float64{o[0] + 500, o[1]}, Vel: [2]float64{-5, 0}, Mass: 10_000, Radius: 30},
	}
}
