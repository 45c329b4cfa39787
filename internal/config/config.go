package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/sim"
)

const (
	DefaultDt          = 0.1
	DefaultDuration    = 100.0
	DefaultSubsteps    = 1
	DefaultRecordEvery = 1
	DefaultRadius      = 15.0
	DefaultDensity     = 0.001
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Name         string        `yaml:"name"`
	Integrator   string        `yaml:"integrator"`
	Dt           float64       `yaml:"dt"`
	Duration     float64       `yaml:"duration"`
	Substeps     int           `yaml:"substeps"`
	RecordEvery  int           `yaml:"record_every"`
	TrailLength  int           `yaml:"trail_length"`
	Physics      PhysicsConfig `yaml:"physics"`
	Preset       string        `yaml:"preset,omitempty"`
	PresetParams PresetConfig  `yaml:"preset_params"`
	AutoOrbit    bool          `yaml:"auto_orbit"`
	Bodies       []BodyConfig  `yaml:"bodies,omitempty"`
}

type PhysicsConfig struct {
	G              float64 `yaml:"g"`
	K              float64 `yaml:"k"`
	Epsilon        float64 `yaml:"epsilon"`
	Workers        int     `yaml:"workers"`
	AllowRepulsors bool    `yaml:"allow_repulsors"`
}

// PresetConfig parameterises the generated scenes.
type PresetConfig struct {
	Radius  float64    `yaml:"radius"`
	Density float64    `yaml:"density"`
	Origin  [2]float64 `yaml:"origin"`
}

// BodyConfig describes one body. When Mass is zero and Density is set, the
// mass is derived from the sphere volume.
type BodyConfig struct {
	Pos     [2]float64 `yaml:"pos"`
	Vel     [2]float64 `yaml:"vel"`
	Mass    float64    `yaml:"mass"`
	Density float64    `yaml:"density,omitempty"`
	Radius  float64    `yaml:"radius"`
	Charge  float64    `yaml:"charge,omitempty"`
	Trail   int        `yaml:"trail,omitempty"`
}

func DefaultConfig() *Config {
	p := dynamo.DefaultParams()
	return &Config{
		Name:        "untitled",
		Integrator:  integrators.Verlet.String(),
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Substeps:    DefaultSubsteps,
		RecordEvery: DefaultRecordEvery,
		TrailLength: dynamo.DefaultTrailCapacity,
		Physics: PhysicsConfig{
			G:       p.G,
			Epsilon: p.Epsilon,
		},
		PresetParams: PresetConfig{
			Radius:  DefaultRadius,
			Density: DefaultDensity,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks run parameters only. Body-level problems surface from
// BuildStore with the store's own errors.
func (c *Config) Validate() error {
	if _, err := integrators.ParseScheme(c.Integrator); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidConfig, c.Duration)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("%w: substeps must be at least 1, got %d", ErrInvalidConfig, c.Substeps)
	}
	if c.Physics.Epsilon < 0 {
		return fmt.Errorf("%w: epsilon must not be negative", ErrInvalidConfig)
	}
	if c.Preset != "" {
		if _, ok := generators[c.Preset]; !ok {
			return fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, c.Preset)
		}
	}
	return nil
}

func (c *Config) Scheme() integrators.Scheme {
	s, err := integrators.ParseScheme(c.Integrator)
	if err != nil {
		return integrators.Verlet
	}
	return s
}

func (c *Config) Params() dynamo.Params {
	return dynamo.Params{
		G:       c.Physics.G,
		K:       c.Physics.K,
		Epsilon: c.Physics.Epsilon,
		Workers: c.Physics.Workers,
	}
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		Substeps:      c.Substeps,
		Scheme:        c.Scheme(),
		RecordEvery:   max(c.RecordEvery, 1),
		ValidateState: true,
	}
}

// BodySpecs expands the preset (if any) followed by the explicit bodies.
func (c *Config) BodySpecs() []dynamo.BodySpec {
	var bodies []BodyConfig
	if gen, ok := generators[c.Preset]; ok {
		bodies = append(bodies, gen(c.PresetParams, c.Physics.G)...)
	}
	bodies = append(bodies, c.Bodies...)

	specs := toSpecs(bodies, c.TrailLength)
	if c.AutoOrbit {
		SetOrbitalVelocities(specs, c.Physics.G)
	}
	return specs
}

// PresetBodies generates the bodies of a named preset on their own, for
// adding a scene to a running simulation.
func PresetBodies(name string, p PresetConfig, g float64, trail int) ([]dynamo.BodySpec, error) {
	gen, ok := generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
	}
	return toSpecs(gen(p, g), trail), nil
}

func toSpecs(bodies []BodyConfig, defaultTrail int) []dynamo.BodySpec {
	specs := make([]dynamo.BodySpec, len(bodies))
	for i, b := range bodies {
		mass := b.Mass
		if mass == 0 && b.Density != 0 {
			mass = MassFromDensity(b.Radius, b.Density)
		}
		trail := b.Trail
		if trail == 0 {
			trail = defaultTrail
		}
		specs[i] = dynamo.BodySpec{
			Pos:           mgl64.Vec2(b.Pos),
			Vel:           mgl64.Vec2(b.Vel),
			Mass:          mass,
			Radius:        b.Radius,
			Charge:        b.Charge,
			TrailCapacity: trail,
		}
	}
	return specs
}

// BuildStore validates the config and returns a populated body store.
func (c *Config) BuildStore() (*dynamo.Store, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var opts []dynamo.StoreOption
	if c.Physics.AllowRepulsors {
		opts = append(opts, dynamo.WithRepulsors())
	}
	store := dynamo.NewStore(opts...)

	for i, spec := range c.BodySpecs() {
		if _, err := store.Insert(spec); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
	}
	return store, nil
}
