package config

import (
	"math"
	"sort"
	"testing"
)

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("nested_orbit")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	specs := cfg.BodySpecs()
	if len(specs) != 2 {
		t.Fatalf("nested_orbit bodies = %d, want 2", len(specs))
	}
	if specs[0].Mass != 30_000_000 || specs[0].Radius != 1000 {
		t.Errorf("star = %+v", specs[0])
	}
	if specs[1].Vel[1] != -40 {
		t.Errorf("planet velocity = %v, want (0,-40)", specs[1].Vel)
	}

	// GetPreset must hand out copies.
	cfg.Dt = 99
	if GetPreset("nested_orbit").Dt == 99 {
		t.Error("preset mutated through returned config")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("ListPresets() = %v", names)
	}
	if !sort.StringsAreSorted(names) {
		t.Error("expected sorted names")
	}
}

func TestAllPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			store, err := cfg.BuildStore()
			if err != nil {
				t.Fatalf("BuildStore: %v", err)
			}
			if store.Len() == 0 {
				t.Error("preset produced no bodies")
			}
		})
	}
}

func TestGridPreset(t *testing.T) {
	cfg := GetPreset("grid")
	cfg.PresetParams = PresetConfig{Radius: 2, Density: 3, Origin: [2]float64{10, 20}}
	specs := cfg.BodySpecs()

	if len(specs) != 100 {
		t.Fatalf("grid bodies = %d, want 100", len(specs))
	}
	if specs[0].Pos[0] != 110 || specs[0].Pos[1] != 120 {
		t.Errorf("first cell = %v, want (110,120)", specs[0].Pos)
	}
	if d := specs[1].Pos[0] - specs[0].Pos[0]; d != 100 {
		t.Errorf("spacing = %v, want 100", d)
	}
	if want := 4.0 / 3.0 * math.Pi * 8 * 3; math.Abs(specs[0].Mass-want) > 1e-9 {
		t.Errorf("mass = %v, want %v", specs[0].Mass, want)
	}
}

func TestPresetBodies(t *testing.T) {
	specs, err := PresetBodies("single", PresetConfig{}, 6.674, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 1 || specs[0].Mass != 300000 || specs[0].Radius != 100 {
		t.Errorf("single = %+v", specs)
	}
	if specs[0].TrailCapacity != 30 {
		t.Errorf("trail = %d, want 30", specs[0].TrailCapacity)
	}

	if _, err := PresetBodies("nope", PresetConfig{}, 1, 0); err == nil {
		t.Error("expected error for unknown preset")
	}
}
