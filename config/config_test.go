package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadDefaults verifies the embedded defaults parse and derive
// sane values.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Physics.DT <= 0 {
		t.Error("default DT not positive")
	}
	if cfg.Binding.CostPerSecond <= 0 {
		t.Error("default binding cost not positive")
	}
	if cfg.Binding.UnbindDuration <= 0 {
		t.Error("default unbind duration not positive")
	}
	if len(cfg.Species) == 0 {
		t.Fatal("no species configured")
	}

	if cfg.Derived.DT32 != float32(cfg.Physics.DT) {
		t.Error("DT32 not derived from DT")
	}
	if cfg.Derived.WorldW32 <= 0 || cfg.Derived.WorldH32 <= 0 {
		t.Error("derived world size not positive")
	}
	for name, idx := range cfg.Derived.SpeciesIndex {
		if cfg.Species[idx].Name != name {
			t.Errorf("species index maps %q to %q", name, cfg.Species[idx].Name)
		}
	}
}

// TestLoadOverlay verifies a config file overrides only the fields it
// names.
func TestLoadOverlay(t *testing.T) {
	defaults, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	overlay := []byte("binding:\n  cost_per_second: 9.5\npopulation:\n  initial: 10\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load overlay failed: %v", err)
	}
	if cfg.Binding.CostPerSecond != 9.5 {
		t.Errorf("CostPerSecond = %v, want 9.5", cfg.Binding.CostPerSecond)
	}
	if cfg.Population.Initial != 10 {
		t.Errorf("Population.Initial = %d, want 10", cfg.Population.Initial)
	}
	// Untouched fields keep their defaults.
	if cfg.Binding.CostEpsilon != defaults.Binding.CostEpsilon {
		t.Error("overlay changed an unrelated field")
	}
	if cfg.Physics.DT != defaults.Physics.DT {
		t.Error("overlay changed the timestep")
	}
}

// TestLoadMissingFile verifies a clear error for a bad path.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load with missing file did not fail")
	}
}

// TestDerivedWorldFallsBackToScreen verifies world size defaults.
func TestDerivedWorldFallsBackToScreen(t *testing.T) {
	cfg := &Config{}
	cfg.Screen.Width = 1280
	cfg.Screen.Height = 720
	cfg.computeDerived()

	if cfg.Derived.WorldW32 != 1280 || cfg.Derived.WorldH32 != 720 {
		t.Errorf("derived world = %vx%v, want screen size", cfg.Derived.WorldW32, cfg.Derived.WorldH32)
	}
	if len(cfg.Species) == 0 {
		t.Error("no default species synthesized")
	}
}

// TestWriteYAMLRoundTrip verifies the config snapshot can be reloaded.
func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("reloading snapshot failed: %v", err)
	}
	if back.Binding.CostPerSecond != cfg.Binding.CostPerSecond {
		t.Error("binding cost did not survive the round trip")
	}
	if len(back.Species) != len(cfg.Species) {
		t.Errorf("species count = %d, want %d", len(back.Species), len(cfg.Species))
	}
}
