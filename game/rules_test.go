package game

import (
	"testing"

	"github.com/microvita/microcosm/config"
)

func testRulesConfig() *config.Config {
	return &config.Config{
		Species: []config.SpeciesConfig{
			{Name: "coccus", CanBind: true},
			{Name: "streptococcus", CanBind: true, BindsWith: []string{"coccus"}},
			{Name: "bacillus", CanBind: false},
		},
		Derived: config.DerivedConfig{
			SpeciesIndex: map[string]uint8{
				"coccus":        0,
				"streptococcus": 1,
				"bacillus":      2,
			},
		},
	}
}

// TestSpeciesRulesCanBind verifies the binding capability gate.
func TestSpeciesRulesCanBind(t *testing.T) {
	r := newSpeciesRules(testRulesConfig())

	if !r.CanBind(0) || !r.CanBind(1) {
		t.Error("binder species reported as non-binder")
	}
	if r.CanBind(2) {
		t.Error("non-binder species reported as binder")
	}
	if r.CanBind(42) {
		t.Error("unknown species reported as binder")
	}
}

// TestSpeciesRulesCanBindWith verifies the compatibility matrix:
// binders always fuse with their own kind, cross-species pairs need
// both sides to list each other.
func TestSpeciesRulesCanBindWith(t *testing.T) {
	r := newSpeciesRules(testRulesConfig())

	tests := []struct {
		name           string
		species, other uint8
		want           bool
	}{
		{"binder with own kind", 0, 0, true},
		{"second binder with own kind", 1, 1, true},
		{"one-sided listing is not enough", 1, 0, false},
		{"one-sided listing, reversed", 0, 1, false},
		{"non-binder with own kind", 2, 2, false},
		{"binder with non-binder", 0, 2, false},
		{"unknown species", 0, 42, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.CanBindWith(tc.species, tc.other); got != tc.want {
				t.Errorf("CanBindWith(%d, %d) = %v, want %v", tc.species, tc.other, got, tc.want)
			}
		})
	}
}

// TestSpeciesRulesMutualCrossBinding verifies that a pair listing each
// other fuses in both directions.
func TestSpeciesRulesMutualCrossBinding(t *testing.T) {
	cfg := testRulesConfig()
	cfg.Species[0].BindsWith = []string{"streptococcus"}
	r := newSpeciesRules(cfg)

	if !r.CanBindWith(0, 1) || !r.CanBindWith(1, 0) {
		t.Error("mutually listed species cannot fuse")
	}
}
