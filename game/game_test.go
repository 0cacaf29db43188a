package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/config"
	"github.com/microvita/microcosm/systems"
	"github.com/microvita/microcosm/telemetry"
)

func initTestConfig(t *testing.T) {
	t.Helper()
	if err := config.Init(""); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	// Keep headless test runs small.
	cfg := config.Cfg()
	cfg.Population.Initial = 30
	cfg.Population.Max = 60
	cfg.Population.MinAlive = 5
}

// TestHeadlessRun verifies a seeded headless game steps to its tick
// limit without touching graphics.
func TestHeadlessRun(t *testing.T) {
	initTestConfig(t)

	g, err := NewGame(Options{Headless: true, Seed: 12345, MaxTicks: 120})
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	defer g.Unload()

	if got := g.countCells(); got != 30 {
		t.Fatalf("initial population = %d, want 30", got)
	}

	steps := 0
	for !g.Done() {
		g.Step()
		steps++
		if steps > 200 {
			t.Fatal("run never finished")
		}
	}
	if g.Tick() != 120 {
		t.Errorf("tick = %d, want 120", g.Tick())
	}

	// The synchronization point runs inside every step; nothing may be
	// left pending across ticks.
	if got := g.registry.PendingLen(); got != 0 {
		t.Errorf("pending commands after run = %d, want 0", got)
	}
}

// TestHeadlessRunDeterministic verifies same-seed runs agree.
func TestHeadlessRunDeterministic(t *testing.T) {
	initTestConfig(t)

	run := func() (int, float32) {
		g, err := NewGame(Options{Headless: true, Seed: 99, MaxTicks: 60})
		if err != nil {
			t.Fatalf("NewGame failed: %v", err)
		}
		defer g.Unload()
		for !g.Done() {
			g.Step()
		}
		return g.countCells(), g.field.Total()
	}

	cellsA, glucoseA := run()
	cellsB, glucoseB := run()
	if cellsA != cellsB {
		t.Errorf("cell counts diverged: %d vs %d", cellsA, cellsB)
	}
	if glucoseA != glucoseB {
		t.Errorf("nutrient fields diverged: %v vs %v", glucoseA, glucoseB)
	}
}

// TestOutputDirArtifacts verifies the run writes its config snapshot
// and telemetry CSV.
func TestOutputDirArtifacts(t *testing.T) {
	initTestConfig(t)
	dir := t.TempDir()

	g, err := NewGame(Options{Headless: true, Seed: 7, MaxTicks: 10, OutputDir: dir})
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	for !g.Done() {
		g.Step()
	}
	g.Unload()

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "telemetry.csv")); err != nil {
		t.Errorf("telemetry CSV missing: %v", err)
	}
}

// TestForcedFusionThroughCoordinator drives two spawned cells into a
// fusion by hand and checks the whole stack reacts: colony state,
// movement attachment, and telemetry counters.
func TestForcedFusionThroughCoordinator(t *testing.T) {
	initTestConfig(t)

	g, err := NewGame(Options{Headless: true, Seed: 5, MaxTicks: 0})
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	defer g.Unload()

	// Pick two compatible free cells.
	var leader, target ecs.Entity
	found := 0
	query := g.bindFilter.Query()
	for query.Next() {
		e := query.Entity()
		sp := g.registry.Species.Get(e)
		org := g.registry.Organelles.Get(e)
		if sp == nil || sp.ID != 0 || org == nil || !org.HasBindingAgent() {
			continue
		}
		if found == 0 {
			leader = e
		} else if found == 1 {
			target = e
		}
		found++
	}
	if found < 2 {
		t.Skip("spawn did not produce two compatible cells")
	}

	if !g.coordinator.BeginBind(leader, 1, target) {
		t.Fatal("BeginBind failed")
	}
	g.registry.ApplyPending()

	if !g.registry.Colony.HasAll(leader) || !g.registry.Attached.HasAll(target) {
		t.Fatal("fusion did not produce colony state")
	}

	// One movement step snaps the member onto its slot.
	g.movement.Update(g.cfg.Derived.DT32)
	lp := g.registry.Pos.Get(leader)
	tp := g.registry.Pos.Get(target)
	dx, dy := systems.ToroidalDelta(lp.X, lp.Y, tp.X, tp.Y, g.worldW, g.worldH)
	props := g.registry.CellProps.Get(leader)
	want := props.Radius * 2
	if distSq := dx*dx + dy*dy; distSq < want*want*0.9 || distSq > want*want*1.1 {
		t.Errorf("member distance^2 = %v, want near %v", distSq, want*want)
	}

	// Telemetry saw the attempt, the success, and the formation.
	var w telemetry.WindowStats
	g.collector.Drain(&w)
	if w.BindAttempts < 1 || w.BindSuccesses < 1 || w.ColoniesFormed < 1 {
		t.Errorf("telemetry = attempts %d successes %d formed %d, want all >= 1",
			w.BindAttempts, w.BindSuccesses, w.ColoniesFormed)
	}
}
