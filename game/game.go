// Package game wires the simulation systems together and owns the
// main loop state.
package game

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
	"github.com/microvita/microcosm/config"
	"github.com/microvita/microcosm/systems"
	"github.com/microvita/microcosm/telemetry"
)

// Options controls game construction.
type Options struct {
	Headless  bool
	Seed      int64
	MaxTicks  int32 // 0 = run forever
	OutputDir string
	Audio     *AudioOptions
}

// AudioOptions carries an initialized cue player. Nil disables audio.
type AudioOptions struct {
	Cues systems.CuePlayer
}

// Game holds the complete simulation state.
type Game struct {
	world    *ecs.World
	registry *systems.Registry
	cfg      *config.Config
	rng      *rand.Rand

	// Entity spawning and coordinator snapshot access
	spawnMapper *ecs.Map8[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.MicrobeControl,
		components.Health,
		components.CompoundStorage,
		components.SpeciesMember,
		components.OrganelleContainer,
	]
	bindFilter *ecs.Filter6[
		components.MicrobeControl,
		components.Health,
		components.CompoundStorage,
		components.OrganelleContainer,
		components.CellProperties,
		components.CollisionSet,
	]

	// Systems
	contacts    *systems.ContactSystem
	movement    *systems.MovementSystem
	metabolism  *systems.MetabolismSystem
	modeAI      *systems.ModeAISystem
	unbind      *systems.UnbindSystem
	coordinator *systems.BindingCoordinator
	field       *systems.NutrientField
	parallel    *parallelState

	// Telemetry
	collector   *telemetry.Collector
	output      *telemetry.OutputManager
	windowStart int32

	// Player interaction
	notices      *NoticeBoard
	selected     ecs.Entity
	hasSelection bool

	// State
	tick     int32
	simTime  float64
	paused   bool
	speed    int // simulation steps per frame
	maxTicks int32
	headless bool

	worldW, worldH float32
}

// NewGame creates a game from the loaded configuration.
func NewGame(opts Options) (*Game, error) {
	cfg := config.Cfg()
	world := ecs.NewWorld()
	registry := systems.NewRegistry(world)

	g := &Game{
		world:    world,
		registry: registry,
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(opts.Seed)),
		speed:    1,
		maxTicks: opts.MaxTicks,
		headless: opts.Headless,
		worldW:   cfg.Derived.WorldW32,
		worldH:   cfg.Derived.WorldH32,
		parallel: newParallelState(),
		spawnMapper: ecs.NewMap8[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.MicrobeControl,
			components.Health,
			components.CompoundStorage,
			components.SpeciesMember,
			components.OrganelleContainer,
		](world),
		bindFilter: ecs.NewFilter6[
			components.MicrobeControl,
			components.Health,
			components.CompoundStorage,
			components.OrganelleContainer,
			components.CellProperties,
			components.CollisionSet,
		](world).Without(ecs.C[components.AttachedToEntity]()),
		collector: telemetry.NewCollector(),
		notices:   NewNoticeBoard(opts.Headless),
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.output = output
	if err := g.output.WriteConfig(cfg); err != nil {
		return nil, err
	}

	g.field = systems.NewNutrientField(systems.NutrientFieldParams{
		Width:       g.worldW,
		Height:      g.worldH,
		CellSize:    float32(cfg.Nutrients.CellSize),
		NoiseScale:  cfg.Nutrients.NoiseScale,
		Octaves:     cfg.Nutrients.Octaves,
		MaxCapacity: float32(cfg.Nutrients.MaxCapacity),
		RegenRate:   float32(cfg.Nutrients.RegenRate),
		Seed:        opts.Seed,
	})

	rules := newSpeciesRules(cfg)
	var cues systems.CuePlayer
	if opts.Audio != nil {
		cues = opts.Audio.Cues
	}

	g.contacts = systems.NewContactSystem(registry, g.worldW, g.worldH,
		float32(cfg.Physics.GridCellSize), float32(cfg.Physics.PilusCone))
	g.movement = systems.NewMovementSystem(registry, systems.MovementParams{
		Acceleration: float32(cfg.Movement.Acceleration),
		Drag:         float32(cfg.Movement.Drag),
		TurnRate:     float32(cfg.Movement.TurnRate),
		MaxSpeed:     float32(cfg.Movement.MaxSpeed),
	}, g.worldW, g.worldH, func(species uint8) float32 {
		if int(species) < len(cfg.Species) {
			return float32(cfg.Species[species].MaxSpeed)
		}
		return float32(cfg.Movement.MaxSpeed)
	})
	g.metabolism = systems.NewMetabolismSystem(registry, g.field, systems.MetabolismParams{
		GrazeRate:      float32(cfg.Metabolism.GrazeRate),
		ConversionRate: float32(cfg.Metabolism.ConversionRate),
		ATPPerGlucose:  float32(cfg.Metabolism.ATPPerGlucose),
		BaseATPDrain:   float32(cfg.Metabolism.BaseATPDrain),
		StarveDamage:   float32(cfg.Metabolism.StarveDamage),
		HealRate:       float32(cfg.Metabolism.HealRate),
	})
	g.modeAI = systems.NewModeAISystem(registry, rules, systems.ModeAIParams{
		BindThreshold:  float32(cfg.ModeAI.BindThreshold),
		BindChance:     float32(cfg.ModeAI.BindChance),
		UnbindChance:   float32(cfg.ModeAI.UnbindChance),
		MaxColonySize:  cfg.ModeAI.MaxColonySize,
		WanderStrength: float32(cfg.ModeAI.WanderStrength),
		WanderJitter:   float32(cfg.ModeAI.WanderJitter),
	}, opts.Seed+1)
	g.unbind = systems.NewUnbindSystem(registry, systems.UnbindParams{
		Duration: float32(cfg.Binding.UnbindDuration),
	}, func(leader ecs.Entity, size int) {
		g.collector.ColonyDissolved()
	})
	g.coordinator = systems.NewBindingCoordinator(registry, systems.BindingParams{
		CostPerSecond: float32(cfg.Binding.CostPerSecond),
		CostEpsilon:   float32(cfg.Binding.CostEpsilon),
		LookAhead:     float32(cfg.Binding.LookAhead),
	}, rules, g.notices.notifier(registry), cues, &bindObserver{g: g})

	g.spawnInitialPopulation()
	return g, nil
}

// bindObserver feeds fusion events into telemetry.
type bindObserver struct {
	g *Game
}

func (o *bindObserver) OnBindAttempt(leader, target ecs.Entity) {
	o.g.collector.BindAttempt()
}

func (o *bindObserver) OnBindRejected(leader, target ecs.Entity) {
	o.g.collector.BindRejection()
}

func (o *bindObserver) OnBindExhausted(e ecs.Entity) {
	o.g.collector.BindExhaustion()
}

func (o *bindObserver) OnColonyMemberAdded(leader, member ecs.Entity, slot int) {
	o.g.collector.BindSuccess()
	// The colony component is still pending when the colony is brand
	// new, so its absence marks a formation rather than a growth.
	if !o.g.registry.Colony.HasAll(leader) {
		o.g.collector.ColonyFormed()
	}
}

// Step advances the simulation by one fixed tick.
func (g *Game) Step() {
	dt := g.cfg.Derived.DT32

	g.field.Regenerate(dt)
	g.contacts.Update()
	g.modeAI.Update(dt)
	g.runBindingParallel(dt)
	g.unbind.Update(dt)
	g.movement.Update(dt)
	g.metabolism.Update(dt)
	g.updateReproduction(dt)
	g.cleanupDead()

	g.tick++
	g.simTime += float64(dt)
	g.flushTelemetry()
}

// Update runs the per-frame logic for the graphical loop: input,
// then one or more simulation steps depending on the speed setting.
func (g *Game) Update() {
	g.handleInput()
	if g.paused {
		return
	}
	for i := 0; i < g.speed; i++ {
		g.Step()
	}
}

// Done reports whether the run hit its tick limit.
func (g *Game) Done() bool {
	return g.maxTicks > 0 && g.tick >= g.maxTicks
}

// Tick returns the current tick counter.
func (g *Game) Tick() int32 {
	return g.tick
}

// Unload releases workers and output files.
func (g *Game) Unload() {
	g.stopParallelWorkers()
	if err := g.output.Close(); err != nil {
		// Telemetry loss at shutdown is not fatal.
		_ = err
	}
}
