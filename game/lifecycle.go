package game

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
	"github.com/microvita/microcosm/systems"
)

// reproThreshold is the ATP fill fraction required before a cell
// divides.
const reproThreshold = 0.75

// reproCooldown is the seconds between divisions.
const reproCooldown = 12.0

func (g *Game) spawnInitialPopulation() {
	for i := 0; i < g.cfg.Population.Initial; i++ {
		g.spawnMicrobe(
			g.rng.Float32()*g.worldW,
			g.rng.Float32()*g.worldH,
			g.pickSpecies(),
		)
	}
	slog.Info("initial population spawned", "count", g.cfg.Population.Initial)
}

// pickSpecies draws a species id weighted by the config's spawn
// weights.
func (g *Game) pickSpecies() uint8 {
	var total float64
	for _, sp := range g.cfg.Species {
		total += sp.Weight
	}
	r := g.rng.Float64() * total
	for i, sp := range g.cfg.Species {
		r -= sp.Weight
		if r <= 0 {
			return uint8(i)
		}
	}
	return uint8(len(g.cfg.Species) - 1)
}

// spawnMicrobe creates a complete cell of the given species.
func (g *Game) spawnMicrobe(x, y float32, species uint8) ecs.Entity {
	sp := g.cfg.Species[species]
	heading := g.rng.Float32() * 2 * math.Pi

	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{}
	rot := components.Rotation{Heading: heading}
	ctrl := components.MicrobeControl{State: components.StateNormal}
	health := components.Health{
		Current: float32(sp.MaxHealth),
		Max:     float32(sp.MaxHealth),
		Alive:   true,
	}
	storage := components.CompoundStorage{Capacity: float32(g.cfg.Compounds.Capacity)}
	storage.Add(components.CompoundATP, float32(g.cfg.Compounds.InitialATP))
	storage.Add(components.CompoundGlucose, float32(g.cfg.Compounds.InitialGlucose))
	member := components.SpeciesMember{ID: species}

	organelles := components.OrganelleContainer{}
	organelles.Add(components.Organelle{Kind: components.OrganelleCytoplasm})
	organelles.Add(components.Organelle{Kind: components.OrganelleMetabolosome})
	if sp.CanBind {
		organelles.Add(components.Organelle{Kind: components.OrganelleBindingAgent})
	}
	for i := 0; i < sp.PilusCount; i++ {
		angle := float32(i) * 2 * math.Pi / float32(sp.PilusCount)
		organelles.Add(components.Organelle{Kind: components.OrganellePilus, OffsetAngle: angle})
	}

	e := g.spawnMapper.NewEntity(&pos, &vel, &rot, &ctrl, &health, &storage, &member, &organelles)

	props := components.CellProperties{Radius: float32(sp.Radius), MembraneReady: true}
	g.registry.CellProps.Add(e, &props)
	shapes := components.NewPhysicsShapeData(sp.PilusCount)
	g.registry.ShapeData.Add(e, &shapes)
	collisions := components.CollisionSet{}
	g.registry.Collisions.Add(e, &collisions)
	sound := components.SoundEffects{Volume: float32(g.cfg.Audio.Volume)}
	g.registry.Sound.Add(e, &sound)
	repro := components.ReproductionStatus{Cooldown: reproCooldown * g.rng.Float32()}
	g.registry.Repro.Add(e, &repro)

	g.collector.Birth()
	return e
}

// updateReproduction divides well-fed solitary cells.
func (g *Game) updateReproduction(delta float32) {
	if g.countCells() >= g.cfg.Population.Max {
		return
	}

	type division struct {
		x, y    float32
		species uint8
	}
	var divisions []division

	filter := ecs.NewFilter4[components.Position, components.CompoundStorage, components.Health, components.ReproductionStatus](g.world).
		Without(ecs.C[components.AttachedToEntity]())
	query := filter.Query()
	for query.Next() {
		pos, storage, health, repro := query.Get()
		if !health.Alive {
			continue
		}
		repro.Cooldown -= delta
		if repro.Suspended || repro.Cooldown > 0 {
			continue
		}
		if storage.Fraction(components.CompoundATP) < reproThreshold {
			continue
		}
		// Leading a colony also suspends division.
		if g.registry.Colony.HasAll(query.Entity()) {
			continue
		}

		// The parent pays half its ATP and resets its cooldown; the
		// child spawns beside it.
		storage.Take(components.CompoundATP, storage.Amount(components.CompoundATP)/2)
		repro.Cooldown = reproCooldown

		sp := g.registry.Species.Get(query.Entity())
		if sp == nil {
			continue
		}
		offset := g.rng.Float32()*2*math.Pi
		props := g.registry.CellProps.Get(query.Entity())
		dist := float32(20)
		if props != nil {
			dist = props.Radius * 3
		}
		divisions = append(divisions, division{
			x:       pos.X + float32(math.Cos(float64(offset)))*dist,
			y:       pos.Y + float32(math.Sin(float64(offset)))*dist,
			species: sp.ID,
		})
	}

	for _, d := range divisions {
		x, y := systems.WrapPosition(d.x, d.y, g.worldW, g.worldH)
		g.spawnMicrobe(x, y, d.species)
	}
}

// cleanupDead removes dead cells, tearing down any colony structure
// they participate in, and respawns when the population craters.
func (g *Game) cleanupDead() {
	var dead []ecs.Entity
	alive := 0

	filter := ecs.NewFilter1[components.Health](g.world)
	query := filter.Query()
	for query.Next() {
		health := query.Get()
		if health.Alive {
			alive++
			continue
		}
		dead = append(dead, query.Entity())
	}

	for _, e := range dead {
		g.removeCell(e)
	}

	if alive < g.cfg.Population.MinAlive {
		for i := 0; i < g.cfg.Population.RespawnCount; i++ {
			g.spawnMicrobe(
				g.rng.Float32()*g.worldW,
				g.rng.Float32()*g.worldH,
				g.pickSpecies(),
			)
		}
		slog.Info("population respawn", "alive", alive, "spawned", g.cfg.Population.RespawnCount)
	}
}

// removeCell despawns a cell after detaching it from colony structure.
// A dead leader dissolves the whole colony; a dead member leaves a
// hole in the slot map and the leader's shape data is rebuilt.
func (g *Game) removeCell(e ecs.Entity) {
	if g.registry.Colony.HasAll(e) {
		g.unbind.Dissolve(e)
	} else if member := g.registry.Member.Get(e); member != nil {
		g.detachMember(e, member.Leader)
	}

	if g.hasSelection && g.selected == e {
		g.hasSelection = false
	}
	g.modeAI.Forget(e)
	g.collector.Death()
	g.world.RemoveEntity(e)
}

// detachMember removes one member from its colony and rebuilds the
// leader's collision shapes from the surviving slots. A colony shrunk
// to just its leader is dissolved outright.
func (g *Game) detachMember(e ecs.Entity, leader ecs.Entity) {
	colony := g.registry.Colony.Get(leader)
	if colony != nil {
		for slot, m := range colony.Members {
			if m == e {
				delete(colony.Members, slot)
				break
			}
		}
		if colony.Size() <= 1 {
			g.unbind.Dissolve(leader)
			colony = nil
		}
	}

	if g.registry.Member.HasAll(e) {
		g.registry.Member.Remove(e)
	}
	if g.registry.Attached.HasAll(e) {
		g.registry.Attached.Remove(e)
	}

	if colony == nil {
		return
	}
	if shapes := g.registry.ShapeData.Get(leader); shapes != nil {
		pili := 0
		if organelles := g.registry.Organelles.Get(leader); organelles != nil {
			pili = organelles.PilusCount()
		}
		rebuilt := components.NewPhysicsShapeData(pili)
		for slot := range colony.Members {
			if slot == 0 {
				continue
			}
			rebuilt = rebuilt.WithMemberShape(uint32(slot), slot)
		}
		*shapes = rebuilt
	}
}

// countCells returns the total entity population.
func (g *Game) countCells() int {
	n := 0
	filter := ecs.NewFilter1[components.Health](g.world)
	query := filter.Query()
	for query.Next() {
		n++
	}
	return n
}
