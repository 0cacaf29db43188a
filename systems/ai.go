package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
)

// ModeAIParams tunes autonomous mode selection and wandering.
type ModeAIParams struct {
	BindThreshold  float32 // ATP fraction required before seeking binds
	BindChance     float32 // per-second chance to enter binding mode
	UnbindChance   float32 // per-second chance for a leader to dissolve
	MaxColonySize  int     // leaders at this size stop binding
	WanderStrength float32 // magnitude of the wander steering input
	WanderJitter   float32 // radians/s of random heading drift
}

// ModeAISystem drives non-player cells: wandering, entering binding
// mode when well fed, and occasionally dissolving a colony.
type ModeAISystem struct {
	reg    *Registry
	rules  SpeciesRules
	params ModeAIParams
	rng    *rand.Rand
	wander map[ecs.Entity]float32 // per-entity wander heading
}

// NewModeAISystem creates the AI driver with a seeded RNG so headless
// runs are reproducible.
func NewModeAISystem(reg *Registry, rules SpeciesRules, params ModeAIParams, seed int64) *ModeAISystem {
	return &ModeAISystem{
		reg:    reg,
		rules:  rules,
		params: params,
		rng:    rand.New(rand.NewSource(seed)),
		wander: make(map[ecs.Entity]float32, 256),
	}
}

// Update picks modes and steering for every autonomous free body.
func (a *ModeAISystem) Update(delta float32) {
	filter := ecs.NewFilter4[components.Position, components.MicrobeControl, components.CompoundStorage, components.Health](a.reg.World).
		Without(ecs.C[components.AttachedToEntity]()).
		Without(ecs.C[components.PlayerControlled]())
	query := filter.Query()
	for query.Next() {
		pos, ctrl, storage, health := query.Get()
		if !health.Alive {
			ctrl.MoveX = 0
			ctrl.MoveY = 0
			continue
		}
		e := query.Entity()

		switch ctrl.State {
		case components.StateNormal:
			a.maybeEnterBinding(e, ctrl, storage, delta)
		case components.StateBinding:
			a.maybeStartUnbinding(e, ctrl, delta)
		case components.StateUnbinding:
			continue // frozen by the binding coordinator
		}

		a.steerWander(e, pos, ctrl, delta)
	}
}

func (a *ModeAISystem) maybeEnterBinding(e ecs.Entity, ctrl *components.MicrobeControl, storage *components.CompoundStorage, delta float32) {
	organelles := a.reg.Organelles.Get(e)
	if organelles == nil || !organelles.HasBindingAgent() {
		return
	}
	if a.rules != nil {
		if sp := a.reg.Species.Get(e); sp != nil && !a.rules.CanBind(sp.ID) {
			return
		}
	}
	if storage.Fraction(components.CompoundATP) < a.params.BindThreshold {
		return
	}
	if colony := a.reg.Colony.Get(e); colony != nil && a.params.MaxColonySize > 0 && colony.Size() >= a.params.MaxColonySize {
		return
	}
	if a.rng.Float32() < a.params.BindChance*delta {
		ctrl.State = components.StateBinding
	}
}

func (a *ModeAISystem) maybeStartUnbinding(e ecs.Entity, ctrl *components.MicrobeControl, delta float32) {
	colony := a.reg.Colony.Get(e)
	if colony == nil || colony.Size() <= 1 {
		return
	}
	if a.rng.Float32() < a.params.UnbindChance*delta {
		ctrl.State = components.StateUnbinding
	}
}

// steerWander drifts the wander heading and turns it into move and
// look-at inputs. Unbinding cells are left alone; the coordinator owns
// their inputs.
func (a *ModeAISystem) steerWander(e ecs.Entity, pos *components.Position, ctrl *components.MicrobeControl, delta float32) {
	if ctrl.State == components.StateUnbinding {
		return
	}
	heading, ok := a.wander[e]
	if !ok {
		heading = a.rng.Float32() * 2 * math.Pi
	}
	heading += (a.rng.Float32()*2 - 1) * a.params.WanderJitter * delta
	a.wander[e] = heading

	sin, cos := math.Sincos(float64(heading))
	ctrl.MoveX = float32(cos) * a.params.WanderStrength
	ctrl.MoveY = float32(sin) * a.params.WanderStrength
	ctrl.LookAtX = pos.X + float32(cos)*20
	ctrl.LookAtY = pos.Y + float32(sin)*20
}

// Forget drops per-entity AI state for a despawned entity.
func (a *ModeAISystem) Forget(e ecs.Entity) {
	delete(a.wander, e)
}
