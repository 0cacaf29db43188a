package systems

import (
	"log/slog"
	"math"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
)

// NoticeBindingOutOfATP is shown when binding mode is forcibly exited
// because the cell ran out of ATP.
const NoticeBindingOutOfATP = "Not enough ATP to keep binding"

// SpeciesRules answers capability queries about species.
type SpeciesRules interface {
	// CanBind reports whether the species can enter binding mode at all.
	CanBind(species uint8) bool
	// CanBindWith reports whether the species may fuse with another.
	CanBindWith(species, other uint8) bool
}

// Notifier delivers short player-facing notices, best effort.
type Notifier interface {
	// CanNotify reports whether the entity has a notification sink.
	CanNotify(e ecs.Entity) bool
	// Notice delivers a message for the entity. Fire and forget.
	Notice(e ecs.Entity, msg string)
}

// CuePlayer triggers a one-shot audio cue unless it is already
// playing. Implementations must be safe for concurrent use and must
// not block.
type CuePlayer interface {
	Trigger(cue components.SoundCue, volume float32)
}

// MembershipObserver is told about fusion attempts and membership
// changes, so telemetry and other systems can mirror them.
type MembershipObserver interface {
	OnBindAttempt(leader, target ecs.Entity)
	OnBindRejected(leader, target ecs.Entity)
	OnBindExhausted(e ecs.Entity)
	OnColonyMemberAdded(leader, member ecs.Entity, slot int)
}

// BindingParams holds tuning for the binding coordinator.
type BindingParams struct {
	CostPerSecond float32 // ATP drained per second while in binding mode
	CostEpsilon   float32 // shortfall tolerated before binding is forced off
	LookAhead     float32 // unbinding look-at distance ahead of the cell
}

// BindingCoordinator fuses contacted cells into colonies.
//
// Its per-entity update runs under the game's data-parallel scheduler;
// everything that touches only the invoking entity's own components is
// lock-free, while fusion itself is serialized process-wide behind
// fuseLock and stages all structural changes through the command
// recorder.
type BindingCoordinator struct {
	reg      *Registry
	rules    SpeciesRules
	notifier Notifier
	cues     CuePlayer
	observer MembershipObserver
	params   BindingParams

	// fuseLock serializes fusion attempts across all workers. Created
	// once with the coordinator and held only across a single
	// BeginBind, never across the per-entity contact scan.
	fuseLock sync.Mutex
}

// NewBindingCoordinator creates the coordinator. rules, notifier, cues
// and observer may be nil; the corresponding hooks are then skipped.
func NewBindingCoordinator(reg *Registry, params BindingParams, rules SpeciesRules, notifier Notifier, cues CuePlayer, observer MembershipObserver) *BindingCoordinator {
	return &BindingCoordinator{
		reg:      reg,
		rules:    rules,
		notifier: notifier,
		cues:     cues,
		observer: observer,
		params:   params,
	}
}

// BindingUpdate carries one entity's components for a coordinator
// tick. The game's snapshot phase fills it from the store before the
// parallel compute phase starts.
type BindingUpdate struct {
	Entity     ecs.Entity
	Control    *components.MicrobeControl
	Health     *components.Health
	Storage    *components.CompoundStorage
	Species    *components.SpeciesMember
	Organelles *components.OrganelleContainer
	CellProps  *components.CellProperties
	ShapeData  *components.PhysicsShapeData
	Collisions *components.CollisionSet
	Sound      *components.SoundEffects
	Pos        *components.Position
	Rot        *components.Rotation
}

// Update runs the coordinator for one entity and one tick.
// Entities in Normal mode are left completely untouched.
func (c *BindingCoordinator) Update(u *BindingUpdate, delta float32) {
	switch u.Control.State {
	case components.StateUnbinding:
		c.freezeForUnbinding(u)
	case components.StateBinding:
		c.updateBinding(u, delta)
	}
}

// freezeForUnbinding zeroes movement and points the cell straight
// ahead of its current facing. No fusion logic runs while unbinding.
func (c *BindingCoordinator) freezeForUnbinding(u *BindingUpdate) {
	u.Control.MoveX = 0
	u.Control.MoveY = 0
	u.Control.LookAtX = u.Pos.X + float32(math.Cos(float64(u.Rot.Heading)))*c.params.LookAhead
	u.Control.LookAtY = u.Pos.Y + float32(math.Sin(float64(u.Rot.Heading)))*c.params.LookAhead
}

func (c *BindingCoordinator) updateBinding(u *BindingUpdate, delta float32) {
	// A dead cell sits in binding mode until revived or removed.
	if !u.Health.Alive {
		return
	}

	// Capability gate: binding needs a binding agent and a species
	// that allows it at all.
	if !u.Organelles.HasBindingAgent() || (c.rules != nil && !c.rules.CanBind(u.Species.ID)) {
		u.Control.State = components.StateNormal
		return
	}

	// Binding agents burn ATP continuously.
	cost := c.params.CostPerSecond * delta
	taken := u.Storage.Take(components.CompoundATP, cost)
	if cost-taken > c.params.CostEpsilon {
		c.exitBindingExhausted(u)
		return
	}

	if c.cues != nil {
		c.cues.Trigger(components.CueBindingMode, u.Sound.Volume)
	}

	// Non-leader members never scan for new fusions; only the leader
	// carries live collision shapes.
	if c.reg.Member.HasAll(u.Entity) {
		return
	}

	if u.Collisions.Count == 0 {
		return
	}

	// A membrane still under construction cannot safely fuse.
	if !u.CellProps.MembraneReady {
		return
	}

	for _, contact := range u.Collisions.Active() {
		if !c.canBindWith(u.Species.ID, contact.Other) {
			continue
		}
		if c.reg.Attached.HasAll(contact.Other) || c.reg.Colony.HasAll(contact.Other) {
			continue // already fused into something
		}
		if !c.reg.EntityAlive(contact.Other) {
			continue
		}
		otherShapes := c.reg.ShapeData.Get(contact.Other)
		if otherShapes == nil {
			slog.Error("bind target is missing physics shape data",
				"entity", u.Entity.ID(), "target", contact.Other.ID())
			continue
		}
		if u.ShapeData.IsPilus(contact.OwnSubShape) || otherShapes.IsPilus(contact.OtherSubShape) {
			continue // appendage contact points never fuse
		}
		touched, ok := u.ShapeData.MemberSlot(contact.OwnSubShape)
		if !ok {
			slog.Error("could not resolve colony member slot for contact",
				"entity", u.Entity.ID(), "sub_shape", contact.OwnSubShape)
			continue
		}
		if c.BeginBind(u.Entity, c.placementSlot(u.Entity, touched), contact.Other) {
			break // at most one successful fusion per tick
		}
	}
}

// exitBindingExhausted forces the cell (and its whole colony, if it
// leads one) back to Normal mode and tells the player why, when a
// notification sink is attached.
func (c *BindingCoordinator) exitBindingExhausted(u *BindingUpdate) {
	u.Control.State = components.StateNormal
	if colony := c.reg.Colony.Get(u.Entity); colony != nil {
		c.setColonyState(u.Entity, colony, components.StateNormal)
	}
	if c.observer != nil {
		c.observer.OnBindExhausted(u.Entity)
	}
	if c.notifier != nil && c.notifier.CanNotify(u.Entity) {
		c.notifier.Notice(u.Entity, NoticeBindingOutOfATP)
	}
}

// setColonyState propagates a control mode to every member of the
// leader's colony through the command recorder. The leader's own
// control component is written by the caller.
func (c *BindingCoordinator) setColonyState(leader ecs.Entity, colony *components.MicrobeColony, state components.MicrobeState) {
	rec := c.reg.BeginRecording()
	for _, m := range colony.Members {
		if m == leader {
			continue
		}
		rec.SetControlState(m, state)
	}
	updated := colony.Clone()
	updated.ColonyState = state
	rec.SetColony(leader, updated)
	rec.Commit()
}

// placementSlot picks the slot a new member will occupy: the touched
// attachment slot when it is free, otherwise the lowest free slot.
// Slot 0 always belongs to the leader.
func (c *BindingCoordinator) placementSlot(leader ecs.Entity, touched int) int {
	colony := c.reg.Colony.Get(leader)
	occupied := func(s int) bool {
		if s <= 0 {
			return true
		}
		if colony == nil {
			return false
		}
		_, ok := colony.Members[s]
		return ok
	}
	if !occupied(touched) {
		return touched
	}
	for s := 1; ; s++ {
		if !occupied(s) {
			return s
		}
	}
}

// canBindWith checks species-specific fusion compatibility with the
// contacted entity.
func (c *BindingCoordinator) canBindWith(species uint8, other ecs.Entity) bool {
	otherSpecies := c.reg.Species.Get(other)
	if otherSpecies == nil {
		return false
	}
	if c.rules != nil {
		return c.rules.CanBindWith(species, otherSpecies.ID)
	}
	return species == otherSpecies.ID
}
