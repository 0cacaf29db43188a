// Package systems provides ECS systems for the microbe simulation.
package systems

import (
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
)

// Registry bundles the ECS world with per-component accessors, the
// pending command queue, and the per-tick fusion claim set. It is the
// entity store the rest of the simulation talks to.
type Registry struct {
	World *ecs.World

	Pos        *ecs.Map1[components.Position]
	Vel        *ecs.Map1[components.Velocity]
	Rot        *ecs.Map1[components.Rotation]
	Control    *ecs.Map1[components.MicrobeControl]
	Health     *ecs.Map1[components.Health]
	Storage    *ecs.Map1[components.CompoundStorage]
	Species    *ecs.Map1[components.SpeciesMember]
	Organelles *ecs.Map1[components.OrganelleContainer]
	CellProps  *ecs.Map1[components.CellProperties]
	ShapeData  *ecs.Map1[components.PhysicsShapeData]
	Collisions *ecs.Map1[components.CollisionSet]
	Sound      *ecs.Map1[components.SoundEffects]
	Repro      *ecs.Map1[components.ReproductionStatus]
	Colony     *ecs.Map1[components.MicrobeColony]
	Member     *ecs.Map1[components.ColonyMember]
	Attached   *ecs.Map1[components.AttachedToEntity]
	Player     *ecs.Map1[components.PlayerControlled]

	mu      sync.Mutex
	pending []Command
	claimed map[ecs.Entity]struct{}
}

// NewRegistry creates a registry over the given world.
func NewRegistry(world *ecs.World) *Registry {
	return &Registry{
		World:      world,
		Pos:        ecs.NewMap1[components.Position](world),
		Vel:        ecs.NewMap1[components.Velocity](world),
		Rot:        ecs.NewMap1[components.Rotation](world),
		Control:    ecs.NewMap1[components.MicrobeControl](world),
		Health:     ecs.NewMap1[components.Health](world),
		Storage:    ecs.NewMap1[components.CompoundStorage](world),
		Species:    ecs.NewMap1[components.SpeciesMember](world),
		Organelles: ecs.NewMap1[components.OrganelleContainer](world),
		CellProps:  ecs.NewMap1[components.CellProperties](world),
		ShapeData:  ecs.NewMap1[components.PhysicsShapeData](world),
		Collisions: ecs.NewMap1[components.CollisionSet](world),
		Sound:      ecs.NewMap1[components.SoundEffects](world),
		Repro:      ecs.NewMap1[components.ReproductionStatus](world),
		Colony:     ecs.NewMap1[components.MicrobeColony](world),
		Member:     ecs.NewMap1[components.ColonyMember](world),
		Attached:   ecs.NewMap1[components.AttachedToEntity](world),
		Player:     ecs.NewMap1[components.PlayerControlled](world),
		claimed:    make(map[ecs.Entity]struct{}, 16),
	}
}

// InColony reports whether the entity already belongs to any colony,
// as leader or as member.
func (r *Registry) InColony(e ecs.Entity) bool {
	return r.Member.HasAll(e) || r.Colony.HasAll(e)
}

// EntityAlive reports whether the entity exists and its health says
// it is alive.
func (r *Registry) EntityAlive(e ecs.Entity) bool {
	if !r.World.Alive(e) {
		return false
	}
	h := r.Health.Get(e)
	return h != nil && h.Alive
}

// Claim marks an entity as fused this tick. Callers must hold the
// fusion lock. The claim backs the data-level "member of at most one
// colony" re-verification while structural commands are still pending.
func (r *Registry) Claim(e ecs.Entity) {
	r.mu.Lock()
	r.claimed[e] = struct{}{}
	r.mu.Unlock()
}

// Claimed reports whether the entity was fused earlier this tick.
func (r *Registry) Claimed(e ecs.Entity) bool {
	r.mu.Lock()
	_, ok := r.claimed[e]
	r.mu.Unlock()
	return ok
}

// enqueue appends committed commands to the pending queue.
func (r *Registry) enqueue(ops []Command) {
	r.mu.Lock()
	r.pending = append(r.pending, ops...)
	r.mu.Unlock()
}

// PendingLen returns the number of commands waiting for the next
// synchronization point.
func (r *Registry) PendingLen() int {
	r.mu.Lock()
	n := len(r.pending)
	r.mu.Unlock()
	return n
}

// ApplyPending executes all committed commands and clears the claim
// set. It is the tick synchronization point and must only run after
// all parallel workers have finished; structural changes never touch
// the live store from inside a worker. Returns the number of commands
// applied.
func (r *Registry) ApplyPending() int {
	r.mu.Lock()
	ops := r.pending
	r.pending = nil
	for e := range r.claimed {
		delete(r.claimed, e)
	}
	r.mu.Unlock()

	applied := 0
	for _, op := range ops {
		if !r.World.Alive(op.Target()) {
			continue // target despawned between commit and sync point
		}
		op.apply(r)
		applied++
	}
	return applied
}

// Command is a single deferred mutation against the entity store.
type Command interface {
	Target() ecs.Entity
	apply(r *Registry)
}

// AddColonyCmd attaches a new colony aggregate to a leader.
type AddColonyCmd struct {
	Entity ecs.Entity
	Colony components.MicrobeColony
}

func (c AddColonyCmd) Target() ecs.Entity { return c.Entity }
func (c AddColonyCmd) apply(r *Registry) {
	if !r.Colony.HasAll(c.Entity) {
		r.Colony.Add(c.Entity, &c.Colony)
	}
}

// SetColonyCmd replaces a leader's colony aggregate.
type SetColonyCmd struct {
	Entity ecs.Entity
	Colony components.MicrobeColony
}

func (c SetColonyCmd) Target() ecs.Entity { return c.Entity }
func (c SetColonyCmd) apply(r *Registry) {
	if col := r.Colony.Get(c.Entity); col != nil {
		*col = c.Colony
	}
}

// RemoveColonyCmd detaches the colony aggregate from a leader.
type RemoveColonyCmd struct {
	Entity ecs.Entity
}

func (c RemoveColonyCmd) Target() ecs.Entity { return c.Entity }
func (c RemoveColonyCmd) apply(r *Registry) {
	if r.Colony.HasAll(c.Entity) {
		r.Colony.Remove(c.Entity)
	}
}

// AddMemberCmd attaches colony membership to an entity.
type AddMemberCmd struct {
	Entity ecs.Entity
	Member components.ColonyMember
}

func (c AddMemberCmd) Target() ecs.Entity { return c.Entity }
func (c AddMemberCmd) apply(r *Registry) {
	if !r.Member.HasAll(c.Entity) {
		r.Member.Add(c.Entity, &c.Member)
	}
}

// RemoveMemberCmd detaches colony membership from an entity.
type RemoveMemberCmd struct {
	Entity ecs.Entity
}

func (c RemoveMemberCmd) Target() ecs.Entity { return c.Entity }
func (c RemoveMemberCmd) apply(r *Registry) {
	if r.Member.HasAll(c.Entity) {
		r.Member.Remove(c.Entity)
	}
}

// AddAttachedTagCmd tags an entity as fused into something else.
type AddAttachedTagCmd struct {
	Entity ecs.Entity
}

func (c AddAttachedTagCmd) Target() ecs.Entity { return c.Entity }
func (c AddAttachedTagCmd) apply(r *Registry) {
	if !r.Attached.HasAll(c.Entity) {
		r.Attached.Add(c.Entity, &components.AttachedToEntity{})
	}
}

// RemoveAttachedTagCmd removes the fused tag from an entity.
type RemoveAttachedTagCmd struct {
	Entity ecs.Entity
}

func (c RemoveAttachedTagCmd) Target() ecs.Entity { return c.Entity }
func (c RemoveAttachedTagCmd) apply(r *Registry) {
	if r.Attached.HasAll(c.Entity) {
		r.Attached.Remove(c.Entity)
	}
}

// SetControlStateCmd forces an entity's control mode.
type SetControlStateCmd struct {
	Entity ecs.Entity
	State  components.MicrobeState
}

func (c SetControlStateCmd) Target() ecs.Entity { return c.Entity }
func (c SetControlStateCmd) apply(r *Registry) {
	if ctrl := r.Control.Get(c.Entity); ctrl != nil {
		ctrl.State = c.State
	}
}

// SetShapeDataCmd replaces an entity's physics shape mapping.
type SetShapeDataCmd struct {
	Entity ecs.Entity
	Shapes components.PhysicsShapeData
}

func (c SetShapeDataCmd) Target() ecs.Entity { return c.Entity }
func (c SetShapeDataCmd) apply(r *Registry) {
	if sd := r.ShapeData.Get(c.Entity); sd != nil {
		*sd = c.Shapes
	}
}

// SetReproSuspendedCmd toggles solo reproduction for an entity.
type SetReproSuspendedCmd struct {
	Entity    ecs.Entity
	Suspended bool
}

func (c SetReproSuspendedCmd) Target() ecs.Entity { return c.Entity }
func (c SetReproSuspendedCmd) apply(r *Registry) {
	if rep := r.Repro.Get(c.Entity); rep != nil {
		rep.Suspended = c.Suspended
	}
}
