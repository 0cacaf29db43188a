package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
)

// CommandRecorder buffers proposed entity mutations so a multi-step
// change can be discarded atomically when it fails partway through.
// Nothing reaches the store until Commit, and committed commands are
// only executed by Registry.ApplyPending at the tick synchronization
// point.
type CommandRecorder struct {
	reg *Registry
	ops []Command
}

// BeginRecording opens a deferred command scope against the store.
func (r *Registry) BeginRecording() *CommandRecorder {
	return &CommandRecorder{reg: r}
}

// Len returns the number of buffered commands.
func (rec *CommandRecorder) Len() int {
	return len(rec.ops)
}

// Discard drops all buffered commands without applying them.
func (rec *CommandRecorder) Discard() {
	rec.ops = rec.ops[:0]
}

// Commit hands the buffered commands to the store's pending queue.
// Safe to call from parallel workers; execution happens later at the
// synchronization point.
func (rec *CommandRecorder) Commit() {
	if len(rec.ops) == 0 {
		return
	}
	rec.reg.enqueue(rec.ops)
	rec.ops = nil
}

// AddColony buffers attaching a new colony aggregate to a leader.
func (rec *CommandRecorder) AddColony(e ecs.Entity, colony components.MicrobeColony) {
	rec.ops = append(rec.ops, AddColonyCmd{Entity: e, Colony: colony})
}

// SetColony buffers replacing a leader's colony aggregate.
func (rec *CommandRecorder) SetColony(e ecs.Entity, colony components.MicrobeColony) {
	rec.ops = append(rec.ops, SetColonyCmd{Entity: e, Colony: colony})
}

// RemoveColony buffers detaching a leader's colony aggregate.
func (rec *CommandRecorder) RemoveColony(e ecs.Entity) {
	rec.ops = append(rec.ops, RemoveColonyCmd{Entity: e})
}

// AddMember buffers attaching colony membership to an entity.
func (rec *CommandRecorder) AddMember(e ecs.Entity, member components.ColonyMember) {
	rec.ops = append(rec.ops, AddMemberCmd{Entity: e, Member: member})
}

// RemoveMember buffers detaching colony membership from an entity.
func (rec *CommandRecorder) RemoveMember(e ecs.Entity) {
	rec.ops = append(rec.ops, RemoveMemberCmd{Entity: e})
}

// AddAttachedTag buffers tagging an entity as fused.
func (rec *CommandRecorder) AddAttachedTag(e ecs.Entity) {
	rec.ops = append(rec.ops, AddAttachedTagCmd{Entity: e})
}

// RemoveAttachedTag buffers untagging a fused entity.
func (rec *CommandRecorder) RemoveAttachedTag(e ecs.Entity) {
	rec.ops = append(rec.ops, RemoveAttachedTagCmd{Entity: e})
}

// SetControlState buffers forcing an entity's control mode.
func (rec *CommandRecorder) SetControlState(e ecs.Entity, state components.MicrobeState) {
	rec.ops = append(rec.ops, SetControlStateCmd{Entity: e, State: state})
}

// SetShapeData buffers replacing an entity's physics shape mapping.
func (rec *CommandRecorder) SetShapeData(e ecs.Entity, shapes components.PhysicsShapeData) {
	rec.ops = append(rec.ops, SetShapeDataCmd{Entity: e, Shapes: shapes})
}

// SetReproductionSuspended buffers toggling solo reproduction.
func (rec *CommandRecorder) SetReproductionSuspended(e ecs.Entity, suspended bool) {
	rec.ops = append(rec.ops, SetReproSuspendedCmd{Entity: e, Suspended: suspended})
}
