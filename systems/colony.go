package systems

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
)

// BeginBind fuses target into the colony led by leader, creating the
// colony first if the leader is still solitary. slot is where the new
// member is placed in the leader's slot map. Returns true when the
// fusion was staged; on any failure the recorded commands are
// discarded and the store is untouched.
//
// The whole operation runs under the process-wide fusion lock, so at
// most one fusion is in flight at a time even with parallel workers.
func (c *BindingCoordinator) BeginBind(leader ecs.Entity, slot int, target ecs.Entity) bool {
	c.fuseLock.Lock()
	defer c.fuseLock.Unlock()

	if c.observer != nil {
		c.observer.OnBindAttempt(leader, target)
	}

	// Re-check under the lock; the target can die or get claimed
	// between the caller's contact scan and here.
	if !c.reg.EntityAlive(target) {
		slog.Error("bind target died before fusion", "leader", leader.ID(), "target", target.ID())
		return c.rejected(leader, target)
	}
	if c.reg.Claimed(target) {
		return c.rejected(leader, target)
	}
	if c.reg.Claimed(leader) {
		// The leader was itself fused into another colony earlier this
		// tick; its membership components are still pending.
		slog.Error("bind leader was claimed by another colony this tick", "leader", leader.ID())
		return c.rejected(leader, target)
	}

	rec := c.reg.BeginRecording()

	if colony := c.reg.Colony.Get(leader); colony != nil {
		working := colony.Clone()
		if err := c.addToColony(rec, &working, slot, target); err != nil {
			slog.Debug("bind rejected", "leader", leader.ID(), "target", target.ID(), "err", err)
			rec.Discard()
			return c.rejected(leader, target)
		}
		// A successful fusion settles the whole colony back to Normal.
		working.ColonyState = components.StateNormal
		for _, m := range working.Members {
			if m == leader || m == target {
				continue
			}
			rec.SetControlState(m, components.StateNormal)
		}
		rec.SetColony(leader, working)
	} else {
		if c.reg.Member.HasAll(leader) {
			slog.Error("bind leader is already a member of another colony", "leader", leader.ID())
			rec.Discard()
			return c.rejected(leader, target)
		}
		fresh := components.NewMicrobeColony(leader, components.StateBinding)
		c.addInitialColonyMember(&fresh, 0, leader)
		if err := c.addToColony(rec, &fresh, slot, target); err != nil {
			slog.Debug("bind rejected", "leader", leader.ID(), "target", target.ID(), "err", err)
			rec.Discard()
			return c.rejected(leader, target)
		}
		fresh.ColonyState = components.StateNormal
		rec.AddColony(leader, fresh)
		rec.SetReproductionSuspended(leader, true)
	}

	rec.SetControlState(leader, components.StateNormal)
	// Claim both sides: a leader whose colony component is still pending
	// must not be fused into another colony as a target this tick.
	c.reg.Claim(leader)
	c.reg.Claim(target)
	rec.Commit()

	if c.cues != nil {
		vol := float32(1)
		if snd := c.reg.Sound.Get(leader); snd != nil {
			vol = snd.Volume
		}
		c.cues.Trigger(components.CueColonyFormed, vol)
	}
	return true
}

// rejected reports a failed fusion to the observer and returns false.
func (c *BindingCoordinator) rejected(leader, target ecs.Entity) bool {
	if c.observer != nil {
		c.observer.OnBindRejected(leader, target)
	}
	return false
}

// addToColony stages the insertion of member at slot into colony.
// The colony value is mutated directly (callers pass a clone); every
// store-level change goes through the recorder. On error nothing has
// been committed and the caller discards the recorder.
func (c *BindingCoordinator) addToColony(rec *CommandRecorder, colony *components.MicrobeColony, slot int, member ecs.Entity) error {
	if c.reg.InColony(member) || c.reg.Attached.HasAll(member) {
		return fmt.Errorf("entity %d is already part of a colony", member.ID())
	}
	if c.reg.Claimed(member) {
		return fmt.Errorf("entity %d was already fused this tick", member.ID())
	}
	if occupant, ok := colony.Members[slot]; ok {
		return fmt.Errorf("slot %d is already occupied by entity %d", slot, occupant.ID())
	}

	colony.Members[slot] = member

	rec.AddMember(member, components.ColonyMember{Leader: colony.Leader, Slot: slot})
	rec.AddAttachedTag(member)
	rec.SetControlState(member, components.StateNormal)
	rec.SetReproductionSuspended(member, true)

	// The leader's collision body grows a sub-shape for the new member
	// so later contacts can resolve to this slot.
	if shapes := c.reg.ShapeData.Get(colony.Leader); shapes != nil {
		rec.SetShapeData(colony.Leader, shapes.WithMemberShape(uint32(slot), slot))
	}

	if c.observer != nil {
		c.observer.OnColonyMemberAdded(colony.Leader, member, slot)
	}
	return nil
}

// addInitialColonyMember places the founding member into a brand-new
// colony. The founder must sit at slot 0; any other request is
// corrected and logged.
func (c *BindingCoordinator) addInitialColonyMember(colony *components.MicrobeColony, slot int, member ecs.Entity) {
	if slot != 0 {
		slog.Warn("initial colony member requested a nonzero slot, correcting to 0",
			"member", member.ID(), "slot", slot)
		slot = 0
	}
	colony.Members[slot] = member
}
