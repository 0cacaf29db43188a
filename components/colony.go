package components

import (
	"math"

	"github.com/mlange-42/ark/ecs"
)

// MicrobeColony is the aggregate created on first successful bind.
// It is attached to the leader entity; members reference it back
// through ColonyMember. Slot 0 is always the leader.
type MicrobeColony struct {
	Leader      ecs.Entity
	Members     map[int]ecs.Entity // slot index -> member entity
	ColonyState MicrobeState       // mirrors the leader's control mode
	UnbindTimer float32            // seconds the leader has spent in unbinding mode
}

// NewMicrobeColony creates an empty colony shell for the leader.
// The leader itself is inserted at slot 0 by the binding system's
// initial-member step.
func NewMicrobeColony(leader ecs.Entity, state MicrobeState) MicrobeColony {
	return MicrobeColony{
		Leader:      leader,
		Members:     make(map[int]ecs.Entity, 2),
		ColonyState: state,
	}
}

// Clone returns a deep copy. Structural changes are staged on a clone
// and swapped in through the command recorder so a failed fusion never
// leaves a half-mutated member map behind.
func (c MicrobeColony) Clone() MicrobeColony {
	members := make(map[int]ecs.Entity, len(c.Members))
	for slot, e := range c.Members {
		members[slot] = e
	}
	c.Members = members
	return c
}

// MemberAt returns the member occupying a slot.
func (c *MicrobeColony) MemberAt(slot int) (ecs.Entity, bool) {
	e, ok := c.Members[slot]
	return e, ok
}

// HasMember reports whether the entity belongs to this colony.
func (c *MicrobeColony) HasMember(e ecs.Entity) bool {
	for _, m := range c.Members {
		if m == e {
			return true
		}
	}
	return false
}

// Size returns the member count, leader included.
func (c *MicrobeColony) Size() int {
	return len(c.Members)
}

// ColonyMember is attached to every non-leader member and points back
// at the colony leader.
type ColonyMember struct {
	Leader ecs.Entity
	Slot   int
}

// slotSpacingTurns is the golden-angle step used to fan members out
// around the leader.
const slotSpacingTurns = 2.39996

// SlotOffset returns the rigid body offset of a member slot relative
// to the leader, before rotation by the leader's heading. Slot 0 is
// the leader itself.
func SlotOffset(slot int, spacing float32) (dx, dy float32) {
	if slot <= 0 {
		return 0, 0
	}
	angle := float64(slot) * slotSpacingTurns
	ring := 1 + (slot-1)/6
	r := float64(spacing) * float64(ring)
	return float32(r * math.Cos(angle)), float32(r * math.Sin(angle))
}
