// Package components defines ECS components for the microbe simulation.
package components

import "github.com/mlange-42/ark/ecs"

// MicrobeState is the control mode of a microbe.
type MicrobeState uint8

const (
	StateNormal MicrobeState = iota
	StateBinding
	StateUnbinding
)

// String returns a readable mode name for logging.
func (s MicrobeState) String() string {
	switch s {
	case StateBinding:
		return "binding"
	case StateUnbinding:
		return "unbinding"
	default:
		return "normal"
	}
}

// MicrobeControl holds per-entity control inputs.
// Written by the mode AI, the player, and the binding coordinator;
// consumed by the movement system every tick.
type MicrobeControl struct {
	State   MicrobeState
	MoveX   float32 // desired movement direction (not normalized)
	MoveY   float32
	LookAtX float32 // desired look-at point in world space
	LookAtY float32
}

// Health tracks an entity's vitality.
type Health struct {
	Current float32
	Max     float32
	Alive   bool
}

// SpeciesMember identifies which species a microbe belongs to.
// The ID indexes the species table in the config.
type SpeciesMember struct {
	ID uint8
}

// OrganelleKind identifies the function of a single organelle.
type OrganelleKind uint8

const (
	OrganelleCytoplasm OrganelleKind = iota
	OrganelleBindingAgent
	OrganellePilus
	OrganelleMetabolosome
)

// Organelle is one functional unit inside a microbe.
// OffsetAngle places the organelle on the membrane rim (radians,
// relative to the cell's heading); only pili use it for contact tests.
type Organelle struct {
	Kind        OrganelleKind
	OffsetAngle float32
}

// MaxOrganelles caps organelles per cell; a fixed array keeps the
// component flat for the archetype storage.
const MaxOrganelles = 8

// OrganelleContainer holds a microbe's organelles.
type OrganelleContainer struct {
	Organelles [MaxOrganelles]Organelle
	Count      uint8
}

// Add appends an organelle. Returns false when full.
func (oc *OrganelleContainer) Add(o Organelle) bool {
	if oc.Count >= MaxOrganelles {
		return false
	}
	oc.Organelles[oc.Count] = o
	oc.Count++
	return true
}

// HasBindingAgent reports whether this cell can enter binding mode.
func (oc *OrganelleContainer) HasBindingAgent() bool {
	for i := uint8(0); i < oc.Count; i++ {
		if oc.Organelles[i].Kind == OrganelleBindingAgent {
			return true
		}
	}
	return false
}

// PilusCount returns the number of pilus organelles.
func (oc *OrganelleContainer) PilusCount() int {
	n := 0
	for i := uint8(0); i < oc.Count; i++ {
		if oc.Organelles[i].Kind == OrganellePilus {
			n++
		}
	}
	return n
}

// CellProperties holds membrane/shape state.
// MembraneReady is false while the shape is still being constructed;
// a not-yet-ready shape cannot safely fuse.
type CellProperties struct {
	Radius        float32
	MembraneReady bool
}

// ShapeRole classifies a physics sub-shape.
type ShapeRole uint8

const (
	ShapeRoleUnknown ShapeRole = iota
	ShapeRoleMember            // body of a colony member; MemberSlot names which
	ShapeRolePilus             // non-fusible appendage
)

// SubShapeData describes one sub-shape of an entity's physics body.
type SubShapeData struct {
	Role       ShapeRole
	MemberSlot int // valid when Role == ShapeRoleMember
}

// PilusShapeBase is the first sub-shape id used for pilus shapes.
// Member-body shapes use their slot index directly, so the two
// ranges never collide.
const PilusShapeBase uint32 = 1000

// PhysicsShapeData maps opaque per-shape identifiers to their role.
// The leader of a colony carries one member-body shape per occupied
// slot plus one shape per pilus.
type PhysicsShapeData struct {
	Shapes map[uint32]SubShapeData
}

// NewPhysicsShapeData returns shape data with the cell's own body at
// slot 0 and one pilus shape per pilus organelle.
func NewPhysicsShapeData(pilusCount int) PhysicsShapeData {
	shapes := make(map[uint32]SubShapeData, 1+pilusCount)
	shapes[0] = SubShapeData{Role: ShapeRoleMember, MemberSlot: 0}
	for i := 0; i < pilusCount; i++ {
		shapes[PilusShapeBase+uint32(i)] = SubShapeData{Role: ShapeRolePilus}
	}
	return PhysicsShapeData{Shapes: shapes}
}

// MemberSlot resolves a sub-shape id to a colony member slot.
func (p *PhysicsShapeData) MemberSlot(sub uint32) (int, bool) {
	d, ok := p.Shapes[sub]
	if !ok || d.Role != ShapeRoleMember {
		return 0, false
	}
	return d.MemberSlot, true
}

// IsPilus reports whether the sub-shape is a non-fusible appendage.
func (p *PhysicsShapeData) IsPilus(sub uint32) bool {
	d, ok := p.Shapes[sub]
	return ok && d.Role == ShapeRolePilus
}

// WithMemberShape returns a copy with an additional member-body shape.
// The copy leaves the receiver untouched so a recorded set-component
// can be discarded without side effects.
func (p PhysicsShapeData) WithMemberShape(sub uint32, slot int) PhysicsShapeData {
	shapes := make(map[uint32]SubShapeData, len(p.Shapes)+1)
	for k, v := range p.Shapes {
		shapes[k] = v
	}
	shapes[sub] = SubShapeData{Role: ShapeRoleMember, MemberSlot: slot}
	return PhysicsShapeData{Shapes: shapes}
}

// PhysicsContact is one active contact against another entity.
type PhysicsContact struct {
	Other         ecs.Entity
	OwnSubShape   uint32
	OtherSubShape uint32
}

// MaxContacts caps contacts recorded per entity per tick.
const MaxContacts = 8

// CollisionSet is a read-only per-tick snapshot of active contacts.
// Rebuilt from scratch by the contact system each tick.
type CollisionSet struct {
	Contacts [MaxContacts]PhysicsContact
	Count    uint8
}

// Add records a contact. Returns false when the snapshot is full.
func (cs *CollisionSet) Add(c PhysicsContact) bool {
	if cs.Count >= MaxContacts {
		return false
	}
	cs.Contacts[cs.Count] = c
	cs.Count++
	return true
}

// Active returns the recorded contacts in insertion order.
func (cs *CollisionSet) Active() []PhysicsContact {
	return cs.Contacts[:cs.Count]
}

// Clear resets the snapshot for the next tick.
func (cs *CollisionSet) Clear() {
	cs.Count = 0
}

// SoundCue identifies a one-shot audio cue.
type SoundCue uint8

const (
	CueNone SoundCue = iota
	CueBindingMode
	CueColonyFormed
)

// SoundEffects holds per-entity audio parameters.
type SoundEffects struct {
	Volume float32
}

// ReproductionStatus gates cell division.
// Suspended is set when a cell joins a colony; members of a colony do
// not reproduce on their own.
type ReproductionStatus struct {
	Suspended bool
	Cooldown  float32 // seconds until next division
}

// AttachedToEntity tags entities fused into something else.
// The binding coordinator's query excludes this tag, and a tagged
// entity can never become a fusion target.
type AttachedToEntity struct{}

// PlayerControlled tags the microbe the player is steering.
// Only player-controlled entities carry a notification sink.
type PlayerControlled struct{}
