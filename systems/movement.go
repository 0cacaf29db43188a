package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
)

// MovementParams tunes the movement integrator.
type MovementParams struct {
	Acceleration float32 // units/s^2 applied along the move direction
	Drag         float32 // fraction of velocity lost per second
	TurnRate     float32 // radians/s toward the look-at point
	MaxSpeed     float32 // default speed clamp, overridden per species
}

// MovementSystem integrates control inputs into positions and keeps
// colony members rigidly placed around their leader.
type MovementSystem struct {
	reg    *Registry
	params MovementParams
	width  float32
	height float32
	speed  func(species uint8) float32
}

// NewMovementSystem creates the integrator. speedFor may be nil, in
// which case the default MaxSpeed applies to every species.
func NewMovementSystem(reg *Registry, params MovementParams, width, height float32, speedFor func(species uint8) float32) *MovementSystem {
	return &MovementSystem{
		reg:    reg,
		params: params,
		width:  width,
		height: height,
		speed:  speedFor,
	}
}

// Update advances all free bodies, then snaps attached members to
// their slots. Attached members have no independent motion.
func (m *MovementSystem) Update(delta float32) {
	filter := ecs.NewFilter4[components.Position, components.Velocity, components.Rotation, components.MicrobeControl](m.reg.World).
		Without(ecs.C[components.AttachedToEntity]())
	query := filter.Query()
	for query.Next() {
		pos, vel, rot, ctrl := query.Get()
		m.integrate(query.Entity(), pos, vel, rot, ctrl, delta)
	}

	m.placeMembers()
}

func (m *MovementSystem) integrate(e ecs.Entity, pos *components.Position, vel *components.Velocity, rot *components.Rotation, ctrl *components.MicrobeControl, delta float32) {
	// Turn toward the look-at point, rate limited.
	ldx, ldy := ToroidalDelta(pos.X, pos.Y, ctrl.LookAtX, ctrl.LookAtY, m.width, m.height)
	if ldx != 0 || ldy != 0 {
		want := float32(math.Atan2(float64(ldy), float64(ldx)))
		diff := want - rot.Heading
		for diff > math.Pi {
			diff -= 2 * math.Pi
		}
		for diff < -math.Pi {
			diff += 2 * math.Pi
		}
		step := m.params.TurnRate * delta
		if diff > step {
			diff = step
		} else if diff < -step {
			diff = -step
		}
		rot.Heading += diff
	}

	// Accelerate along the requested move direction.
	mx, my := ctrl.MoveX, ctrl.MoveY
	if mag := float32(math.Sqrt(float64(mx*mx + my*my))); mag > 1 {
		mx /= mag
		my /= mag
	}
	vel.X += mx * m.params.Acceleration * delta
	vel.Y += my * m.params.Acceleration * delta

	// Drag, then clamp to species top speed.
	damp := 1 - m.params.Drag*delta
	if damp < 0 {
		damp = 0
	}
	vel.X *= damp
	vel.Y *= damp

	limit := m.params.MaxSpeed
	if m.speed != nil {
		if sp := m.reg.Species.Get(e); sp != nil {
			limit = m.speed(sp.ID)
		}
	}
	if speed := float32(math.Sqrt(float64(vel.X*vel.X + vel.Y*vel.Y))); speed > limit && speed > 0 {
		scale := limit / speed
		vel.X *= scale
		vel.Y *= scale
	}

	pos.X, pos.Y = WrapPosition(pos.X+vel.X*delta, pos.Y+vel.Y*delta, m.width, m.height)
}

// placeMembers moves every attached member to its slot offset around
// the leader, rotated by the leader's heading.
func (m *MovementSystem) placeMembers() {
	filter := ecs.NewFilter2[components.Position, components.ColonyMember](m.reg.World)
	query := filter.Query()
	for query.Next() {
		pos, member := query.Get()
		leaderPos := m.reg.Pos.Get(member.Leader)
		if leaderPos == nil {
			continue
		}
		var heading float32
		if rot := m.reg.Rot.Get(member.Leader); rot != nil {
			heading = rot.Heading
		}
		spacing := float32(10)
		if props := m.reg.CellProps.Get(member.Leader); props != nil {
			spacing = props.Radius * 2
		}
		ox, oy := components.SlotOffset(member.Slot, spacing)
		sin, cos := math.Sincos(float64(heading))
		wx := ox*float32(cos) - oy*float32(sin)
		wy := ox*float32(sin) + oy*float32(cos)
		pos.X, pos.Y = WrapPosition(leaderPos.X+wx, leaderPos.Y+wy, m.width, m.height)

		if rot := m.reg.Rot.Get(query.Entity()); rot != nil {
			rot.Heading = heading
		}
	}
}
