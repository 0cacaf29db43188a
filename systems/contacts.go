package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
)

// ContactSystem rebuilds the spatial grid each tick and fills every
// body's CollisionSet with the contacts it is currently touching.
// Attached colony members have no body of their own; their shapes live
// as sub-shapes on the leader's PhysicsShapeData.
type ContactSystem struct {
	reg       *Registry
	grid      *SpatialGrid
	pilusCone float32 // half-angle of the pilus contact cone, radians
	scratch   []Neighbor
	bodies    []ecs.Entity
}

// NewContactSystem creates the contact generator. cellSize should
// exceed the widest colony's reach.
func NewContactSystem(reg *Registry, width, height, cellSize, pilusCone float32) *ContactSystem {
	return &ContactSystem{
		reg:       reg,
		grid:      NewSpatialGrid(width, height, cellSize),
		pilusCone: pilusCone,
		scratch:   make([]Neighbor, 0, MaxNeighbors),
		bodies:    make([]ecs.Entity, 0, 256),
	}
}

// Update regenerates all contact sets from current positions.
func (s *ContactSystem) Update() {
	s.grid.Clear()
	s.bodies = s.bodies[:0]

	filter := ecs.NewFilter2[components.Position, components.CollisionSet](s.reg.World).
		Without(ecs.C[components.AttachedToEntity]())
	query := filter.Query()
	for query.Next() {
		pos, set := query.Get()
		set.Clear()
		e := query.Entity()
		s.grid.Insert(e, pos.X, pos.Y)
		s.bodies = append(s.bodies, e)
	}

	for _, e := range s.bodies {
		s.collectContacts(e)
	}
}

// collectContacts finds everything touching e's body and records the
// contact on both sides. Pairs are walked once; the entity with the
// lower ID owns the pair.
func (s *ContactSystem) collectContacts(e ecs.Entity) {
	pos := s.reg.Pos.Get(e)
	props := s.reg.CellProps.Get(e)
	if pos == nil || props == nil {
		return
	}
	reach := s.bodyReach(e, props.Radius)

	s.scratch = s.grid.QueryRadiusInto(s.scratch[:0], pos.X, pos.Y, reach+s.grid.cellSize, e, s.reg.Pos)
	for _, n := range s.scratch {
		if n.E.ID() <= e.ID() {
			continue
		}
		otherProps := s.reg.CellProps.Get(n.E)
		if otherProps == nil {
			continue
		}
		otherReach := s.bodyReach(n.E, otherProps.Radius)
		sum := reach + otherReach
		if n.DistSq > sum*sum {
			continue
		}
		ownSub := s.resolveSubShape(e, props.Radius, n.DX, n.DY)
		otherSub := s.resolveSubShape(n.E, otherProps.Radius, -n.DX, -n.DY)

		if set := s.reg.Collisions.Get(e); set != nil {
			set.Add(components.PhysicsContact{Other: n.E, OwnSubShape: ownSub, OtherSubShape: otherSub})
		}
		if set := s.reg.Collisions.Get(n.E); set != nil {
			set.Add(components.PhysicsContact{Other: e, OwnSubShape: otherSub, OtherSubShape: ownSub})
		}
	}
}

// bodyReach returns the radius of the entity's whole collision body,
// including colony member sub-bodies fanned out around the leader.
func (s *ContactSystem) bodyReach(e ecs.Entity, radius float32) float32 {
	colony := s.reg.Colony.Get(e)
	if colony == nil || colony.Size() <= 1 {
		return radius
	}
	spacing := radius * 2
	var max float32
	for slot := range colony.Members {
		dx, dy := components.SlotOffset(slot, spacing)
		d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		if d > max {
			max = d
		}
	}
	return max + radius
}

// resolveSubShape maps a contact direction (dx, dy points at the other
// body) to the sub-shape being touched: a pilus when the direction
// falls inside a pilus cone, otherwise the member sub-body nearest the
// other entity.
func (s *ContactSystem) resolveSubShape(e ecs.Entity, radius, dx, dy float32) uint32 {
	shapes := s.reg.ShapeData.Get(e)
	if shapes == nil {
		return 0
	}
	var heading float32
	if rot := s.reg.Rot.Get(e); rot != nil {
		heading = rot.Heading
	}
	contactAngle := float32(math.Atan2(float64(dy), float64(dx)))

	// Pilus cones win over body shapes; a touch along the appendage is
	// a pilus contact even when the membrane is also near.
	if organelles := s.reg.Organelles.Get(e); organelles != nil {
		pilus := 0
		for i := uint8(0); i < organelles.Count; i++ {
			org := organelles.Organelles[i]
			if org.Kind != components.OrganellePilus {
				continue
			}
			worldAngle := heading + org.OffsetAngle
			if angularDistance(contactAngle, worldAngle) <= s.pilusCone {
				return components.PilusShapeBase + uint32(pilus)
			}
			pilus++
		}
	}

	// Nearest member sub-body to the other entity's center.
	best := uint32(0)
	bestDist := float32(math.MaxFloat32)
	spacing := radius * 2
	for sub, data := range shapes.Shapes {
		if data.Role != components.ShapeRoleMember {
			continue
		}
		ox, oy := components.SlotOffset(data.MemberSlot, spacing)
		wx := ox*float32(math.Cos(float64(heading))) - oy*float32(math.Sin(float64(heading)))
		wy := ox*float32(math.Sin(float64(heading))) + oy*float32(math.Cos(float64(heading)))
		ddx := dx - wx
		ddy := dy - wy
		d := ddx*ddx + ddy*ddy
		if d < bestDist {
			bestDist = d
			best = sub
		}
	}
	return best
}

// angularDistance returns the absolute smallest angle between two
// headings.
func angularDistance(a, b float32) float32 {
	d := float64(a - b)
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}
	return float32(math.Abs(d))
}
