package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
)

// UnbindParams tunes colony dissolution.
type UnbindParams struct {
	Duration float32 // seconds a leader must hold unbinding mode
}

// UnbindSystem dissolves colonies whose leader has held unbinding mode
// long enough. It runs in the serial phase of the tick, after pending
// commands are applied, so it mutates the store directly.
type UnbindSystem struct {
	reg         *Registry
	params      UnbindParams
	onDissolved func(leader ecs.Entity, size int)
	dissolve    []ecs.Entity
}

// NewUnbindSystem creates the system. onDissolved may be nil.
func NewUnbindSystem(reg *Registry, params UnbindParams, onDissolved func(leader ecs.Entity, size int)) *UnbindSystem {
	return &UnbindSystem{reg: reg, params: params, onDissolved: onDissolved}
}

// Update advances unbind timers and dissolves expired colonies.
func (u *UnbindSystem) Update(delta float32) {
	u.dissolve = u.dissolve[:0]

	filter := ecs.NewFilter2[components.MicrobeColony, components.MicrobeControl](u.reg.World)
	query := filter.Query()
	for query.Next() {
		colony, ctrl := query.Get()
		if ctrl.State != components.StateUnbinding {
			colony.UnbindTimer = 0
			if colony.ColonyState == components.StateUnbinding {
				colony.ColonyState = ctrl.State
				// An aborted unbind releases the members too.
				for _, m := range colony.Members {
					if m == query.Entity() {
						continue
					}
					if mctrl := u.reg.Control.Get(m); mctrl != nil && mctrl.State == components.StateUnbinding {
						mctrl.State = components.StateNormal
					}
				}
			}
			continue
		}
		if colony.ColonyState != components.StateUnbinding {
			colony.ColonyState = components.StateUnbinding
			for _, m := range colony.Members {
				if m == query.Entity() {
					continue
				}
				if mctrl := u.reg.Control.Get(m); mctrl != nil {
					mctrl.State = components.StateUnbinding
				}
			}
		}
		colony.UnbindTimer += delta
		if colony.UnbindTimer >= u.params.Duration {
			u.dissolve = append(u.dissolve, query.Entity())
		}
	}

	for _, leader := range u.dissolve {
		u.Dissolve(leader)
	}
}

// Dissolve tears a colony down immediately: members regain their own
// control, reproduction, and bodies; the leader's collision shapes
// shrink back to a solitary cell.
func (u *UnbindSystem) Dissolve(leader ecs.Entity) {
	colony := u.reg.Colony.Get(leader)
	if colony == nil {
		return
	}
	size := colony.Size()

	for slot, m := range colony.Members {
		if slot == 0 {
			continue
		}
		if !u.reg.World.Alive(m) {
			continue
		}
		if u.reg.Member.HasAll(m) {
			u.reg.Member.Remove(m)
		}
		if u.reg.Attached.HasAll(m) {
			u.reg.Attached.Remove(m)
		}
		if ctrl := u.reg.Control.Get(m); ctrl != nil {
			ctrl.State = components.StateNormal
		}
		if rep := u.reg.Repro.Get(m); rep != nil {
			rep.Suspended = false
		}
	}

	if ctrl := u.reg.Control.Get(leader); ctrl != nil {
		ctrl.State = components.StateNormal
	}
	if rep := u.reg.Repro.Get(leader); rep != nil {
		rep.Suspended = false
	}
	if shapes := u.reg.ShapeData.Get(leader); shapes != nil {
		pili := 0
		if organelles := u.reg.Organelles.Get(leader); organelles != nil {
			pili = organelles.PilusCount()
		}
		*shapes = components.NewPhysicsShapeData(pili)
	}
	u.reg.Colony.Remove(leader)

	slog.Debug("colony dissolved", "leader", leader.ID(), "size", size)
	if u.onDissolved != nil {
		u.onDissolved(leader, size)
	}
}
