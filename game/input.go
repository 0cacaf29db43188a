package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/microvita/microcosm/components"
	"github.com/microvita/microcosm/systems"
)

// handleInput processes keyboard and mouse for the graphical loop.
func (g *Game) handleInput() {
	if g.headless {
		return
	}

	g.notices.Advance(rl.GetFrameTime())

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyEqual) && g.speed < 10 {
		g.speed++
	}
	if rl.IsKeyPressed(rl.KeyMinus) && g.speed > 1 {
		g.speed--
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		g.selectCellAtMouse()
	}

	if !g.hasSelection || !g.world.Alive(g.selected) {
		g.hasSelection = false
		return
	}
	g.steerSelected()
}

// selectCellAtMouse moves player control to the clicked cell.
func (g *Game) selectCellAtMouse() {
	mouse := rl.GetMousePosition()

	var found bool
	picked := g.selected

	filter := g.registry.Pos
	query := g.bindFilter.Query()
	for query.Next() {
		e := query.Entity()
		pos := filter.Get(e)
		props := g.registry.CellProps.Get(e)
		if pos == nil || props == nil {
			continue
		}
		dx := pos.X - mouse.X
		dy := pos.Y - mouse.Y
		if dx*dx+dy*dy <= props.Radius*props.Radius {
			picked = e
			found = true
		}
	}
	if !found {
		return
	}

	if g.hasSelection && g.world.Alive(g.selected) && g.registry.Player.HasAll(g.selected) {
		g.registry.Player.Remove(g.selected)
	}
	g.selected = picked
	g.hasSelection = true
	if !g.registry.Player.HasAll(picked) {
		g.registry.Player.Add(picked, &components.PlayerControlled{})
	}
}

// steerSelected turns keyboard and mouse input into control state for
// the player's cell.
func (g *Game) steerSelected() {
	ctrl := g.registry.Control.Get(g.selected)
	if ctrl == nil {
		return
	}

	// Mode keys. Unbinding input is owned by the coordinator, so mode
	// switches are the only thing the player can do in that state.
	if rl.IsKeyPressed(rl.KeyB) {
		if ctrl.State == components.StateBinding {
			ctrl.State = components.StateNormal
		} else if ctrl.State == components.StateNormal {
			ctrl.State = components.StateBinding
		}
	}
	if rl.IsKeyPressed(rl.KeyU) && g.registry.Colony.HasAll(g.selected) {
		ctrl.State = components.StateUnbinding
	}
	if ctrl.State == components.StateUnbinding {
		return
	}

	var mx, my float32
	if rl.IsKeyDown(rl.KeyW) {
		my -= 1
	}
	if rl.IsKeyDown(rl.KeyS) {
		my += 1
	}
	if rl.IsKeyDown(rl.KeyA) {
		mx -= 1
	}
	if rl.IsKeyDown(rl.KeyD) {
		mx += 1
	}
	ctrl.MoveX = mx
	ctrl.MoveY = my

	mouse := rl.GetMousePosition()
	x, y := systems.WrapPosition(mouse.X, mouse.Y, g.worldW, g.worldH)
	ctrl.LookAtX = x
	ctrl.LookAtY = y
}
