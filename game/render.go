package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
	"github.com/microvita/microcosm/ui"
)

var speciesColors = []rl.Color{
	{R: 120, G: 200, B: 140, A: 255},
	{R: 110, G: 160, B: 230, A: 255},
	{R: 230, G: 160, B: 110, A: 255},
	{R: 200, G: 130, B: 200, A: 255},
}

// Draw renders one frame. Must run on the main thread between
// BeginDrawing and EndDrawing.
func (g *Game) Draw(controls *ui.ControlStrip, state *ui.ControlState) {
	rl.ClearBackground(rl.Color{R: 12, G: 18, B: 26, A: 255})

	g.drawNutrients()
	g.drawCells()

	stats := ui.HUDStats{Tick: g.tick}
	query := g.bindFilter.Query()
	for query.Next() {
		_, health, _, _, _, _ := query.Get()
		if health.Alive {
			stats.Alive++
		}
		e := query.Entity()
		if g.registry.Colony.HasAll(e) {
			stats.Colonies++
		}
		if g.registry.InColony(e) {
			stats.BoundCells++
		}
	}

	state.Paused = g.paused
	state.Speed = g.speed
	controls.Draw(state, stats)
	g.paused = state.Paused
	g.speed = state.Speed

	ui.DrawNotices(g.notices.Visible(), 20, int32(g.worldH)-120)
}

// drawNutrients shades each patch by its glucose fill.
func (g *Game) drawNutrients() {
	cols, rows := g.field.Dimensions()
	size := g.field.CellSize()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			amount, capacity := g.field.PatchAt(col, row)
			if capacity <= 0 {
				continue
			}
			alpha := uint8(30 + 80*amount/capacity)
			rl.DrawRectangle(
				int32(float32(col)*size), int32(float32(row)*size),
				int32(size), int32(size),
				rl.Color{R: 30, G: 90, B: 50, A: alpha},
			)
		}
	}
}

// drawCells renders microbes, colony links, and mode indicators.
func (g *Game) drawCells() {
	query := g.bindFilter.Query()
	for query.Next() {
		ctrl, health, _, _, props, _ := query.Get()
		e := query.Entity()
		pos := g.registry.Pos.Get(e)
		if pos == nil {
			continue
		}

		color := speciesColors[0]
		if sp := g.registry.Species.Get(e); sp != nil {
			color = speciesColors[int(sp.ID)%len(speciesColors)]
		}
		if !health.Alive {
			color = rl.Color{R: 70, G: 70, B: 70, A: 255}
		}

		rl.DrawCircleV(rl.Vector2{X: pos.X, Y: pos.Y}, props.Radius, color)

		// Heading tick
		if rot := g.registry.Rot.Get(e); rot != nil {
			hx := pos.X + float32(math.Cos(float64(rot.Heading)))*props.Radius
			hy := pos.Y + float32(math.Sin(float64(rot.Heading)))*props.Radius
			rl.DrawLineV(rl.Vector2{X: pos.X, Y: pos.Y}, rl.Vector2{X: hx, Y: hy}, rl.White)
		}

		switch ctrl.State {
		case components.StateBinding:
			rl.DrawCircleLinesV(rl.Vector2{X: pos.X, Y: pos.Y}, props.Radius+3, rl.Color{R: 120, G: 220, B: 255, A: 200})
		case components.StateUnbinding:
			rl.DrawCircleLinesV(rl.Vector2{X: pos.X, Y: pos.Y}, props.Radius+3, rl.Color{R: 255, G: 140, B: 120, A: 200})
		}

		if colony := g.registry.Colony.Get(e); colony != nil {
			for slot, m := range colony.Members {
				if slot == 0 {
					continue
				}
				mpos := g.registry.Pos.Get(m)
				if mpos == nil {
					continue
				}
				rl.DrawLineV(rl.Vector2{X: pos.X, Y: pos.Y}, rl.Vector2{X: mpos.X, Y: mpos.Y},
					rl.Color{R: 200, G: 200, B: 120, A: 160})
			}
		}

		if g.hasSelection && g.selected == e {
			rl.DrawCircleLinesV(rl.Vector2{X: pos.X, Y: pos.Y}, props.Radius+6, rl.Yellow)
		}
	}

	// Attached members are excluded from the main filter; draw them
	// from their membership component.
	g.drawAttachedMembers()
}

func (g *Game) drawAttachedMembers() {
	filter := ecs.NewFilter2[components.Position, components.ColonyMember](g.world)
	query := filter.Query()
	for query.Next() {
		pos, _ := query.Get()
		e := query.Entity()
		props := g.registry.CellProps.Get(e)
		if props == nil {
			continue
		}
		color := speciesColors[0]
		if sp := g.registry.Species.Get(e); sp != nil {
			color = speciesColors[int(sp.ID)%len(speciesColors)]
		}
		rl.DrawCircleV(rl.Vector2{X: pos.X, Y: pos.Y}, props.Radius, color)
		rl.DrawCircleLinesV(rl.Vector2{X: pos.X, Y: pos.Y}, props.Radius+1, rl.Color{R: 200, G: 200, B: 120, A: 120})

		if g.hasSelection && g.selected == e {
			rl.DrawCircleLinesV(rl.Vector2{X: pos.X, Y: pos.Y}, props.Radius+6, rl.Yellow)
		}
	}
}
