// Package ui renders the in-game control strip and HUD panels.
package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlState is the mutable loop state the strip edits.
type ControlState struct {
	Paused bool
	Speed  int // simulation steps per frame, 1..10
}

// HUDStats is the read-only data shown next to the controls.
type HUDStats struct {
	Tick       int32
	Alive      int
	Colonies   int
	BoundCells int
}

// ControlStrip is the bottom-left control panel.
type ControlStrip struct {
	x, y  float32
	width float32
}

// NewControlStrip creates the strip anchored at (x, y).
func NewControlStrip(x, y, width float32) *ControlStrip {
	return &ControlStrip{x: x, y: y, width: width}
}

// Draw renders the strip and applies any interaction to state.
func (s *ControlStrip) Draw(state *ControlState, stats HUDStats) {
	rl.DrawRectangle(int32(s.x)-8, int32(s.y)-8, int32(s.width)+16, 96, rl.Color{R: 20, G: 24, B: 30, A: 200})

	label := "Pause"
	if state.Paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: s.x, Y: s.y, Width: 90, Height: 26}, label) {
		state.Paused = !state.Paused
	}

	speed := gui.SliderBar(
		rl.Rectangle{X: s.x + 100, Y: s.y + 3, Width: s.width - 160, Height: 20},
		"1x", "10x",
		float32(state.Speed), 1, 10,
	)
	state.Speed = int(speed + 0.5)
	if state.Speed < 1 {
		state.Speed = 1
	}

	y := int32(s.y) + 34
	rl.DrawText(fmt.Sprintf("tick %d", stats.Tick), int32(s.x), y, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("alive %d", stats.Alive), int32(s.x)+110, y, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("colonies %d", stats.Colonies), int32(s.x)+210, y, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("bound %d", stats.BoundCells), int32(s.x)+330, y, 14, rl.LightGray)
	rl.DrawText("B bind  U unbind  click select", int32(s.x), y+22, 12, rl.Gray)
}

// DrawNotices renders the notice stack above the strip, newest at the
// bottom.
func DrawNotices(messages []string, x, y int32) {
	for i, msg := range messages {
		rl.DrawText(msg, x, y-int32(len(messages)-i)*20, 16, rl.Color{R: 255, G: 220, B: 120, A: 255})
	}
}
