package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoketrail/fluid"
	"github.com/pthm-cable/smoketrail/telemetry"
	"github.com/pthm-cable/smoketrail/ui"
)

// Update runs one windowed frame driven by the mouse.
func (g *Game) Update() {
	g.perf.RecordFrame()
	g.perf.StartTick()
	g.perf.StartPhase(telemetry.PhaseInput)

	g.handleInput()
	dt := rl.GetFrameTime()
	cursor := g.pointerCursor(dt)

	if g.paused {
		g.perf.EndTick()
		return
	}
	g.stepFrame(dt, cursor)
}

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.RequestReset()
	}

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		g.overlays.HandleKeyPress(key)
	}
}

// handleResize stretches the grid over the new window size.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth, g.screenHeight = w, h

	grid := g.backend.Grid()
	g.view.Resize(w, h, grid.Width, grid.Height)
	g.perfPanel.SetPosition(int32(w)-290, 10)
	g.paramsPanel.SetPosition(w-370, 10)
}

// pointerCursor maps the mouse into grid space. The pointer drives the
// overlay whenever it is inside the window and not over the params panel.
func (g *Game) pointerCursor(dt float32) fluid.Cursor {
	mouse := rl.GetMousePosition()
	active := rl.IsCursorOnScreen() && !g.overPanel(mouse)

	gx, gy := g.view.ScreenToGrid(mouse.X, mouse.Y)
	gx, gy = g.view.ClampToGrid(gx, gy)
	return g.tracker.Update(gx, gy, dt, active)
}

func (g *Game) overPanel(p rl.Vector2) bool {
	if !g.overlays.IsEnabled(ui.OverlayParamPanel) {
		return false
	}
	x := g.screenWidth - 370
	return p.X >= x && p.X <= x+360 && p.Y >= 10 && p.Y <= 10+g.paramsPanel.Height()
}
