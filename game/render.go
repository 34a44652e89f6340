package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoketrail/fluid"
	"github.com/pthm-cable/smoketrail/ui"
)

var backdrop = rl.Color{R: 14, G: 16, B: 20, A: 255}

// Draw renders the overlay and its panels.
func (g *Game) Draw() {
	rl.BeginDrawing()
	if g.cfg.Screen.Overlay {
		rl.ClearBackground(rl.Blank)
	} else {
		rl.ClearBackground(backdrop)
	}

	if g.overlays.IsEnabled(ui.OverlaySmoke) {
		g.smokeRenderer.Update(g.snapshot())
		g.smokeRenderer.Draw(g.screenWidth, g.screenHeight)
	}
	if g.overlays.IsEnabled(ui.OverlayParticles) {
		g.particleRenderer.Draw(g.particles, g.simTime)
	}
	if g.overlays.IsEnabled(ui.OverlayVelocity) {
		g.drawVelocity(g.fieldView())
	}

	g.drawPanels()
	rl.EndDrawing()
}

func (g *Game) drawPanels() {
	if g.overlays.IsEnabled(ui.OverlayHUD) {
		grid := g.backend.Grid()
		viewers := 0
		if g.hub != nil {
			viewers = g.hub.ClientCount()
		}
		g.hud.Draw(ui.HUDData{
			Backend:      g.backend.Name(),
			GridW:        grid.Width,
			GridH:        grid.Height,
			Workers:      g.cfg.Derived.Workers,
			Frame:        g.frame,
			SimTime:      g.simTime,
			FPS:          rl.GetFPS(),
			Particles:    g.particles.Count(),
			Viewers:      viewers,
			TotalDensity: g.lastStats.TotalDensity,
			Paused:       g.paused,
		})
		g.hud.DrawControls(int32(g.screenHeight), "[Space] Pause  [C] Clear  "+g.overlays.Legend())
	}

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perf.Stats())
	}

	if g.overlays.IsEnabled(ui.OverlayParamPanel) {
		next, changed, action := g.paramsPanel.Draw(g.params)
		if changed {
			g.SetParams(next)
		}
		switch action {
		case ui.ActionReset:
			g.RequestReset()
		case ui.ActionDefaults:
			g.SetParams(fluid.NewParamsFromConfig(g.cfg))
		}
	}
}

// drawVelocity draws one velocity segment every few cells.
func (g *Game) drawVelocity(view fluid.FieldView) {
	const stride = 4
	grid := view.Grid
	scale := float32(g.cfg.Grid.Scale) * g.view.CellW * 0.1
	col := rl.Color{R: 120, G: 200, B: 255, A: 160}

	for y := 1; y <= grid.Height; y += stride {
		for x := 1; x <= grid.Width; x += stride {
			i := grid.Index(x, y)
			u, v := view.U[i], view.V[i]
			if u*u+v*v < 1e-6 {
				continue
			}
			sx, sy := g.view.GridToScreen(float32(x), float32(y))
			rl.DrawLineV(
				rl.Vector2{X: sx, Y: sy},
				rl.Vector2{X: sx + u*scale, Y: sy + v*scale},
				col,
			)
		}
	}
}
