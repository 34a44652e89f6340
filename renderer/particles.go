package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoketrail/camera"
	"github.com/pthm-cable/smoketrail/components"
	"github.com/pthm-cable/smoketrail/systems"
)

// ParticleRenderer draws tracer particles.
type ParticleRenderer struct {
	view *camera.Viewport
}

// NewParticleRenderer creates a renderer mapping grid space through view.
func NewParticleRenderer(view *camera.Viewport) *ParticleRenderer {
	return &ParticleRenderer{view: view}
}

// Draw renders every live particle with additive blending. Particles shrink
// as they age.
func (r *ParticleRenderer) Draw(ps *systems.ParticleSystem, now float32) {
	rl.BeginBlendMode(rl.BlendAdditive)
	ps.Each(func(pos components.Position, tint components.Tint, life components.Life) {
		sx, sy := r.view.GridToScreen(pos.X, pos.Y)
		size := life.Size * (1 - 0.5*life.Fraction(now))
		if size < 0.5 {
			size = 0.5
		}
		if !r.view.IsVisible(sx, sy, size) || tint.A == 0 {
			return
		}
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, size, rl.Color{R: tint.R, G: tint.G, B: tint.B, A: tint.A})
	})
	rl.EndBlendMode()
}
