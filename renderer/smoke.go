// Package renderer draws the overlay with raylib.
package renderer

import (
	_ "embed"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoketrail/fluid"
	"github.com/pthm-cable/smoketrail/systems"
)

//go:embed shaders/smoke.fs
var smokeFS string

// SmokeRenderer uploads the density and temperature fields into a texture
// the size of the grid interior and stretches it over the screen.
type SmokeRenderer struct {
	shader      rl.Shader
	softnessLoc int32
	Softness    float32

	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA

	palette     *systems.Palette
	initialized bool
}

// NewSmokeRenderer creates a renderer using palette; nil uses the default.
func NewSmokeRenderer(palette *systems.Palette) *SmokeRenderer {
	if palette == nil {
		palette = systems.DefaultPalette()
	}
	return &SmokeRenderer{palette: palette, Softness: 0.8}
}

// Init creates the texture and shader. The raylib window must exist.
func (r *SmokeRenderer) Init(gridW, gridH int) {
	if r.initialized {
		if gridW == r.texW && gridH == r.texH {
			return
		}
		rl.UnloadTexture(r.tex)
	} else {
		r.shader = rl.LoadShaderFromMemory("", smokeFS)
		r.softnessLoc = rl.GetShaderLocation(r.shader, "softness")
	}

	r.texW, r.texH = gridW, gridH
	img := rl.GenImageColor(gridW, gridH, rl.Blank)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterBilinear)
	rl.SetTextureWrap(r.tex, rl.WrapClamp)
	rl.UnloadImage(img)

	r.pixels = make([]color.RGBA, gridW*gridH)
	r.initialized = true
}

// Update converts snap to pixels and uploads them. A grid size change
// recreates the texture.
func (r *SmokeRenderer) Update(snap *fluid.Snapshot) {
	g := snap.Grid
	r.Init(g.Width, g.Height)
	FillPixels(r.pixels, snap, r.palette)
	rl.UpdateTexture(r.tex, r.pixels)
}

// Draw stretches the smoke texture over a screenW x screenH area.
func (r *SmokeRenderer) Draw(screenW, screenH float32) {
	if !r.initialized {
		return
	}
	rl.SetShaderValue(r.shader, r.softnessLoc, []float32{r.Softness}, rl.ShaderUniformFloat)

	src := rl.Rectangle{X: 0, Y: 0, Width: float32(r.texW), Height: float32(r.texH)}
	dst := rl.Rectangle{X: 0, Y: 0, Width: screenW, Height: screenH}

	rl.BeginShaderMode(r.shader)
	rl.DrawTexturePro(r.tex, src, dst, rl.Vector2{}, 0, rl.White)
	rl.EndShaderMode()
}

// Unload frees GPU resources.
func (r *SmokeRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadShader(r.shader)
	rl.UnloadTexture(r.tex)
	r.initialized = false
}

// FillPixels writes one colour per interior cell of snap into dst, row by
// row. dst must hold Width*Height entries.
func FillPixels(dst []color.RGBA, snap *fluid.Snapshot, palette *systems.Palette) {
	g := snap.Grid
	if len(dst) < g.Width*g.Height {
		return
	}
	k := 0
	for y := 1; y <= g.Height; y++ {
		row := y * g.TotalWidth
		for x := 1; x <= g.Width; x++ {
			i := row + x
			dst[k] = palette.At(snap.Temperature[i], snap.Density[i])
			k++
		}
	}
}
