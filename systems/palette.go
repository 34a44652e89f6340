package systems

import (
	"image/color"

	"github.com/pthm-cable/smoketrail/components"
)

// Stop is one colour on the temperature ramp.
type Stop struct {
	T       float32 // normalised temperature in [0, 1]
	R, G, B uint8
}

// Palette maps temperature and density to overlay colours.
type Palette struct {
	Stops   []Stop
	HotTemp float32 // temperature mapped to the last stop
	Opacity float32 // alpha at density 1
}

// DefaultPalette is cool grey smoke that warms to orange and white near
// the cursor.
func DefaultPalette() *Palette {
	return &Palette{
		Stops: []Stop{
			{T: 0, R: 150, G: 160, B: 175},
			{T: 0.35, R: 200, G: 150, B: 110},
			{T: 0.7, R: 255, G: 140, B: 40},
			{T: 1, R: 255, G: 240, B: 200},
		},
		HotTemp: 2,
		Opacity: 220,
	}
}

// ramp returns the colour for a raw temperature.
func (p *Palette) ramp(temp float32) (r, g, b float32) {
	if len(p.Stops) == 0 {
		return 255, 255, 255
	}
	t := float32(0)
	if p.HotTemp > 0 {
		t = clamp01(temp / p.HotTemp)
	}
	first := p.Stops[0]
	if t <= first.T {
		return float32(first.R), float32(first.G), float32(first.B)
	}
	for i := 1; i < len(p.Stops); i++ {
		a, b := p.Stops[i-1], p.Stops[i]
		if t <= b.T {
			f := float32(0)
			if b.T > a.T {
				f = (t - a.T) / (b.T - a.T)
			}
			return lerp(float32(a.R), float32(b.R), f),
				lerp(float32(a.G), float32(b.G), f),
				lerp(float32(a.B), float32(b.B), f)
		}
	}
	last := p.Stops[len(p.Stops)-1]
	return float32(last.R), float32(last.G), float32(last.B)
}

// At returns the colour of a cell with the given temperature and density.
// Alpha grows with density and saturates at 1.
func (p *Palette) At(temp, density float32) color.RGBA {
	r, g, b := p.ramp(temp)
	a := clamp01(density) * p.Opacity
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}
}

// Tint returns a particle colour faded by its life fraction.
func (p *Palette) Tint(temp, density, lifeFrac float32) components.Tint {
	r, g, b := p.ramp(temp)
	a := (0.35 + 0.65*clamp01(density)) * (1 - clamp01(lifeFrac)) * 255
	return components.Tint{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}
}
