package fluid

import "math"

// bilinear samples f at the continuous halo-inclusive position (x, y).
// The position is clamped to [0.5, Total-1.5] so all four taps exist.
func bilinear(g Grid, f []float32, x, y float32) float32 {
	maxX := float32(g.TotalWidth) - 1.5
	maxY := float32(g.TotalHeight) - 1.5
	if x < 0.5 {
		x = 0.5
	} else if x > maxX {
		x = maxX
	}
	if y < 0.5 {
		y = 0.5
	} else if y > maxY {
		y = maxY
	}

	i0 := int(x)
	j0 := int(y)
	s1 := x - float32(i0)
	s0 := 1 - s1
	t1 := y - float32(j0)
	t0 := 1 - t1

	tw := g.TotalWidth
	k := j0*tw + i0
	return s0*(t0*f[k]+t1*f[k+tw]) + s1*(t0*f[k+1]+t1*f[k+tw+1])
}

// FieldView is a read-only window onto one frame's fields. The slices alias
// the owner's buffers and are only valid until the owner steps again.
type FieldView struct {
	Grid        Grid
	U, V        []float32
	Density     []float32
	Temperature []float32
}

// SampleVelocity returns the bilinear velocity at (x, y) in cells per second.
func (v FieldView) SampleVelocity(x, y float32) (float32, float32) {
	return bilinear(v.Grid, v.U, x, y), bilinear(v.Grid, v.V, x, y)
}

// SampleDensity returns the bilinear density at (x, y).
func (v FieldView) SampleDensity(x, y float32) float32 {
	return bilinear(v.Grid, v.Density, x, y)
}

// SampleTemperature returns the bilinear temperature at (x, y).
func (v FieldView) SampleTemperature(x, y float32) float32 {
	return bilinear(v.Grid, v.Temperature, x, y)
}

// Bounds returns the interior extent in grid coordinates.
func (v FieldView) Bounds() (float32, float32) {
	return float32(v.Grid.Width), float32(v.Grid.Height)
}

// InteriorSum sums f over interior cells in float64.
func InteriorSum(g Grid, f []float32) float64 {
	var sum float64
	tw := g.TotalWidth
	for y := 1; y <= g.Height; y++ {
		row := y * tw
		for x := 1; x <= g.Width; x++ {
			sum += float64(f[row+x])
		}
	}
	return sum
}

// MaxDivergence returns the largest absolute central-difference divergence
// over the interior, in cell units.
func (v FieldView) MaxDivergence() float32 {
	g := v.Grid
	tw := g.TotalWidth
	var peak float64
	for y := 1; y <= g.Height; y++ {
		row := y * tw
		for x := 1; x <= g.Width; x++ {
			i := row + x
			d := 0.5 * float64((v.U[i+1]-v.U[i-1])+(v.V[i+tw]-v.V[i-tw]))
			peak = math.Max(peak, math.Abs(d))
		}
	}
	return float32(peak)
}
