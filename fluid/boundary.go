package fluid

// BoundaryKind selects how halo cells mirror their interior neighbour.
type BoundaryKind uint8

const (
	BoundaryScalar    BoundaryKind = iota // no-flux: halo copies the interior
	BoundaryVelocityX                     // u: negated on left/right walls
	BoundaryVelocityY                     // v: negated on top/bottom walls
)

func (k BoundaryKind) String() string {
	switch k {
	case BoundaryScalar:
		return "scalar"
	case BoundaryVelocityX:
		return "velocity_x"
	case BoundaryVelocityY:
		return "velocity_y"
	default:
		return "unknown"
	}
}

// ApplyBoundary writes the halo ring of f from its interior neighbours.
// Corners take the average of the two adjacent edge halo cells.
func ApplyBoundary(g Grid, f []float32, kind BoundaryKind) {
	w, h := g.Width, g.Height
	tw := g.TotalWidth

	sx := float32(1)
	if kind == BoundaryVelocityX {
		sx = -1
	}
	sy := float32(1)
	if kind == BoundaryVelocityY {
		sy = -1
	}

	for y := 1; y <= h; y++ {
		row := y * tw
		f[row] = sx * f[row+1]
		f[row+w+1] = sx * f[row+w]
	}
	top := 0
	bottom := (h + 1) * tw
	for x := 1; x <= w; x++ {
		f[top+x] = sy * f[tw+x]
		f[bottom+x] = sy * f[h*tw+x]
	}

	f[g.Index(0, 0)] = 0.5 * (f[g.Index(1, 0)] + f[g.Index(0, 1)])
	f[g.Index(0, h+1)] = 0.5 * (f[g.Index(1, h+1)] + f[g.Index(0, h)])
	f[g.Index(w+1, 0)] = 0.5 * (f[g.Index(w, 0)] + f[g.Index(w+1, 1)])
	f[g.Index(w+1, h+1)] = 0.5 * (f[g.Index(w, h+1)] + f[g.Index(w+1, h)])
}
