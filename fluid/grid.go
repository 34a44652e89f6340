// Package fluid implements a grid-based stable-fluids solver for velocity,
// density and temperature fields, plus the step contract shared with the
// GPU backend.
package fluid

import (
	"errors"
	"fmt"
)

// ErrInvalidGrid is returned when a grid dimension is not positive.
var ErrInvalidGrid = errors.New("fluid: grid dimensions must be positive")

// Grid describes the interior cell counts and the one-cell halo around them.
type Grid struct {
	Width, Height           int // interior cells
	TotalWidth, TotalHeight int // interior plus halo
	Scale                   float32
}

// NewGrid returns a grid with a one-cell halo on every side.
func NewGrid(width, height int) (Grid, error) {
	if width < 1 || height < 1 {
		return Grid{}, fmt.Errorf("%w: got %dx%d", ErrInvalidGrid, width, height)
	}
	return Grid{
		Width:       width,
		Height:      height,
		TotalWidth:  width + 2,
		TotalHeight: height + 2,
		Scale:       1,
	}, nil
}

// Index maps cell (x, y) in halo-inclusive coordinates to a flat offset.
func (g Grid) Index(x, y int) int {
	return y*g.TotalWidth + x
}

// Size is the buffer length for one field.
func (g Grid) Size() int {
	return g.TotalWidth * g.TotalHeight
}

// CellCount is the number of interior cells.
func (g Grid) CellCount() int {
	return g.Width * g.Height
}

// IsHalo reports whether (x, y) lies on the boundary ring.
func (g Grid) IsHalo(x, y int) bool {
	return x <= 0 || y <= 0 || x >= g.TotalWidth-1 || y >= g.TotalHeight-1
}

// Contains reports whether the continuous position (x, y) lies inside the interior.
func (g Grid) Contains(x, y float32) bool {
	return x >= 0.5 && y >= 0.5 && x <= float32(g.Width)+0.5 && y <= float32(g.Height)+0.5
}
