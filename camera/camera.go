// Package camera maps between screen pixels and fluid grid coordinates.
package camera

// Viewport stretches the fluid grid over the screen.
// Grid coordinates are halo-inclusive: interior cell x spans [x-0.5, x+0.5),
// so the interior covers [0.5, GridW+0.5) and maps onto [0, ScreenW).
type Viewport struct {
	// Screen size in pixels
	ScreenW, ScreenH float32

	// Interior grid size in cells
	GridW, GridH int

	// Pixels per cell, derived
	CellW, CellH float32
}

// New creates a viewport for a grid stretched over a screen.
func New(screenW, screenH float32, gridW, gridH int) *Viewport {
	v := &Viewport{}
	v.Resize(screenW, screenH, gridW, gridH)
	return v
}

// Resize updates the screen or grid dimensions.
func (v *Viewport) Resize(screenW, screenH float32, gridW, gridH int) {
	if gridW < 1 {
		gridW = 1
	}
	if gridH < 1 {
		gridH = 1
	}
	v.ScreenW, v.ScreenH = screenW, screenH
	v.GridW, v.GridH = gridW, gridH
	v.CellW = screenW / float32(gridW)
	v.CellH = screenH / float32(gridH)
	if v.CellW <= 0 {
		v.CellW = 1
	}
	if v.CellH <= 0 {
		v.CellH = 1
	}
}

// ScreenToGrid converts a pixel position to grid coordinates.
func (v *Viewport) ScreenToGrid(sx, sy float32) (gx, gy float32) {
	return sx/v.CellW + 0.5, sy/v.CellH + 0.5
}

// GridToScreen converts grid coordinates to a pixel position.
func (v *Viewport) GridToScreen(gx, gy float32) (sx, sy float32) {
	return (gx - 0.5) * v.CellW, (gy - 0.5) * v.CellH
}

// ScreenDeltaToGrid converts a pixel displacement or velocity to cells.
func (v *Viewport) ScreenDeltaToGrid(dx, dy float32) (float32, float32) {
	return dx / v.CellW, dy / v.CellH
}

// IsVisible reports whether a circle at pixel (sx, sy) overlaps the screen.
func (v *Viewport) IsVisible(sx, sy, radius float32) bool {
	return sx+radius >= 0 && sy+radius >= 0 && sx-radius <= v.ScreenW && sy-radius <= v.ScreenH
}

// ClampToGrid restricts grid coordinates to the interior.
func (v *Viewport) ClampToGrid(gx, gy float32) (float32, float32) {
	return clamp(gx, 0.5, float32(v.GridW)+0.5), clamp(gy, 0.5, float32(v.GridH)+0.5)
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
