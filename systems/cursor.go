package systems

import (
	"math"

	"github.com/pthm-cable/smoketrail/fluid"
)

// CursorTracker turns successive pointer positions in grid space into a
// cursor with a smoothed velocity.
type CursorTracker struct {
	Smoothing float32 // 0 keeps the raw velocity, approaching 1 smooths heavily

	lastX, lastY float32
	vx, vy       float32
	has          bool
}

// NewCursorTracker returns a tracker with light smoothing.
func NewCursorTracker() *CursorTracker {
	return &CursorTracker{Smoothing: 0.4}
}

// Update records the pointer at (x, y) after dt seconds. Inactive frames
// drop the history so the next contact starts at rest.
func (t *CursorTracker) Update(x, y, dt float32, active bool) fluid.Cursor {
	if !active {
		t.has = false
		t.vx, t.vy = 0, 0
		return fluid.Cursor{X: x, Y: y}
	}
	if !t.has || dt <= 0 {
		t.lastX, t.lastY = x, y
		t.has = true
		return fluid.Cursor{X: x, Y: y, Active: true}
	}

	rawX := (x - t.lastX) / dt
	rawY := (y - t.lastY) / dt
	s := clampFloat(t.Smoothing, 0, 0.99)
	t.vx = lerp(rawX, t.vx, s)
	t.vy = lerp(rawY, t.vy, s)
	t.lastX, t.lastY = x, y

	return fluid.Cursor{X: x, Y: y, VX: t.vx, VY: t.vy, Active: true}
}

// ScriptedCursor drives a Lissajous path across the grid for headless runs.
type ScriptedCursor struct {
	Width, Height float32 // interior size in cells
	Speed         float32 // angular speed multiplier
}

// At returns the cursor at simulation time now.
func (c ScriptedCursor) At(now float32) fluid.Cursor {
	speed := c.Speed
	if speed == 0 {
		speed = 1
	}
	ax, ay := 0.4*c.Width, 0.35*c.Height
	wx, wy := 0.9*speed, 1.3*speed
	t := float64(now)

	return fluid.Cursor{
		X:      1 + 0.5*c.Width + ax*float32(math.Sin(float64(wx)*t)),
		Y:      1 + 0.5*c.Height + ay*float32(math.Sin(float64(wy)*t+0.7)),
		VX:     ax * wx * float32(math.Cos(float64(wx)*t)),
		VY:     ay * wy * float32(math.Cos(float64(wy)*t+0.7)),
		Active: true,
	}
}
