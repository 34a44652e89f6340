package ui

import (
	"fmt"
	"slices"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoketrail/telemetry"
)

// HUDData holds everything the main HUD shows.
type HUDData struct {
	Backend      string
	GridW, GridH int
	Workers      int
	Frame        uint64
	SimTime      float32
	FPS          int32
	Particles    int
	Viewers      int
	TotalDensity float64
	Paused       bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	x, y := int32(10), int32(10)
	r.DrawPanel(x-6, y-6, 300, 98)

	rl.DrawText("Smoke Trail", x, y, 18, rl.White)
	y += 24
	rl.DrawText(
		fmt.Sprintf("%s | %dx%d | %d workers", data.Backend, data.GridW, data.GridH, data.Workers),
		x, y, 12, rl.LightGray,
	)
	y += 16
	rl.DrawText(
		fmt.Sprintf("Frame %d | t=%.1fs | FPS %d", data.Frame, data.SimTime, data.FPS),
		x, y, 12, rl.LightGray,
	)
	y += 16
	rl.DrawText(
		fmt.Sprintf("Particles %d | Mass %.1f | Viewers %d", data.Particles, data.TotalDensity, data.Viewers),
		x, y, 12, rl.LightGray,
	)
	y += 16
	if data.Paused {
		rl.DrawText("PAUSED", x, y, 12, rl.Yellow)
	}
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, legend string) {
	rl.DrawText(legend, 10, screenHeight-22, 12, rl.Gray)
}

// PerfPanel renders the per-phase frame breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders stats with phases sorted by cost.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	names := SortedPhases(stats)
	height := int32(len(names)+2)*(r.Theme.LineHeight+2) + r.Theme.Padding*2
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding
	y = r.DrawSectionHeader(x, y, "Frame Phases")
	y = r.DrawLabelValue(x, y, "avg", fmt.Sprintf("%s (max %s)",
		stats.AvgTickDuration.Round(time.Microsecond), stats.MaxTickDuration.Round(time.Microsecond)))

	for _, name := range names {
		pct := stats.PhasePct[name]
		y = r.DrawBar(x, y, name, float32(pct/100), fmt.Sprintf("%5.1f%%", pct), p.width-r.Theme.Padding*2)
	}
}

// SortedPhases returns the recorded phases by descending average time.
func SortedPhases(stats telemetry.PerfStats) []string {
	names := make([]string, 0, len(stats.PhaseAvg))
	for name := range stats.PhaseAvg {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		da, db := stats.PhaseAvg[a], stats.PhaseAvg[b]
		switch {
		case da > db:
			return -1
		case da < db:
			return 1
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return names
}
