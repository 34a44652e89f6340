package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoketrail/fluid"
)

// ParamSlider binds one float tunable to a slider range.
type ParamSlider struct {
	Label    string
	Min, Max float32
	Field    func(p *fluid.Params) *float32
}

// DefaultSliders returns the tunables exposed in the panel.
func DefaultSliders() []ParamSlider {
	return []ParamSlider{
		{"Source width", 0, 12, func(p *fluid.Params) *float32 { return &p.SourceWidth }},
		{"Edge fade", 0, 12, func(p *fluid.Params) *float32 { return &p.SourceEdgeFade }},
		{"Strength", 0, 120, func(p *fluid.Params) *float32 { return &p.SourceStrength }},
		{"Drag", 0, 20, func(p *fluid.Params) *float32 { return &p.DragScale }},
		{"Density decay", 0, 5, func(p *fluid.Params) *float32 { return &p.DensityDecay }},
		{"Velocity decay", 0, 5, func(p *fluid.Params) *float32 { return &p.VelocityDecay }},
		{"Temp decay", 0, 5, func(p *fluid.Params) *float32 { return &p.TemperatureDecay }},
		{"Density diff", 0, 0.0005, func(p *fluid.Params) *float32 { return &p.DensityDiffusion }},
		{"Buoyancy", 0, 10, func(p *fluid.Params) *float32 { return &p.Buoyancy }},
		{"Wind speed", -20, 20, func(p *fluid.Params) *float32 { return &p.WindSpeed }},
		{"Turbulence", 0, 2, func(p *fluid.Params) *float32 { return &p.WindTurbulence }},
		{"Persistence", 0, 3, func(p *fluid.Params) *float32 { return &p.Persistence }},
	}
}

// Set stores v into the slider's field, clamped to its range.
func (s ParamSlider) Set(p *fluid.Params, v float32) {
	if v != v || v < s.Min {
		v = s.Min
	}
	if v > s.Max {
		v = s.Max
	}
	*s.Field(p) = v
}

// PanelAction is a button pressed in the panel.
type PanelAction int

const (
	ActionNone PanelAction = iota
	ActionReset
	ActionDefaults
)

// ParamsPanel edits solver parameters live.
type ParamsPanel struct {
	renderer *Renderer
	sliders  []ParamSlider
	x, y     float32
	width    float32
}

// NewParamsPanel creates a panel anchored at (x, y).
func NewParamsPanel(x, y, width float32) *ParamsPanel {
	return &ParamsPanel{
		renderer: NewRenderer(),
		sliders:  DefaultSliders(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel anchor.
func (pp *ParamsPanel) SetPosition(x, y float32) {
	pp.x, pp.y = x, y
}

// Height returns the panel height in pixels.
func (pp *ParamsPanel) Height() float32 {
	return float32(len(pp.sliders))*26 + 80
}

// Draw renders the sliders for p and returns the edited copy, whether any
// value changed and the button pressed this frame.
func (pp *ParamsPanel) Draw(p fluid.Params) (fluid.Params, bool, PanelAction) {
	r := pp.renderer
	pad := float32(r.Theme.Padding)
	r.DrawPanel(int32(pp.x), int32(pp.y), int32(pp.width), int32(pp.Height()))

	y := pp.y + pad
	r.DrawSectionHeader(int32(pp.x+pad), int32(y), "Parameters")
	y += 24

	labelW := float32(r.Theme.LabelWidth)
	valueW := float32(56)
	sliderW := pp.width - labelW - valueW - pad*2

	changed := false
	for _, s := range pp.sliders {
		cur := *s.Field(&p)
		rl.DrawText(s.Label, int32(pp.x+pad), int32(y+4), r.Theme.FontSize, r.Theme.LabelColor)
		next := gui.SliderBar(
			rl.Rectangle{X: pp.x + pad + labelW, Y: y, Width: sliderW, Height: 18},
			"", "",
			cur, s.Min, s.Max,
		)
		rl.DrawText(formatFloat(cur), int32(pp.x+pad+labelW+sliderW+6), int32(y+4), r.Theme.FontSize, r.Theme.ValueColor)
		if next != cur {
			s.Set(&p, next)
			changed = true
		}
		y += 26
	}

	y += 8
	action := ActionNone
	if gui.Button(rl.Rectangle{X: pp.x + pad, Y: y, Width: 110, Height: 26}, "Clear smoke") {
		action = ActionReset
	}
	if gui.Button(rl.Rectangle{X: pp.x + pad + 120, Y: y, Width: 110, Height: 26}, "Defaults") {
		action = ActionDefaults
	}
	return p, changed, action
}
