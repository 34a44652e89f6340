package gpu

import "github.com/pthm-cable/smoketrail/fluid"

// deviceParams is the flat per-frame block the kernels read. Sources are
// built on the host, so only the field phases are parameterised here.
type deviceParams struct {
	Dt                   float32
	VelocityDiffusion    float32
	DensityDiffusion     float32
	TemperatureDiffusion float32
	VelocityDecay        float32
	DensityDecay         float32
	TemperatureDecay     float32
	Scale                float32
	Iterations           int32
}

// hostFrame is the host half of a device step. It owns the source builder
// shared with the CPU solver, the simulation clock and the grid scale.
type hostFrame struct {
	grid   fluid.Grid
	params fluid.Params
	src    *fluid.Sources
	time   float32
}

func newHostFrame(g fluid.Grid, p fluid.Params) *hostFrame {
	p.Sanitize()
	return &hostFrame{
		grid:   g,
		params: p,
		src:    fluid.NewSources(g, p.WindSeed),
	}
}

func (h *hostFrame) setParams(p fluid.Params) {
	p.Sanitize()
	h.params = p
}

func (h *hostFrame) setScale(scale float32) {
	if scale <= 0 || scale != scale {
		return
	}
	h.grid.Scale = scale
}

func (h *hostFrame) reset() {
	h.src.Reset()
	h.time = 0
}

// resize keeps the scale and the clock; sources start over.
func (h *hostFrame) resize(g fluid.Grid) {
	g.Scale = h.grid.Scale
	h.grid = g
	h.src = fluid.NewSources(g, h.params.WindSeed)
}

// prepare validates in, fills the source buffers for this frame and lowers
// the parameters for the kernels. Call advance once the device step succeeds.
func (h *hostFrame) prepare(in *fluid.StepInput) (deviceParams, error) {
	if err := in.Validate(h.grid); err != nil {
		return deviceParams{}, err
	}
	// diffusion rates come from the input, as on the CPU backend
	p := h.params
	p.VelocityDiffusion = in.VelocityDiffusion
	p.DensityDiffusion = in.DensityDiffusion
	p.TemperatureDiffusion = in.TemperatureDiffusion
	p.Sanitize()
	dt := p.ClampDT(in.Dt)

	h.src.Clear()
	h.src.Build(&p, in.Cursor, in.Temperature, h.time, dt, nil)

	return deviceParams{
		Dt:                   dt,
		VelocityDiffusion:    p.VelocityDiffusion,
		DensityDiffusion:     p.DensityDiffusion,
		TemperatureDiffusion: p.TemperatureDiffusion,
		VelocityDecay:        p.VelocityDecay,
		DensityDecay:         p.DensityDecay,
		TemperatureDecay:     p.TemperatureDecay,
		Scale:                h.grid.Scale,
		Iterations:           int32(p.Iterations),
	}, nil
}

func (h *hostFrame) advance(dt float32) {
	h.time += dt
}
