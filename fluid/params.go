package fluid

import (
	"math"

	"github.com/pthm-cable/smoketrail/config"
)

// Params holds the tunables read by one frame. The solver only ever sees a
// sanitised copy; updates are staged and swapped in at the next frame boundary.
type Params struct {
	Iterations int

	VelocityDiffusion    float32
	DensityDiffusion     float32
	TemperatureDiffusion float32

	VelocityDecay    float32
	DensityDecay     float32
	TemperatureDecay float32

	SourceWidth    float32 // full-strength radius, cells
	SourceEdgeFade float32 // falloff beyond SourceWidth, cells
	SourceStrength float32 // density per second
	DragScale      float32
	Deadband       float32 // cursor speed threshold, cells/s

	CursorTemperature  float32 // temperature per second
	AmbientTemperature float32
	Buoyancy           float32

	WindWidth      float32
	WindSpeed      float32
	WindTurbulence float32
	WindSeed       int64

	Persistence float32 // seconds a disturbance lingers after the cursor stops

	MinDT, MaxDT float32
}

// DefaultParams returns a quiet configuration: no wind, no ambient offset.
func DefaultParams() Params {
	return Params{
		Iterations:           20,
		DensityDiffusion:     0.00001,
		TemperatureDiffusion: 0.00002,
		VelocityDecay:        0.4,
		DensityDecay:         0.6,
		TemperatureDecay:     0.9,
		SourceWidth:          2,
		SourceEdgeFade:       3,
		SourceStrength:       30,
		DragScale:            6,
		Deadband:             1.5,
		CursorTemperature:    40,
		Buoyancy:             1.5,
		WindWidth:            6,
		WindTurbulence:       0.5,
		WindSeed:             7,
		MinDT:                0.001,
		MaxDT:                0.05,
	}
}

// NewParamsFromConfig converts the loaded configuration.
func NewParamsFromConfig(cfg *config.Config) Params {
	p := Params{
		Iterations:           cfg.Solver.Iterations,
		VelocityDiffusion:    float32(cfg.Velocity.Diffusion),
		DensityDiffusion:     float32(cfg.Density.Diffusion),
		TemperatureDiffusion: float32(cfg.Temperature.Diffusion),
		VelocityDecay:        float32(cfg.Velocity.Decay),
		DensityDecay:         float32(cfg.Density.Decay),
		TemperatureDecay:     float32(cfg.Temperature.Decay),
		SourceWidth:          float32(cfg.Source.Width),
		SourceEdgeFade:       float32(cfg.Source.EdgeFade),
		SourceStrength:       float32(cfg.Source.Strength),
		DragScale:            float32(cfg.Source.DragScale),
		Deadband:             float32(cfg.Source.Deadband),
		CursorTemperature:    float32(cfg.Temperature.Cursor),
		AmbientTemperature:   float32(cfg.Temperature.Ambient),
		Buoyancy:             float32(cfg.Temperature.Buoyancy),
		WindWidth:            float32(cfg.Wind.Width),
		WindSpeed:            float32(cfg.Wind.Speed),
		WindTurbulence:       float32(cfg.Wind.Turbulence),
		WindSeed:             cfg.Wind.Seed,
		Persistence:          float32(cfg.Ambient.Persistence),
		MinDT:                float32(cfg.Solver.MinDT),
		MaxDT:                float32(cfg.Solver.MaxDT),
	}
	p.Sanitize()
	return p
}

// Sanitize clamps every field into the range the solver tolerates.
// NaN and infinite values are replaced by the DefaultParams value first.
func (p *Params) Sanitize() {
	d := DefaultParams()

	if p.Iterations < 0 {
		p.Iterations = 0
	}
	if p.Iterations > 200 {
		p.Iterations = 200
	}

	p.MinDT = sanitize32(p.MinDT, 1e-4, 1, d.MinDT)
	p.MaxDT = sanitize32(p.MaxDT, p.MinDT, 1, d.MaxDT)

	p.VelocityDiffusion = sanitize32(p.VelocityDiffusion, 0, 1, d.VelocityDiffusion)
	p.DensityDiffusion = sanitize32(p.DensityDiffusion, 0, 1, d.DensityDiffusion)
	p.TemperatureDiffusion = sanitize32(p.TemperatureDiffusion, 0, 1, d.TemperatureDiffusion)

	// rate*dt must stay <= 1 so decay never flips sign
	maxDecay := 1 / p.MaxDT
	p.VelocityDecay = sanitize32(p.VelocityDecay, 0, maxDecay, d.VelocityDecay)
	p.DensityDecay = sanitize32(p.DensityDecay, 0, maxDecay, d.DensityDecay)
	p.TemperatureDecay = sanitize32(p.TemperatureDecay, 0, maxDecay, d.TemperatureDecay)

	p.SourceWidth = sanitize32(p.SourceWidth, 0, 1e4, d.SourceWidth)
	p.SourceEdgeFade = sanitize32(p.SourceEdgeFade, 0, 1e4, d.SourceEdgeFade)
	p.SourceStrength = sanitize32(p.SourceStrength, 0, 1e6, d.SourceStrength)
	p.DragScale = sanitize32(p.DragScale, 0, 1e3, d.DragScale)
	p.Deadband = sanitize32(p.Deadband, 0, 1e6, d.Deadband)

	p.CursorTemperature = sanitize32(p.CursorTemperature, -1e6, 1e6, d.CursorTemperature)
	p.AmbientTemperature = sanitize32(p.AmbientTemperature, 0, 1e6, d.AmbientTemperature)
	p.Buoyancy = sanitize32(p.Buoyancy, -1e3, 1e3, d.Buoyancy)

	p.WindWidth = sanitize32(p.WindWidth, 0, 1e4, d.WindWidth)
	p.WindSpeed = sanitize32(p.WindSpeed, -1e4, 1e4, d.WindSpeed)
	p.WindTurbulence = sanitize32(p.WindTurbulence, 0, 10, d.WindTurbulence)

	p.Persistence = sanitize32(p.Persistence, 0, 60, d.Persistence)
}

// ClampDT maps dt into [MinDT, MaxDT]; non-finite values become MinDT.
func (p *Params) ClampDT(dt float32) float32 {
	if dt != dt || math.IsInf(float64(dt), 0) || dt < p.MinDT {
		return p.MinDT
	}
	if dt > p.MaxDT {
		return p.MaxDT
	}
	return dt
}

// sanitize32 replaces a non-finite v with def, then clamps into [lo, hi].
func sanitize32(v, lo, hi, def float32) float32 {
	if v != v || math.IsInf(float64(v), 0) {
		v = def
	}
	return clamp32(v, lo, hi)
}

func clamp32(v, lo, hi float32) float32 {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
