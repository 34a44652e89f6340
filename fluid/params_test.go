package fluid

import (
	"math"
	"testing"

	"github.com/pthm-cable/smoketrail/config"
)

func init() {
	config.MustInit("")
}

func TestParamsSanitize(t *testing.T) {
	nan := float32(math.NaN())
	p := Params{
		Iterations:        500,
		VelocityDiffusion: nan,
		DensityDiffusion:  -1,
		DensityDecay:      1e9,
		MinDT:             0,
		MaxDT:             nan,
		Persistence:       1e9,
	}
	p.Sanitize()

	if p.Iterations != 200 {
		t.Errorf("iterations should cap at 200, got %d", p.Iterations)
	}
	if p.VelocityDiffusion != 0 || p.DensityDiffusion != 0 {
		t.Errorf("diffusion should clamp to 0, got %f %f", p.VelocityDiffusion, p.DensityDiffusion)
	}
	if p.MinDT <= 0 {
		t.Errorf("MinDT must be positive, got %f", p.MinDT)
	}
	if p.MaxDT < p.MinDT {
		t.Errorf("MaxDT %f below MinDT %f", p.MaxDT, p.MinDT)
	}
	if p.DensityDecay*p.MaxDT > 1+1e-6 {
		t.Errorf("decay %f could flip sign at dt %f", p.DensityDecay, p.MaxDT)
	}
	if p.Persistence != 60 {
		t.Errorf("persistence should clamp to 60, got %f", p.Persistence)
	}
}

func TestParamsSanitizeNonFiniteUsesDefaults(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	d := DefaultParams()
	p := d
	p.MaxDT = nan
	p.DensityDiffusion = inf
	p.SourceWidth = nan
	p.Buoyancy = -inf
	p.WindTurbulence = inf
	p.CursorTemperature = nan
	p.Persistence = inf
	p.AmbientTemperature = nan
	p.Sanitize()

	for _, c := range []struct {
		name      string
		got, want float32
	}{
		{"MaxDT", p.MaxDT, d.MaxDT},
		{"DensityDiffusion", p.DensityDiffusion, d.DensityDiffusion},
		{"SourceWidth", p.SourceWidth, d.SourceWidth},
		{"Buoyancy", p.Buoyancy, d.Buoyancy},
		{"WindTurbulence", p.WindTurbulence, d.WindTurbulence},
		{"CursorTemperature", p.CursorTemperature, d.CursorTemperature},
		{"Persistence", p.Persistence, d.Persistence},
		{"AmbientTemperature", p.AmbientTemperature, d.AmbientTemperature},
	} {
		if c.got != c.want {
			t.Errorf("%s = %f, want default %f", c.name, c.got, c.want)
		}
	}
}

func TestParamsSanitizeAmbientNotNegative(t *testing.T) {
	p := DefaultParams()
	p.AmbientTemperature = -3
	p.Sanitize()
	if p.AmbientTemperature != 0 {
		t.Errorf("ambient temperature should clamp to 0, got %f", p.AmbientTemperature)
	}
}

func TestClampDT(t *testing.T) {
	p := DefaultParams()
	cases := []struct{ in, want float32 }{
		{0, p.MinDT},
		{-3, p.MinDT},
		{float32(math.NaN()), p.MinDT},
		{float32(math.Inf(1)), p.MinDT},
		{0.02, 0.02},
		{5, p.MaxDT},
	}
	for _, tc := range cases {
		if got := p.ClampDT(tc.in); got != tc.want {
			t.Errorf("ClampDT(%f) = %f, want %f", tc.in, got, tc.want)
		}
	}
}

func TestParamsFromConfig(t *testing.T) {
	cfg := config.Cfg()
	p := NewParamsFromConfig(cfg)
	if p.Iterations != cfg.Solver.Iterations {
		t.Errorf("iterations %d, want %d", p.Iterations, cfg.Solver.Iterations)
	}
	if p.WindSeed != cfg.Wind.Seed {
		t.Errorf("wind seed %d, want %d", p.WindSeed, cfg.Wind.Seed)
	}
	if p.SourceStrength != float32(cfg.Source.Strength) {
		t.Errorf("source strength %f, want %f", p.SourceStrength, cfg.Source.Strength)
	}
}
