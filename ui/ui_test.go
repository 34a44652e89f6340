package ui

import (
	"testing"
	"time"

	"github.com/pthm-cable/smoketrail/fluid"
	"github.com/pthm-cable/smoketrail/telemetry"
)

func TestSlidersBindDistinctFields(t *testing.T) {
	var p fluid.Params
	seen := make(map[*float32]string)
	for _, s := range DefaultSliders() {
		ptr := s.Field(&p)
		if other, ok := seen[ptr]; ok {
			t.Errorf("%q and %q edit the same field", s.Label, other)
		}
		seen[ptr] = s.Label
		if s.Min >= s.Max {
			t.Errorf("%q has empty range [%v, %v]", s.Label, s.Min, s.Max)
		}
	}
}

func TestSliderSetClamps(t *testing.T) {
	s := ParamSlider{Label: "x", Min: 0, Max: 10, Field: func(p *fluid.Params) *float32 { return &p.Buoyancy }}
	var p fluid.Params

	s.Set(&p, 42)
	if p.Buoyancy != 10 {
		t.Errorf("expected clamp to 10, got %v", p.Buoyancy)
	}
	s.Set(&p, -1)
	if p.Buoyancy != 0 {
		t.Errorf("expected clamp to 0, got %v", p.Buoyancy)
	}
	nan := float32(0)
	nan = nan / nan
	s.Set(&p, nan)
	if p.Buoyancy != 0 {
		t.Errorf("NaN should map to min, got %v", p.Buoyancy)
	}
}

func TestDefaultsWithinSliderRanges(t *testing.T) {
	p := fluid.DefaultParams()
	for _, s := range DefaultSliders() {
		v := *s.Field(&p)
		if v < s.Min || v > s.Max {
			t.Errorf("%q default %v outside [%v, %v]", s.Label, v, s.Min, s.Max)
		}
	}
}

func TestOverlayRegistry(t *testing.T) {
	reg := NewOverlayRegistry()
	if !reg.IsEnabled(OverlaySmoke) || reg.IsEnabled(OverlayPerf) {
		t.Fatal("unexpected default layer state")
	}
	if !reg.Toggle(OverlayPerf) {
		t.Error("toggle should enable perf")
	}
	if reg.Toggle(OverlaySmoke) {
		t.Error("toggle should disable smoke")
	}
	if reg.Toggle("missing") {
		t.Error("unknown layer should report false")
	}

	reg.Register(OverlayDescriptor{ID: "a", Name: "A", Exclusive: []OverlayID{OverlayVelocity}})
	reg.SetEnabled(OverlayVelocity, true)
	reg.SetEnabled("a", true)
	if reg.IsEnabled(OverlayVelocity) {
		t.Error("exclusive partner should be disabled")
	}
	if reg.Legend() == "" {
		t.Error("legend should not be empty")
	}
}

func TestSortedPhases(t *testing.T) {
	stats := telemetry.PerfStats{PhaseAvg: map[string]time.Duration{
		"density":  2 * time.Millisecond,
		"velocity": 5 * time.Millisecond,
		"sources":  time.Millisecond,
		"stream":   time.Millisecond,
	}}
	got := SortedPhases(stats)
	want := []string{"velocity", "density", "sources", "stream"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
