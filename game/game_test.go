package game

import (
	"math"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/smoketrail/config"
	"github.com/pthm-cable/smoketrail/fluid"
	"github.com/pthm-cable/smoketrail/stream"
)

func init() {
	config.MustInit("")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Grid.Width = 32
	cfg.Grid.Height = 24
	cfg.Derived.Workers = 2
	cfg.Telemetry.StatsEvery = 5
	cfg.Telemetry.LogEvery = 10
	cfg.Stream.Every = 1
	return cfg
}

func newHeadless(t *testing.T, cfg *config.Config, opts Options) *Game {
	t.Helper()
	opts.Headless = true
	g, err := NewGame(cfg, opts)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g
}

func TestHeadlessRun(t *testing.T) {
	cfg := testConfig(t)
	g := newHeadless(t, cfg, Options{})
	defer g.Unload()

	for i := 0; i < 60; i++ {
		g.UpdateHeadless()
	}

	if g.Frame() != 60 {
		t.Errorf("expected 60 frames, got %d", g.Frame())
	}
	want := 60 * cfg.Derived.FixedDT32
	if math.Abs(float64(g.SimTime()-want)) > 1e-3 {
		t.Errorf("expected sim time %v, got %v", want, g.SimTime())
	}
	if g.LastStats().Frame != 60 {
		t.Errorf("expected stats sampled at frame 60, got %d", g.LastStats().Frame)
	}
	if g.LastStats().TotalDensity <= 0 {
		t.Error("scripted cursor should leave smoke behind")
	}
	if g.ParticleCount() == 0 {
		t.Error("scripted cursor should spawn particles")
	}
	if g.ParticleCount() > cfg.Particles.MaxCount {
		t.Errorf("particle cap exceeded: %d", g.ParticleCount())
	}
}

func TestGPURequestFallsBackToCPU(t *testing.T) {
	cfg := testConfig(t)
	cfg.Solver.Backend = "gpu"
	g := newHeadless(t, cfg, Options{})
	defer g.Unload()

	if g.BackendName() != "cpu" {
		t.Skipf("accelerator available (%s)", g.BackendName())
	}
	g.UpdateHeadless()
	if g.Frame() != 1 {
		t.Errorf("expected one frame after fallback, got %d", g.Frame())
	}
}

func TestOutputFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	g := newHeadless(t, cfg, Options{OutputDir: dir})

	for i := 0; i < 20; i++ {
		g.UpdateHeadless()
	}
	g.Unload()

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "fields.csv"))
	if err != nil {
		t.Fatalf("reading fields.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// header plus frames 5, 10, 15, 20
	if len(lines) != 5 {
		t.Errorf("expected 5 lines in fields.csv, got %d", len(lines))
	}

	data, err = os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatalf("reading perf.csv: %v", err)
	}
	lines = strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("expected 3 lines in perf.csv, got %d", len(lines))
	}
}

func TestRequestReset(t *testing.T) {
	cfg := testConfig(t)
	g := newHeadless(t, cfg, Options{})
	defer g.Unload()

	for i := 0; i < 30; i++ {
		g.UpdateHeadless()
	}
	view := g.fieldView()
	before := fluid.InteriorSum(view.Grid, view.Density)

	g.RequestReset()
	g.UpdateHeadless()

	view = g.fieldView()
	after := fluid.InteriorSum(view.Grid, view.Density)
	if after >= before {
		t.Errorf("reset should drop accumulated smoke: before %v, after %v", before, after)
	}
	if g.ParticleCount() > cfg.Particles.MaxPerFrame {
		t.Errorf("reset should clear particles, have %d", g.ParticleCount())
	}
	if g.Frame() != 31 {
		t.Errorf("frame counter should keep running, got %d", g.Frame())
	}
}

func TestSetParamsReachesSolver(t *testing.T) {
	cfg := testConfig(t)
	g := newHeadless(t, cfg, Options{})
	defer g.Unload()

	p := g.Params()
	p.Buoyancy = 4.5
	p.DensityDecay = -3 // clamped
	g.SetParams(p)
	g.UpdateHeadless()

	got := g.solver.Params()
	if got.Buoyancy != 4.5 {
		t.Errorf("expected buoyancy 4.5, got %v", got.Buoyancy)
	}
	if got.DensityDecay != 0 {
		t.Errorf("expected clamped decay 0, got %v", got.DensityDecay)
	}
}

func TestBroadcastToViewer(t *testing.T) {
	cfg := testConfig(t)
	g := newHeadless(t, cfg, Options{})
	defer g.Unload()

	g.hub = stream.NewHub()
	srv := httptest.NewServer(g.hub)
	defer srv.Close()
	defer g.hub.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for g.hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	g.UpdateHeadless()

	var f stream.Frame
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	wantW := (cfg.Grid.Width + cfg.Stream.Downsample - 1) / cfg.Stream.Downsample
	if f.Frame != 1 || f.Width != wantW || len(f.Density) != f.Width*f.Height {
		t.Errorf("unexpected frame header %+v", f)
	}
}
