// Package game ties the solver, the particle overlay, telemetry and the
// frame stream into one frame loop, windowed or headless.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/pthm-cable/smoketrail/camera"
	"github.com/pthm-cable/smoketrail/config"
	"github.com/pthm-cable/smoketrail/fluid"
	"github.com/pthm-cable/smoketrail/gpu"
	"github.com/pthm-cable/smoketrail/renderer"
	"github.com/pthm-cable/smoketrail/stream"
	"github.com/pthm-cable/smoketrail/systems"
	"github.com/pthm-cable/smoketrail/telemetry"
	"github.com/pthm-cable/smoketrail/ui"
)

// Options holds runtime options that are not part of the YAML config.
type Options struct {
	Headless  bool
	OutputDir string // CSV and config snapshot directory; empty disables
	LogStats  bool   // log field stats with slog when sampled
}

// Game holds the complete overlay state.
type Game struct {
	cfg  *config.Config
	opts Options

	// Simulation
	backend fluid.Backend
	solver  *fluid.Solver    // set when the backend runs on the CPU
	input   *fluid.StepInput // host buffers for other backends
	params  fluid.Params

	particles *systems.ParticleSystem
	palette   *systems.Palette
	tracker   *systems.CursorTracker
	script    systems.ScriptedCursor
	view      *camera.Viewport

	snap      fluid.Snapshot
	snapValid bool

	// Telemetry
	perf          *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	lastStats     telemetry.FieldStats

	// Stream
	hub          *stream.Hub
	frameMsg     stream.Frame
	streamCancel context.CancelFunc
	streamDone   chan struct{}
	resetPending atomic.Bool

	// Rendering, nil when headless
	smokeRenderer    *renderer.SmokeRenderer
	particleRenderer *renderer.ParticleRenderer
	overlays         *ui.OverlayRegistry
	hud              *ui.HUD
	perfPanel        *ui.PerfPanel
	paramsPanel      *ui.ParamsPanel

	// State
	frame   uint64
	simTime float32
	paused  bool

	screenWidth, screenHeight float32
}

// NewGame builds a game from cfg. The raylib window must already be open
// unless opts.Headless is set.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	g := &Game{
		cfg:          cfg,
		opts:         opts,
		params:       fluid.NewParamsFromConfig(cfg),
		palette:      systems.DefaultPalette(),
		tracker:      systems.NewCursorTracker(),
		perf:         telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		screenWidth:  cfg.Derived.ScreenW32,
		screenHeight: cfg.Derived.ScreenH32,
	}

	if err := g.initBackend(); err != nil {
		return nil, err
	}

	g.particles = systems.NewParticleSystem(systems.ParticleConfigFromConfig(cfg), g.palette)
	g.script = systems.ScriptedCursor{
		Width:  float32(cfg.Grid.Width),
		Height: float32(cfg.Grid.Height),
		Speed:  1,
	}
	g.view = camera.New(g.screenWidth, g.screenHeight, cfg.Grid.Width, cfg.Grid.Height)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.backend.Close()
		return nil, fmt.Errorf("output: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	if cfg.Stream.Addr != "" {
		g.startStream(cfg.Stream.Addr)
	}

	if !opts.Headless {
		g.initRendering()
	}

	slog.Info("overlay ready",
		"backend", g.backend.Name(),
		"grid_w", cfg.Grid.Width,
		"grid_h", cfg.Grid.Height,
		"workers", cfg.Derived.Workers,
		"headless", opts.Headless,
	)
	return g, nil
}

// initBackend picks the solver backend. A GPU request that cannot be served
// falls back to the CPU.
func (g *Game) initBackend() error {
	w, h := g.cfg.Grid.Width, g.cfg.Grid.Height

	if g.cfg.Solver.Backend == "gpu" {
		b, err := gpu.NewCUDABackend(w, h, g.params)
		if err == nil {
			b.SetScale(float32(g.cfg.Grid.Scale))
			g.backend = b
			g.input = fluid.NewStepInput(b.Grid())
			return nil
		}
		if !errors.Is(err, gpu.ErrUnavailable) && !errors.Is(err, gpu.ErrDevice) {
			return fmt.Errorf("gpu backend: %w", err)
		}
		slog.Warn("gpu backend unavailable, using cpu", "error", err)
	}

	b, err := fluid.NewCPUBackend(w, h, g.cfg.Derived.Workers, g.params)
	if err != nil {
		return fmt.Errorf("cpu backend: %w", err)
	}
	s := b.Solver()
	s.SetScale(float32(g.cfg.Grid.Scale))
	s.SetPhaseTimer(g.perf)
	g.backend = b
	g.solver = s
	return nil
}

func (g *Game) initRendering() {
	g.smokeRenderer = renderer.NewSmokeRenderer(g.palette)
	g.particleRenderer = renderer.NewParticleRenderer(g.view)
	g.overlays = ui.NewOverlayRegistry()
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-290, 10, 280)
	g.paramsPanel = ui.NewParamsPanel(g.screenWidth-370, 10, 360)
}

// BackendName reports the backend in use.
func (g *Game) BackendName() string { return g.backend.Name() }

// Frame returns the number of completed frames.
func (g *Game) Frame() uint64 { return g.frame }

// SimTime returns the accumulated simulation time in seconds.
func (g *Game) SimTime() float32 { return g.simTime }

// Params returns the parameters currently applied.
func (g *Game) Params() fluid.Params { return g.params }

// LastStats returns the most recent field sample.
func (g *Game) LastStats() telemetry.FieldStats { return g.lastStats }

// ParticleCount returns the number of live tracer particles.
func (g *Game) ParticleCount() int { return g.particles.Count() }

// SetParams applies p from the next frame on.
func (g *Game) SetParams(p fluid.Params) {
	p.Sanitize()
	g.params = p
	if g.solver != nil {
		g.solver.SetParams(p)
		return
	}
	g.backend.SetParams(p)
}

// RequestReset clears the overlay before the next frame. Safe to call from
// any goroutine.
func (g *Game) RequestReset() {
	g.resetPending.Store(true)
}

func (g *Game) reset() {
	if g.solver != nil {
		g.solver.Reset()
	} else {
		g.backend.Reset()
		clear(g.input.U)
		clear(g.input.V)
		clear(g.input.Density)
		clear(g.input.Temperature)
	}
	g.particles.Clear()
	g.snapValid = false
	slog.Info("overlay cleared", "frame", g.frame)
}

// Unload releases every resource held by the game.
func (g *Game) Unload() {
	g.stopStream()
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
	if g.smokeRenderer != nil {
		g.smokeRenderer.Unload()
	}
	if err := g.backend.Close(); err != nil {
		slog.Error("failed to close backend", "error", err)
	}
}
