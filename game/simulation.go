package game

import (
	"github.com/pthm-cable/smoketrail/fluid"
	"github.com/pthm-cable/smoketrail/telemetry"
)

// fieldView returns the current fields of whichever backend is active.
func (g *Game) fieldView() fluid.FieldView {
	if g.solver != nil {
		return g.solver.View()
	}
	return g.input.View(g.backend.Grid())
}

// advance runs one backend step. On the CPU the solver is stepped in place:
// its fields are already resident, so the StepInput round trip would only
// add four buffer copies per frame, and the solver marks its own phases.
// CPUBackend.Step is the same frame behind the Backend interface.
func (g *Game) advance(dt float32, cursor fluid.Cursor) error {
	if g.solver != nil {
		g.solver.Step(dt, cursor)
		return nil
	}

	g.perf.StartPhase(telemetry.PhaseSolver)
	in := g.input
	in.Dt = dt
	in.Cursor = cursor
	in.VelocityDiffusion = g.params.VelocityDiffusion
	in.DensityDiffusion = g.params.DensityDiffusion
	in.TemperatureDiffusion = g.params.TemperatureDiffusion
	return g.backend.Step(in)
}

// stepFrame advances the overlay by one frame. The caller has started the
// perf tick.
func (g *Game) stepFrame(dt float32, cursor fluid.Cursor) {
	if g.resetPending.Swap(false) {
		g.reset()
	}

	dt = g.params.ClampDT(dt)
	if err := g.advance(dt, cursor); err != nil {
		// A failed accelerator step leaves the buffers untouched; keep the
		// last frame on screen rather than exiting.
		g.perf.EndTick()
		logStepError(g.backend.Name(), g.frame, err)
		return
	}
	g.frame++
	g.simTime += dt
	g.snapValid = false

	view := g.fieldView()

	g.perf.StartPhase(telemetry.PhaseParticles)
	g.particles.Update(dt, g.simTime, cursor, view)

	g.perf.StartPhase(telemetry.PhaseStream)
	g.broadcast()

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.sampleTelemetry(view)

	g.perf.EndTick()
}

// snapshot returns a detached copy of the scalar fields for this frame.
func (g *Game) snapshot() *fluid.Snapshot {
	if g.snapValid {
		return &g.snap
	}
	if g.solver != nil {
		g.solver.Snapshot(&g.snap)
	} else {
		grid := g.backend.Grid()
		n := grid.Size()
		if cap(g.snap.Density) < n {
			g.snap.Density = make([]float32, n)
			g.snap.Temperature = make([]float32, n)
		}
		g.snap.Grid = grid
		g.snap.Density = g.snap.Density[:n]
		g.snap.Temperature = g.snap.Temperature[:n]
		copy(g.snap.Density, g.input.Density)
		copy(g.snap.Temperature, g.input.Temperature)
		g.snap.Frame = g.frame
	}
	g.snapValid = true
	return &g.snap
}

// UpdateHeadless runs one frame at the fixed timestep with a scripted cursor.
func (g *Game) UpdateHeadless() {
	g.perf.StartTick()
	g.perf.StartPhase(telemetry.PhaseInput)
	cursor := g.script.At(g.simTime)
	g.stepFrame(g.cfg.Derived.FixedDT32, cursor)
}
