package fluid

import (
	"sync"
	"sync/atomic"
)

// Phase names reported to a PhaseTimer during Step.
const (
	PhaseSources     = "sources"
	PhaseVelocity    = "velocity"
	PhaseDensity     = "density"
	PhaseTemperature = "temperature"
)

// PhaseTimer receives a mark at the start of each phase of Step.
type PhaseTimer interface {
	StartPhase(name string)
}

type noopTimer struct{}

func (noopTimer) StartPhase(string) {}

// Solver owns the fields of one overlay and advances them a frame at a time.
//
// Step and Resize serialise on an internal mutex, so a resize always waits
// for the in-flight frame to drain. SetParams may be called from any
// goroutine; the new values take effect at the start of the next Step.
// Everything else is meant for the goroutine that calls Step.
type Solver struct {
	mu sync.Mutex

	grid   Grid
	pool   *Pool
	params Params
	staged atomic.Pointer[Params]

	U, V        Field
	Density     Field
	Temperature Field

	p, div []float32
	src    *Sources

	// per-band scratch
	ghostTop    [][]float32
	ghostBottom [][]float32
	bandSums    [][2]float64

	time  float32 // accumulated simulation seconds
	frame uint64

	timer PhaseTimer
}

// NewSolver allocates a solver for a width x height interior.
// workers <= 0 uses GOMAXPROCS.
func NewSolver(width, height, workers int, params Params) (*Solver, error) {
	g, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	params.Sanitize()

	s := &Solver{
		params: params,
		pool:   NewPool(workers, height),
		timer:  noopTimer{},
	}
	s.allocate(g)
	return s, nil
}

func (s *Solver) allocate(g Grid) {
	s.grid = g
	s.U = NewField(g)
	s.V = NewField(g)
	s.Density = NewField(g)
	s.Temperature = NewField(g)
	s.p = make([]float32, g.Size())
	s.div = make([]float32, g.Size())
	s.src = NewSources(g, s.params.WindSeed)

	s.pool.Resize(g.Height)
	n := s.pool.Bands()
	s.ghostTop = make([][]float32, n)
	s.ghostBottom = make([][]float32, n)
	for i := range n {
		s.ghostTop[i] = make([]float32, g.TotalWidth)
		s.ghostBottom[i] = make([]float32, g.TotalWidth)
	}
	s.bandSums = make([][2]float64, n)
}

// Grid returns the current grid.
func (s *Solver) Grid() Grid { return s.grid }

// Params returns the parameters used by the most recent frame.
func (s *Solver) Params() Params { return s.params }

// Workers returns the pool size.
func (s *Solver) Workers() int { return s.pool.Workers() }

// Time returns the accumulated simulation time in seconds.
func (s *Solver) Time() float32 { return s.time }

// Frame returns the number of completed steps.
func (s *Solver) Frame() uint64 { return s.frame }

// SetPhaseTimer installs t to receive phase marks; nil disables them.
// Call it between frames.
func (s *Solver) SetPhaseTimer(t PhaseTimer) {
	if t == nil {
		t = noopTimer{}
	}
	s.timer = t
}

// SetParams stages p for the next frame. Out-of-range values are clamped.
func (s *Solver) SetParams(p Params) {
	p.Sanitize()
	s.staged.Store(&p)
}

func (s *Solver) applyStaged() {
	next := s.staged.Swap(nil)
	if next == nil {
		return
	}
	s.params = *next
}

// Step advances every field by dt seconds. dt is clamped into
// [MinDT, MaxDT]; a zero, negative or non-finite dt runs at MinDT.
func (s *Solver) Step(dt float32, cursor Cursor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyStaged()
	dt = s.params.ClampDT(dt)

	s.timer.StartPhase(PhaseSources)
	s.src.Build(&s.params, cursor, s.Temperature.Current(), s.time, dt, s.pool)

	s.timer.StartPhase(PhaseVelocity)
	s.VelocityStep(dt)
	s.timer.StartPhase(PhaseDensity)
	s.DensityStep(dt)
	s.timer.StartPhase(PhaseTemperature)
	s.TemperatureStep(dt)

	s.time += dt
	s.frame++
}

// VelocityStep adds queued velocity sources, diffuses, projects,
// self-advects, projects again and applies decay.
func (s *Solver) VelocityStep(dt float32) {
	p := &s.params

	s.addSource(s.U.Current(), s.src.U)
	s.addSource(s.V.Current(), s.src.V)
	clear(s.src.U)
	clear(s.src.V)
	ApplyBoundary(s.grid, s.U.Current(), BoundaryVelocityX)
	ApplyBoundary(s.grid, s.V.Current(), BoundaryVelocityY)

	s.diffuse(&s.U, p.VelocityDiffusion, dt, BoundaryVelocityX)
	s.diffuse(&s.V, p.VelocityDiffusion, dt, BoundaryVelocityY)
	s.Project(s.U.Current(), s.V.Current(), s.p, s.div)

	s.U.Swap()
	s.V.Swap()
	u0, v0 := s.U.Previous(), s.V.Previous()
	s.Advect(s.U.Current(), u0, u0, v0, dt, BoundaryVelocityX, false)
	s.Advect(s.V.Current(), v0, u0, v0, dt, BoundaryVelocityY, false)
	s.Project(s.U.Current(), s.V.Current(), s.p, s.div)

	s.decay(s.U.Current(), p.VelocityDecay, dt, false)
	s.decay(s.V.Current(), p.VelocityDecay, dt, false)
	ApplyBoundary(s.grid, s.U.Current(), BoundaryVelocityX)
	ApplyBoundary(s.grid, s.V.Current(), BoundaryVelocityY)
}

// DensityStep adds queued density, diffuses, advects along the current
// velocity with conservation and decays toward zero.
func (s *Solver) DensityStep(dt float32) {
	p := &s.params
	s.scalarStep(&s.Density, s.src.Density, p.DensityDiffusion, p.DensityDecay, dt)
}

// TemperatureStep is DensityStep for the temperature field.
func (s *Solver) TemperatureStep(dt float32) {
	p := &s.params
	s.scalarStep(&s.Temperature, s.src.Temperature, p.TemperatureDiffusion, p.TemperatureDecay, dt)
}

func (s *Solver) scalarStep(f *Field, src []float32, diffusion, decay, dt float32) {
	s.addSource(f.Current(), src)
	clear(src)
	ApplyBoundary(s.grid, f.Current(), BoundaryScalar)

	s.diffuse(f, diffusion, dt, BoundaryScalar)

	f.Swap()
	s.Advect(f.Current(), f.Previous(), s.U.Current(), s.V.Current(), dt, BoundaryScalar, true)

	s.decay(f.Current(), decay, dt, true)
	ApplyBoundary(s.grid, f.Current(), BoundaryScalar)
}

// diffuse relaxes f toward its smoothed state. The previous value seeds the
// solve, which keeps repeated diffusion from raising the field maximum.
func (s *Solver) diffuse(f *Field, rate, dt float32, kind BoundaryKind) {
	f.Swap()
	x, x0 := f.Current(), f.Previous()
	a := dt * rate * float32(s.grid.CellCount())
	copy(x, x0)
	s.Relax(x, x0, a, 1+4*a, s.params.Iterations, kind)
}

// decay scales the interior by (1 - rate*dt); floor clamps at zero.
func (s *Solver) decay(f []float32, rate, dt float32, floor bool) {
	k := 1 - rate*dt
	if k < 0 {
		k = 0
	}
	if k == 1 && !floor {
		return
	}
	tw := s.grid.TotalWidth
	w := s.grid.Width
	s.pool.Run(func(_, y0, y1 int) {
		for y := y0; y <= y1; y++ {
			row := y * tw
			for i := row + 1; i <= row+w; i++ {
				v := f[i] * k
				if floor && v < 0 {
					v = 0
				}
				f[i] = v
			}
		}
	})
}

// View exposes the current fields. The slices alias solver memory and are
// only valid until the next Step, Reset or Resize.
func (s *Solver) View() FieldView {
	return FieldView{
		Grid:        s.grid,
		U:           s.U.Current(),
		V:           s.V.Current(),
		Density:     s.Density.Current(),
		Temperature: s.Temperature.Current(),
	}
}

// Snapshot copies the current density and temperature into dst, growing
// the buffers as needed, so other goroutines can draw them while the next
// frame runs.
func (s *Solver) Snapshot(dst *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.grid.Size()
	if cap(dst.Density) < n {
		dst.Density = make([]float32, n)
		dst.Temperature = make([]float32, n)
	}
	dst.Grid = s.grid
	dst.Density = dst.Density[:n]
	dst.Temperature = dst.Temperature[:n]
	copy(dst.Density, s.Density.Current())
	copy(dst.Temperature, s.Temperature.Current())
	dst.Frame = s.frame
}

// Snapshot is a detached copy of the scalar fields.
type Snapshot struct {
	Grid        Grid
	Density     []float32
	Temperature []float32
	Frame       uint64
}

// Reset zeroes every field and forgets the lingering disturbance.
func (s *Solver) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.U.Clear()
	s.V.Clear()
	s.Density.Clear()
	s.Temperature.Clear()
	clear(s.p)
	clear(s.div)
	s.src.Reset()
	s.time = 0
	s.frame = 0
}

// Resize reallocates for a new interior size once the current frame has
// finished. Field contents are discarded.
func (s *Solver) Resize(width, height int) error {
	g, err := NewGrid(width, height)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g.Scale = s.grid.Scale
	s.allocate(g)
	return nil
}

// SetScale changes the grid-to-world scale used by advection and projection.
func (s *Solver) SetScale(scale float32) {
	if scale <= 0 || scale != scale {
		return
	}
	s.mu.Lock()
	s.grid.Scale = scale
	s.mu.Unlock()
}

// Close stops the worker pool. The solver must not be used afterwards.
func (s *Solver) Close() {
	s.pool.Close()
}
