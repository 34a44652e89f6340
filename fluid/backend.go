package fluid

import (
	"errors"
	"fmt"
)

// ErrBufferSize is returned when a step buffer does not match the grid.
var ErrBufferSize = errors.New("fluid: buffer length does not match grid")

// StepInput carries host-side field buffers across one backend step. The
// buffers are read at the start of Step and hold the new state when it returns.
type StepInput struct {
	U, V        []float32
	Density     []float32
	Temperature []float32

	Dt                   float32
	VelocityDiffusion    float32
	DensityDiffusion     float32
	TemperatureDiffusion float32

	Cursor Cursor
}

// NewStepInput allocates zeroed buffers for g.
func NewStepInput(g Grid) *StepInput {
	n := g.Size()
	return &StepInput{
		U:           make([]float32, n),
		V:           make([]float32, n),
		Density:     make([]float32, n),
		Temperature: make([]float32, n),
	}
}

// Validate checks every buffer against g.
func (in *StepInput) Validate(g Grid) error {
	n := g.Size()
	for _, b := range []struct {
		name string
		buf  []float32
	}{
		{"u", in.U}, {"v", in.V}, {"density", in.Density}, {"temperature", in.Temperature},
	} {
		if len(b.buf) != n {
			return fmt.Errorf("%w: %s has %d, want %d", ErrBufferSize, b.name, len(b.buf), n)
		}
	}
	return nil
}

// View wraps the buffers for sampling.
func (in *StepInput) View(g Grid) FieldView {
	return FieldView{Grid: g, U: in.U, V: in.V, Density: in.Density, Temperature: in.Temperature}
}

// Backend advances fields held in host buffers. Implementations run on the
// CPU solver or on an accelerator; both honour the same StepInput contract.
type Backend interface {
	Name() string
	Grid() Grid
	SetParams(p Params)
	SetScale(scale float32)
	Step(in *StepInput) error
	Reset()
	Resize(width, height int) error
	Close() error
}

// CPUBackend runs the host solver behind the Backend interface.
type CPUBackend struct {
	solver *Solver
	params Params
}

// NewCPUBackend creates a CPU backend. workers <= 0 uses GOMAXPROCS.
func NewCPUBackend(width, height, workers int, params Params) (*CPUBackend, error) {
	s, err := NewSolver(width, height, workers, params)
	if err != nil {
		return nil, err
	}
	params.Sanitize()
	return &CPUBackend{solver: s, params: params}, nil
}

func (b *CPUBackend) Name() string { return "cpu" }

func (b *CPUBackend) Grid() Grid { return b.solver.Grid() }

// Solver exposes the underlying solver.
func (b *CPUBackend) Solver() *Solver { return b.solver }

// SetParams replaces the base parameters. Diffusion rates still come from
// each StepInput.
func (b *CPUBackend) SetParams(p Params) {
	p.Sanitize()
	b.params = p
}

// Step loads the buffers, runs one frame and copies the result back.
func (b *CPUBackend) Step(in *StepInput) error {
	g := b.solver.Grid()
	if err := in.Validate(g); err != nil {
		return err
	}

	p := b.params
	p.VelocityDiffusion = in.VelocityDiffusion
	p.DensityDiffusion = in.DensityDiffusion
	p.TemperatureDiffusion = in.TemperatureDiffusion
	b.solver.SetParams(p)

	s := b.solver
	s.U.Load(in.U)
	s.V.Load(in.V)
	s.Density.Load(in.Density)
	s.Temperature.Load(in.Temperature)

	s.Step(in.Dt, in.Cursor)

	copy(in.U, s.U.Current())
	copy(in.V, s.V.Current())
	copy(in.Density, s.Density.Current())
	copy(in.Temperature, s.Temperature.Current())
	return nil
}

// SetScale changes the grid-to-world scale.
func (b *CPUBackend) SetScale(scale float32) { b.solver.SetScale(scale) }

// Reset clears the solver state and the lingering disturbance.
func (b *CPUBackend) Reset() { b.solver.Reset() }

func (b *CPUBackend) Resize(width, height int) error {
	return b.solver.Resize(width, height)
}

func (b *CPUBackend) Close() error {
	b.solver.Close()
	return nil
}
