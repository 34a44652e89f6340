//go:build cuda

package gpu

/*
#cgo CFLAGS: -I/opt/cuda/include
#cgo LDFLAGS: -L/opt/cuda/lib64 -L${SRCDIR} -lcudart -lsmokekernels -lstdc++
#include <stdlib.h>

typedef struct {
	float dt;
	float velocity_diffusion;
	float density_diffusion;
	float temperature_diffusion;
	float velocity_decay;
	float density_decay;
	float temperature_decay;
	float scale;
	int iterations;
} smoke_step_params;

extern int smoke_device_count();
extern const char* smoke_device_name();
extern void* smoke_init(int width, int height);
extern int smoke_step(void* ctx, float* u, float* v, float* density, float* temperature,
	const float* src_u, const float* src_v, const float* src_density, const float* src_temperature,
	smoke_step_params* p);
extern void smoke_free(void* ctx);
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/pthm-cable/smoketrail/fluid"
)

// CUDABackend owns device buffers for one grid. Sources are built on the
// host by the same code as the CPU solver and uploaded with the fields at
// the start of Step; the fields are downloaded before it returns.
type CUDABackend struct {
	ctx        unsafe.Pointer
	host       *hostFrame
	deviceName string
}

// DeviceCount returns the number of visible CUDA devices.
func DeviceCount() int { return int(C.smoke_device_count()) }

// NewCUDABackend allocates device buffers for a width x height interior.
func NewCUDABackend(width, height int, params fluid.Params) (fluid.Backend, error) {
	g, err := fluid.NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	if DeviceCount() == 0 {
		return nil, ErrUnavailable
	}
	ctx := C.smoke_init(C.int(width), C.int(height))
	if ctx == nil {
		return nil, fmt.Errorf("%w: allocating %dx%d buffers", ErrDevice, width, height)
	}
	return &CUDABackend{
		ctx:        ctx,
		host:       newHostFrame(g, params),
		deviceName: C.GoString(C.smoke_device_name()),
	}, nil
}

func (b *CUDABackend) Name() string { return "cuda (" + b.deviceName + ")" }

func (b *CUDABackend) Grid() fluid.Grid { return b.host.grid }

func (b *CUDABackend) SetParams(p fluid.Params) { b.host.setParams(p) }

func (b *CUDABackend) SetScale(scale float32) { b.host.setScale(scale) }

// Reset restarts the clock and forgets the lingering disturbance. The
// fields live in the caller's buffers.
func (b *CUDABackend) Reset() { b.host.reset() }

// Step builds the frame's sources, uploads them with the host buffers, runs
// the field phases on the device and copies the result back.
func (b *CUDABackend) Step(in *fluid.StepInput) error {
	if b.ctx == nil {
		return ErrUnavailable
	}
	dp, err := b.host.prepare(in)
	if err != nil {
		return err
	}
	src := b.host.src
	sp := C.smoke_step_params{
		dt:                    C.float(dp.Dt),
		velocity_diffusion:    C.float(dp.VelocityDiffusion),
		density_diffusion:     C.float(dp.DensityDiffusion),
		temperature_diffusion: C.float(dp.TemperatureDiffusion),
		velocity_decay:        C.float(dp.VelocityDecay),
		density_decay:         C.float(dp.DensityDecay),
		temperature_decay:     C.float(dp.TemperatureDecay),
		scale:                 C.float(dp.Scale),
		iterations:            C.int(dp.Iterations),
	}
	rc := C.smoke_step(b.ctx,
		(*C.float)(unsafe.Pointer(&in.U[0])),
		(*C.float)(unsafe.Pointer(&in.V[0])),
		(*C.float)(unsafe.Pointer(&in.Density[0])),
		(*C.float)(unsafe.Pointer(&in.Temperature[0])),
		(*C.float)(unsafe.Pointer(&src.U[0])),
		(*C.float)(unsafe.Pointer(&src.V[0])),
		(*C.float)(unsafe.Pointer(&src.Density[0])),
		(*C.float)(unsafe.Pointer(&src.Temperature[0])),
		&sp,
	)
	if rc != 0 {
		return fmt.Errorf("%w: step returned %d", ErrDevice, int(rc))
	}
	b.host.advance(dp.Dt)
	return nil
}

// Resize frees the device buffers and allocates new ones.
func (b *CUDABackend) Resize(width, height int) error {
	g, err := fluid.NewGrid(width, height)
	if err != nil {
		return err
	}
	if b.ctx != nil {
		C.smoke_free(b.ctx)
		b.ctx = nil
	}
	ctx := C.smoke_init(C.int(width), C.int(height))
	if ctx == nil {
		return fmt.Errorf("%w: allocating %dx%d buffers", ErrDevice, width, height)
	}
	b.ctx = ctx
	b.host.resize(g)
	return nil
}

// Close releases device memory. It is safe to call more than once.
func (b *CUDABackend) Close() error {
	if b.ctx != nil {
		C.smoke_free(b.ctx)
		b.ctx = nil
	}
	return nil
}
