// Package gpu runs the fluid step on an accelerator. Builds without the
// cuda tag compile a stub whose constructor reports ErrUnavailable, and
// the host falls back to the CPU backend.
package gpu

import "errors"

// ErrUnavailable is returned when no device backend is compiled in or no
// device is present.
var ErrUnavailable = errors.New("gpu: backend unavailable")

// ErrDevice wraps failures reported by the device library.
var ErrDevice = errors.New("gpu: device error")
