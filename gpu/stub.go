//go:build !cuda

package gpu

import "github.com/pthm-cable/smoketrail/fluid"

// NewCUDABackend always fails in builds without the cuda tag.
func NewCUDABackend(width, height int, params fluid.Params) (fluid.Backend, error) {
	if _, err := fluid.NewGrid(width, height); err != nil {
		return nil, err
	}
	return nil, ErrUnavailable
}

// DeviceCount reports zero without the cuda tag.
func DeviceCount() int { return 0 }
