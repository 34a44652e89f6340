//go:build !cuda

package gpu

import (
	"errors"
	"testing"

	"github.com/pthm-cable/smoketrail/fluid"
)

func TestNewCUDABackendUnavailable(t *testing.T) {
	b, err := NewCUDABackend(32, 32, fluid.DefaultParams())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if b != nil {
		t.Error("expected nil backend")
	}
	if DeviceCount() != 0 {
		t.Error("stub should report no devices")
	}
}

func TestNewCUDABackendRejectsEmptyGrid(t *testing.T) {
	_, err := NewCUDABackend(0, 8, fluid.DefaultParams())
	if !errors.Is(err, fluid.ErrInvalidGrid) {
		t.Fatalf("expected ErrInvalidGrid, got %v", err)
	}
}
