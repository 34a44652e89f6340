package fluid

import (
	"errors"
	"testing"
)

func TestNewGrid(t *testing.T) {
	g, err := NewGrid(32, 16)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if g.TotalWidth != 34 || g.TotalHeight != 18 {
		t.Errorf("expected total 34x18, got %dx%d", g.TotalWidth, g.TotalHeight)
	}
	if g.Size() != 34*18 {
		t.Errorf("expected size %d, got %d", 34*18, g.Size())
	}
	if g.CellCount() != 32*16 {
		t.Errorf("expected %d interior cells, got %d", 32*16, g.CellCount())
	}
	if g.Index(3, 2) != 2*34+3 {
		t.Errorf("unexpected index %d", g.Index(3, 2))
	}
}

func TestNewGridRejectsEmpty(t *testing.T) {
	for _, tc := range []struct{ w, h int }{{0, 10}, {10, 0}, {-1, 4}} {
		if _, err := NewGrid(tc.w, tc.h); !errors.Is(err, ErrInvalidGrid) {
			t.Errorf("%dx%d: expected ErrInvalidGrid, got %v", tc.w, tc.h, err)
		}
	}
}

func TestGridHalo(t *testing.T) {
	g, _ := NewGrid(4, 3)
	if !g.IsHalo(0, 2) || !g.IsHalo(5, 2) || !g.IsHalo(2, 0) || !g.IsHalo(2, 4) {
		t.Error("expected ring cells to be halo")
	}
	if g.IsHalo(1, 1) || g.IsHalo(4, 3) {
		t.Error("expected interior corners not to be halo")
	}
	if !g.Contains(0.5, 3.5) || g.Contains(0.4, 1) || g.Contains(4.6, 1) {
		t.Error("Contains boundary mismatch")
	}
}

func TestFieldSwap(t *testing.T) {
	g, _ := NewGrid(4, 4)
	f := NewField(g)
	f.Current()[5] = 1
	f.Swap()
	if f.Previous()[5] != 1 || f.Current()[5] != 0 {
		t.Error("swap should exchange slots without copying")
	}
	f.Load(f.Previous())
	if f.Current()[5] != 1 {
		t.Error("load should copy into current slot")
	}
	f.Clear()
	if f.Current()[5] != 0 || f.Previous()[5] != 0 {
		t.Error("clear should zero both slots")
	}
}

func TestApplyBoundaryScalar(t *testing.T) {
	g, _ := NewGrid(3, 3)
	f := make([]float32, g.Size())
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			f[g.Index(x, y)] = float32(10*y + x)
		}
	}
	ApplyBoundary(g, f, BoundaryScalar)

	if f[g.Index(0, 2)] != f[g.Index(1, 2)] {
		t.Errorf("left halo should copy interior, got %f", f[g.Index(0, 2)])
	}
	if f[g.Index(2, 4)] != f[g.Index(2, 3)] {
		t.Errorf("bottom halo should copy interior, got %f", f[g.Index(2, 4)])
	}
	want := 0.5 * (f[g.Index(1, 0)] + f[g.Index(0, 1)])
	if f[g.Index(0, 0)] != want {
		t.Errorf("corner should average neighbours: got %f want %f", f[g.Index(0, 0)], want)
	}
}

func TestApplyBoundaryVelocity(t *testing.T) {
	g, _ := NewGrid(3, 3)
	u := make([]float32, g.Size())
	v := make([]float32, g.Size())
	for i := range u {
		u[i] = 2
		v[i] = 3
	}
	ApplyBoundary(g, u, BoundaryVelocityX)
	ApplyBoundary(g, v, BoundaryVelocityY)

	if u[g.Index(0, 2)] != -2 || u[g.Index(4, 2)] != -2 {
		t.Error("u should be negated on left/right walls")
	}
	if u[g.Index(2, 0)] != 2 || u[g.Index(2, 4)] != 2 {
		t.Error("u should be copied on top/bottom walls")
	}
	if v[g.Index(2, 0)] != -3 || v[g.Index(2, 4)] != -3 {
		t.Error("v should be negated on top/bottom walls")
	}
	if v[g.Index(0, 2)] != 3 {
		t.Error("v should be copied on left/right walls")
	}
	if u[g.Index(0, 0)] != 0 {
		t.Errorf("u corner should average +2 and -2, got %f", u[g.Index(0, 0)])
	}
}

func TestBoundaryKindString(t *testing.T) {
	if BoundaryVelocityY.String() != "velocity_y" || BoundaryKind(9).String() != "unknown" {
		t.Error("unexpected BoundaryKind names")
	}
}
