package termview

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/smoketrail/fluid"
)

func newTestView(t *testing.T) (*View, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(40, 12)

	p := fluid.DefaultParams()
	p.MaxDT = 0.1
	solver, err := fluid.NewSolver(40, 24, 2, p)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	t.Cleanup(func() {
		solver.Close()
		screen.Fini()
	})
	return New(screen, solver, nil), screen
}

func TestMouseTrailDrawsSmoke(t *testing.T) {
	v, screen := newTestView(t)

	for i := 0; i < 12; i++ {
		v.HandleEvent(tcell.NewEventMouse(10+i, 6, tcell.ButtonNone, tcell.ModNone))
		v.Step(0.05)
	}
	v.Draw()

	lit := 0
	cols, rows := screen.Size()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			r, _, style, _ := screen.GetContent(x, y)
			if r != halfBlock {
				t.Fatalf("cell (%d,%d) holds %q", x, y, r)
			}
			fg, bg, _ := style.Decompose()
			if fg != tcell.NewRGBColor(0, 0, 0) || bg != tcell.NewRGBColor(0, 0, 0) {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("moving the mouse should leave visible smoke")
	}
}

func TestNoMouseNoSmoke(t *testing.T) {
	v, _ := newTestView(t)
	for i := 0; i < 5; i++ {
		v.Step(0.05)
	}
	view := v.solver.View()
	if sum := fluid.InteriorSum(view.Grid, view.Density); sum != 0 {
		t.Errorf("expected empty field without a pointer, got %v", sum)
	}
}

func TestKeys(t *testing.T) {
	v, _ := newTestView(t)

	v.Step(0.05)
	if v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone)) {
		t.Error("c should not quit")
	}
	if v.solver.Frame() != 0 {
		t.Errorf("c should reset the solver, frame %d", v.solver.Frame())
	}

	v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	v.Step(0.05)
	if v.solver.Frame() != 0 {
		t.Error("paused view should not step")
	}

	if !v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("q should quit")
	}
	if !v.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("escape should quit")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	v, _ := newTestView(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, v, 60) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	if v.solver.Frame() == 0 {
		t.Error("Run should have stepped at least once")
	}
}
