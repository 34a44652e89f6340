// Package termview renders the overlay in a terminal with tcell. Every
// terminal cell shows two grid rows using an upper half block.
package termview

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/smoketrail/fluid"
	"github.com/pthm-cable/smoketrail/systems"
)

const halfBlock = '▀'

// View drives a CPU solver from terminal mouse input and draws it.
type View struct {
	screen  tcell.Screen
	solver  *fluid.Solver
	palette *systems.Palette
	tracker *systems.CursorTracker
	snap    fluid.Snapshot

	mouseX, mouseY int
	mouseSeen      bool
	paused         bool
}

// New creates a view. The screen must be initialised; a nil palette uses
// the default.
func New(screen tcell.Screen, solver *fluid.Solver, palette *systems.Palette) *View {
	if palette == nil {
		palette = systems.DefaultPalette()
	}
	return &View{
		screen:  screen,
		solver:  solver,
		palette: palette,
		tracker: systems.NewCursorTracker(),
	}
}

// HandleEvent applies one terminal event and reports whether to quit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return true
		case ev.Key() == tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true
			case 'c':
				v.solver.Reset()
			case ' ':
				v.paused = !v.paused
			}
		}
	case *tcell.EventMouse:
		v.mouseX, v.mouseY = ev.Position()
		v.mouseSeen = true
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false
}

// gridPoint maps a terminal cell centre into grid coordinates.
func (v *View) gridPoint(col, row int) (float32, float32) {
	cols, rows := v.screen.Size()
	g := v.solver.Grid()
	if cols < 1 || rows < 1 {
		return 1, 1
	}
	gx := (float32(col)+0.5)*float32(g.Width)/float32(cols) + 0.5
	gy := (float32(row)+0.5)*float32(g.Height)/float32(rows) + 0.5
	return gx, gy
}

// Step advances the solver by dt seconds under the current pointer.
func (v *View) Step(dt float32) {
	if v.paused {
		return
	}
	gx, gy := v.gridPoint(v.mouseX, v.mouseY)
	cursor := v.tracker.Update(gx, gy, dt, v.mouseSeen)
	v.solver.Step(dt, cursor)
}

// Draw paints the latest frame and shows it.
func (v *View) Draw() {
	v.solver.Snapshot(&v.snap)
	g := v.snap.Grid
	cols, rows := v.screen.Size()
	if cols < 1 || rows < 1 {
		return
	}

	for row := 0; row < rows; row++ {
		top := 1 + (2*row)*g.Height/(2*rows)
		bottom := 1 + (2*row+1)*g.Height/(2*rows)
		for col := 0; col < cols; col++ {
			x := 1 + col*g.Width/cols
			style := tcell.StyleDefault.
				Foreground(v.cellColor(g.Index(x, top))).
				Background(v.cellColor(g.Index(x, bottom)))
			v.screen.SetContent(col, row, halfBlock, nil, style)
		}
	}
	v.screen.Show()
}

// cellColor blends the palette colour onto black by its alpha.
func (v *View) cellColor(i int) tcell.Color {
	c := v.palette.At(v.snap.Temperature[i], v.snap.Density[i])
	a := int32(c.A)
	return tcell.NewRGBColor(int32(c.R)*a/255, int32(c.G)*a/255, int32(c.B)*a/255)
}

// Run polls events on a separate goroutine and steps at fps until ctx is
// done or the user quits.
func Run(ctx context.Context, v *View, fps int) error {
	if fps < 1 {
		fps = 30
	}
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)

	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if v.HandleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			dt := float32(now.Sub(last).Seconds())
			last = now
			v.Step(dt)
			v.Draw()
		}
	}
}
