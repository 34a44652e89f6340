package fluid

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Cursor is the pointer state for one frame, in halo-inclusive grid
// coordinates (the interior spans [1, Width] x [1, Height]).
type Cursor struct {
	X, Y   float32
	VX, VY float32 // cells per second
	Active bool    // pointer is over the overlay
}

// Speed returns the cursor speed in cells per second.
func (c Cursor) Speed() float32 {
	return float32(math.Hypot(float64(c.VX), float64(c.VY)))
}

// Sources accumulates the additive per-cell amounts for one frame and
// carries the cursor state that outlives a frame. Every backend builds its
// sources here, so persistence, wind and buoyancy match across devices.
type Sources struct {
	U, V        []float32
	Density     []float32
	Temperature []float32

	grid  Grid
	noise opensimplex.Noise32
	seed  int64

	lingering Cursor
	linger    float32 // seconds of persistence left
}

// NewSources allocates zeroed buffers for g with wind noise from seed.
func NewSources(g Grid, seed int64) *Sources {
	n := g.Size()
	return &Sources{
		U:           make([]float32, n),
		V:           make([]float32, n),
		Density:     make([]float32, n),
		Temperature: make([]float32, n),
		grid:        g,
		noise:       opensimplex.New32(seed),
		seed:        seed,
	}
}

// Grid returns the grid the buffers were sized for.
func (s *Sources) Grid() Grid { return s.grid }

// Clear zeroes the buffers.
func (s *Sources) Clear() {
	clear(s.U)
	clear(s.V)
	clear(s.Density)
	clear(s.Temperature)
}

// Reset clears the buffers and forgets the lingering disturbance.
func (s *Sources) Reset() {
	s.Clear()
	s.linger = 0
}

// Lingering returns the persistence left, in seconds.
func (s *Sources) Lingering() float32 { return s.linger }

// Build queues the cursor, buoyancy and wind sources for one frame of dt
// seconds. temperature is read for buoyancy; simTime drives the wind noise.
// Row kernels run on pool, or on the caller when pool is nil.
func (s *Sources) Build(p *Params, c Cursor, temperature []float32, simTime, dt float32, pool *Pool) {
	if p.WindSeed != s.seed {
		s.noise = opensimplex.New32(p.WindSeed)
		s.seed = p.WindSeed
	}
	s.injectCursor(p, c, dt)
	s.injectBuoyancy(p, temperature, dt, pool)
	s.injectWind(p, simTime, dt)
}

func (s *Sources) forRows(pool *Pool, k Kernel) {
	if pool == nil {
		k(0, 1, s.grid.Height)
		return
	}
	pool.Run(k)
}

// AddDensitySource queues amount of density at interior cell (x, y) for the
// next step. Halo and out-of-range cells are ignored.
func (s *Solver) AddDensitySource(x, y int, amount float32) {
	if i, ok := s.interiorIndex(x, y); ok {
		s.src.Density[i] += amount
	}
}

// AddTemperatureSource queues amount of temperature at interior cell (x, y).
func (s *Solver) AddTemperatureSource(x, y int, amount float32) {
	if i, ok := s.interiorIndex(x, y); ok {
		s.src.Temperature[i] += amount
	}
}

// AddVelocitySource queues a velocity impulse at interior cell (x, y).
func (s *Solver) AddVelocitySource(x, y int, du, dv float32) {
	if i, ok := s.interiorIndex(x, y); ok {
		s.src.U[i] += du
		s.src.V[i] += dv
	}
}

func (s *Solver) interiorIndex(x, y int) (int, bool) {
	g := s.grid
	if x < 1 || y < 1 || x > g.Width || y > g.Height {
		return 0, false
	}
	return g.Index(x, y), true
}

// footprint calls fn for every interior cell touched by a brush centred at
// (cx, cy): weight 1 within width, smoothstep falloff across fade beyond it.
// A brush narrower than a cell still marks the nearest cell.
func footprint(g Grid, cx, cy, width, fade float32, fn func(i int, w float32)) {
	reach := width + fade
	if reach < 0.5 {
		x := int(cx + 0.5)
		y := int(cy + 0.5)
		if x >= 1 && y >= 1 && x <= g.Width && y <= g.Height {
			fn(g.Index(x, y), 1)
		}
		return
	}

	x0 := max(1, int(math.Floor(float64(cx-reach))))
	x1 := min(g.Width, int(math.Ceil(float64(cx+reach))))
	y0 := max(1, int(math.Floor(float64(cy-reach))))
	y1 := min(g.Height, int(math.Ceil(float64(cy+reach))))

	for y := y0; y <= y1; y++ {
		dy := float32(y) - cy
		for x := x0; x <= x1; x++ {
			dx := float32(x) - cx
			d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
			var w float32
			switch {
			case d <= width:
				w = 1
			case d < reach:
				t := (d - width) / fade
				w = 1 - t*t*(3-2*t)
			default:
				continue
			}
			fn(g.Index(x, y), w)
		}
	}
}

// injectCursor writes the cursor brush into the source buffers. Below the
// deadband the last disturbance keeps injecting, scaled down linearly over
// Persistence seconds.
func (s *Sources) injectCursor(p *Params, c Cursor, dt float32) {
	var strength float32

	switch {
	case c.Active && c.Speed() > p.Deadband:
		s.lingering = c
		s.linger = p.Persistence
		strength = 1
	case s.linger > 0 && p.Persistence > 0:
		strength = s.linger / p.Persistence
		c = s.lingering
		s.linger -= dt
	default:
		return
	}

	k := strength * dt
	footprint(s.grid, c.X, c.Y, p.SourceWidth, p.SourceEdgeFade, func(i int, w float32) {
		s.Density[i] += p.SourceStrength * w * k
		s.Temperature[i] += p.CursorTemperature * w * k
		s.U[i] += p.DragScale * c.VX * w * k
		s.V[i] += p.DragScale * c.VY * w * k
	})
}

// injectBuoyancy pushes cells warmer than the ambient temperature up
// (negative y). Cells at or below ambient feel no force, so a field at rest
// stays at rest whatever the ambient offset.
func (s *Sources) injectBuoyancy(p *Params, t []float32, dt float32, pool *Pool) {
	if p.Buoyancy == 0 {
		return
	}
	g := s.grid
	tw := g.TotalWidth
	w := g.Width
	k := p.Buoyancy * dt
	ambient := p.AmbientTemperature

	s.forRows(pool, func(_, y0, y1 int) {
		for y := y0; y <= y1; y++ {
			row := y * tw
			for x := 1; x <= w; x++ {
				i := row + x
				if excess := t[i] - ambient; excess > 0 {
					s.V[i] -= k * excess
				}
			}
		}
	})
}

// injectWind drives a horizontal band along the bottom rows. Turbulence is
// simplex noise over position and simulation time, so the band is
// reproducible for a given seed and frame sequence.
func (s *Sources) injectWind(p *Params, t, dt float32) {
	if p.WindSpeed == 0 || p.WindWidth <= 0 {
		return
	}
	g := s.grid
	tw := g.TotalWidth
	rows := min(g.Height, int(math.Ceil(float64(p.WindWidth))))
	top := g.Height - rows + 1

	for y := top; y <= g.Height; y++ {
		// strongest on the bottom row
		fade := float32(y-top+1) / float32(rows)
		row := y * tw
		fy := float32(y) * 0.15
		for x := 1; x <= g.Width; x++ {
			fx := float32(x) * 0.15
			n := s.noise.Eval2(fx+t*0.8, fy)
			m := s.noise.Eval2(fx, fy+t*0.8+31.7)
			i := row + x
			s.U[i] += p.WindSpeed * (1 + p.WindTurbulence*n) * fade * dt
			s.V[i] += p.WindSpeed * p.WindTurbulence * 0.5 * m * fade * dt
		}
	}
}

// addSource adds the queued amounts into x over the interior.
func (s *Solver) addSource(x, src []float32) {
	tw := s.grid.TotalWidth
	w := s.grid.Width
	s.pool.Run(func(_, y0, y1 int) {
		for y := y0; y <= y1; y++ {
			row := y * tw
			for i := row + 1; i <= row+w; i++ {
				x[i] += src[i]
			}
		}
	})
}
