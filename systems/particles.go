package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/smoketrail/components"
	"github.com/pthm-cable/smoketrail/config"
	"github.com/pthm-cable/smoketrail/fluid"
)

// FieldSampler provides fluid state at grid positions.
// fluid.FieldView implements it.
type FieldSampler interface {
	SampleVelocity(x, y float32) (float32, float32)
	SampleDensity(x, y float32) float32
	SampleTemperature(x, y float32) float32
	Bounds() (float32, float32)
}

// ParticleConfig holds the overlay tunables in grid units.
type ParticleConfig struct {
	Lifetime    float32 // seconds
	MaxPerFrame int
	MaxCount    int
	Deadband    float32 // cursor speed in cells/s below which nothing spawns
	Drag        float32 // blend rate toward the sampled flow, per second
	Jitter      float32 // spawn scatter radius in cells
	Size        float32
	Scale       float32 // grid scale, cells per unit velocity per second
	Seed        int64
}

// ParticleConfigFromConfig converts the loaded configuration.
func ParticleConfigFromConfig(cfg *config.Config) ParticleConfig {
	return ParticleConfig{
		Lifetime:    float32(cfg.Particles.Lifetime),
		MaxPerFrame: cfg.Particles.MaxPerFrame,
		MaxCount:    cfg.Particles.MaxCount,
		Deadband:    float32(cfg.Particles.Deadband),
		Drag:        float32(cfg.Particles.Drag),
		Jitter:      float32(cfg.Particles.Jitter),
		Size:        float32(cfg.Particles.Size),
		Scale:       float32(cfg.Grid.Scale),
		Seed:        cfg.Particles.Seed,
	}
}

// ParticleSystem advects short-lived tracer particles through the fluid.
// Particles live in an ECS world; time is always the simulation clock.
type ParticleSystem struct {
	world  *ecs.World
	mapper *ecs.Map4[components.Position, components.Velocity, components.Tint, components.Life]
	filter *ecs.Filter4[components.Position, components.Velocity, components.Tint, components.Life]

	cfg     ParticleConfig
	palette *Palette
	rng     *rand.Rand

	count    int
	toRemove []ecs.Entity
}

// NewParticleSystem creates an empty overlay.
func NewParticleSystem(cfg ParticleConfig, palette *Palette) *ParticleSystem {
	if palette == nil {
		palette = DefaultPalette()
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	world := ecs.NewWorld()
	return &ParticleSystem{
		world:   world,
		mapper:  ecs.NewMap4[components.Position, components.Velocity, components.Tint, components.Life](world),
		filter:  ecs.NewFilter4[components.Position, components.Velocity, components.Tint, components.Life](world),
		cfg:     cfg,
		palette: palette,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
}

// SetConfig replaces the tunables. Live particles keep their TTL.
func (s *ParticleSystem) SetConfig(cfg ParticleConfig) {
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	s.cfg = cfg
}

// Count returns the number of live particles.
func (s *ParticleSystem) Count() int { return s.count }

// Update spawns particles under a fast-moving cursor, moves every particle
// with the sampled flow, recolours it and retires the expired ones.
// It returns the number spawned this frame.
func (s *ParticleSystem) Update(dt, now float32, cursor fluid.Cursor, field FieldSampler) int {
	spawned := s.spawn(now, cursor)

	w, h := field.Bounds()
	k := clamp01(s.cfg.Drag * dt)
	step := dt * s.cfg.Scale

	s.toRemove = s.toRemove[:0]
	query := s.filter.Query()
	for query.Next() {
		pos, vel, tint, life := query.Get()

		if life.Expired(now) {
			s.toRemove = append(s.toRemove, query.Entity())
			continue
		}

		fu, fv := field.SampleVelocity(pos.X, pos.Y)
		vel.X += (fu - vel.X) * k
		vel.Y += (fv - vel.Y) * k
		pos.X += vel.X * step
		pos.Y += vel.Y * step

		if pos.X < 0.5 || pos.Y < 0.5 || pos.X > w+0.5 || pos.Y > h+0.5 {
			s.toRemove = append(s.toRemove, query.Entity())
			continue
		}

		*tint = s.palette.Tint(
			field.SampleTemperature(pos.X, pos.Y),
			field.SampleDensity(pos.X, pos.Y),
			life.Fraction(now),
		)
	}

	// Remove after the query has finished
	for _, e := range s.toRemove {
		s.world.RemoveEntity(e)
	}
	s.count -= len(s.toRemove)

	return spawned
}

func (s *ParticleSystem) spawn(now float32, cursor fluid.Cursor) int {
	if !cursor.Active || cursor.Speed() <= s.cfg.Deadband {
		return 0
	}
	n := min(s.cfg.MaxPerFrame, s.cfg.MaxCount-s.count)
	for i := 0; i < n; i++ {
		// uniform scatter over a disc
		r := s.cfg.Jitter * float32(math.Sqrt(s.rng.Float64()))
		a := s.rng.Float64() * 2 * math.Pi
		pos := components.Position{
			X: cursor.X + r*float32(math.Cos(a)),
			Y: cursor.Y + r*float32(math.Sin(a)),
		}
		vel := components.Velocity{
			X: cursor.VX * 0.5 * (0.8 + 0.4*s.rng.Float32()),
			Y: cursor.VY * 0.5 * (0.8 + 0.4*s.rng.Float32()),
		}
		tint := s.palette.Tint(0, 1, 0)
		life := components.Life{
			Born: now,
			TTL:  s.cfg.Lifetime * (0.75 + 0.5*s.rng.Float32()),
			Size: s.cfg.Size * (0.7 + 0.6*s.rng.Float32()),
		}
		s.mapper.NewEntity(&pos, &vel, &tint, &life)
	}
	if n > 0 {
		s.count += n
		return n
	}
	return 0
}

// Each calls fn for every live particle.
func (s *ParticleSystem) Each(fn func(pos components.Position, tint components.Tint, life components.Life)) {
	query := s.filter.Query()
	for query.Next() {
		pos, _, tint, life := query.Get()
		fn(*pos, *tint, *life)
	}
}

// Clear removes every particle.
func (s *ParticleSystem) Clear() {
	s.toRemove = s.toRemove[:0]
	query := s.filter.Query()
	for query.Next() {
		s.toRemove = append(s.toRemove, query.Entity())
	}
	for _, e := range s.toRemove {
		s.world.RemoveEntity(e)
	}
	s.count = 0
}
