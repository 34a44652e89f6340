// Package components defines ECS components for the overlay particles.
package components

// Position is a particle's location in halo-inclusive grid coordinates.
type Position struct {
	X, Y float32
}

// Velocity is a particle's velocity in cells per second.
type Velocity struct {
	X, Y float32
}
