package components

// Tint is a particle's colour, recomputed each frame from the local fields.
type Tint struct {
	R, G, B, A uint8
}

// Life tracks when a particle was spawned and how long it may live, both in
// simulation seconds.
type Life struct {
	Born float32
	TTL  float32
	Size float32
}

// Age returns the seconds elapsed since Born at simulation time now.
func (l Life) Age(now float32) float32 {
	return now - l.Born
}

// Expired reports whether the particle has outlived its TTL.
func (l Life) Expired(now float32) bool {
	return now-l.Born > l.TTL
}

// Fraction returns age/TTL clamped to [0, 1].
func (l Life) Fraction(now float32) float32 {
	if l.TTL <= 0 {
		return 1
	}
	f := (now - l.Born) / l.TTL
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
