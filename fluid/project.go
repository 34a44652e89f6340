package fluid

// Project removes the divergent part of (u, v) in place, using p and div as
// scratch. Afterwards the central-difference divergence of every interior
// cell is close to zero, limited by the relaxation iteration count.
func (s *Solver) Project(u, v, p, div []float32) {
	g := s.grid
	tw := g.TotalWidth
	w := g.Width
	h := 1 / g.Scale

	s.pool.Run(func(_, y0, y1 int) {
		for y := y0; y <= y1; y++ {
			row := y * tw
			for x := 1; x <= w; x++ {
				i := row + x
				div[i] = -0.5 * h * (u[i+1] - u[i-1] + v[i+tw] - v[i-tw])
				p[i] = 0
			}
		}
	})
	ApplyBoundary(g, div, BoundaryScalar)
	ApplyBoundary(g, p, BoundaryScalar)

	s.Relax(p, div, 1, 4, s.params.Iterations, BoundaryScalar)

	s.pool.Run(func(_, y0, y1 int) {
		for y := y0; y <= y1; y++ {
			row := y * tw
			for x := 1; x <= w; x++ {
				i := row + x
				u[i] -= 0.5 * (p[i+1] - p[i-1]) / h
				v[i] -= 0.5 * (p[i+tw] - p[i-tw]) / h
			}
		}
	})
	ApplyBoundary(g, u, BoundaryVelocityX)
	ApplyBoundary(g, v, BoundaryVelocityY)
}
