package fluid

import "gonum.org/v1/gonum/blas/blas32"

// vec wraps a buffer for blas32 routines.
func vec(f []float32) blas32.Vector {
	return blas32.Vector{N: len(f), Inc: 1, Data: f}
}

// Relax approximately solves c*x[i] - a*(sum of the four neighbours) = x0[i]
// for every interior cell, starting from whatever x already holds.
//
// Each sweep visits the rows of a band in order and updates x in place
// (Gauss-Seidel). The rows just outside a band are read from a snapshot taken
// before the sweep, so adjacent bands see each other's seam rows one sweep
// late. With more than one worker the solve is therefore Jacobi-like at band
// seams: it converges to the same answer as the serial solve, just not
// bit-identically and slightly slower per sweep. That is the price of letting
// bands run concurrently without sharing rows.
//
// iterations <= 0 copies x0 into x.
func (s *Solver) Relax(x, x0 []float32, a, c float32, iterations int, kind BoundaryKind) {
	g := s.grid
	if iterations <= 0 {
		blas32.Copy(vec(x0), vec(x))
		ApplyBoundary(g, x, kind)
		return
	}

	tw := g.TotalWidth
	w := g.Width
	invC := 1 / c

	snapshot := func(b, y0, y1 int) {
		copy(s.ghostTop[b], x[(y0-1)*tw:y0*tw])
		copy(s.ghostBottom[b], x[(y1+1)*tw:(y1+2)*tw])
	}
	sweep := func(b, y0, y1 int) {
		relaxRows(x, x0, s.ghostTop[b], s.ghostBottom[b], w, tw, y0, y1, a, invC)
	}

	for it := 0; it < iterations; it++ {
		s.pool.Run(snapshot)
		s.pool.Run(sweep)
		ApplyBoundary(g, x, kind)
	}
}

// relaxRows performs one in-place sweep over rows [y0, y1].
func relaxRows(x, x0, above0, below1 []float32, w, tw, y0, y1 int, a, invC float32) {
	for y := y0; y <= y1; y++ {
		row := y * tw
		above := above0
		if y > y0 {
			above = x[row-tw : row]
		}
		below := below1
		if y < y1 {
			below = x[row+tw : row+2*tw]
		}
		cur := x[row : row+tw]
		src := x0[row : row+tw]
		for i := 1; i <= w; i++ {
			cur[i] = (src[i] + a*(cur[i-1]+cur[i+1]+above[i]+below[i])) * invC
		}
	}
}
