package fluid

import (
	"math"

	"gonum.org/v1/gonum/blas/blas32"
)

// Advect transports src along (u, v) for dt seconds into dest.
//
// Every interior cell traces backwards to (x - dt*u*Scale, y - dt*v*Scale)
// and takes the bilinear sample of src found there, so content moves
// downstream. With conserve set, dest is rescaled so its interior sum matches
// the interior sum of src, which stops repeated bilinear blurring from
// leaking visual mass.
func (s *Solver) Advect(dest, src, u, v []float32, dt float32, kind BoundaryKind, conserve bool) {
	g := s.grid
	tw := g.TotalWidth
	w := g.Width
	dt0 := dt * g.Scale

	s.pool.Run(func(b, y0, y1 int) {
		var srcSum, dstSum float64
		for y := y0; y <= y1; y++ {
			row := y * tw
			fy := float32(y)
			for x := 1; x <= w; x++ {
				i := row + x
				val := bilinear(g, src, float32(x)-dt0*u[i], fy-dt0*v[i])
				dest[i] = val
				if conserve {
					srcSum += float64(src[i])
					dstSum += float64(val)
				}
			}
		}
		s.bandSums[b] = [2]float64{srcSum, dstSum}
	})

	if conserve {
		var srcSum, dstSum float64
		for b := 0; b < s.pool.Bands(); b++ {
			srcSum += s.bandSums[b][0]
			dstSum += s.bandSums[b][1]
		}
		if math.Abs(dstSum) > 1e-12 && srcSum != dstSum {
			blas32.Scal(float32(srcSum/dstSum), vec(dest))
		}
	}

	ApplyBoundary(g, dest, kind)
}
