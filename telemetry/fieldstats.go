package telemetry

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/smoketrail/fluid"
)

// FieldStats summarises one frame of fluid state.
type FieldStats struct {
	Frame           int64   `csv:"frame"`
	SimTime         float32 `csv:"sim_time"`
	TotalDensity    float64 `csv:"total_density"`
	MaxDensity      float32 `csv:"max_density"`
	MaxDensityX     int     `csv:"max_density_x"`
	MaxDensityY     int     `csv:"max_density_y"`
	MeanTemperature float64 `csv:"mean_temperature"`
	KineticEnergy   float64 `csv:"kinetic_energy"`
	RMSVelocity     float64 `csv:"rms_velocity"`
	MaxDivergence   float32 `csv:"max_divergence"`
	Particles       int     `csv:"particles"`
}

// row returns interior row y of f as a blas32 vector.
func row(g fluid.Grid, f []float32, y int) blas32.Vector {
	start := g.Index(1, y)
	return blas32.Vector{N: g.Width, Inc: 1, Data: f[start : start+g.Width]}
}

// ComputeFieldStats gathers interior statistics for view. Density and
// temperature are non-negative, so their absolute sums are plain sums.
func ComputeFieldStats(view fluid.FieldView) FieldStats {
	g := view.Grid
	var st FieldStats
	var tempSum, speedSq float64
	st.MaxDensity = float32(math.Inf(-1))

	for y := 1; y <= g.Height; y++ {
		d := row(g, view.Density, y)
		st.TotalDensity += float64(blas32.Asum(d))
		if i := blas32.Iamax(d); i >= 0 && d.Data[i] > st.MaxDensity {
			st.MaxDensity = d.Data[i]
			st.MaxDensityX = i + 1
			st.MaxDensityY = y
		}

		tempSum += float64(blas32.Asum(row(g, view.Temperature, y)))

		nu := float64(blas32.Nrm2(row(g, view.U, y)))
		nv := float64(blas32.Nrm2(row(g, view.V, y)))
		speedSq += nu*nu + nv*nv
	}

	cells := float64(g.CellCount())
	st.MeanTemperature = tempSum / cells
	st.KineticEnergy = 0.5 * speedSq
	st.RMSVelocity = math.Sqrt(speedSq / cells)
	st.MaxDivergence = view.MaxDivergence()
	return st
}

// LogValue implements slog.LogValuer for structured logging.
func (s FieldStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("frame", s.Frame),
		slog.Float64("sim_time", float64(s.SimTime)),
		slog.Float64("total_density", s.TotalDensity),
		slog.Float64("max_density", float64(s.MaxDensity)),
		slog.Float64("mean_temperature", s.MeanTemperature),
		slog.Float64("rms_velocity", s.RMSVelocity),
		slog.Float64("max_divergence", float64(s.MaxDivergence)),
		slog.Int("particles", s.Particles),
	)
}
