package game

import (
	"log/slog"

	"github.com/pthm-cable/smoketrail/fluid"
	"github.com/pthm-cable/smoketrail/telemetry"
)

// sampleTelemetry records field stats and perf windows on their configured
// cadences.
func (g *Game) sampleTelemetry(view fluid.FieldView) {
	tc := g.cfg.Telemetry

	if tc.StatsEvery > 0 && g.frame%uint64(tc.StatsEvery) == 0 {
		stats := telemetry.ComputeFieldStats(view)
		stats.Frame = int64(g.frame)
		stats.SimTime = g.simTime
		stats.Particles = g.particles.Count()
		g.lastStats = stats

		if g.opts.LogStats {
			slog.Info("fields", "stats", stats)
		}
		if g.outputManager != nil {
			if err := g.outputManager.WriteFields(stats); err != nil {
				slog.Error("failed to write field stats", "error", err)
			}
		}
	}

	if tc.LogEvery > 0 && g.frame%uint64(tc.LogEvery) == 0 {
		perfStats := g.perf.Stats()
		if g.opts.LogStats {
			perfStats.LogStats()
		}
		if g.outputManager != nil {
			if err := g.outputManager.WritePerf(perfStats, int64(g.frame)); err != nil {
				slog.Error("failed to write perf", "error", err)
			}
		}
	}
}

func logStepError(backend string, frame uint64, err error) {
	slog.Error("backend step failed", "backend", backend, "frame", frame, "error", err)
}
