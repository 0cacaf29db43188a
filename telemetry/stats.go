// Package telemetry collects and exports simulation statistics.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	CellCount   int `csv:"cells"`
	AliveCount  int `csv:"alive"`
	ColonyCount int `csv:"colonies"`
	BoundCells  int `csv:"bound_cells"`

	// Binding events during the window
	BindAttempts      int     `csv:"bind_attempts"`
	BindSuccesses     int     `csv:"bind_successes"`
	BindRejections    int     `csv:"bind_rejections"`
	BindExhaustions   int     `csv:"bind_exhaustions"`
	ColoniesFormed    int     `csv:"colonies_formed"`
	ColoniesDissolved int     `csv:"colonies_dissolved"`
	BindSuccessRate   float64 `csv:"bind_success_rate"`

	// Colony size distribution (sampled at window end)
	ColonySizeMean float64 `csv:"colony_size_mean"`
	ColonySizeStd  float64 `csv:"colony_size_std"`
	ColonySizeP50  float64 `csv:"colony_size_p50"`
	ColonySizeP90  float64 `csv:"colony_size_p90"`
	ColonySizeMax  int     `csv:"colony_size_max"`

	// ATP distribution (sampled at window end)
	ATPMean float64 `csv:"atp_mean"`
	ATPP10  float64 `csv:"atp_p10"`
	ATPP50  float64 `csv:"atp_p50"`
	ATPP90  float64 `csv:"atp_p90"`

	// Nutrient field
	TotalGlucose float64 `csv:"total_glucose"`

	// Lifecycle
	Births int `csv:"births"`
	Deaths int `csv:"deaths"`
}

// DistStats summarizes a sample distribution.
type DistStats struct {
	Mean, Std, P10, P50, P90 float64
}

// ComputeDistStats summarizes values. The slice is sorted in place.
func ComputeDistStats(values []float64) DistStats {
	if len(values) == 0 {
		return DistStats{}
	}
	sort.Float64s(values)
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}
	return DistStats{
		Mean: mean,
		Std:  std,
		P10:  stat.Quantile(0.10, stat.Empirical, values, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, values, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, values, nil),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("cells", s.CellCount),
		slog.Int("alive", s.AliveCount),
		slog.Int("colonies", s.ColonyCount),
		slog.Int("bound_cells", s.BoundCells),
		slog.Int("bind_attempts", s.BindAttempts),
		slog.Int("bind_successes", s.BindSuccesses),
		slog.Int("bind_rejections", s.BindRejections),
		slog.Int("bind_exhaustions", s.BindExhaustions),
		slog.Int("colonies_formed", s.ColoniesFormed),
		slog.Int("colonies_dissolved", s.ColoniesDissolved),
		slog.Float64("bind_success_rate", s.BindSuccessRate),
		slog.Float64("colony_size_mean", s.ColonySizeMean),
		slog.Float64("colony_size_p90", s.ColonySizeP90),
		slog.Int("colony_size_max", s.ColonySizeMax),
		slog.Float64("atp_mean", s.ATPMean),
		slog.Float64("total_glucose", s.TotalGlucose),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
	)
}
