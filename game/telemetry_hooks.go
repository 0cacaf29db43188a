package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
	"github.com/microvita/microcosm/telemetry"
)

// flushTelemetry emits a stats window when enough sim time has passed.
func (g *Game) flushTelemetry() {
	window := g.cfg.Telemetry.StatsWindow
	if window <= 0 {
		return
	}
	ticksPerWindow := int32(window / float64(g.cfg.Derived.DT32))
	if ticksPerWindow <= 0 || g.tick-g.windowStart < ticksPerWindow {
		return
	}

	stats := telemetry.WindowStats{
		WindowStartTick: g.windowStart,
		WindowEndTick:   g.tick,
		SimTimeSec:      g.simTime,
		TotalGlucose:    float64(g.field.Total()),
	}
	g.windowStart = g.tick

	g.sampleWorld(&stats)
	g.collector.Drain(&stats)

	slog.Info("window stats", "stats", stats)
	if err := g.output.WriteTelemetry(stats); err != nil {
		slog.Error("telemetry write failed", "err", err)
	}
}

// sampleWorld fills the population and distribution fields of a stats
// window from the current world state.
func (g *Game) sampleWorld(stats *telemetry.WindowStats) {
	var atp []float64

	filter := ecs.NewFilter2[components.Health, components.CompoundStorage](g.world)
	query := filter.Query()
	for query.Next() {
		health, storage := query.Get()
		stats.CellCount++
		if health.Alive {
			stats.AliveCount++
			atp = append(atp, float64(storage.Amount(components.CompoundATP)))
		}
		if g.registry.InColony(query.Entity()) {
			stats.BoundCells++
		}
	}

	var sizes []float64
	colonyFilter := ecs.NewFilter1[components.MicrobeColony](g.world)
	colonyQuery := colonyFilter.Query()
	for colonyQuery.Next() {
		colony := colonyQuery.Get()
		stats.ColonyCount++
		sizes = append(sizes, float64(colony.Size()))
		if colony.Size() > stats.ColonySizeMax {
			stats.ColonySizeMax = colony.Size()
		}
	}

	atpDist := telemetry.ComputeDistStats(atp)
	stats.ATPMean = atpDist.Mean
	stats.ATPP10 = atpDist.P10
	stats.ATPP50 = atpDist.P50
	stats.ATPP90 = atpDist.P90

	sizeDist := telemetry.ComputeDistStats(sizes)
	stats.ColonySizeMean = sizeDist.Mean
	stats.ColonySizeStd = sizeDist.Std
	stats.ColonySizeP50 = sizeDist.P50
	stats.ColonySizeP90 = sizeDist.P90
}
