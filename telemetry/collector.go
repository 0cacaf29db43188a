package telemetry

import "sync/atomic"

// Collector accumulates binding and lifecycle events between stats
// windows. Counters are atomic because fusion events fire from
// parallel workers.
type Collector struct {
	bindAttempts      atomic.Int64
	bindSuccesses     atomic.Int64
	bindRejections    atomic.Int64
	bindExhaustions   atomic.Int64
	coloniesFormed    atomic.Int64
	coloniesDissolved atomic.Int64
	births            atomic.Int64
	deaths            atomic.Int64
}

// NewCollector creates an empty event collector.
func NewCollector() *Collector {
	return &Collector{}
}

// BindAttempt records a fusion attempt.
func (c *Collector) BindAttempt() { c.bindAttempts.Add(1) }

// BindSuccess records a staged fusion.
func (c *Collector) BindSuccess() { c.bindSuccesses.Add(1) }

// BindRejection records a fusion rejected by a structural or data check.
func (c *Collector) BindRejection() { c.bindRejections.Add(1) }

// BindExhaustion records a forced exit from binding mode due to ATP.
func (c *Collector) BindExhaustion() { c.bindExhaustions.Add(1) }

// ColonyFormed records a brand-new colony.
func (c *Collector) ColonyFormed() { c.coloniesFormed.Add(1) }

// ColonyDissolved records a dissolved colony.
func (c *Collector) ColonyDissolved() { c.coloniesDissolved.Add(1) }

// Birth records a cell spawn.
func (c *Collector) Birth() { c.births.Add(1) }

// Death records a cell death.
func (c *Collector) Death() { c.deaths.Add(1) }

// Drain moves the accumulated window counts into stats and resets the
// counters.
func (c *Collector) Drain(stats *WindowStats) {
	stats.BindAttempts = int(c.bindAttempts.Swap(0))
	stats.BindSuccesses = int(c.bindSuccesses.Swap(0))
	stats.BindRejections = int(c.bindRejections.Swap(0))
	stats.BindExhaustions = int(c.bindExhaustions.Swap(0))
	stats.ColoniesFormed = int(c.coloniesFormed.Swap(0))
	stats.ColoniesDissolved = int(c.coloniesDissolved.Swap(0))
	stats.Births = int(c.births.Swap(0))
	stats.Deaths = int(c.deaths.Swap(0))
	if stats.BindAttempts > 0 {
		stats.BindSuccessRate = float64(stats.BindSuccesses) / float64(stats.BindAttempts)
	}
}
