package game

import (
	"runtime"
	"sync"

	"github.com/microvita/microcosm/components"
	"github.com/microvita/microcosm/systems"
)

// parallelThreshold is the minimum entity count to use parallel
// processing. Below this, single-threaded is faster due to goroutine
// overhead.
const parallelThreshold = 64

// workChunk is a range of snapshot indices for one worker.
type workChunk struct {
	start, end int
	dt         float32
}

// parallelState runs the binding coordinator across a persistent
// worker pool. Workers write only the invoking entity's own
// components; everything cross-entity goes through the command
// recorder and is applied at the synchronization point.
type parallelState struct {
	updates    []systems.BindingUpdate
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState() *parallelState {
	return &parallelState{
		numWorkers: runtime.GOMAXPROCS(0),
		updates:    make([]systems.BindingUpdate, 0, 512),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *parallelState) worker(g *Game) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.computeChunk(chunk.start, chunk.end, chunk.dt)
			p.doneChan <- struct{}{}
		}
	}
}

// runBindingParallel executes one coordinator tick in three phases:
// snapshot the eligible entities, run the coordinator in parallel,
// then apply all committed commands single-threaded.
func (g *Game) runBindingParallel(dt float32) {
	// Phase A: snapshot (single-threaded). Live component pointers are
	// safe to hand out because each entity lands in exactly one chunk
	// and no other system runs concurrently.
	g.parallel.updates = g.parallel.updates[:0]

	query := g.bindFilter.Query()
	for query.Next() {
		ctrl, health, storage, organelles, props, collisions := query.Get()
		if ctrl.State == components.StateNormal {
			continue
		}
		entity := query.Entity()
		g.parallel.updates = append(g.parallel.updates, systems.BindingUpdate{
			Entity:     entity,
			Control:    ctrl,
			Health:     health,
			Storage:    storage,
			Species:    g.registry.Species.Get(entity),
			Organelles: organelles,
			CellProps:  props,
			ShapeData:  g.registry.ShapeData.Get(entity),
			Collisions: collisions,
			Sound:      g.registry.Sound.Get(entity),
			Pos:        g.registry.Pos.Get(entity),
			Rot:        g.registry.Rot.Get(entity),
		})
	}

	n := len(g.parallel.updates)
	if n > 0 {
		// Phase B: compute.
		if n < parallelThreshold {
			g.computeChunk(0, n, dt)
		} else {
			g.computeParallel(n, dt)
		}
	}

	// Phase C: apply committed commands (single-threaded, preserves
	// determinism). This also clears the per-tick fusion claims.
	g.registry.ApplyPending()
}

// computeParallel dispatches work to the worker pool.
func (g *Game) computeParallel(n int, dt float32) {
	if !g.parallel.running {
		g.parallel.startWorkers(g)
	}

	numWorkers := g.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	dispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		g.parallel.workChan <- workChunk{start: start, end: end, dt: dt}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-g.parallel.doneChan
	}
}

// computeChunk runs the coordinator over a snapshot range.
func (g *Game) computeChunk(i0, i1 int, dt float32) {
	for i := i0; i < i1; i++ {
		u := &g.parallel.updates[i]
		if u.Species == nil || u.ShapeData == nil || u.Sound == nil || u.Pos == nil || u.Rot == nil {
			continue
		}
		g.coordinator.Update(u, dt)
	}
}

// stopParallelWorkers should be called when shutting down the game.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}
