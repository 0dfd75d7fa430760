package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// registry is the process-wide append-only list of live engines
// (§4.7), grounded on the teacher's synchronizedMap (goop.go) but
// simplified to a mutex-guarded slice since engines, unlike the
// teacher's named modules, have no string key.
type registry struct {
	mu      sync.Mutex
	engines []*Engine
}

var defaultRegistry = &registry{}

// Register adds e to the process-wide registry. Called by NewEngine;
// exported so an alternate registry-aware constructor in a client
// package could call it too.
func Register(e *Engine) {
	defaultRegistry.mu.Lock()
	defaultRegistry.engines = append(defaultRegistry.engines, e)
	defaultRegistry.mu.Unlock()
}

// snapshot returns a copy of the currently registered engines, so
// bulk operations don't hold the registry lock while calling into an
// engine.
func (r *registry) snapshot() []*Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Engine, len(r.engines))
	copy(out, r.engines)
	return out
}

// KillAll drains the registry, running Clear then Stop on every
// engine concurrently (§4.7). Uses golang.org/x/sync/errgroup for the
// fan-out — the modern-ecosystem equivalent of the teacher's
// synchronizedMap-guarded bulk operations, grounded on the same
// dependency IntuitionAmiga-IntuitionEngine carries (indirectly) for
// coordinated concurrent work.
func KillAll() error {
	engines := defaultRegistry.snapshot()
	g, _ := errgroup.WithContext(context.Background())
	for _, e := range engines {
		e := e
		g.Go(func() error {
			e.Clear()
			e.Stop()
			return nil
		})
	}
	return g.Wait()
}

// ClearAllEngines does everything KillAll does, and additionally
// empties the registry itself. Callers must not reuse any *Engine
// obtained before this call (§4.7).
func ClearAllEngines() error {
	err := KillAll()
	defaultRegistry.mu.Lock()
	defaultRegistry.engines = nil
	defaultRegistry.mu.Unlock()
	return err
}

// ListEngines returns a diagnostic snapshot of the registry, one
// String() line per engine — useful for a REPL's "status" command
// across every live engine rather than just one.
func ListEngines() []string {
	engines := defaultRegistry.snapshot()
	out := make([]string, len(engines))
	for i, e := range engines {
		out[i] = e.String()
	}
	return out
}
