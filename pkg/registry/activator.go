package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wehubfusion/Daedalus/pkg/discovery"
	"github.com/wehubfusion/Daedalus/pkg/graph"
	"github.com/wehubfusion/Daedalus/pkg/lifecycle"
	"github.com/wehubfusion/Daedalus/pkg/unit"
	"go.uber.org/zap"
)

// pendingUnit is a candidate that survived adaptation and is waiting for
// dependency-ordered activation.
type pendingUnit struct {
	candidate  discovery.Candidate
	instance   unit.Unit
	descriptor *unit.Descriptor
}

// activationResult is what one activation pass produced.
type activationResult struct {
	loaded   map[string]*LoadedUnit
	disabled map[string]*LoadedUnit
}

// activate drains the dependency graph into initialized units using a ready
// queue with bounded requeueing. Candidates whose dependencies are not yet
// loaded go back to the end of the queue; a full cycle through the queue that
// loads nothing means the remainder is unsatisfiable (missing dependency or
// cycle) and requeueing stops. Everything left over is quarantined with a
// diagnostic instead of aborting the load.
func activate(ctx context.Context, pendings map[string]*pendingUnit, g *graph.DependencyGraph, logger *zap.Logger) activationResult {
	result := activationResult{
		loaded:   make(map[string]*LoadedUnit),
		disabled: make(map[string]*LoadedUnit),
	}

	// Seed with every unit that declares no dependencies, in stable order.
	var queue []string
	for id, p := range pendings {
		if len(p.descriptor.Dependencies) == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	sinceProgress := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if _, done := result.loaded[id]; done {
			continue
		}
		if _, quarantined := result.disabled[id]; quarantined {
			continue
		}
		p, known := pendings[id]
		if !known {
			continue
		}

		if !depsSatisfied(p.descriptor.Dependencies, result.loaded) {
			// Requeue to the tail; out-of-order discovery converges as long
			// as some unit still loads each full cycle.
			queue = append(queue, id)
			sinceProgress++
			if sinceProgress >= len(queue) {
				break
			}
			continue
		}
		sinceProgress = 0

		lu := newLoadedUnit(p.candidate, p.descriptor, p.instance)
		if err := initializeUnit(ctx, lu); err != nil {
			lu.diagnostic = fmt.Sprintf("initialize failed: %v", err)
			lu.tracker.Disable()
			result.disabled[id] = lu
			logger.Error("unit failed to initialize, quarantined",
				zap.String("unit", id), zap.Error(err))
			continue
		}
		result.loaded[id] = lu
		logger.Debug("unit activated", zap.String("unit", id))

		// Wake every dependent that is not already loaded.
		for _, dep := range g.Dependents(id) {
			if _, done := result.loaded[dep]; !done {
				queue = append(queue, dep)
			}
		}
	}

	// Whatever never loaded is unsatisfiable: missing dependency or cycle.
	for id, p := range pendings {
		if _, done := result.loaded[id]; done {
			continue
		}
		if _, quarantined := result.disabled[id]; quarantined {
			continue
		}
		lu := newLoadedUnit(p.candidate, p.descriptor, p.instance)
		lu.diagnostic = unsatisfiableDiagnostic(p.descriptor.Dependencies, result.loaded, pendings)
		lu.tracker.Disable()
		result.disabled[id] = lu
		logger.Warn("unit quarantined",
			zap.String("unit", id), zap.String("reason", lu.diagnostic))
	}

	return result
}

// initializeUnit walks the unit through UNLOADED→LOADED→INITIALIZED, running
// its Initialize hook if it has one. A panicking hook is treated as an
// initialization failure.
func initializeUnit(ctx context.Context, lu *LoadedUnit) (err error) {
	if terr := lu.tracker.Transition(lifecycle.StateLoaded); terr != nil {
		return terr
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("initialize panicked: %v", r)
		}
	}()
	if init, ok := lu.instance.(unit.Initializer); ok {
		if err := init.Initialize(ctx); err != nil {
			return err
		}
	}
	return lu.tracker.Transition(lifecycle.StateInitialized)
}

func depsSatisfied(deps []string, loaded map[string]*LoadedUnit) bool {
	for _, dep := range deps {
		if _, ok := loaded[dep]; !ok {
			return false
		}
	}
	return true
}

// unsatisfiableDiagnostic explains why a unit could not activate: each
// missing dependency is reported as unknown or as unresolved (cycle or
// transitively blocked).
func unsatisfiableDiagnostic(deps []string, loaded map[string]*LoadedUnit, pendings map[string]*pendingUnit) string {
	var missing, unresolved []string
	for _, dep := range deps {
		if _, ok := loaded[dep]; ok {
			continue
		}
		if _, known := pendings[dep]; known {
			unresolved = append(unresolved, dep)
		} else {
			missing = append(missing, dep)
		}
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing dependencies: "+strings.Join(missing, ", "))
	}
	if len(unresolved) > 0 {
		parts = append(parts, "unresolved dependencies (cyclic, failed, or transitively blocked): "+strings.Join(unresolved, ", "))
	}
	if len(parts) == 0 {
		return "dependencies could not be satisfied"
	}
	return strings.Join(parts, "; ")
}
