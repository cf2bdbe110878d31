// Package graph builds the forward and reverse dependency maps the activator
// drains. Building never fails: unknown dependency ids are recorded as
// dangling and resolved (or quarantined) later by the activator.
package graph

import "sort"

// DependencyGraph holds declared dependencies (forward) and computed
// dependents (reverse) keyed by unit id.
type DependencyGraph struct {
	forward map[string]map[string]struct{}
	reverse map[string]map[string]struct{}
}

// Build constructs a graph from each unit's declared dependency list.
func Build(dependencies map[string][]string) *DependencyGraph {
	g := &DependencyGraph{
		forward: make(map[string]map[string]struct{}, len(dependencies)),
		reverse: make(map[string]map[string]struct{}),
	}
	for id, deps := range dependencies {
		fwd := make(map[string]struct{}, len(deps))
		for _, dep := range deps {
			fwd[dep] = struct{}{}
			if g.reverse[dep] == nil {
				g.reverse[dep] = make(map[string]struct{})
			}
			g.reverse[dep][id] = struct{}{}
		}
		g.forward[id] = fwd
	}
	return g
}

// Add inserts or replaces one unit's declared dependencies.
func (g *DependencyGraph) Add(id string, deps []string) {
	g.Remove(id)
	fwd := make(map[string]struct{}, len(deps))
	for _, dep := range deps {
		fwd[dep] = struct{}{}
		if g.reverse[dep] == nil {
			g.reverse[dep] = make(map[string]struct{})
		}
		g.reverse[dep][id] = struct{}{}
	}
	g.forward[id] = fwd
}

// Remove drops a unit's forward edges and its entries in the reverse map.
// Dependents of the removed unit keep their forward references; the id simply
// becomes dangling for them.
func (g *DependencyGraph) Remove(id string) {
	for dep := range g.forward[id] {
		delete(g.reverse[dep], id)
		if len(g.reverse[dep]) == 0 {
			delete(g.reverse, dep)
		}
	}
	delete(g.forward, id)
}

// Dependencies returns the declared dependency ids of a unit, sorted.
func (g *DependencyGraph) Dependencies(id string) []string {
	return sortedKeys(g.forward[id])
}

// Dependents returns the ids that declare a dependency on the given unit, sorted.
func (g *DependencyGraph) Dependents(id string) []string {
	return sortedKeys(g.reverse[id])
}

// Known reports whether the id has a forward entry in the graph.
func (g *DependencyGraph) Known(id string) bool {
	_, ok := g.forward[id]
	return ok
}

// IDs returns every id with a forward entry, sorted.
func (g *DependencyGraph) IDs() []string {
	ids := make([]string, 0, len(g.forward))
	for id := range g.forward {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dangling returns, per unit, the declared dependencies that have no forward
// entry of their own. A unit with dangling dependencies can never activate.
func (g *DependencyGraph) Dangling() map[string][]string {
	out := make(map[string][]string)
	for id, deps := range g.forward {
		for dep := range deps {
			if _, ok := g.forward[dep]; !ok {
				out[id] = append(out[id], dep)
			}
		}
		sort.Strings(out[id])
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
