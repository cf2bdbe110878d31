// Package registry is the public surface of the unit loader: discovery,
// dependency-ordered activation, lifecycle tracking, and execute-with-isolation
// all funnel into the Registry type, which is the only component external
// callers touch.
package registry

import (
	"github.com/google/uuid"
	"github.com/wehubfusion/Daedalus/pkg/discovery"
	"github.com/wehubfusion/Daedalus/pkg/lifecycle"
	"github.com/wehubfusion/Daedalus/pkg/unit"
)

// LoadedUnit owns one activated unit: its descriptor, the single live
// instance, the lifecycle tracker, and the candidate it was built from so
// reload can reconstruct it. A LoadedUnit is created at successful activation
// and replaced wholesale on reload.
type LoadedUnit struct {
	// InstanceID distinguishes live instances across reloads of the same id.
	InstanceID string

	descriptor *unit.Descriptor
	instance   unit.Unit
	candidate  discovery.Candidate
	tracker    *lifecycle.Tracker

	// diagnostic records why a unit was quarantined, empty when healthy.
	diagnostic string
}

func newLoadedUnit(c discovery.Candidate, desc *unit.Descriptor, instance unit.Unit) *LoadedUnit {
	return &LoadedUnit{
		InstanceID: uuid.NewString(),
		descriptor: desc,
		instance:   instance,
		candidate:  c,
		tracker:    lifecycle.NewTracker(),
	}
}

// ID returns the unit's registry id.
func (u *LoadedUnit) ID() string {
	return u.descriptor.ID
}

// Descriptor returns a copy of the unit's metadata.
func (u *LoadedUnit) Descriptor() *unit.Descriptor {
	return u.descriptor.Clone()
}

// State returns the unit's current lifecycle state.
func (u *LoadedUnit) State() lifecycle.State {
	return u.tracker.State()
}

// Stats returns a snapshot of the unit's execution statistics.
func (u *LoadedUnit) Stats() lifecycle.Stats {
	return u.tracker.Stats()
}

// Diagnostic returns the quarantine reason, empty for healthy units.
func (u *LoadedUnit) Diagnostic() string {
	return u.diagnostic
}

// Instance returns the unit's live instance. Callers must go through
// ExecuteUnit for invocation; the handle exists so tests can assert instance
// identity across lookups.
func (u *LoadedUnit) Instance() unit.Unit {
	return u.instance
}
