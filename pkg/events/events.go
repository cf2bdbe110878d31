// Package events publishes registry lifecycle and execution events to
// interested collaborators. The live-update layer consumes these through the
// narrow Emitter interface; the registry itself never depends on a transport.
package events

import "time"

// EventType identifies what happened to a unit.
type EventType string

const (
	EventUnitLoaded   EventType = "unit.loaded"
	EventUnitDisabled EventType = "unit.disabled"
	EventUnitEnabled  EventType = "unit.enabled"
	EventUnitReloaded EventType = "unit.reloaded"
	EventUnitExecuted EventType = "unit.executed"
)

// Event is one registry occurrence.
type Event struct {
	Type       EventType `json:"type"`
	UnitID     string    `json:"unit_id"`
	Category   string    `json:"category,omitempty"`
	Success    *bool     `json:"success,omitempty"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	Diagnostic string    `json:"diagnostic,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Emitter delivers registry events. Implementations must not block the
// registry: delivery failures are logged and dropped, never surfaced to the
// execution path.
type Emitter interface {
	Emit(event Event)
	Close() error
}

var _ Emitter = nopEmitter{}

// nopEmitter drops every event, used when no event transport is configured.
type nopEmitter struct{}

func (nopEmitter) Emit(Event)   {}
func (nopEmitter) Close() error { return nil }

// NewNopEmitter returns an emitter that discards everything.
func NewNopEmitter() Emitter {
	return nopEmitter{}
}
