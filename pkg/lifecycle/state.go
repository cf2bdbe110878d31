// Package lifecycle tracks the per-unit state machine and running execution
// statistics maintained by the registry.
package lifecycle

// State is the current phase of a unit's life.
type State int32

const (
	// StateUnloaded indicates the unit has been discovered but not loaded
	StateUnloaded State = iota

	// StateLoaded indicates the unit's type has been resolved and instantiated
	StateLoaded

	// StateInitialized indicates the unit is ready to execute
	StateInitialized

	// StateRunning indicates an execution is in flight
	StateRunning

	// StateCompleted indicates the most recent execution succeeded
	StateCompleted

	// StateError indicates the most recent execution or initialization failed
	StateError

	// StateDisabled indicates the unit has been quarantined or explicitly disabled
	StateDisabled
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	case StateDisabled:
		return "disabled"
	}
	return "unknown"
}

// allowedTransition reports whether moving from one state to another is valid.
// StateDisabled is reachable from any state via Disable, handled by the caller.
func allowedTransition(from, to State) bool {
	switch from {
	case StateUnloaded:
		return to == StateLoaded
	case StateLoaded:
		return to == StateInitialized || to == StateError
	case StateInitialized:
		return to == StateRunning
	case StateRunning:
		return to == StateCompleted || to == StateError
	case StateCompleted:
		// Completed units loop back to initialized for the next invocation.
		return to == StateInitialized || to == StateRunning
	case StateError:
		// An errored unit stays callable.
		return to == StateRunning || to == StateInitialized
	case StateDisabled:
		return to == StateInitialized
	}
	return false
}
