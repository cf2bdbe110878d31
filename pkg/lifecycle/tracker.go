package lifecycle

import (
	"sync"
	"time"

	sdkerrors "github.com/wehubfusion/Daedalus/pkg/errors"
)

// Stats holds running execution statistics for one unit. The average is a
// weighted running mean so memory stays constant regardless of call volume.
type Stats struct {
	ExecutionCount         int64      `json:"execution_count"`
	AverageExecutionTimeMs float64    `json:"average_execution_time_ms"`
	ErrorCount             int64      `json:"error_count"`
	CreatedAt              time.Time  `json:"created_at"`
	LastExecutedAt         *time.Time `json:"last_executed_at,omitempty"`
}

// Tracker is the per-unit lifecycle state machine plus execution statistics.
// All methods are safe for concurrent use; a single mutex guards both the
// state and the statistics so RUNNING transitions and average updates cannot
// interleave across concurrent callers.
type Tracker struct {
	mu    sync.Mutex
	state State
	stats Stats
}

// NewTracker creates a tracker in the unloaded state.
func NewTracker() *Tracker {
	return &Tracker{
		state: StateUnloaded,
		stats: Stats{CreatedAt: time.Now().UTC()},
	}
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Stats returns a snapshot of the current execution statistics.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Transition moves the tracker to the given state, enforcing the allowed
// transition table.
func (t *Tracker) Transition(to State) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !allowedTransition(t.state, to) {
		return sdkerrors.NewError("LIFECYCLE_TRANSITION",
			"cannot transition from "+t.state.String()+" to "+to.String(),
			sdkerrors.ErrInvalidTransition)
	}
	t.state = to
	return nil
}

// BeginExecution marks the start of an invocation. Any callable state moves
// to RUNNING, including RUNNING itself so concurrent callers of the same unit
// do not trip the transition table. Disabled and not-yet-activated units
// cannot begin execution.
func (t *Tracker) BeginExecution() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case StateInitialized, StateCompleted, StateError, StateRunning:
		t.state = StateRunning
		return nil
	case StateDisabled:
		return sdkerrors.NewError("UNIT_DISABLED", "unit is disabled", sdkerrors.ErrDisabled)
	default:
		return sdkerrors.NewError("LIFECYCLE_TRANSITION",
			"cannot execute from state "+t.state.String(), sdkerrors.ErrInvalidTransition)
	}
}

// Disable moves the tracker to the disabled state. Valid from any state.
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateDisabled
}

// Enable returns a disabled tracker to the initialized state.
func (t *Tracker) Enable() error {
	return t.Transition(StateInitialized)
}

// RecordExecution finishes one invocation: it updates the running average,
// increments counters, stamps the execution time, and settles the state to
// COMPLETED or ERROR. Callers transition COMPLETED back to INITIALIZED once
// the result has been observed so the unit is ready for the next call.
func (t *Tracker) RecordExecution(duration time.Duration, failed bool) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	sample := float64(duration.Milliseconds())
	t.stats.ExecutionCount++
	n := float64(t.stats.ExecutionCount)
	t.stats.AverageExecutionTimeMs = (t.stats.AverageExecutionTimeMs*(n-1) + sample) / n

	now := time.Now().UTC()
	t.stats.LastExecutedAt = &now

	if failed {
		t.stats.ErrorCount++
		if t.state == StateRunning {
			t.state = StateError
		}
	} else if t.state == StateRunning {
		t.state = StateCompleted
	}
	return t.stats
}

// ResetStats clears accumulated statistics, used on reload.
func (t *Tracker) ResetStats() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = Stats{CreatedAt: time.Now().UTC()}
}
