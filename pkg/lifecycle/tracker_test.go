package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkerrors "github.com/wehubfusion/Daedalus/pkg/errors"
)

func TestTrackerStartsUnloaded(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, StateUnloaded, tr.State())
	assert.Equal(t, int64(0), tr.Stats().ExecutionCount)
	assert.False(t, tr.Stats().CreatedAt.IsZero())
}

func TestTrackerActivationPath(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Transition(StateLoaded))
	require.NoError(t, tr.Transition(StateInitialized))
	assert.Equal(t, StateInitialized, tr.State())
}

func TestTrackerRejectsInvalidTransition(t *testing.T) {
	tr := NewTracker()
	err := tr.Transition(StateRunning)
	require.Error(t, err)
	assert.ErrorIs(t, err, sdkerrors.ErrInvalidTransition)
	assert.Equal(t, StateUnloaded, tr.State())
}

func TestBeginExecutionFromCallableStates(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Transition(StateLoaded))
	require.NoError(t, tr.Transition(StateInitialized))

	require.NoError(t, tr.BeginExecution())
	assert.Equal(t, StateRunning, tr.State())

	// A concurrent caller of the same unit may begin while running.
	require.NoError(t, tr.BeginExecution())

	tr.RecordExecution(5*time.Millisecond, true)
	assert.Equal(t, StateError, tr.State())

	// An errored unit stays callable.
	require.NoError(t, tr.BeginExecution())
}

func TestBeginExecutionRejectsDisabled(t *testing.T) {
	tr := NewTracker()
	tr.Disable()
	err := tr.BeginExecution()
	require.Error(t, err)
	assert.ErrorIs(t, err, sdkerrors.ErrDisabled)
}

func TestRecordExecutionWeightedAverage(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Transition(StateLoaded))
	require.NoError(t, tr.Transition(StateInitialized))

	for _, d := range []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond} {
		require.NoError(t, tr.BeginExecution())
		tr.RecordExecution(d, false)
		require.NoError(t, tr.Transition(StateInitialized))
	}

	stats := tr.Stats()
	assert.Equal(t, int64(3), stats.ExecutionCount)
	assert.InDelta(t, 20.0, stats.AverageExecutionTimeMs, 0.001)
	assert.Equal(t, int64(0), stats.ErrorCount)
	require.NotNil(t, stats.LastExecutedAt)
}

func TestRecordExecutionCountsErrors(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Transition(StateLoaded))
	require.NoError(t, tr.Transition(StateInitialized))

	require.NoError(t, tr.BeginExecution())
	tr.RecordExecution(10*time.Millisecond, true)

	stats := tr.Stats()
	assert.Equal(t, int64(1), stats.ExecutionCount)
	assert.Equal(t, int64(1), stats.ErrorCount)
	assert.Equal(t, StateError, tr.State())
}

func TestDisableEnableRoundTrip(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Transition(StateLoaded))
	require.NoError(t, tr.Transition(StateInitialized))

	tr.Disable()
	assert.Equal(t, StateDisabled, tr.State())

	require.NoError(t, tr.Enable())
	assert.Equal(t, StateInitialized, tr.State())
}

func TestCompletedLoopsBackToInitialized(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Transition(StateLoaded))
	require.NoError(t, tr.Transition(StateInitialized))
	require.NoError(t, tr.BeginExecution())

	tr.RecordExecution(time.Millisecond, false)
	assert.Equal(t, StateCompleted, tr.State())
	require.NoError(t, tr.Transition(StateInitialized))
	require.NoError(t, tr.BeginExecution())
}

func TestResetStats(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Transition(StateLoaded))
	require.NoError(t, tr.Transition(StateInitialized))
	require.NoError(t, tr.BeginExecution())
	tr.RecordExecution(time.Millisecond, false)

	tr.ResetStats()
	assert.Equal(t, int64(0), tr.Stats().ExecutionCount)
	assert.Nil(t, tr.Stats().LastExecutedAt)
}
