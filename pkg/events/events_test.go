package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopEmitter(t *testing.T) {
	e := NewNopEmitter()
	e.Emit(Event{Type: EventUnitLoaded, UnitID: "x"})
	assert.NoError(t, e.Close())
}

func TestEventSerialization(t *testing.T) {
	success := true
	ev := Event{
		Type:       EventUnitExecuted,
		UnitID:     "strings",
		Category:   "text",
		Success:    &success,
		DurationMs: 12,
		Timestamp:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "unit.executed", decoded["type"])
	assert.Equal(t, "strings", decoded["unit_id"])
	assert.Equal(t, true, decoded["success"])
	assert.NotContains(t, decoded, "diagnostic")
}

func TestDisabledEventCarriesDiagnostic(t *testing.T) {
	ev := Event{
		Type:       EventUnitDisabled,
		UnitID:     "broken",
		Diagnostic: "missing dependencies: ghost",
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(data), "missing dependencies: ghost")
}
