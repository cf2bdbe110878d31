package constant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wehubfusion/Daedalus/pkg/unit"
)

func TestRunEmitsConfiguredValue(t *testing.T) {
	u := &Unit{}
	out, err := u.Run(context.Background(), map[string]interface{}{"value": 42})
	require.NoError(t, err)
	assert.Equal(t, 42, out["value"])
}

func TestRunWithoutValue(t *testing.T) {
	u := &Unit{}
	out, err := u.Run(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	assert.Nil(t, out["value"])
}

// The unit intentionally implements the Run shape, not Execute, so the
// registry's capability adapter always has a live near-match to normalize.
func TestExposesRunnerShapeOnly(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	_, isUnit := v.(unit.Unit)
	assert.False(t, isUnit)
	_, isRunner := v.(unit.Runner)
	assert.True(t, isRunner)
}

func TestDescriptorIsValid(t *testing.T) {
	u := &Unit{}
	require.NoError(t, u.Descriptor().Validate())
}
