package mathops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperations(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		a, b      float64
		want      float64
	}{
		{"add", "add", 2, 3, 5},
		{"subtract", "subtract", 10, 4, 6},
		{"multiply", "multiply", 6, 7, 42},
		{"divide", "divide", 9, 3, 3},
		{"round", "round", 2.6, 0, 3},
		{"abs", "abs", -4.5, 0, 4.5},
	}

	u := &Unit{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := u.Execute(context.Background(),
				map[string]interface{}{"a": tt.a, "b": tt.b},
				map[string]interface{}{"operation": tt.operation})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out["result"])
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	u := &Unit{}
	_, err := u.Execute(context.Background(),
		map[string]interface{}{"a": 1.0, "b": 0.0},
		map[string]interface{}{"operation": "divide"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestUnknownOperation(t *testing.T) {
	u := &Unit{}
	_, err := u.Execute(context.Background(),
		map[string]interface{}{"a": 1.0},
		map[string]interface{}{"operation": "modulo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown math operation")
}

func TestValidateInputs(t *testing.T) {
	u := &Unit{}

	ok, err := u.ValidateInputs(map[string]interface{}{"a": 1, "b": 2.5})
	require.NoError(t, err)
	assert.Equal(t, 1, ok["a"])

	_, err = u.ValidateInputs(map[string]interface{}{"a": "one"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be numeric")

	// Missing operands are allowed; they default to zero at execution time.
	_, err = u.ValidateInputs(map[string]interface{}{})
	require.NoError(t, err)
}

func TestDescriptorIsValid(t *testing.T) {
	u := &Unit{}
	require.NoError(t, u.Descriptor().Validate())
}
