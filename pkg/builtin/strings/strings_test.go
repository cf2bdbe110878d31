package strings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, value string, operation string, params map[string]interface{}) interface{} {
	t.Helper()
	u := &Unit{}
	out, err := u.Execute(context.Background(),
		map[string]interface{}{"value": value},
		map[string]interface{}{"operation": operation, "params": params})
	require.NoError(t, err)
	return out["result"]
}

func TestConcatenate(t *testing.T) {
	result := execute(t, "a", "concatenate", map[string]interface{}{
		"separator": "-",
		"parts":     []interface{}{"b", "c"},
	})
	assert.Equal(t, "a-b-c", result)
}

func TestSplit(t *testing.T) {
	result := execute(t, "x,y,z", "split", map[string]interface{}{"delimiter": ","})
	assert.Equal(t, []string{"x", "y", "z"}, result)
}

func TestTrim(t *testing.T) {
	assert.Equal(t, "padded", execute(t, "  padded  ", "trim", nil))
	assert.Equal(t, "core", execute(t, "xxcorexx", "trim", map[string]interface{}{"cutset": "x"}))
}

func TestReplace(t *testing.T) {
	result := execute(t, "one one one", "replace", map[string]interface{}{
		"old": "one", "new": "two", "count": 2,
	})
	assert.Equal(t, "two two one", result)
}

func TestCaseConversion(t *testing.T) {
	assert.Equal(t, "HELLO", execute(t, "hello", "to_upper", nil))
	assert.Equal(t, "hello", execute(t, "HELLO", "to_lower", nil))
	assert.Equal(t, "Hello World", execute(t, "hello world", "to_title", nil))
}

func TestContains(t *testing.T) {
	assert.Equal(t, true, execute(t, "haystack", "contains", map[string]interface{}{"substring": "stack"}))
	assert.Equal(t, false, execute(t, "haystack", "contains", map[string]interface{}{"substring": "needle"}))
}

func TestUnknownOperation(t *testing.T) {
	u := &Unit{}
	_, err := u.Execute(context.Background(),
		map[string]interface{}{"value": "x"},
		map[string]interface{}{"operation": "reverse"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown string operation")
}

func TestDescriptorIsValid(t *testing.T) {
	u := &Unit{}
	require.NoError(t, u.Descriptor().Validate())
}
