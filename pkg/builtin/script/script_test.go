package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatesExpression(t *testing.T) {
	u := &Unit{}
	out, err := u.Execute(context.Background(),
		map[string]interface{}{"x": 4, "y": 5},
		map[string]interface{}{"script": "inputs.x * inputs.y"})
	require.NoError(t, err)
	assert.Equal(t, int64(20), out["result"])
}

func TestStringResult(t *testing.T) {
	u := &Unit{}
	out, err := u.Execute(context.Background(),
		map[string]interface{}{"name": "daedalus"},
		map[string]interface{}{"script": `"hello " + inputs.name`})
	require.NoError(t, err)
	assert.Equal(t, "hello daedalus", out["result"])
}

func TestCompileError(t *testing.T) {
	u := &Unit{}
	_, err := u.Execute(context.Background(), nil,
		map[string]interface{}{"script": "this is not javascript ((("})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script compilation failed")
}

func TestRuntimeError(t *testing.T) {
	u := &Unit{}
	_, err := u.Execute(context.Background(), nil,
		map[string]interface{}{"script": "undefinedFunction()"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script failed")
}

func TestValidateConfigRequiresScript(t *testing.T) {
	u := &Unit{}
	_, err := u.ValidateConfig(map[string]interface{}{})
	require.Error(t, err)

	cfg, err := u.ValidateConfig(map[string]interface{}{"script": "1 + 1"})
	require.NoError(t, err)
	assert.Equal(t, "1 + 1", cfg["script"])
}

func TestHostGlobalsAreHidden(t *testing.T) {
	u := &Unit{}
	out, err := u.Execute(context.Background(), nil,
		map[string]interface{}{"script": "typeof require"})
	require.NoError(t, err)
	assert.Equal(t, "undefined", out["result"])
}

func TestScriptsDoNotShareState(t *testing.T) {
	u := &Unit{}
	_, err := u.Execute(context.Background(), nil,
		map[string]interface{}{"script": "var leaked = 1; leaked"})
	require.NoError(t, err)

	out, err := u.Execute(context.Background(), nil,
		map[string]interface{}{"script": "typeof leaked"})
	require.NoError(t, err)
	assert.Equal(t, "undefined", out["result"])
}

func TestDescriptorIsValid(t *testing.T) {
	u := &Unit{}
	require.NoError(t, u.Descriptor().Validate())
}
