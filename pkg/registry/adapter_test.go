package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wehubfusion/Daedalus/pkg/unit"
)

type exactUnit struct{}

func (exactUnit) Execute(ctx context.Context, inputs, config map[string]interface{}) (map[string]interface{}, error) {
	return inputs, nil
}

type nearUnit struct {
	lastPayload map[string]interface{}
	initialized bool
}

func (n *nearUnit) Run(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	n.lastPayload = payload
	return payload, nil
}

func (n *nearUnit) Initialize(ctx context.Context) error {
	n.initialized = true
	return nil
}

func (n *nearUnit) Descriptor() *unit.Descriptor {
	return &unit.Descriptor{ID: "near", Name: "Near Match"}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, capabilityExact, classify(exactUnit{}))
	assert.Equal(t, capabilityNear, classify(&nearUnit{}))
	assert.Equal(t, capabilityNone, classify(struct{}{}))
	assert.Equal(t, capabilityNone, classify("not even close"))
}

func TestAdaptExactPassesThrough(t *testing.T) {
	v := exactUnit{}
	adapted, err := adapt(v, "exact")
	require.NoError(t, err)
	assert.Equal(t, v, adapted)
}

func TestAdaptNearMergesInputsOverConfig(t *testing.T) {
	n := &nearUnit{}
	adapted, err := adapt(n, "near")
	require.NoError(t, err)

	out, err := adapted.Execute(context.Background(),
		map[string]interface{}{"key": "from-inputs", "only": 1},
		map[string]interface{}{"key": "from-config", "base": true})
	require.NoError(t, err)

	assert.Equal(t, "from-inputs", out["key"])
	assert.Equal(t, 1, out["only"])
	assert.Equal(t, true, out["base"])
}

func TestAdaptNearForwardsHooks(t *testing.T) {
	n := &nearUnit{}
	adapted, err := adapt(n, "near")
	require.NoError(t, err)

	init, ok := adapted.(unit.Initializer)
	require.True(t, ok)
	require.NoError(t, init.Initialize(context.Background()))
	assert.True(t, n.initialized)
}

func TestAdaptNoneFails(t *testing.T) {
	_, err := adapt(struct{}{}, "junk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not expose an execute entry point")
}

func TestDescriptorOfPrefersProvider(t *testing.T) {
	n := &nearUnit{}
	adapted, err := adapt(n, "near")
	require.NoError(t, err)

	desc := descriptorOf(adapted, "near", "misc", &unit.Descriptor{ID: "near", Name: "Manifest Name"})
	assert.Equal(t, "Near Match", desc.Name)
	assert.Equal(t, "misc", desc.Category)
}

func TestDescriptorOfFallsBackToDeclared(t *testing.T) {
	declared := &unit.Descriptor{ID: "exact", Name: "From Manifest", Category: "tools"}
	desc := descriptorOf(exactUnit{}, "exact", "tools", declared)
	assert.Equal(t, "From Manifest", desc.Name)
	assert.NotSame(t, declared, desc)
}

func TestDescriptorOfSynthesizes(t *testing.T) {
	desc := descriptorOf(exactUnit{}, "bare", "misc", nil)
	assert.Equal(t, "bare", desc.ID)
	assert.Equal(t, "exactunit", desc.Name)
	assert.Equal(t, "misc", desc.Category)
	require.Len(t, desc.Inputs, 1)
	assert.Equal(t, unit.PortTypeAny, desc.Inputs[0].Type)
}
