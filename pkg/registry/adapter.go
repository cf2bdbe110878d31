package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	sdkerrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/unit"
)

// capability classifies how closely a constructed value matches the unit
// contract.
type capability int

const (
	capabilityNone capability = iota
	capabilityExact
	capabilityNear
)

// classify inspects a constructed value for the unit-of-work shape.
func classify(v interface{}) capability {
	switch v.(type) {
	case unit.Unit:
		return capabilityExact
	case unit.Runner:
		return capabilityNear
	default:
		return capabilityNone
	}
}

// runnerAdapter normalizes a near-match Runner into the exact Unit shape. The
// Execute inputs are laid over the config so the wrapped Run sees one payload,
// and every optional hook the wrapped value implements is forwarded, making
// the adapted unit indistinguishable from an exact match downstream.
type runnerAdapter struct {
	inner unit.Runner
}

var (
	_ unit.Unit            = (*runnerAdapter)(nil)
	_ unit.Initializer     = (*runnerAdapter)(nil)
	_ unit.Cleaner         = (*runnerAdapter)(nil)
	_ unit.InputValidator  = (*runnerAdapter)(nil)
	_ unit.ConfigValidator = (*runnerAdapter)(nil)
)

func (a *runnerAdapter) Execute(ctx context.Context, inputs map[string]interface{}, config map[string]interface{}) (map[string]interface{}, error) {
	payload := make(map[string]interface{}, len(inputs)+len(config))
	for k, v := range config {
		payload[k] = v
	}
	for k, v := range inputs {
		payload[k] = v
	}
	return a.inner.Run(ctx, payload)
}

func (a *runnerAdapter) Initialize(ctx context.Context) error {
	if init, ok := a.inner.(unit.Initializer); ok {
		return init.Initialize(ctx)
	}
	return nil
}

func (a *runnerAdapter) Cleanup(ctx context.Context) error {
	if c, ok := a.inner.(unit.Cleaner); ok {
		return c.Cleanup(ctx)
	}
	return nil
}

func (a *runnerAdapter) ValidateInputs(inputs map[string]interface{}) (map[string]interface{}, error) {
	if v, ok := a.inner.(unit.InputValidator); ok {
		return v.ValidateInputs(inputs)
	}
	return inputs, nil
}

func (a *runnerAdapter) ValidateConfig(config map[string]interface{}) (map[string]interface{}, error) {
	if v, ok := a.inner.(unit.ConfigValidator); ok {
		return v.ValidateConfig(config)
	}
	return config, nil
}

// descriptorOf resolves the metadata for a constructed value: the value's own
// declaration wins, then the candidate's manifest descriptor, then a minimal
// synthesized one. Near matches read the declaration off the wrapped value.
func descriptorOf(v interface{}, id, category string, declared *unit.Descriptor) *unit.Descriptor {
	inner := v
	if a, ok := v.(*runnerAdapter); ok {
		inner = a.inner
	}
	if provider, ok := inner.(unit.DescriptorProvider); ok {
		if d := provider.Descriptor(); d != nil {
			desc := d.Clone()
			if desc.ID == "" {
				desc.ID = id
			}
			if desc.Category == "" {
				desc.Category = category
			}
			return desc
		}
	}
	if declared != nil {
		return declared.Clone()
	}
	return unit.SynthesizeDescriptor(id, typeName(inner), category)
}

// adapt classifies a constructed value and returns it in the exact unit
// shape. A no-match value yields a RegistrationError; discovery treats that
// as "not a unit" and skips, programmatic registration surfaces it.
func adapt(v interface{}, id string) (unit.Unit, error) {
	switch classify(v) {
	case capabilityExact:
		return v.(unit.Unit), nil
	case capabilityNear:
		return &runnerAdapter{inner: v.(unit.Runner)}, nil
	default:
		return nil, sdkerrors.NewError("NOT_A_UNIT",
			fmt.Sprintf("type %s for %q does not expose an execute entry point", typeName(v), id),
			sdkerrors.ErrRegistration)
	}
}

// typeName derives a human-readable name from a value's Go type.
func typeName(v interface{}) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return strings.ToLower(name)
}
