// Package constant provides the built-in constant-value unit. It deliberately
// exposes the near-match Run entry point instead of the full unit contract,
// so it always exercises the registry's capability adapter.
package constant

import (
	"context"

	"github.com/wehubfusion/Daedalus/pkg/unit"
)

// Unit emits its configured value unchanged on every invocation.
type Unit struct{}

// New creates the constant unit.
func New() (interface{}, error) {
	return &Unit{}, nil
}

// Descriptor declares the unit's metadata.
func (u *Unit) Descriptor() *unit.Descriptor {
	return &unit.Descriptor{
		ID:          "constant",
		Name:        "Constant Value",
		Version:     "1.0.0",
		Description: "Emits a configured constant value",
		Category:    "values",
		Tags:        []string{"constant", "value"},
		Outputs: []unit.Port{
			{ID: "value", Type: unit.PortTypeAny},
		},
		ConfigFields: []unit.ConfigField{
			{Name: "value", Type: unit.PortTypeAny},
		},
	}
}

// Run returns the configured value from the merged payload.
func (u *Unit) Run(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	return map[string]interface{}{"value": payload["value"]}, nil
}
