// Package mathops provides the built-in arithmetic unit.
package mathops

import (
	"context"
	"fmt"
	"math"

	"github.com/wehubfusion/Daedalus/pkg/unit"
)

// Unit performs one configured arithmetic operation on its numeric inputs.
type Unit struct{}

// New creates the mathops unit.
func New() (interface{}, error) {
	return &Unit{}, nil
}

// Descriptor declares the unit's metadata.
func (u *Unit) Descriptor() *unit.Descriptor {
	return &unit.Descriptor{
		ID:          "mathops",
		Name:        "Math Operations",
		Version:     "1.0.0",
		Description: "Basic arithmetic over numeric inputs",
		Category:    "math",
		Tags:        []string{"math", "number", "transform"},
		Inputs: []unit.Port{
			{ID: "a", Type: unit.PortTypeNumber, Required: true},
			{ID: "b", Type: unit.PortTypeNumber},
		},
		Outputs: []unit.Port{
			{ID: "result", Type: unit.PortTypeNumber},
		},
		ConfigFields: []unit.ConfigField{
			{Name: "operation", Type: unit.PortTypeString, Default: "add"},
		},
	}
}

// ValidateInputs rejects non-numeric operands before execution.
func (u *Unit) ValidateInputs(inputs map[string]interface{}) (map[string]interface{}, error) {
	for _, key := range []string{"a", "b"} {
		v, ok := inputs[key]
		if !ok {
			continue
		}
		switch v.(type) {
		case int, int32, int64, float32, float64: // ok
		default:
			return nil, fmt.Errorf("input %q must be numeric, got %T", key, v)
		}
	}
	return inputs, nil
}

// Execute runs the configured operation.
func (u *Unit) Execute(ctx context.Context, inputs, config map[string]interface{}) (map[string]interface{}, error) {
	operation := unit.GetString(config, "operation", "add")
	a := unit.GetFloat(inputs, "a", 0)
	b := unit.GetFloat(inputs, "b", 0)

	var result float64
	switch operation {
	case "add":
		result = a + b
	case "subtract":
		result = a - b
	case "multiply":
		result = a * b
	case "divide":
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		result = a / b
	case "round":
		result = math.Round(a)
	case "abs":
		result = math.Abs(a)
	default:
		return nil, fmt.Errorf("unknown math operation: %q", operation)
	}

	return map[string]interface{}{"result": result}, nil
}
