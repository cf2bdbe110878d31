// Package strings provides the built-in string manipulation unit.
package strings

import (
	"context"
	"fmt"
	stdstrings "strings"

	"github.com/wehubfusion/Daedalus/pkg/unit"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unit executes one configured string operation against its inputs.
type Unit struct{}

// New creates the strings unit.
func New() (interface{}, error) {
	return &Unit{}, nil
}

// Descriptor declares the unit's metadata.
func (u *Unit) Descriptor() *unit.Descriptor {
	return &unit.Descriptor{
		ID:          "strings",
		Name:        "String Operations",
		Version:     "1.0.0",
		Description: "Concatenate, split, trim, replace, and case-convert strings",
		Category:    "text",
		Tags:        []string{"string", "text", "transform"},
		Inputs: []unit.Port{
			{ID: "value", Type: unit.PortTypeString, Required: true},
		},
		Outputs: []unit.Port{
			{ID: "result", Type: unit.PortTypeAny},
		},
		ConfigFields: []unit.ConfigField{
			{Name: "operation", Type: unit.PortTypeString},
			{Name: "params", Type: unit.PortTypeObject},
		},
	}
}

// Execute runs the configured operation.
func (u *Unit) Execute(ctx context.Context, inputs, config map[string]interface{}) (map[string]interface{}, error) {
	operation := unit.GetString(config, "operation", "")
	params := unit.GetMap(config, "params")
	value := unit.GetString(inputs, "value", "")

	result, err := executeOperation(operation, value, params)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"result": result}, nil
}

func executeOperation(operation, value string, params map[string]interface{}) (interface{}, error) {
	switch operation {
	case "concatenate":
		separator := unit.GetString(params, "separator", "")
		parts := unit.GetStringSlice(params, "parts")
		all := append([]string{value}, parts...)
		return stdstrings.Join(all, separator), nil

	case "split":
		delimiter := unit.GetString(params, "delimiter", ",")
		return stdstrings.Split(value, delimiter), nil

	case "trim":
		cutset := unit.GetString(params, "cutset", "")
		if cutset == "" {
			return stdstrings.TrimSpace(value), nil
		}
		return stdstrings.Trim(value, cutset), nil

	case "replace":
		old := unit.GetString(params, "old", "")
		newVal := unit.GetString(params, "new", "")
		count := unit.GetInt(params, "count", -1)
		return stdstrings.Replace(value, old, newVal, count), nil

	case "to_upper":
		return cases.Upper(language.Und).String(value), nil

	case "to_lower":
		return cases.Lower(language.Und).String(value), nil

	case "to_title":
		return cases.Title(language.Und).String(value), nil

	case "contains":
		substr := unit.GetString(params, "substring", "")
		return stdstrings.Contains(value, substr), nil

	default:
		return nil, fmt.Errorf("unknown string operation: %q", operation)
	}
}
