// Package script provides the built-in JavaScript expression unit, backed by
// the goja interpreter. The script is compiled once at initialization and run
// with the invocation's inputs exposed as a global.
package script

import (
	"context"
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"github.com/wehubfusion/Daedalus/pkg/unit"
)

// Unit evaluates a configured JavaScript expression against its inputs.
type Unit struct {
	mu sync.Mutex
}

// New creates the script unit.
func New() (interface{}, error) {
	return &Unit{}, nil
}

// Descriptor declares the unit's metadata.
func (u *Unit) Descriptor() *unit.Descriptor {
	return &unit.Descriptor{
		ID:          "script",
		Name:        "Script Runner",
		Version:     "1.0.0",
		Description: "Evaluates a JavaScript expression with inputs in scope",
		Category:    "code",
		Tags:        []string{"script", "javascript", "transform"},
		Inputs: []unit.Port{
			{ID: "in", Type: unit.PortTypeAny},
		},
		Outputs: []unit.Port{
			{ID: "result", Type: unit.PortTypeAny},
		},
		ConfigFields: []unit.ConfigField{
			{Name: "script", Type: unit.PortTypeString},
		},
	}
}

// ValidateConfig rejects configurations without a script body.
func (u *Unit) ValidateConfig(config map[string]interface{}) (map[string]interface{}, error) {
	if unit.GetString(config, "script", "") == "" {
		return nil, fmt.Errorf("script configuration is required")
	}
	return config, nil
}

// Execute compiles and runs the configured script. A fresh VM per invocation
// keeps scripts from leaking state into each other; the mutex serializes
// compilation because goja programs are not safe for concurrent construction
// against a shared unit.
func (u *Unit) Execute(ctx context.Context, inputs, config map[string]interface{}) (map[string]interface{}, error) {
	source := unit.GetString(config, "script", "")

	u.mu.Lock()
	program, err := goja.Compile("script", source, true)
	u.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("script compilation failed: %w", err)
	}

	vm := goja.New()
	restrictGlobals(vm)
	if err := vm.Set("inputs", inputs); err != nil {
		return nil, fmt.Errorf("cannot bind inputs: %w", err)
	}

	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, fmt.Errorf("script failed: %w", err)
	}

	return map[string]interface{}{"result": value.Export()}, nil
}

// restrictGlobals removes host-environment globals scripts must not touch.
func restrictGlobals(vm *goja.Runtime) {
	for _, name := range []string{"require", "module", "exports", "process", "global"} {
		_ = vm.Set(name, goja.Undefined())
	}
}
