// Package unit defines the contract every unit of work must satisfy to be
// registered, along with the descriptor metadata that describes a unit's
// identity, ports, configuration, and dependencies.
package unit

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// PortType is the semantic type of a port value.
type PortType string

const (
	PortTypeAny     PortType = "any"
	PortTypeString  PortType = "string"
	PortTypeNumber  PortType = "number"
	PortTypeBoolean PortType = "boolean"
	PortTypeObject  PortType = "object"
	PortTypeArray   PortType = "array"
)

// Port describes a single input or output endpoint of a unit.
type Port struct {
	ID       string      `json:"id" validate:"required"`
	Type     PortType    `json:"type" validate:"required"`
	Required bool        `json:"required,omitempty"`
	Default  interface{} `json:"default,omitempty"`
}

// ConfigField describes one typed, optionally-defaulted configuration setting.
type ConfigField struct {
	Name    string      `json:"name" validate:"required"`
	Type    PortType    `json:"type" validate:"required"`
	Default interface{} `json:"default,omitempty"`
}

// Descriptor is the immutable metadata record for one unit. The id is stable
// once registered; re-registering under the same id replaces the previous
// descriptor, it never merges.
type Descriptor struct {
	ID           string        `json:"id" validate:"required"`
	Name         string        `json:"name,omitempty"`
	Version      string        `json:"version,omitempty"`
	Description  string        `json:"description,omitempty"`
	Category     string        `json:"category,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	Inputs       []Port        `json:"inputs,omitempty" validate:"dive"`
	Outputs      []Port        `json:"outputs,omitempty" validate:"dive"`
	ConfigFields []ConfigField `json:"config_fields,omitempty" validate:"dive"`
	Dependencies []string      `json:"dependencies,omitempty"`
}

var descriptorValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the descriptor for structural problems. A descriptor that
// fails validation must not be admitted to the registry.
func (d *Descriptor) Validate() error {
	if err := descriptorValidator.Struct(d); err != nil {
		return fmt.Errorf("descriptor %q invalid: %w", d.ID, err)
	}
	return nil
}

// HasTag reports whether the descriptor carries the given tag.
func (d *Descriptor) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the descriptor so callers cannot mutate
// registry-owned metadata through a returned handle.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	out := *d
	out.Tags = append([]string(nil), d.Tags...)
	out.Inputs = append([]Port(nil), d.Inputs...)
	out.Outputs = append([]Port(nil), d.Outputs...)
	out.ConfigFields = append([]ConfigField(nil), d.ConfigFields...)
	out.Dependencies = append([]string(nil), d.Dependencies...)
	return &out
}

// SynthesizeDescriptor builds a minimal descriptor for a unit that declares no
// metadata of its own: a generic any-typed input and output keyed by
// convention, with the candidate id and category carried over.
func SynthesizeDescriptor(id, name, category string) *Descriptor {
	if name == "" {
		name = id
	}
	return &Descriptor{
		ID:       id,
		Name:     name,
		Version:  "0.0.0",
		Category: category,
		Inputs:   []Port{{ID: "in", Type: PortTypeAny}},
		Outputs:  []Port{{ID: "out", Type: PortTypeAny}},
	}
}
