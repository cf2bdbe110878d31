package unit

import "context"

// Unit is the interface every unit of work must implement to be executable by
// the registry. Inputs and config are free-form maps; the returned map is the
// unit's output payload.
type Unit interface {
	// Execute runs the unit's logic with the given inputs and configuration.
	Execute(ctx context.Context, inputs map[string]interface{}, config map[string]interface{}) (map[string]interface{}, error)
}

// Runner is the near-match shape: a type that exposes a single Run entry point
// instead of the full Unit contract. The registry wraps Runners in an adapter
// so the rest of the pipeline never sees the difference.
type Runner interface {
	Run(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error)
}

// DescriptorProvider is implemented by units that declare their own metadata.
// Units without it get a synthesized descriptor at registration time.
type DescriptorProvider interface {
	Descriptor() *Descriptor
}

// Initializer is implemented by units that need a one-time setup hook before
// their first execution. Returning an error quarantines the unit.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Cleaner is implemented by units that hold resources to release on disable
// or reload.
type Cleaner interface {
	Cleanup(ctx context.Context) error
}

// InputValidator lets a unit normalize or reject its inputs before execution.
// The returned map replaces the raw inputs.
type InputValidator interface {
	ValidateInputs(inputs map[string]interface{}) (map[string]interface{}, error)
}

// ConfigValidator lets a unit normalize or reject its configuration before
// execution. The returned map replaces the raw config.
type ConfigValidator interface {
	ValidateConfig(config map[string]interface{}) (map[string]interface{}, error)
}

// Constructor creates a fresh unit value. Discovery sources and programmatic
// registration both hand the registry constructors, never live instances, so
// reload can always build a clean one.
type Constructor func() (interface{}, error)
