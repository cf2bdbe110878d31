// Package discovery turns source locations into unit candidates. Two source
// kinds are supported: a static constructor table populated at compile time,
// and filesystem roots holding JSON manifests organized into category
// subfolders. Sources are merged by the Scanner with later sources winning on
// id collisions.
package discovery

import (
	"context"

	"github.com/wehubfusion/Daedalus/pkg/unit"
)

// Candidate is one discovered unit: an id, the location it came from, a
// constructor for its runtime value, and optionally the metadata its manifest
// declared. A nil Descriptor means metadata must be synthesized or obtained
// from the constructed value itself.
type Candidate struct {
	ID          string
	Category    string
	Location    string
	Constructor unit.Constructor
	Descriptor  *unit.Descriptor
}

// Source yields unit candidates from one location kind.
type Source interface {
	// Discover produces the source's candidates. Individual candidate
	// failures are logged and skipped; only a failure that prevents the
	// source from being read at all is returned as an error.
	Discover(ctx context.Context) ([]Candidate, error)

	// Name identifies the source in logs and diagnostics.
	Name() string
}
