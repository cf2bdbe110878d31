package discovery

import (
	"context"

	"github.com/wehubfusion/Daedalus/pkg/unit"
	"go.uber.org/zap"
)

// StaticSource is an explicit registration table keyed by unit id. Built-in
// units register their constructors here at startup instead of being found on
// disk.
type StaticSource struct {
	order   []string
	entries map[string]Candidate
	logger  *zap.Logger
}

// NewStaticSource creates an empty registration table.
func NewStaticSource(logger *zap.Logger) *StaticSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaticSource{
		entries: make(map[string]Candidate),
		logger:  logger,
	}
}

// Register adds a constructor under the given id and category. Registering an
// id twice replaces the earlier entry; descriptors are never merged.
func (s *StaticSource) Register(id, category string, ctor unit.Constructor) {
	s.RegisterCandidate(Candidate{ID: id, Category: category, Constructor: ctor})
}

// RegisterCandidate adds a fully-specified candidate, including any declared
// descriptor.
func (s *StaticSource) RegisterCandidate(c Candidate) {
	if c.Location == "" {
		c.Location = "static:" + c.ID
	}
	if _, exists := s.entries[c.ID]; exists {
		s.logger.Warn("replacing previously registered unit",
			zap.String("unit", c.ID))
	} else {
		s.order = append(s.order, c.ID)
	}
	s.entries[c.ID] = c
}

// Discover returns the registered candidates in registration order.
func (s *StaticSource) Discover(ctx context.Context) ([]Candidate, error) {
	out := make([]Candidate, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out, nil
}

// Name identifies the source in logs.
func (s *StaticSource) Name() string {
	return "static"
}
