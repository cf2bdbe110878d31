package discovery

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scanner merges candidates from an ordered list of sources. Within one scan
// pass an id may only appear once: the candidate from the later source wins,
// consistent with replace-never-merge registration.
type Scanner struct {
	sources []Source
	logger  *zap.Logger
}

// NewScanner creates a scanner over the given sources, evaluated in order.
func NewScanner(logger *zap.Logger, sources ...Source) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{sources: sources, logger: logger}
}

// AddSource appends a source; it takes precedence over earlier ones.
func (s *Scanner) AddSource(src Source) {
	s.sources = append(s.sources, src)
}

// Scan runs every source and returns the merged candidates plus the wall
// clock the pass took. A source whose Discover fails outright is logged and
// skipped; one broken source never aborts discovery of the rest.
func (s *Scanner) Scan(ctx context.Context) ([]Candidate, time.Duration) {
	start := time.Now()

	var order []string
	byID := make(map[string]Candidate)
	for _, src := range s.sources {
		found, err := src.Discover(ctx)
		if err != nil {
			s.logger.Error("source discovery failed",
				zap.String("source", src.Name()), zap.Error(err))
			continue
		}
		for _, c := range found {
			if prev, exists := byID[c.ID]; exists {
				s.logger.Warn("candidate id collision, later source wins",
					zap.String("unit", c.ID),
					zap.String("previous", prev.Location),
					zap.String("replacement", c.Location))
			} else {
				order = append(order, c.ID)
			}
			byID[c.ID] = c
		}
	}

	out := make([]Candidate, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}

	s.logger.Info("discovery scan complete",
		zap.Int("candidates", len(out)),
		zap.Duration("duration", time.Since(start)))
	return out, time.Since(start)
}
