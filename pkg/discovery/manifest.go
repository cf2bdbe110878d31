package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sdkerrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/unit"
	"go.uber.org/zap"
)

// PackageMarker is the file that turns a subfolder into a single packaged
// candidate instead of a folder of independent manifests.
const PackageMarker = "manifest.json"

// reservedNames are first-level entries that are never treated as categories
// or candidates.
var reservedNames = map[string]struct{}{
	"testdata": {},
	"docs":     {},
	".cache":   {},
	"_base":    {},
}

// Manifest is the on-disk declaration of a unit: descriptor metadata plus the
// name of a registered factory that constructs the runtime value.
type Manifest struct {
	unit.Descriptor
	Factory string `json:"factory"`
}

// FactoryTable resolves manifest factory names to constructors.
type FactoryTable map[string]unit.Constructor

// ManifestSource walks one or more root locations for unit manifests. A
// root-level manifest file is a flat candidate; first-level subfolders that
// are not reserved act as category namespaces, and candidates found under
// them get ids prefixed with the namespace as "category.name". A subfolder
// containing the package marker is one packaged candidate; otherwise each
// manifest file in it stands alone.
type ManifestSource struct {
	roots     []string
	factories FactoryTable
	logger    *zap.Logger
}

// NewManifestSource creates a source scanning the given roots, resolving
// factory names through the supplied table.
func NewManifestSource(roots []string, factories FactoryTable, logger *zap.Logger) *ManifestSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManifestSource{
		roots:     roots,
		factories: factories,
		logger:    logger,
	}
}

// Name identifies the source in logs.
func (s *ManifestSource) Name() string {
	return "manifest"
}

// Roots returns the root locations this source scans.
func (s *ManifestSource) Roots() []string {
	return append([]string(nil), s.roots...)
}

// Discover walks every root. A single unreadable or malformed manifest is a
// discovery error: logged and skipped, never fatal to the rest of the scan.
func (s *ManifestSource) Discover(ctx context.Context) ([]Candidate, error) {
	var candidates []Candidate
	for _, root := range s.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			s.logger.Warn("cannot read discovery root",
				zap.String("root", root), zap.Error(err))
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if isReserved(name) {
				continue
			}
			path := filepath.Join(root, name)
			if !entry.IsDir() {
				if !strings.HasSuffix(name, ".json") || name == PackageMarker {
					continue
				}
				if c, ok := s.loadManifest(path, ""); ok {
					candidates = append(candidates, c)
				}
				continue
			}
			// First-level subfolder: category namespace.
			candidates = append(candidates, s.discoverCategory(path, name)...)
		}
	}
	return candidates, nil
}

// discoverCategory scans one category folder. A nested folder holding the
// package marker contributes a single candidate; loose manifest files are
// independent candidates. Every id is prefixed with the category namespace.
func (s *ManifestSource) discoverCategory(dir, category string) []Candidate {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn("cannot read category folder",
			zap.String("category", category), zap.Error(err))
		return nil
	}

	var candidates []Candidate
	for _, entry := range entries {
		name := entry.Name()
		if isReserved(name) {
			continue
		}
		path := filepath.Join(dir, name)
		if entry.IsDir() {
			marker := filepath.Join(path, PackageMarker)
			if _, err := os.Stat(marker); err != nil {
				continue
			}
			if c, ok := s.loadManifest(marker, category); ok {
				candidates = append(candidates, c)
			}
			continue
		}
		if !strings.HasSuffix(name, ".json") || name == PackageMarker {
			continue
		}
		if c, ok := s.loadManifest(path, category); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// loadManifest parses one manifest file into a candidate. Failures are
// discovery errors: logged, skipped, scan continues.
func (s *ManifestSource) loadManifest(path, category string) (Candidate, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logDiscoveryError(path, err)
		return Candidate{}, false
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		s.logDiscoveryError(path, err)
		return Candidate{}, false
	}

	id := m.ID
	if id == "" {
		base := filepath.Base(path)
		if base == PackageMarker {
			base = filepath.Base(filepath.Dir(path))
		}
		id = strings.TrimSuffix(base, ".json")
	}
	if category != "" && !strings.HasPrefix(id, category+".") {
		id = category + "." + id
	}

	ctor, ok := s.factories[m.Factory]
	if !ok {
		s.logDiscoveryError(path, fmt.Errorf("%w: unknown factory %q",
			sdkerrors.ErrDiscovery, m.Factory))
		return Candidate{}, false
	}

	desc := m.Descriptor.Clone()
	desc.ID = id
	if desc.Category == "" {
		desc.Category = category
	}

	return Candidate{
		ID:          id,
		Category:    desc.Category,
		Location:    path,
		Constructor: ctor,
		Descriptor:  desc,
	}, true
}

func (s *ManifestSource) logDiscoveryError(path string, err error) {
	s.logger.Error("skipping unloadable candidate",
		zap.String("location", path), zap.Error(err))
}

func isReserved(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	_, ok := reservedNames[name]
	return ok
}
