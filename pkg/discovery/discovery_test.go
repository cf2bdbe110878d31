package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wehubfusion/Daedalus/pkg/unit"
	"go.uber.org/zap"
)

func noopConstructor() (interface{}, error) {
	return struct{}{}, nil
}

func writeManifest(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testFactories() FactoryTable {
	return FactoryTable{"noop": noopConstructor}
}

func TestManifestSourceFlatCandidate(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "echo.json"),
		`{"id":"echo","name":"Echo","factory":"noop","tags":["util"]}`)

	src := NewManifestSource([]string{root}, testFactories(), zap.NewNop())
	candidates, err := src.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "echo", c.ID)
	require.NotNil(t, c.Descriptor)
	assert.Equal(t, "Echo", c.Descriptor.Name)
	assert.Equal(t, []string{"util"}, c.Descriptor.Tags)
	require.NotNil(t, c.Constructor)
}

func TestManifestSourceCategoryNamespacing(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "text", "upper.json"),
		`{"factory":"noop"}`)

	src := NewManifestSource([]string{root}, testFactories(), zap.NewNop())
	candidates, err := src.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, "text.upper", candidates[0].ID)
	assert.Equal(t, "text", candidates[0].Category)
}

func TestManifestSourcePackagedCandidate(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "text", "reverse", PackageMarker),
		`{"factory":"noop","description":"reverses strings"}`)

	src := NewManifestSource([]string{root}, testFactories(), zap.NewNop())
	candidates, err := src.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "text.reverse", candidates[0].ID)
}

func TestManifestSourceSkipsReservedNames(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "testdata", "unit.json"), `{"factory":"noop"}`)
	writeManifest(t, filepath.Join(root, "docs", "unit.json"), `{"factory":"noop"}`)
	writeManifest(t, filepath.Join(root, ".cache", "unit.json"), `{"factory":"noop"}`)
	writeManifest(t, filepath.Join(root, "_base", "unit.json"), `{"factory":"noop"}`)
	writeManifest(t, filepath.Join(root, "real.json"), `{"factory":"noop"}`)

	src := NewManifestSource([]string{root}, testFactories(), zap.NewNop())
	candidates, err := src.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "real", candidates[0].ID)
}

func TestManifestSourceSkipsBadManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "broken.json"), `{not json`)
	writeManifest(t, filepath.Join(root, "unknown.json"), `{"factory":"ghost"}`)
	writeManifest(t, filepath.Join(root, "good.json"), `{"factory":"noop"}`)

	src := NewManifestSource([]string{root}, testFactories(), zap.NewNop())
	candidates, err := src.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "good", candidates[0].ID)
}

func TestStaticSourceReplacesOnReRegister(t *testing.T) {
	src := NewStaticSource(zap.NewNop())
	src.Register("dup", "one", noopConstructor)
	src.Register("dup", "two", noopConstructor)

	candidates, err := src.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "two", candidates[0].Category)
}

func TestScannerLaterSourceWins(t *testing.T) {
	first := NewStaticSource(zap.NewNop())
	first.RegisterCandidate(Candidate{ID: "shared", Category: "old", Constructor: noopConstructor})
	second := NewStaticSource(zap.NewNop())
	second.RegisterCandidate(Candidate{ID: "shared", Category: "new", Constructor: noopConstructor})

	scanner := NewScanner(zap.NewNop(), first, second)
	candidates, duration := scanner.Scan(context.Background())
	require.Len(t, candidates, 1)
	assert.Equal(t, "new", candidates[0].Category)
	assert.GreaterOrEqual(t, duration.Nanoseconds(), int64(0))
}

func TestScannerMergesSources(t *testing.T) {
	static := NewStaticSource(zap.NewNop())
	static.Register("builtin", "core", noopConstructor)

	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "extra.json"), `{"factory":"noop"}`)
	manifests := NewManifestSource([]string{root}, testFactories(), zap.NewNop())

	scanner := NewScanner(zap.NewNop(), static, manifests)
	candidates, _ := scanner.Scan(context.Background())
	require.Len(t, candidates, 2)
	assert.Equal(t, "builtin", candidates[0].ID)
	assert.Equal(t, "extra", candidates[1].ID)
}

func TestCandidateIDForPath(t *testing.T) {
	root := filepath.Join("/", "plugins")
	roots := []string{root}

	assert.Equal(t, "echo", candidateIDForPath(filepath.Join(root, "echo.json"), roots))
	assert.Equal(t, "text.upper", candidateIDForPath(filepath.Join(root, "text", "upper.json"), roots))
	assert.Equal(t, "text.reverse", candidateIDForPath(filepath.Join(root, "text", "reverse", PackageMarker), roots))
	assert.Equal(t, "", candidateIDForPath(filepath.Join(root, "testdata", "x.json"), roots))
	assert.Equal(t, "", candidateIDForPath(filepath.Join("/", "elsewhere", "x.json"), roots))
}

var _ unit.Constructor = noopConstructor
