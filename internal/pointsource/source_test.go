package pointsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pointwatch/internal/errors"
)

func TestNormalizeNames(t *testing.T) {
	// "é" composed vs decomposed must collapse to one entry.
	composed := "temp.étage"
	decomposed := "temp.étage"

	got := normalizeNames([]string{" a ", "b", "a", "", composed, decomposed})
	assert.Equal(t, []string{"a", "b", composed}, got)
}

func TestFileSourceListPointNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.yaml")
	content := `
sources:
  line1:
    - temp.zone1
    - temp.zone2
    - temp.zone1
  line2:
    - pressure.main
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src := NewFileSource(path)
	names, err := src.ListPointNames(t.Context(), "line1")
	require.NoError(t, err)
	assert.Equal(t, []string{"temp.zone1", "temp.zone2"}, names)
}

func TestFileSourceUnknownSourceID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: {}\n"), 0o644))

	_, err := NewFileSource(path).ListPointNames(t.Context(), "nope")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := NewFileSource("/does/not/exist.yaml").ListPointNames(t.Context(), "line1")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestSQLiteSourceRoundTrip(t *testing.T) {
	src, err := NewSQLiteSource(":memory:")
	require.NoError(t, err)
	defer src.Close()

	ctx := t.Context()
	require.NoError(t, src.AddPoint(ctx, "line1", "temp.zone2", 2))
	require.NoError(t, src.AddPoint(ctx, "line1", "temp.zone1", 1))
	require.NoError(t, src.AddPoint(ctx, "line2", "pressure.main", 1))

	names, err := src.ListPointNames(ctx, "line1")
	require.NoError(t, err)
	assert.Equal(t, []string{"temp.zone1", "temp.zone2"}, names, "position column orders the result")

	require.NoError(t, src.RemovePoint(ctx, "line1", "temp.zone1"))
	names, err = src.ListPointNames(ctx, "line1")
	require.NoError(t, err)
	assert.Equal(t, []string{"temp.zone2"}, names)
}

func TestSQLiteSourceEmptySource(t *testing.T) {
	src, err := NewSQLiteSource(":memory:")
	require.NoError(t, err)
	defer src.Close()

	names, err := src.ListPointNames(t.Context(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, names, "unknown source id yields an empty list, emptiness is policy for the caller")
}
