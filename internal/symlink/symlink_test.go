package symlink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureCreatesLink(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "generated", "python")
	require.NoError(t, os.MkdirAll(source, 0755))
	target := filepath.Join(dir, "service", "mount")

	require.NoError(t, Ensure(source, target))

	got, err := os.Readlink(target)
	require.NoError(t, err)
	assert.Equal(t, source, got)
}

func TestEnsureIdempotent(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(source, 0755))
	target := filepath.Join(dir, "mount")

	require.NoError(t, Ensure(source, target))
	require.NoError(t, Ensure(source, target))

	got, err := os.Readlink(target)
	require.NoError(t, err)
	assert.Equal(t, source, got)
}

func TestEnsureReplacesFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(source, 0755))
	target := filepath.Join(dir, "mount")
	require.NoError(t, os.WriteFile(target, []byte("stale"), 0644))

	require.NoError(t, Ensure(source, target))

	info, err := os.Lstat(target)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}

func TestEnsureReplacesStaleLink(t *testing.T) {
	dir := t.TempDir()
	oldSource := filepath.Join(dir, "old")
	newSource := filepath.Join(dir, "new")
	require.NoError(t, os.MkdirAll(oldSource, 0755))
	require.NoError(t, os.MkdirAll(newSource, 0755))
	target := filepath.Join(dir, "mount")
	require.NoError(t, os.Symlink(oldSource, target))

	require.NoError(t, Ensure(newSource, target))

	got, err := os.Readlink(target)
	require.NoError(t, err)
	assert.Equal(t, newSource, got)
}

func TestEnsureRefusesRealDirectory(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(source, 0755))
	target := filepath.Join(dir, "mount")
	require.NoError(t, os.MkdirAll(target, 0755))
	marker := filepath.Join(target, "user-data.txt")
	require.NoError(t, os.WriteFile(marker, []byte("keep me"), 0644))

	err := Ensure(source, target)
	require.Error(t, err)
	assert.True(t, IsConflict(err), "expected ConflictError, got %v", err)

	// The directory and its contents must be untouched.
	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestFindBroken(t *testing.T) {
	dir := t.TempDir()
	live := filepath.Join(dir, "live-target")
	require.NoError(t, os.MkdirAll(live, 0755))

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))

	liveLink := filepath.Join(dir, "live-link")
	require.NoError(t, os.Symlink(live, liveLink))
	brokenLink := filepath.Join(sub, "broken-link")
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), brokenLink))

	broken, err := FindBroken(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{brokenLink}, broken)
}

func TestRemoveBrokenRepeatable(t *testing.T) {
	dir := t.TempDir()
	brokenLink := filepath.Join(dir, "broken")
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), brokenLink))

	require.NoError(t, RemoveBroken(dir))
	_, err := os.Lstat(brokenLink)
	assert.True(t, os.IsNotExist(err))

	// Second pass finds nothing and still succeeds.
	require.NoError(t, RemoveBroken(dir))
}
