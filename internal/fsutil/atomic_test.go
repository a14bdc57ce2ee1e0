package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sadopc/worktime/internal/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs.tsv")
	data := []byte("100\twork\n")

	err := fsutil.AtomicWrite(path, data, 0644, true)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, content)
}

func TestAtomicWrite_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs.tsv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	err := fsutil.AtomicWrite(path, []byte("new"), 0644, true)
	require.NoError(t, err)

	content, _ := os.ReadFile(path)
	assert.Equal(t, "new", string(content))
}

func TestAtomicWrite_NoTmpLeftOnSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs.tsv")
	require.NoError(t, fsutil.AtomicWrite(path, []byte("data"), 0644, true))

	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1, "only the target file should exist")
}

func TestAtomicWrite_MissingDirFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "logs.tsv")
	err := fsutil.AtomicWrite(path, []byte("data"), 0644, true)
	assert.Error(t, err)
}

func TestAtomicWrite_WithoutSync(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "last_check")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0644))

	require.NoError(t, fsutil.AtomicWrite(path, []byte("2\n"), 0600, false))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2\n", string(content))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1, "only the target file should exist")
}

func TestCopyNew_PicksFreeName(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "logs.tsv")
	require.NoError(t, os.WriteFile(src, []byte("1\twork\n"), 0644))
	base := src + ".bck42"

	first, err := fsutil.CopyNew(src, base)
	require.NoError(t, err)
	assert.Equal(t, base, first)

	second, err := fsutil.CopyNew(src, base)
	require.NoError(t, err)
	assert.Equal(t, base+".1", second)

	content, _ := os.ReadFile(second)
	assert.Equal(t, "1\twork\n", string(content))
}
