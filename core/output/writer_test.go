package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	w, err := New("")
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, w.OutputDir)
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	w, err := New(dir)
	require.NoError(t, err)
	assert.DirExists(t, w.OutputDir)
}

func TestWriteReplacesAtomically(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)

	path := w.Path("sub/out.txt")
	require.NoError(t, w.Write(path, []byte("first")))
	require.NoError(t, w.Write(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestPathKeepsAbsoluteNames(t *testing.T) {
	w := &Writer{OutputDir: "/out"}
	abs := filepath.Join(t.TempDir(), "x.txt")
	assert.Equal(t, abs, w.Path(abs))
	assert.Equal(t, filepath.Join("/out", "x.txt"), w.Path("x.txt"))
}
