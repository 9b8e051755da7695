package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalker_List(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b_l_persian.yml"), "")
	writeFile(t, filepath.Join(dir, "a_l_persian.YML"), "")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yml"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub", "deep.yml"), "")

	entries, err := NewWalker(".yml").List(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "a_l_persian.YML", entries[0].Name)
	assert.Equal(t, filepath.Join(dir, "a_l_persian.YML"), entries[0].Path)
	assert.Equal(t, "b_l_persian.yml", entries[1].Name)
}

func TestWalker_ListEmpty(t *testing.T) {
	entries, err := NewWalker(".yml").List(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWalker_ListMissing(t *testing.T) {
	_, err := NewWalker(".yml").List(filepath.Join(t.TempDir(), "gone"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWalker_Matches(t *testing.T) {
	w := NewWalker(".YML")
	assert.True(t, w.Matches("x.yml"))
	assert.True(t, w.Matches("x.Yml"))
	assert.False(t, w.Matches("x.yaml"))
}
