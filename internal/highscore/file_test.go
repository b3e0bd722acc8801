package highscore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "score.json")
	store := NewFileStore(path)

	best, err := store.Load()
	require.NoError(t, err)
	assert.Zero(t, best, "missing file means no score yet")

	isNew, err := store.Record(3)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.Record(3)
	require.NoError(t, err)
	assert.False(t, isNew)

	best, err = NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 3, best, "survives a new store instance")
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "score.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	store := NewFileStore(path)

	_, err := store.Load()
	assert.Error(t, err)

	isNew, err := store.Record(2)
	require.NoError(t, err)
	assert.True(t, isNew)

	best, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, best)
}
