package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both implementations satisfy the same contract; run the shared cases
// against each.
func stores(t *testing.T) map[string]Store {
	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
	}
}

func TestSetAndGet(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set("k", "v"))

			value, err := store.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "v", value)
		})
	}
}

func TestGetMissingKey(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("missing")
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestSetOverwrites(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set("k", "v1"))
			require.NoError(t, store.Set("k", "v2"))

			value, err := store.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "v2", value)
		})
	}
}

func TestRemove(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set("k", "v"))
			require.NoError(t, store.Remove("k"))

			_, err := store.Get("k")
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestRemoveMissingKeyIsNotAnError(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, store.Remove("missing"))
		})
	}
}

// File-specific behavior

func TestFileStoreReloadsExistingContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("identity", "abc"))
	require.NoError(t, first.Set("rejoin_room", "1234"))

	second, err := NewFileStore(path)
	require.NoError(t, err)

	value, err := second.Get("identity")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	value, err = second.Get("rejoin_room")
	require.NoError(t, err)
	assert.Equal(t, "1234", value)
}

func TestFileStoreCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err := NewFileStore(path)
	assert.Error(t, err)
}
