package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpane/banktally/internal/localstore"
	"github.com/kpane/banktally/internal/model"
)

// failingStore always fails writes, to verify a half-minted identity is
// never handed out.
type failingStore struct {
	localstore.Store
}

func (f *failingStore) Set(key, value string) error {
	return errors.New("disk full")
}

func TestGetOrCreateMintsIdentityOnFirstUse(t *testing.T) {
	store := localstore.NewMemoryStore()
	provider := NewProvider(store)

	id, err := provider.GetOrCreate()
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// Persisted before being handed out
	saved, err := store.Get(localstore.KeyIdentity)
	require.NoError(t, err)
	assert.Equal(t, model.Identity(saved), id)
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	provider := NewProvider(localstore.NewMemoryStore())

	first, err := provider.GetOrCreate()
	require.NoError(t, err)

	second, err := provider.GetOrCreate()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetOrCreateReturnsExistingIdentity(t *testing.T) {
	store := localstore.NewMemoryStore()
	require.NoError(t, store.Set(localstore.KeyIdentity, "existing-id"))

	id, err := NewProvider(store).GetOrCreate()
	require.NoError(t, err)
	assert.Equal(t, model.Identity("existing-id"), id)
}

func TestGetOrCreateFailsWhenPersistFails(t *testing.T) {
	provider := NewProvider(&failingStore{Store: localstore.NewMemoryStore()})

	_, err := provider.GetOrCreate()
	assert.Error(t, err)
}
