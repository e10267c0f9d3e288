package identity

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kpane/banktally/internal/localstore"
	"github.com/kpane/banktally/internal/model"
)

// Provider mints and persists the device's opaque identity.
type Provider struct {
	store localstore.Store
}

// NewProvider creates an identity provider backed by the given local store
func NewProvider(store localstore.Store) *Provider {
	return &Provider{store: store}
}

// GetOrCreate returns the device identity, generating and persisting a
// fresh one on first use. The identity must be durably stored before it is
// handed out: a generated-but-unpersisted identity would be regenerated on
// restart and orphan the device's participant records, so a persist
// failure here is returned as an error rather than papered over.
//
// Idempotent: repeated calls return the same identity for the lifetime of
// the local store.
func (p *Provider) GetOrCreate() (model.Identity, error) {
	existing, err := p.store.Get(localstore.KeyIdentity)
	if err == nil && existing != "" {
		return model.Identity(existing), nil
	}
	if err != nil && !errors.Is(err, localstore.ErrKeyNotFound) {
		return "", fmt.Errorf("reading identity: %w", err)
	}

	id := uuid.NewString()
	if err := p.store.Set(localstore.KeyIdentity, id); err != nil {
		return "", fmt.Errorf("persisting identity: %w", err)
	}
	return model.Identity(id), nil
}
