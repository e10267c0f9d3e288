package localstore

import "errors"

// ErrKeyNotFound is returned by Get when the key has no value
var ErrKeyNotFound = errors.New("key not found")

// Store is the device-local persistence contract. It holds small,
// per-device strings: the identity token, single-player session state,
// the auto-rejoin room code and the display name.
//
// Implementations are not shared between devices; the multiplayer store
// lives in the storage package.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound
	Get(key string) (string, error)

	// Set stores the value for key, overwriting any existing value
	Set(key, value string) error

	// Remove deletes the key. Removing a missing key is not an error.
	Remove(key string) error
}

// Well-known keys used by the session engine
const (
	KeyIdentity    = "identity"
	KeyDisplayName = "display_name"
	KeyRejoinRoom  = "rejoin_room"
	KeySoloState   = "solo_state"
)
