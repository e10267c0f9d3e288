package redis

import (
	"fmt"

	"github.com/kpane/banktally/internal/model"
)

// Key prefix for all session-related data
const keyPrefix = "banktally"

// roomKey returns the Redis key for a Room
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// participantKey returns the Redis key for a Participant
func participantKey(code model.RoomCode, id model.Identity) string {
	return fmt.Sprintf("%s:participant:%s:%s", keyPrefix, code, id)
}

// participantsIndexKey returns the Redis key for the SET of participant
// identities in a room
func participantsIndexKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:idx:participants:%s", keyPrefix, code)
}
