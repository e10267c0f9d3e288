package storage

import (
	"context"

	"github.com/kpane/banktally/internal/model"
)

// Storage is the shared backing store for rooms and participant records.
// It provides last-writer-wins semantics per record; the session engine
// relies on each participant record having exactly one legitimate writer.
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)

	// Participant operations. Records are keyed by (room code, identity)
	// and upserted, never duplicated.
	SaveParticipant(ctx context.Context, p *model.Participant) error
	GetParticipant(ctx context.Context, code model.RoomCode, id model.Identity) (*model.Participant, error)
	ListParticipants(ctx context.Context, code model.RoomCode) ([]*model.Participant, error)

	// CountPlayers returns the number of non-banker participants in a room
	CountPlayers(ctx context.Context, code model.RoomCode) (int, error)
}
