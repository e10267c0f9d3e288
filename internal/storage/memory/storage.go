package memory

import (
	"context"
	"sync"

	"github.com/kpane/banktally/internal/model"
	"github.com/kpane/banktally/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied on save and read so callers never share memory with
// the store, matching the behavior of a remote backend.
type Storage struct {
	mu sync.RWMutex

	rooms        map[model.RoomCode]*model.Room
	participants map[participantKey]*model.Participant
}

type participantKey struct {
	code     model.RoomCode
	identity model.Identity
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:        make(map[model.RoomCode]*model.Room),
		participants: make(map[participantKey]*model.Participant),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *room
	s.rooms[room.Code] = &cp
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

// Participant operations

func (s *Storage) SaveParticipant(ctx context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[participantKey{p.RoomCode, p.Identity}] = p.Clone()
	return nil
}

func (s *Storage) GetParticipant(ctx context.Context, code model.RoomCode, id model.Identity) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[participantKey{code, id}]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	return p.Clone(), nil
}

func (s *Storage) ListParticipants(ctx context.Context, code model.RoomCode) ([]*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.Participant
	for key, p := range s.participants {
		if key.code == code {
			result = append(result, p.Clone())
		}
	}
	return result, nil
}

func (s *Storage) CountPlayers(ctx context.Context, code model.RoomCode) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for key, p := range s.participants {
		if key.code == code && p.Role == model.RolePlayer {
			count++
		}
	}
	return count, nil
}
