package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kpane/banktally/internal/model"
	"github.com/kpane/banktally/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Client exposes the underlying connection so the realtime bus can share it
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, roomKey(room.Code), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// Participant operations

func (s *Storage) SaveParticipant(ctx context.Context, p *model.Participant) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	// Pipeline the record write with the room index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, participantKey(p.RoomCode, p.Identity), data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, participantsIndexKey(p.RoomCode), string(p.Identity))
	if s.cfg.SessionTTL > 0 {
		pipe.Expire(ctx, participantsIndexKey(p.RoomCode), s.cfg.SessionTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetParticipant(ctx context.Context, code model.RoomCode, id model.Identity) (*model.Participant, error) {
	data, err := s.client.Get(ctx, participantKey(code, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}

	var p model.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) ListParticipants(ctx context.Context, code model.RoomCode) ([]*model.Participant, error) {
	ids, err := s.client.SMembers(ctx, participantsIndexKey(code)).Result()
	if err != nil {
		return nil, err
	}

	var result []*model.Participant
	for _, id := range ids {
		p, err := s.GetParticipant(ctx, code, model.Identity(id))
		if err != nil {
			if errors.Is(err, model.ErrParticipantNotFound) {
				// Record expired out from under the index; skip it
				continue
			}
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

func (s *Storage) CountPlayers(ctx context.Context, code model.RoomCode) (int, error) {
	participants, err := s.ListParticipants(ctx, code)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, p := range participants {
		if p.Role == model.RolePlayer {
			count++
		}
	}
	return count, nil
}
