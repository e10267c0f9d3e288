package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kpane/banktally/internal/dependencies/clock"
	"github.com/kpane/banktally/internal/dependencies/random"
	"github.com/kpane/banktally/internal/model"
	"github.com/kpane/banktally/internal/realtime"
	"github.com/kpane/banktally/internal/storage"
)

const (
	// Room codes are 4-6 digits, chosen for shareability over uniqueness.
	// Codes are NOT checked for collisions at creation time: the space is
	// small and a clash simply means two groups share a room, which the
	// original product accepted. See DESIGN.md before adding a retry loop.
	minCodeLength = 4
	maxCodeLength = 6
)

// Controller manages the room directory: creation, joining and ending
type Controller struct {
	storage storage.Storage
	bus     realtime.Bus
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new room directory controller
func NewController(
	storage storage.Storage,
	bus realtime.Bus,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		bus:     bus,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "room")),
	}
}

// JoinResult is the outcome of a successful join
type JoinResult struct {
	Role        model.Role
	Participant *model.Participant
	// Rejoined is true when the identity already had a record in the room
	// and its persisted state was restored instead of reset
	Rejoined bool
}

// Create generates a room with a fresh code, owned by the given identity
// as banker, and upserts the banker's participant record.
func (c *Controller) Create(ctx context.Context, id model.Identity, displayName string) (*model.Room, error) {
	now := c.clock.Now()

	length := c.random.IntBetween(minCodeLength, maxCodeLength)
	code := model.RoomCode(c.random.String(length, random.Digits))

	room := &model.Room{
		Code:           code,
		BankerIdentity: id,
		Status:         model.RoomStatusActive,
		CreatedAt:      now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("creating room: %w", err)
	}

	banker := newParticipant(id, code, model.RoleBanker, displayName, now)
	if err := c.storage.SaveParticipant(ctx, banker); err != nil {
		return nil, fmt.Errorf("creating banker record: %w", err)
	}

	c.logger.Info("room created",
		slog.String("room", string(code)),
		slog.String("banker", string(id)))
	return room, nil
}

// Get retrieves a room by code
func (c *Controller) Get(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.storage.GetRoom(ctx, code)
}

// Join adds an identity to a room, or restores its existing record.
//
// The check order matters: existence and active-status precede the
// capacity check, and a reconnection bypasses capacity entirely because
// the record already exists and a rejoin must never count against the
// room-full limit.
func (c *Controller) Join(ctx context.Context, id model.Identity, code model.RoomCode, displayName string) (*JoinResult, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if !room.IsActive() {
		return nil, model.ErrRoomEnded
	}

	// Reconnection: reuse the persisted record untouched
	existing, err := c.storage.GetParticipant(ctx, code, id)
	if err == nil {
		c.logger.Info("participant rejoined",
			slog.String("room", string(code)),
			slog.String("identity", string(id)))
		return &JoinResult{
			Role:        existing.Role,
			Participant: existing,
			Rejoined:    true,
		}, nil
	}
	if !errors.Is(err, model.ErrParticipantNotFound) {
		return nil, err
	}

	count, err := c.storage.CountPlayers(ctx, code)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxPlayers {
		return nil, model.ErrRoomFull
	}

	role := model.RolePlayer
	if id == room.BankerIdentity {
		role = model.RoleBanker
	}

	p := newParticipant(id, code, role, displayName, c.clock.Now())
	if err := c.storage.SaveParticipant(ctx, p); err != nil {
		return nil, fmt.Errorf("creating participant record: %w", err)
	}

	c.publishChange(ctx, p)

	c.logger.Info("participant joined",
		slog.String("room", string(code)),
		slog.String("identity", string(id)),
		slog.String("role", string(role)))
	return &JoinResult{Role: role, Participant: p}, nil
}

// End marks the room as ended. Idempotent; the transition is terminal.
func (c *Controller) End(ctx context.Context, code model.RoomCode) error {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return err
	}

	if room.Status == model.RoomStatusEnded {
		return nil
	}

	room.Status = model.RoomStatusEnded
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return fmt.Errorf("ending room: %w", err)
	}

	c.logger.Info("room ended", slog.String("room", string(code)))
	return nil
}

func (c *Controller) publishChange(ctx context.Context, p *model.Participant) {
	event := model.ChangeEvent{
		RoomCode:  p.RoomCode,
		Identity:  p.Identity,
		UpdatedAt: p.UpdatedAt,
	}
	if err := c.bus.PublishChange(ctx, event); err != nil {
		c.logger.Warn("failed to publish change event",
			slog.String("room", string(p.RoomCode)),
			slog.Any("error", err))
	}
}

// newParticipant builds a fresh zeroed participant record
func newParticipant(id model.Identity, code model.RoomCode, role model.Role, displayName string, now time.Time) *model.Participant {
	return &model.Participant{
		Identity:    id,
		RoomCode:    code,
		Role:        role,
		BaseStake:   decimal.Zero,
		CurrentNet:  decimal.Zero,
		LastDelta:   decimal.Zero,
		Rounds:      []model.Round{},
		DisplayName: displayName,
		UpdatedAt:   now,
	}
}

// Interface for dependency injection
type ControllerInterface interface {
	Create(ctx context.Context, id model.Identity, displayName string) (*model.Room, error)
	Get(ctx context.Context, code model.RoomCode) (*model.Room, error)
	Join(ctx context.Context, id model.Identity, code model.RoomCode, displayName string) (*JoinResult, error)
	End(ctx context.Context, code model.RoomCode) error
}

var _ ControllerInterface = (*Controller)(nil)
