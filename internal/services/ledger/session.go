package ledger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kpane/banktally/internal/dependencies/clock"
	"github.com/kpane/banktally/internal/model"
	"github.com/kpane/banktally/internal/realtime"
	"github.com/kpane/banktally/internal/storage"
)

// Session is a participant's live ledger: the local optimistic copy of
// their record plus the machinery to persist mutations and roll them back
// on write failure.
//
// All role gating lives here, in the operation preconditions, rather than
// scattered across call sites: action application and undo are player-only
// operations, since the banker's net is derived and never directly
// mutated.
type Session struct {
	mu    sync.Mutex
	local *model.Participant

	storage storage.Storage
	bus     realtime.Bus
	clock   clock.Clock
	logger  *slog.Logger
}

// NewSession creates a ledger session over an existing participant record,
// typically the one returned by a room create or join.
func NewSession(
	p *model.Participant,
	storage storage.Storage,
	bus realtime.Bus,
	clock clock.Clock,
	logger *slog.Logger,
) *Session {
	return &Session{
		local:   p.Clone(),
		storage: storage,
		bus:     bus,
		clock:   clock,
		logger: logger.With(
			slog.String("component", "ledger"),
			slog.String("room", string(p.RoomCode)),
			slog.String("identity", string(p.Identity))),
	}
}

// Snapshot returns a copy of the current local state
func (s *Session) Snapshot() model.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.local.Clone()
}

// Role returns the session's immutable role
func (s *Session) Role() model.Role {
	return s.local.Role
}

// SetBase updates the base stake. The local update is immediate; the
// remote persist is best-effort with no rollback, since a stale base on
// the server corrects itself on the next successful write.
func (s *Session) SetBase(ctx context.Context, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.local.BaseStake = amount
	s.local.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveParticipant(ctx, s.local); err != nil {
		s.logger.Warn("base stake persist failed, keeping local value",
			slog.Any("error", err))
		return
	}
	s.publishChange(ctx)
}

// ApplyAction applies a multiplier action: delta = base * multiplier,
// added to the running net and recorded at the head of the round history.
// On persist failure the local state is rolled back to its exact
// pre-action values and a WriteError is returned.
func (s *Session) ApplyAction(ctx context.Context, multiplier int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.local.Role != model.RolePlayer {
		return model.ErrNotPlayer
	}
	if !s.local.BaseStake.IsPositive() {
		return model.ErrNoBaseStake
	}

	now := s.clock.Now()
	return mutation{
		op: "apply action",
		apply: func(p *model.Participant) {
			delta := p.BaseStake.Mul(decimal.NewFromInt(int64(multiplier)))
			p.CurrentNet = p.CurrentNet.Add(delta)
			p.LastDelta = delta
			p.Rounds = append([]model.Round{{
				Multiplier: multiplier,
				Amount:     delta,
				Timestamp:  now,
			}}, p.Rounds...)
		},
	}.run(ctx, s)
}

// Undo reverses the most recent action and truncates the head of the
// round history. Undo depth is strictly 1: the consumed delta is zeroed
// and a second undo returns ErrNothingToUndo without changing anything.
func (s *Session) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.local.Role != model.RolePlayer {
		return model.ErrNotPlayer
	}
	if s.local.LastDelta.IsZero() {
		return model.ErrNothingToUndo
	}

	return mutation{
		op: "undo",
		apply: func(p *model.Participant) {
			p.CurrentNet = p.CurrentNet.Sub(p.LastDelta)
			p.LastDelta = decimal.Zero
			if len(p.Rounds) > 0 {
				p.Rounds = p.Rounds[1:]
			}
		},
	}.run(ctx, s)
}

// MassTie inserts count zero-value rounds at the head of the history,
// bringing the round count up without touching the net. Used exclusively
// by the catch-up protocol after the player confirms.
func (s *Session) MassTie(ctx context.Context, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if count <= 0 {
		return nil
	}

	now := s.clock.Now()
	return mutation{
		op: "mass tie",
		apply: func(p *model.Participant) {
			ties := make([]model.Round, count, count+len(p.Rounds))
			for i := range ties {
				ties[i] = model.Round{
					Multiplier: 0,
					Amount:     decimal.Zero,
					Timestamp:  now,
				}
			}
			p.Rounds = append(ties, p.Rounds...)
			p.LastDelta = decimal.Zero
		},
	}.run(ctx, s)
}

// publishChange emits a change notification for the current local record.
// Caller must hold the mutex. Publish failures are logged, not surfaced:
// the write itself succeeded and consumers recover on their next re-fetch.
func (s *Session) publishChange(ctx context.Context) {
	event := model.ChangeEvent{
		RoomCode:  s.local.RoomCode,
		Identity:  s.local.Identity,
		UpdatedAt: s.local.UpdatedAt,
	}
	if err := s.bus.PublishChange(ctx, event); err != nil {
		s.logger.Warn("failed to publish change event", slog.Any("error", err))
	}
}
