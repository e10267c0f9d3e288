package solo

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kpane/banktally/internal/localstore"
)

// State is the single-player ledger state. It mirrors the multiplayer
// participant contract without any network: one base stake, one running
// net, one level of undo.
type State struct {
	BaseStake  decimal.Decimal `json:"base_stake"`
	CurrentNet decimal.Decimal `json:"current_net"`
	LastDelta  decimal.Decimal `json:"last_delta"`
}

// Session is the offline/solo session store. All operations are
// synchronous; a local persistence failure silently degrades that call to
// in-memory-only, it never fails an operation.
type Session struct {
	mu     sync.Mutex
	state  State
	store  localstore.Store
	logger *slog.Logger
}

// New creates a solo session backed by the given local store
func New(store localstore.Store, logger *slog.Logger) *Session {
	return &Session{
		state:  zeroState(),
		store:  store,
		logger: logger.With(slog.String("component", "solo")),
	}
}

func zeroState() State {
	return State{
		BaseStake:  decimal.Zero,
		CurrentNet: decimal.Zero,
		LastDelta:  decimal.Zero,
	}
}

// Load restores previously persisted solo state, if any
func (s *Session) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Get(localstore.KeySoloState)
	if err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return nil
		}
		return err
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return err
	}
	s.state = state
	return nil
}

// State returns a copy of the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetBase sets the base stake. Any numeric value is accepted; a zero or
// negative base simply disables action application.
func (s *Session) SetBase(amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.BaseStake = amount
	s.persist()
}

// ApplyAction applies a multiplier action: delta = base * multiplier.
// No-op when the base stake is zero or negative.
func (s *Session) ApplyAction(multiplier int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.BaseStake.IsPositive() {
		return
	}

	delta := s.state.BaseStake.Mul(decimal.NewFromInt(int64(multiplier)))
	s.state.CurrentNet = s.state.CurrentNet.Add(delta)
	s.state.LastDelta = delta
	s.persist()
}

// Undo reverses the most recent action. Undo depth is strictly 1; calling
// it again without an intervening action is a no-op.
func (s *Session) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.LastDelta.IsZero() {
		return
	}

	s.state.CurrentNet = s.state.CurrentNet.Sub(s.state.LastDelta)
	s.state.LastDelta = decimal.Zero
	s.persist()
}

// Exit clears all solo state and its persisted keys
func (s *Session) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = zeroState()
	if err := s.store.Remove(localstore.KeySoloState); err != nil {
		s.logger.Warn("failed to clear solo state", slog.Any("error", err))
	}
}

// persist writes the state to local storage. Caller must hold the mutex.
func (s *Session) persist() {
	data, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Warn("failed to encode solo state", slog.Any("error", err))
		return
	}
	if err := s.store.Set(localstore.KeySoloState, string(data)); err != nil {
		s.logger.Warn("failed to persist solo state, continuing in memory",
			slog.Any("error", err))
	}
}
