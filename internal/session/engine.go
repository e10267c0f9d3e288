package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kpane/banktally/internal/dependencies/clock"
	"github.com/kpane/banktally/internal/identity"
	"github.com/kpane/banktally/internal/localstore"
	"github.com/kpane/banktally/internal/model"
	"github.com/kpane/banktally/internal/realtime"
	"github.com/kpane/banktally/internal/services/catchup"
	"github.com/kpane/banktally/internal/services/ledger"
	"github.com/kpane/banktally/internal/services/room"
	"github.com/kpane/banktally/internal/services/syncer"
	"github.com/kpane/banktally/internal/solo"
	"github.com/kpane/banktally/internal/storage"
)

// Mode is the device session mode. Exactly one mode is active at a time:
// a device cannot be in two rooms, or in a room and a solo session, at
// once.
type Mode string

const (
	ModeUnselected   Mode = "unselected"
	ModeSinglePlayer Mode = "single_player"
	ModeMultiplayer  Mode = "multiplayer"
)

// ErrInvalidMode is returned for transitions not allowed from the current mode
var ErrInvalidMode = errors.New("operation not valid in current session mode")

// RoomSession is the live multiplayer state for the device: its ledger,
// its role-dependent realtime consumers, and the catch-up machinery for
// that role.
type RoomSession struct {
	Code model.RoomCode
	Role model.Role

	Ledger *ledger.Session

	// Banker side: full-room snapshots recomputed on every change, and the
	// proposer for catch-up requests. Nil channels for players.
	Snapshots <-chan syncer.Snapshot
	Proposer  *catchup.Proposer

	// Player side: the pending catch-up coordinator, fed automatically
	// from directed control messages. Nil for the banker.
	Coordinator *catchup.Coordinator

	cancel context.CancelFunc
}

// Engine is the explicit device session state machine. It replaces any
// notion of ambient global session state: everything live hangs off the
// engine, and transitions are methods with preconditions.
type Engine struct {
	mu    sync.Mutex
	mode  Mode
	solo  *solo.Session
	multi *RoomSession

	ids     *identity.Provider
	local   localstore.Store
	rooms   *room.Controller
	storage storage.Storage
	bus     realtime.Bus
	clock   clock.Clock
	syncer  *syncer.Synchronizer
	logger  *slog.Logger
}

// Config holds the engine's collaborators
type Config struct {
	Local   localstore.Store
	Rooms   *room.Controller
	Storage storage.Storage
	Bus     realtime.Bus
	Clock   clock.Clock
	Logger  *slog.Logger
}

// NewEngine creates a device session engine in the unselected mode
func NewEngine(cfg Config) *Engine {
	return &Engine{
		mode:    ModeUnselected,
		ids:     identity.NewProvider(cfg.Local),
		local:   cfg.Local,
		rooms:   cfg.Rooms,
		storage: cfg.Storage,
		bus:     cfg.Bus,
		clock:   cfg.Clock,
		syncer:  syncer.New(cfg.Storage, cfg.Bus, cfg.Logger),
		logger:  cfg.Logger.With(slog.String("component", "session")),
	}
}

// Mode returns the current session mode
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Solo returns the active single-player session, or nil
func (e *Engine) Solo() *solo.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.solo
}

// Room returns the active multiplayer session, or nil
func (e *Engine) Room() *RoomSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.multi
}

// StartSolo enters single-player mode, restoring any persisted solo state.
// Solo mode never needs the device identity, so local storage trouble
// degrades to in-memory play rather than failing.
func (e *Engine) StartSolo() (*solo.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeUnselected {
		return nil, ErrInvalidMode
	}

	s := solo.New(e.local, e.logger)
	if err := s.Load(); err != nil {
		e.logger.Warn("could not restore solo state, starting fresh",
			slog.Any("error", err))
	}

	e.solo = s
	e.mode = ModeSinglePlayer
	return s, nil
}

// ExitSolo clears the solo session and returns to the unselected mode
func (e *Engine) ExitSolo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeSinglePlayer {
		return ErrInvalidMode
	}

	e.solo.Exit()
	e.solo = nil
	e.mode = ModeUnselected
	return nil
}

// CreateRoom creates a room with this device as banker and enters
// multiplayer mode.
func (e *Engine) CreateRoom(ctx context.Context, displayName string) (*RoomSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeUnselected {
		return nil, ErrInvalidMode
	}

	id, err := e.ids.GetOrCreate()
	if err != nil {
		return nil, err
	}

	r, err := e.rooms.Create(ctx, id, displayName)
	if err != nil {
		return nil, err
	}

	banker, err := e.storage.GetParticipant(ctx, r.Code, id)
	if err != nil {
		return nil, err
	}

	return e.enterRoom(ctx, banker, displayName)
}

// JoinRoom joins (or rejoins) a room and enters multiplayer mode
func (e *Engine) JoinRoom(ctx context.Context, code model.RoomCode, displayName string) (*RoomSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeUnselected {
		return nil, ErrInvalidMode
	}

	id, err := e.ids.GetOrCreate()
	if err != nil {
		return nil, err
	}

	result, err := e.rooms.Join(ctx, id, code, displayName)
	if err != nil {
		return nil, err
	}

	return e.enterRoom(ctx, result.Participant, displayName)
}

// RejoinLast re-enters the room recorded by the last create/join, if any.
// Returns (nil, nil) when there is nothing to rejoin.
func (e *Engine) RejoinLast(ctx context.Context) (*RoomSession, error) {
	code, err := e.local.Get(localstore.KeyRejoinRoom)
	if err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	name, err := e.local.Get(localstore.KeyDisplayName)
	if err != nil && !errors.Is(err, localstore.ErrKeyNotFound) {
		return nil, err
	}

	return e.JoinRoom(ctx, model.RoomCode(code), name)
}

// enterRoom wires the role-dependent realtime consumers and transitions to
// multiplayer mode. Caller must hold the mutex.
func (e *Engine) enterRoom(ctx context.Context, p *model.Participant, displayName string) (*RoomSession, error) {
	ledgerSession := ledger.NewSession(p, e.storage, e.bus, e.clock, e.logger)

	// The watch context outlives the caller's request context: it is tied
	// to room membership, not to any single operation.
	watchCtx, cancel := context.WithCancel(context.Background())

	rs := &RoomSession{
		Code:   p.RoomCode,
		Role:   p.Role,
		Ledger: ledgerSession,
		cancel: cancel,
	}

	switch p.Role {
	case model.RoleBanker:
		snapshots, _, err := e.syncer.Watch(watchCtx, p.RoomCode)
		if err != nil {
			cancel()
			return nil, err
		}
		rs.Snapshots = snapshots
		rs.Proposer = catchup.NewProposer(e.bus, e.clock, e.logger)

	case model.RolePlayer:
		control, _, err := e.syncer.ListenControl(watchCtx, p.RoomCode, p.Identity)
		if err != nil {
			cancel()
			return nil, err
		}
		rs.Coordinator = catchup.NewCoordinator(ledgerSession, e.logger)
		go pumpControl(control, rs.Coordinator)
	}

	// Remember the room for auto-rejoin; best effort
	if err := e.local.Set(localstore.KeyRejoinRoom, string(p.RoomCode)); err != nil {
		e.logger.Warn("could not persist rejoin room", slog.Any("error", err))
	}
	if displayName != "" {
		if err := e.local.Set(localstore.KeyDisplayName, displayName); err != nil {
			e.logger.Warn("could not persist display name", slog.Any("error", err))
		}
	}

	e.multi = rs
	e.mode = ModeMultiplayer
	return rs, nil
}

// pumpControl feeds received catch-up requests into the coordinator's
// pending state. Runs until the control channel closes on teardown.
func pumpControl(control <-chan model.ControlMessage, coord *catchup.Coordinator) {
	for msg := range control {
		coord.Offer(msg)
	}
}

// LeaveRoom tears down the multiplayer session. It clears local view
// state only: the participant record survives in the backing store, so
// rejoining with the same identity restores it.
func (e *Engine) LeaveRoom() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeMultiplayer {
		return ErrInvalidMode
	}

	e.multi.cancel()
	e.multi = nil
	e.mode = ModeUnselected

	if err := e.local.Remove(localstore.KeyRejoinRoom); err != nil {
		e.logger.Warn("could not clear rejoin room", slog.Any("error", err))
	}
	return nil
}

// Reset returns to the unselected mode from wherever the session is,
// abandoning the active mode without touching persisted state: solo
// state stays restorable via StartSolo, and the rejoin key stays set so
// RejoinLast still works. Idempotent.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.multi != nil {
		e.multi.cancel()
		e.multi = nil
	}
	e.solo = nil
	e.mode = ModeUnselected
}

// EndRoom ends the room (banker only) and leaves it
func (e *Engine) EndRoom(ctx context.Context) error {
	e.mu.Lock()
	if e.mode != ModeMultiplayer || e.multi.Role != model.RoleBanker {
		e.mu.Unlock()
		return ErrInvalidMode
	}
	code := e.multi.Code
	e.mu.Unlock()

	if err := e.rooms.End(ctx, code); err != nil {
		return err
	}
	return e.LeaveRoom()
}
