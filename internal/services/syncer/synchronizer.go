package syncer

import (
	"context"
	"log/slog"

	"github.com/kpane/banktally/internal/model"
	"github.com/kpane/banktally/internal/realtime"
	"github.com/kpane/banktally/internal/storage"
)

// Buffer for outgoing snapshots. A dropped snapshot is harmless: the next
// change notification triggers another full recompute.
const snapshotBufferSize = 16

// Synchronizer keeps a device's view of a room current. The banker watches
// the whole participant set and recomputes the aggregate on every change;
// players listen only for control messages addressed to them.
type Synchronizer struct {
	storage storage.Storage
	bus     realtime.Bus
	logger  *slog.Logger
}

// New creates a new synchronizer
func New(storage storage.Storage, bus realtime.Bus, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		storage: storage,
		bus:     bus,
		logger:  logger.With(slog.String("component", "syncer")),
	}
}

// Watch starts the banker-side watcher for a room. It emits a snapshot
// immediately on entry and again on every change notification, each one a
// full re-fetch-and-recompute rather than an incremental merge; with at
// most 16 participants, correctness simplicity wins over bandwidth.
//
// The returned cancel tears down the underlying subscription and closes
// the snapshot channel; no subscription survives it.
func (s *Synchronizer) Watch(ctx context.Context, code model.RoomCode) (<-chan Snapshot, realtime.CancelFunc, error) {
	events, cancelSub, err := s.bus.SubscribeChanges(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan Snapshot, snapshotBufferSize)
	go func() {
		defer close(out)
		defer cancelSub()

		s.emit(ctx, code, out)

		for {
			select {
			case _, ok := <-events:
				if !ok {
					return
				}
				s.emit(ctx, code, out)
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cancelSub, nil
}

// emit fetches the room's participants, recomputes the aggregate and
// delivers the snapshot without blocking.
func (s *Synchronizer) emit(ctx context.Context, code model.RoomCode, out chan<- Snapshot) {
	participants, err := s.storage.ListParticipants(ctx, code)
	if err != nil {
		s.logger.Warn("failed to fetch participants for recompute",
			slog.String("room", string(code)),
			slog.Any("error", err))
		return
	}

	snap := Snapshot{
		Participants: participants,
		Aggregate:    ComputeAggregate(participants),
	}

	select {
	case out <- snap:
	default:
		s.logger.Warn("snapshot dropped, consumer buffer full",
			slog.String("room", string(code)))
	}
}

// ListenControl starts the player-side listener: it delivers only control
// messages addressed to the given identity, dropping everything else.
func (s *Synchronizer) ListenControl(ctx context.Context, code model.RoomCode, id model.Identity) (<-chan model.ControlMessage, realtime.CancelFunc, error) {
	msgs, cancelSub, err := s.bus.SubscribeControl(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan model.ControlMessage, snapshotBufferSize)
	go func() {
		defer close(out)
		defer cancelSub()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if msg.TargetIdentity != id {
					continue
				}
				select {
				case out <- msg:
				default:
					s.logger.Warn("control message dropped, consumer buffer full",
						slog.String("room", string(code)))
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cancelSub, nil
}
