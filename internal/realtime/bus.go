package realtime

import (
	"context"

	"github.com/kpane/banktally/internal/model"
)

// CancelFunc tears down a subscription. Safe to call more than once.
type CancelFunc func()

// Bus is the per-room publish/subscribe channel. It carries two kinds of
// traffic: change notifications on participant records (consumed by the
// banker, who re-fetches and recomputes on every one) and directed control
// messages (broadcast to the room, consumed only by the addressed
// identity).
//
// Delivery is best-effort: a slow subscriber may miss events. That is
// acceptable because consumers treat every notification as a trigger for
// an idempotent full re-fetch, never as an incremental update.
type Bus interface {
	PublishChange(ctx context.Context, event model.ChangeEvent) error
	PublishControl(ctx context.Context, msg model.ControlMessage) error

	SubscribeChanges(ctx context.Context, code model.RoomCode) (<-chan model.ChangeEvent, CancelFunc, error)
	SubscribeControl(ctx context.Context, code model.RoomCode) (<-chan model.ControlMessage, CancelFunc, error)
}
