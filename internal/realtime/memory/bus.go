package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kpane/banktally/internal/model"
	"github.com/kpane/banktally/internal/realtime"
)

// Buffer size for subscriber channels. A full buffer drops the event for
// that subscriber rather than blocking the publisher; consumers recover on
// their next re-fetch.
const subscriberBufferSize = 64

// Bus is an in-process implementation of the realtime bus, used for
// single-node deployments and tests.
type Bus struct {
	mu sync.RWMutex

	nextID      int
	changeSubs  map[model.RoomCode]map[int]chan model.ChangeEvent
	controlSubs map[model.RoomCode]map[int]chan model.ControlMessage

	logger *slog.Logger
}

// Ensure Bus implements the interface
var _ realtime.Bus = (*Bus)(nil)

// New creates a new in-process bus
func New(logger *slog.Logger) *Bus {
	return &Bus{
		changeSubs:  make(map[model.RoomCode]map[int]chan model.ChangeEvent),
		controlSubs: make(map[model.RoomCode]map[int]chan model.ControlMessage),
		logger:      logger.With(slog.String("component", "realtime")),
	}
}

func (b *Bus) PublishChange(ctx context.Context, event model.ChangeEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.changeSubs[event.RoomCode] {
		select {
		case ch <- event:
		default:
			b.logger.Warn("change event dropped, subscriber buffer full",
				slog.String("room", string(event.RoomCode)))
		}
	}
	return nil
}

func (b *Bus) PublishControl(ctx context.Context, msg model.ControlMessage) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.controlSubs[msg.RoomCode] {
		select {
		case ch <- msg:
		default:
			b.logger.Warn("control message dropped, subscriber buffer full",
				slog.String("room", string(msg.RoomCode)),
				slog.String("target", string(msg.TargetIdentity)))
		}
	}
	return nil
}

func (b *Bus) SubscribeChanges(ctx context.Context, code model.RoomCode) (<-chan model.ChangeEvent, realtime.CancelFunc, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan model.ChangeEvent, subscriberBufferSize)
	if b.changeSubs[code] == nil {
		b.changeSubs[code] = make(map[int]chan model.ChangeEvent)
	}
	b.changeSubs[code][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.changeSubs[code]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(b.changeSubs, code)
				}
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

func (b *Bus) SubscribeControl(ctx context.Context, code model.RoomCode) (<-chan model.ControlMessage, realtime.CancelFunc, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan model.ControlMessage, subscriberBufferSize)
	if b.controlSubs[code] == nil {
		b.controlSubs[code] = make(map[int]chan model.ControlMessage)
	}
	b.controlSubs[code][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.controlSubs[code]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(b.controlSubs, code)
				}
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

// SubscriberCount returns the number of active subscriptions for a room
// (both kinds). Used by tests to verify teardown.
func (b *Bus) SubscriberCount(code model.RoomCode) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.changeSubs[code]) + len(b.controlSubs[code])
}
