package redispubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/kpane/banktally/internal/model"
	"github.com/kpane/banktally/internal/realtime"
)

const subscriberBufferSize = 64

// Bus is a Redis pub/sub implementation of the realtime bus for
// multi-node deployments. Each room gets two channels: one for participant
// change notifications and one for directed control messages.
type Bus struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure Bus implements the interface
var _ realtime.Bus = (*Bus)(nil)

// New creates a Redis-backed bus on an existing client
func New(client *redis.Client, logger *slog.Logger) *Bus {
	return &Bus{
		client: client,
		logger: logger.With(slog.String("component", "realtime-redis")),
	}
}

func changesChannel(code model.RoomCode) string {
	return fmt.Sprintf("banktally:events:%s:changes", code)
}

func controlChannel(code model.RoomCode) string {
	return fmt.Sprintf("banktally:events:%s:control", code)
}

func (b *Bus) PublishChange(ctx context.Context, event model.ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, changesChannel(event.RoomCode), data).Err()
}

func (b *Bus) PublishControl(ctx context.Context, msg model.ControlMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, controlChannel(msg.RoomCode), data).Err()
}

func (b *Bus) SubscribeChanges(ctx context.Context, code model.RoomCode) (<-chan model.ChangeEvent, realtime.CancelFunc, error) {
	sub := b.client.Subscribe(ctx, changesChannel(code))

	// Wait for subscription confirmation so no event published after this
	// call returns can be missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan model.ChangeEvent, subscriberBufferSize)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var event model.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("discarding malformed change event",
					slog.String("room", string(code)),
					slog.Any("error", err))
				continue
			}
			select {
			case out <- event:
			default:
				b.logger.Warn("change event dropped, subscriber buffer full",
					slog.String("room", string(code)))
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = sub.Close()
		})
	}
	return out, cancel, nil
}

func (b *Bus) SubscribeControl(ctx context.Context, code model.RoomCode) (<-chan model.ControlMessage, realtime.CancelFunc, error) {
	sub := b.client.Subscribe(ctx, controlChannel(code))

	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan model.ControlMessage, subscriberBufferSize)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var cm model.ControlMessage
			if err := json.Unmarshal([]byte(msg.Payload), &cm); err != nil {
				b.logger.Warn("discarding malformed control message",
					slog.String("room", string(code)),
					slog.Any("error", err))
				continue
			}
			select {
			case out <- cm:
			default:
				b.logger.Warn("control message dropped, subscriber buffer full",
					slog.String("room", string(code)))
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = sub.Close()
		})
	}
	return out, cancel, nil
}
