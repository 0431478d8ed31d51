// AngelaMos | 2026
// events.go

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// SessionEvent is a session-change notification fanned out to the device
// that owns the session. SignedIn false means the session ended (remote
// sign-out, revocation); true carries the new identity (login on another
// tab, OAuth callback).
type SessionEvent struct {
	SignedIn bool   `json:"signed_in"`
	UserID   string `json:"user_id,omitempty"`
	Email    string `json:"email,omitempty"`
}

// EventBus carries session-change events between the platform backend and
// subscribed session stores. Channels are scoped per device.
type EventBus interface {
	Publish(ctx context.Context, deviceID string, event SessionEvent) error
	Subscribe(
		ctx context.Context,
		deviceID string,
	) (<-chan SessionEvent, func(), error)
}

const sessionChannelPrefix = "session:device:"

// RedisEventBus implements EventBus over Redis pub/sub.
type RedisEventBus struct {
	client *redis.Client
}

func NewRedisEventBus(client *redis.Client) *RedisEventBus {
	return &RedisEventBus{client: client}
}

func (b *RedisEventBus) Publish(
	ctx context.Context,
	deviceID string,
	event SessionEvent,
) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal session event: %w", err)
	}

	channel := sessionChannelPrefix + deviceID
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish session event: %w", err)
	}

	return nil
}

func (b *RedisEventBus) Subscribe(
	ctx context.Context,
	deviceID string,
) (<-chan SessionEvent, func(), error) {
	channel := sessionChannelPrefix + deviceID
	pubsub := b.client.Subscribe(ctx, channel)

	// Wait for the subscription to be confirmed so publishes immediately
	// after Subscribe returns are not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		//nolint:errcheck // cleanup on subscribe failure
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe session events: %w", err)
	}

	events := make(chan SessionEvent)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var event SessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.Warn("session event: bad payload",
					"channel", channel,
					"error", err,
				)
				continue
			}

			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		//nolint:errcheck // best-effort unsubscribe
		_ = pubsub.Close()
	}

	return events, cancel, nil
}
