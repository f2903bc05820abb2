package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "dash:notify:" // dash:notify:{actor_id}

// RedisPublisher publishes notifications on a per-actor Pub/Sub channel.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func Channel(actorID string) string {
	return fmt.Sprintf("%s%s", channelPrefix, actorID)
}

func (p *RedisPublisher) Notify(ctx context.Context, actorID string, n domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := p.client.Publish(ctx, Channel(actorID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Subscribe streams notifications for actorID until ctx is done. The
// returned channel is closed when the subscription ends.
func (p *RedisPublisher) Subscribe(ctx context.Context, actorID string) (<-chan domain.Notification, error) {
	sub := p.client.Subscribe(ctx, Channel(actorID))
	// Wait for the subscription confirmation so no message published after
	// Subscribe returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan domain.Notification)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var n domain.Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					continue
				}
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
