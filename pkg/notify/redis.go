package notify

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/saulet/grocery-compare/pkg/logger"
)

// ChannelStoreFavorites is the pub/sub channel for cross-instance
// store-favorite change signals.
const ChannelStoreFavorites = "grocery:store-favorites-changed"

// RedisNotifier broadcasts change signals over Redis pub/sub so other
// service instances can refresh their session snapshots.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a notifier on an existing Redis client.
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) StoreFavoritesChanged(ctx context.Context, userID string) {
	if err := n.client.Publish(ctx, ChannelStoreFavorites, userID).Err(); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("user_id", userID).
			Msg("Failed to publish store favorites change")
	}
}

// SubscribeStoreFavorites listens for change signals and invokes fn with
// the affected user id until ctx is cancelled.
func SubscribeStoreFavorites(ctx context.Context, client *redis.Client, fn func(userID string)) {
	sub := client.Subscribe(ctx, ChannelStoreFavorites)

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fn(msg.Payload)
			}
		}
	}()
}
