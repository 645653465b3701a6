package kafka

import (
	"context"

	"github.com/saulet/grocery-compare/pkg/logger"
)

// Notifier adapts the publisher to the notify.Notifier interface so
// store favorite changes fan out to other service instances.
type Notifier struct {
	publisher *Publisher
}

// NewNotifier creates a Kafka-backed notifier.
func NewNotifier(publisher *Publisher) *Notifier {
	return &Notifier{publisher: publisher}
}

// StoreFavoritesChanged publishes the change event. Delivery is best
// effort; a broker outage must not fail the originating mutation.
func (n *Notifier) StoreFavoritesChanged(ctx context.Context, userID string) {
	if err := n.publisher.PublishStateChanged(ctx, EventTypeStoreFavoritesChanged, userID); err != nil {
		logger.Error(ctx).
			Err(err).
			Str("user_id", userID).
			Msg("Failed to publish store favorites change")
	}
}
