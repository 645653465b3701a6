package kafka

import "time"

// StateChangedEvent announces that a user's synced state changed on one
// instance. Other instances drop their in-memory session for that user
// and reload lazily; the payload intentionally carries no collection
// data.
type StateChangedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeStoreFavoritesChanged = "cart.store_favorites_changed"
	EventTypeCartCleared           = "cart.cleared"
)

// Kafka topics
const (
	TopicCartStateChanged = "cart-state-changed"
)
