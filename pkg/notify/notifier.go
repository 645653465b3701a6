package notify

import (
	"context"
	"sync"

	"github.com/saulet/grocery-compare/pkg/logger"
)

// Notifier broadcasts a "store favorites changed" signal for a user.
// The signal carries no payload guarantee; consumers re-query state
// instead of trusting event contents.
type Notifier interface {
	StoreFavoritesChanged(ctx context.Context, userID string)
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) StoreFavoritesChanged(ctx context.Context, userID string) {
	for _, n := range m {
		if n != nil {
			n.StoreFavoritesChanged(ctx, userID)
		}
	}
}

// Hub is an in-process observer registry. Subscribers receive the user
// id whose store favorites changed.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(userID string)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(userID string))}
}

// Subscribe registers a callback and returns an unsubscribe function.
func (h *Hub) Subscribe(fn func(userID string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// StoreFavoritesChanged delivers the signal to all subscribers.
func (h *Hub) StoreFavoritesChanged(ctx context.Context, userID string) {
	h.mu.RLock()
	fns := make([]func(string), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(userID)
	}

	logger.Debug(ctx).
		Str("user_id", userID).
		Int("subscribers", len(fns)).
		Msg("Store favorites change delivered")
}
