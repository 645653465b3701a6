package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHubDeliversToSubscribers(t *testing.T) {
	h := NewHub()

	var got []string
	h.Subscribe(func(userID string) { got = append(got, userID) })
	h.Subscribe(func(userID string) { got = append(got, userID) })

	h.StoreFavoritesChanged(context.Background(), "alice")
	assert.Equal(t, []string{"alice", "alice"}, got)
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub()

	calls := 0
	unsubscribe := h.Subscribe(func(string) { calls++ })

	h.StoreFavoritesChanged(context.Background(), "alice")
	unsubscribe()
	h.StoreFavoritesChanged(context.Background(), "alice")

	assert.Equal(t, 1, calls)
}

func TestMultiFansOutAndSkipsNil(t *testing.T) {
	calls := 0
	h := NewHub()
	h.Subscribe(func(string) { calls++ })

	m := Multi{h, nil, h}
	m.StoreFavoritesChanged(context.Background(), "alice")

	assert.Equal(t, 2, calls)
}
