package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulet/grocery-compare/internal/cart/reconcile"
	"github.com/saulet/grocery-compare/internal/cart/repository"
	catalogrepo "github.com/saulet/grocery-compare/internal/catalog/repository"
)

// newTestManager builds a manager where every session runs on the local
// in-memory backend via demo mode.
func newTestManager(t *testing.T) *reconcile.Manager {
	t.Helper()
	m := reconcile.NewManager(reconcile.ManagerConfig{
		Fallback:         repository.NewLocalBackend(""),
		Catalog:          catalogrepo.NewDemoCatalog(),
		DebounceInterval: 10 * time.Millisecond,
	})
	t.Cleanup(m.Close)
	return m
}

func TestAddCartItemValidation(t *testing.T) {
	m := newTestManager(t)
	h := NewAddCartItemHandler(m)
	ctx := context.Background()

	assert.False(t, h.Handle(ctx, AddCartItemCommand{Demo: true, ProductID: 101, Quantity: 1}))
	assert.False(t, h.Handle(ctx, AddCartItemCommand{UserID: "u", Demo: true, Quantity: 1}))
	assert.False(t, h.Handle(ctx, AddCartItemCommand{UserID: "u", Demo: true, ProductID: 101, Quantity: 0}))
	assert.False(t, h.Handle(ctx, AddCartItemCommand{UserID: "u", Demo: true, ProductID: 101, Quantity: -3}))

	assert.True(t, h.Handle(ctx, AddCartItemCommand{UserID: "u", Demo: true, ProductID: 101, Quantity: 2}))
}

func TestUpdateQuantityZeroActsAsRemoval(t *testing.T) {
	m := newTestManager(t)
	add := NewAddCartItemHandler(m)
	update := NewUpdateCartQuantityHandler(m)
	remove := NewRemoveCartItemHandler(m)
	ctx := context.Background()

	require.True(t, add.Handle(ctx, AddCartItemCommand{UserID: "u", Demo: true, ProductID: 101, Quantity: 2}))
	assert.True(t, update.Handle(ctx, UpdateCartQuantityCommand{UserID: "u", Demo: true, ProductID: 101, Quantity: 0}))

	// the row is gone, so an explicit removal now fails
	assert.False(t, remove.Handle(ctx, RemoveCartItemCommand{UserID: "u", Demo: true, ProductID: 101}))
}

func TestFavoriteCommandsRoundTrip(t *testing.T) {
	m := newTestManager(t)
	add := NewAddFavoriteHandler(m)
	remove := NewRemoveFavoriteHandler(m)
	ctx := context.Background()

	assert.True(t, add.Handle(ctx, AddFavoriteCommand{UserID: "u", Demo: true, ProductID: 101}))
	assert.True(t, add.Handle(ctx, AddFavoriteCommand{UserID: "u", Demo: true, ProductID: 101}))
	assert.True(t, remove.Handle(ctx, RemoveFavoriteCommand{UserID: "u", Demo: true, ProductID: 101}))
	assert.False(t, remove.Handle(ctx, RemoveFavoriteCommand{UserID: "u", Demo: true, ProductID: 101}))
}

func TestClearCartAlwaysSucceeds(t *testing.T) {
	m := newTestManager(t)
	h := NewClearCartHandler(m)
	ctx := context.Background()

	assert.False(t, h.Handle(ctx, ClearCartCommand{Demo: true}))
	assert.True(t, h.Handle(ctx, ClearCartCommand{UserID: "u", Demo: true}))
	// clearing an empty cart is still a success
	assert.True(t, h.Handle(ctx, ClearCartCommand{UserID: "u", Demo: true}))
}

func TestProductFavoriteValidation(t *testing.T) {
	m := newTestManager(t)
	h := NewAddProductFavoriteHandler(m)
	ctx := context.Background()

	assert.False(t, h.Handle(ctx, AddProductFavoriteCommand{UserID: "u", Demo: true, NameEn: "   "}))
	assert.True(t, h.Handle(ctx, AddProductFavoriteCommand{UserID: "u", Demo: true, NameEn: "Whole Milk"}))
}
