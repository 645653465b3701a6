package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulet/grocery-compare/internal/cart/domain"
)

func TestLocalBackendMemoryOnly(t *testing.T) {
	b := NewLocalBackend("")
	ctx := context.Background()

	require.NoError(t, b.AddFavorite(ctx, "alice", 101))
	require.NoError(t, b.AddFavorite(ctx, "alice", 101))

	favs, err := b.ListFavorites(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, favs, 1)

	// users are isolated
	favs, err = b.ListFavorites(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestLocalBackendPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	b := NewLocalBackend(dir)
	require.NoError(t, b.AddFavorite(ctx, "alice", 101))
	require.NoError(t, b.AddStoreFavorite(ctx, "alice", 2))
	require.NoError(t, b.UpsertCartItem(ctx, &domain.CartItem{
		UserID:    "alice",
		ProductID: 103,
		Quantity:  2,
	}))

	// a second backend over the same directory sees the snapshot
	b2 := NewLocalBackend(dir)

	favs, err := b2.ListFavorites(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, favs, 1)

	stores, err := b2.ListStoreFavorites(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, stores, 1)

	items, err := b2.ListCartItems(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestLocalBackendCorruptSnapshotDiscarded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user_alice.json"), []byte("{not json"), 0o644))

	b := NewLocalBackend(dir)
	favs, err := b.ListFavorites(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestLocalBackendRemoveMissingReturnsNotFound(t *testing.T) {
	b := NewLocalBackend("")
	ctx := context.Background()

	assert.ErrorIs(t, b.RemoveFavorite(ctx, "alice", 1), domain.ErrNotFound)
	assert.ErrorIs(t, b.RemoveStoreFavorite(ctx, "alice", 1), domain.ErrNotFound)
	assert.ErrorIs(t, b.RemoveProductFavorite(ctx, "alice", "milk"), domain.ErrNotFound)
	assert.ErrorIs(t, b.RemoveCartItem(ctx, "alice", 1), domain.ErrNotFound)
	assert.ErrorIs(t, b.UpdateCartQuantity(ctx, "alice", 1, 3), domain.ErrNotFound)

	// clearing an already empty cart is fine
	assert.NoError(t, b.ClearCart(ctx, "alice"))
}

func TestLocalBackendProductFavoriteCaseInsensitive(t *testing.T) {
	b := NewLocalBackend("")
	ctx := context.Background()

	require.NoError(t, b.AddProductFavorite(ctx, &domain.ProductFavorite{UserID: "alice", NameEn: "Whole Milk"}))
	require.NoError(t, b.AddProductFavorite(ctx, &domain.ProductFavorite{UserID: "alice", NameEn: "whole milk"}))

	favs, err := b.ListProductFavorites(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "whole milk", favs[0].NameKey)

	require.NoError(t, b.RemoveProductFavorite(ctx, "alice", "WHOLE MILK"))
	favs, err = b.ListProductFavorites(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestLocalBackendUpsertPreservesSnapshot(t *testing.T) {
	b := NewLocalBackend("")
	ctx := context.Background()

	require.NoError(t, b.UpsertCartItem(ctx, &domain.CartItem{
		UserID:          "alice",
		ProductID:       101,
		Quantity:        1,
		ProductNameEn:   "Whole Milk 1L",
		UnitPrice:       2.99,
		SupermarketID:   1,
		SupermarketName: "ParknShop",
	}))

	// a later upsert that failed to resolve the catalog keeps the old
	// snapshot columns
	require.NoError(t, b.UpsertCartItem(ctx, &domain.CartItem{
		UserID:    "alice",
		ProductID: 101,
		Quantity:  4,
	}))

	items, err := b.ListCartItems(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, uint(1), items[0].SupermarketID)
	assert.InDelta(t, 2.99, items[0].UnitPrice, 0.001)
}

func TestLocalBackendSanitizesUserFileName(t *testing.T) {
	dir := t.TempDir()
	b := NewLocalBackend(dir)
	ctx := context.Background()

	require.NoError(t, b.AddFavorite(ctx, "../../etc/passwd", 1))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "user______etc_passwd.json", entries[0].Name())
}
