package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulet/grocery-compare/internal/cart/domain"
	"github.com/saulet/grocery-compare/internal/cart/repository"
	catalogrepo "github.com/saulet/grocery-compare/internal/catalog/repository"
)

// flakyBackend wraps an in-memory backend with switchable failure
// injection, standing in for an unreachable remote store.
type flakyBackend struct {
	inner   domain.Backend
	mu      sync.Mutex
	failing bool
	pingErr error
}

func newFlakyBackend() *flakyBackend {
	return &flakyBackend{inner: repository.NewLocalBackend("")}
}

func (f *flakyBackend) setFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

func (f *flakyBackend) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("remote backend down")
	}
	return nil
}

func (f *flakyBackend) Name() string { return "remote" }

func (f *flakyBackend) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *flakyBackend) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	return f.inner.ListFavorites(ctx, userID)
}

func (f *flakyBackend) AddFavorite(ctx context.Context, userID string, productID uint) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.inner.AddFavorite(ctx, userID, productID)
}

func (f *flakyBackend) RemoveFavorite(ctx context.Context, userID string, productID uint) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.inner.RemoveFavorite(ctx, userID, productID)
}

func (f *flakyBackend) ListProductFavorites(ctx context.Context, userID string) ([]domain.ProductFavorite, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	return f.inner.ListProductFavorites(ctx, userID)
}

func (f *flakyBackend) AddProductFavorite(ctx context.Context, fav *domain.ProductFavorite) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.inner.AddProductFavorite(ctx, fav)
}

func (f *flakyBackend) RemoveProductFavorite(ctx context.Context, userID, nameEn string) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.inner.RemoveProductFavorite(ctx, userID, nameEn)
}

func (f *flakyBackend) ListStoreFavorites(ctx context.Context, userID string) ([]domain.StoreFavorite, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	return f.inner.ListStoreFavorites(ctx, userID)
}

func (f *flakyBackend) AddStoreFavorite(ctx context.Context, userID string, supermarketID uint) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.inner.AddStoreFavorite(ctx, userID, supermarketID)
}

func (f *flakyBackend) RemoveStoreFavorite(ctx context.Context, userID string, supermarketID uint) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.inner.RemoveStoreFavorite(ctx, userID, supermarketID)
}

func (f *flakyBackend) ListCartItems(ctx context.Context, userID string) ([]domain.CartItem, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	return f.inner.ListCartItems(ctx, userID)
}

func (f *flakyBackend) UpsertCartItem(ctx context.Context, item *domain.CartItem) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.inner.UpsertCartItem(ctx, item)
}

func (f *flakyBackend) UpdateCartQuantity(ctx context.Context, userID string, productID uint, quantity int) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.inner.UpdateCartQuantity(ctx, userID, productID, quantity)
}

func (f *flakyBackend) RemoveCartItem(ctx context.Context, userID string, productID uint) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.inner.RemoveCartItem(ctx, userID, productID)
}

func (f *flakyBackend) ClearCart(ctx context.Context, userID string) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.inner.ClearCart(ctx, userID)
}

type countingNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *countingNotifier) StoreFavoritesChanged(ctx context.Context, userID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
}

func (n *countingNotifier) calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

func newTestManager(primary domain.Backend) (*Manager, *countingNotifier) {
	notifier := &countingNotifier{}
	m := NewManager(ManagerConfig{
		Primary:          primary,
		Fallback:         repository.NewLocalBackend(""),
		Catalog:          catalogrepo.NewDemoCatalog(),
		Notifier:         notifier,
		DebounceInterval: 10 * time.Millisecond,
		ProbeTimeout:     time.Second,
	})
	return m, notifier
}

func TestSessionRequiresUserID(t *testing.T) {
	m, _ := newTestManager(newFlakyBackend())
	defer m.Close()

	_, err := m.Session(context.Background(), "", false)
	assert.Error(t, err)
}

func TestDemoSessionStartsDowngraded(t *testing.T) {
	remote := newFlakyBackend()
	m, _ := newTestManager(remote)
	defer m.Close()

	ctx := context.Background()
	rec, err := m.Session(ctx, "guest-1", true)
	require.NoError(t, err)
	assert.True(t, rec.Downgraded())

	assert.True(t, rec.AddFavorite(ctx, 101))

	// the remote backend never saw the mutation
	favs, err := remote.ListFavorites(ctx, "guest-1")
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestProbeFailureStartsDowngraded(t *testing.T) {
	remote := newFlakyBackend()
	remote.pingErr = errors.New("connection refused")
	m, _ := newTestManager(remote)
	defer m.Close()

	rec, err := m.Session(context.Background(), "alice", false)
	require.NoError(t, err)
	assert.True(t, rec.Downgraded())
}

func TestAddFavoriteIdempotent(t *testing.T) {
	m, _ := newTestManager(newFlakyBackend())
	defer m.Close()

	ctx := context.Background()
	rec, err := m.Session(ctx, "alice", false)
	require.NoError(t, err)

	assert.True(t, rec.AddFavorite(ctx, 101))
	assert.True(t, rec.AddFavorite(ctx, 101))
	assert.Len(t, rec.Favorites(), 1)
	assert.True(t, rec.IsFavorite(101))
}

func TestZeroIDsRejectedWithoutBackendCall(t *testing.T) {
	m, _ := newTestManager(newFlakyBackend())
	defer m.Close()

	ctx := context.Background()
	rec, err := m.Session(ctx, "alice", false)
	require.NoError(t, err)

	assert.False(t, rec.AddFavorite(ctx, 0))
	assert.False(t, rec.AddStoreFavorite(ctx, 0))
	assert.False(t, rec.AddCartItem(ctx, 0, 1, ""))
	assert.False(t, rec.AddCartItem(ctx, 101, 0, ""))
	assert.False(t, rec.AddProductFavorite(ctx, ProductFavoriteInput{NameEn: "  "}))
	assert.False(t, rec.Downgraded())
}

func TestAddCartItemUpsertsAndResolvesSnapshot(t *testing.T) {
	m, _ := newTestManager(newFlakyBackend())
	defer m.Close()

	ctx := context.Background()
	rec, err := m.Session(ctx, "alice", false)
	require.NoError(t, err)

	assert.True(t, rec.AddCartItem(ctx, 101, 2, "ripe ones"))
	assert.True(t, rec.AddCartItem(ctx, 101, 5, ""))

	items := rec.CartItems()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	// snapshot resolved from the catalog at add time
	assert.InDelta(t, 2.99, items[0].UnitPrice, 0.001)
	assert.True(t, items[0].HasStoreInfo())
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	m, _ := newTestManager(newFlakyBackend())
	defer m.Close()

	ctx := context.Background()
	rec, err := m.Session(ctx, "alice", false)
	require.NoError(t, err)

	require.True(t, rec.AddCartItem(ctx, 101, 2, ""))
	assert.True(t, rec.UpdateCartQuantity(ctx, 101, 0))
	assert.False(t, rec.IsInCart(101))
	assert.Empty(t, rec.CartItems())
}

func TestRemoveMissingIsFailedOutcomeNotDowngrade(t *testing.T) {
	m, _ := newTestManager(newFlakyBackend())
	defer m.Close()

	ctx := context.Background()
	rec, err := m.Session(ctx, "alice", false)
	require.NoError(t, err)

	assert.False(t, rec.RemoveFavorite(ctx, 42))
	assert.False(t, rec.RemoveCartItem(ctx, 42))
	assert.False(t, rec.Downgraded())
}

func TestRemoteFailureDowngradesOneWay(t *testing.T) {
	remote := newFlakyBackend()
	m, _ := newTestManager(remote)
	defer m.Close()

	ctx := context.Background()
	rec, err := m.Session(ctx, "alice", false)
	require.NoError(t, err)
	require.False(t, rec.Downgraded())

	remote.setFailing(true)

	// the mutation still succeeds, transparently, on the fallback
	assert.True(t, rec.AddFavorite(ctx, 7))
	assert.True(t, rec.Downgraded())
	assert.True(t, rec.IsFavorite(7))

	// remote recovery does not bring the session back
	remote.setFailing(false)
	assert.True(t, rec.AddFavorite(ctx, 8))

	favs, err := remote.ListFavorites(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestStoreFavoriteNotifications(t *testing.T) {
	m, notifier := newTestManager(newFlakyBackend())
	defer m.Close()

	ctx := context.Background()
	rec, err := m.Session(ctx, "alice", false)
	require.NoError(t, err)

	assert.True(t, rec.AddStoreFavorite(ctx, 1))
	assert.Equal(t, 1, notifier.calls())

	assert.True(t, rec.RemoveStoreFavorite(ctx, 1))
	assert.Equal(t, 2, notifier.calls())

	// failed outcome must not notify
	assert.False(t, rec.RemoveStoreFavorite(ctx, 99))
	assert.Equal(t, 2, notifier.calls())
}

func TestProductFavoriteCaseInsensitive(t *testing.T) {
	m, _ := newTestManager(newFlakyBackend())
	defer m.Close()

	ctx := context.Background()
	rec, err := m.Session(ctx, "alice", false)
	require.NoError(t, err)

	assert.True(t, rec.AddProductFavorite(ctx, ProductFavoriteInput{NameEn: "Whole Milk"}))
	assert.True(t, rec.AddProductFavorite(ctx, ProductFavoriteInput{NameEn: "WHOLE MILK"}))
	assert.Len(t, rec.ProductFavorites(), 1)
	assert.True(t, rec.IsProductFavorite("whole milk"))

	assert.True(t, rec.RemoveProductFavorite(ctx, "whole MILK"))
	assert.False(t, rec.IsProductFavorite("Whole Milk"))
}

func TestRouteLifecycle(t *testing.T) {
	m, _ := newTestManager(newFlakyBackend())
	defer m.Close()

	ctx := context.Background()
	rec, err := m.Session(ctx, "alice", false)
	require.NoError(t, err)

	assert.Nil(t, rec.Route())

	require.True(t, rec.AddCartItem(ctx, 101, 2, ""))
	require.True(t, rec.AddCartItem(ctx, 103, 1, ""))

	route := rec.Route()
	require.NotNil(t, route)
	assert.Len(t, route.Stores, 2)

	require.True(t, rec.ClearCart(ctx))
	assert.Nil(t, rec.Route())
	assert.Empty(t, rec.CartItems())
}

func TestInvalidateDropsSession(t *testing.T) {
	m, _ := newTestManager(newFlakyBackend())
	defer m.Close()

	ctx := context.Background()
	rec, err := m.Session(ctx, "alice", false)
	require.NoError(t, err)
	require.True(t, rec.AddFavorite(ctx, 101))

	m.Invalidate("alice")

	// a fresh session reloads from the backend and sees the same data
	rec2, err := m.Session(ctx, "alice", false)
	require.NoError(t, err)
	assert.NotSame(t, rec, rec2)
	assert.True(t, rec2.IsFavorite(101))
}
