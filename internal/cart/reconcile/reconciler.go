package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/saulet/grocery-compare/internal/cart/domain"
	"github.com/saulet/grocery-compare/internal/cart/route"
	catalogdomain "github.com/saulet/grocery-compare/internal/catalog/domain"
	"github.com/saulet/grocery-compare/pkg/logger"
	"github.com/saulet/grocery-compare/pkg/notify"
)

type collection int

const (
	colFavorites collection = iota
	colProductFavorites
	colStoreFavorites
	colCart
)

// Reconciler is the single mutation/query API for one user session. It
// routes operations to the remote backend, downgrades one-way to the
// local fallback on failure, owns the in-memory snapshot, and exposes
// every mutation as a boolean outcome — no error crosses this boundary.
type Reconciler struct {
	mu sync.Mutex

	userID   string
	demo     bool
	primary  domain.Backend
	fallback domain.Backend
	catalog  catalogdomain.Catalog
	notifier notify.Notifier

	estimator *route.Estimator
	debouncer *Debouncer

	downgraded bool
	// seq tracks in-flight operations per entity key; a completion whose
	// sequence is stale skips the snapshot refresh so a superseded
	// mutation cannot overwrite fresher state.
	seq map[string]uint64

	favorites        []domain.Favorite
	productFavorites []domain.ProductFavorite
	storeFavorites   []domain.StoreFavorite
	cartItems        []domain.CartItem

	route    *domain.ShoppingRoute
	routeSig string
}

func newReconciler(userID string, demo bool, cfg ManagerConfig) *Reconciler {
	r := &Reconciler{
		userID:    userID,
		demo:      demo,
		primary:   cfg.Primary,
		fallback:  cfg.Fallback,
		catalog:   cfg.Catalog,
		notifier:  cfg.Notifier,
		estimator: route.NewEstimator(),
		seq:       make(map[string]uint64),
	}
	r.debouncer = NewDebouncer(cfg.DebounceInterval,
		func() { r.recomputeRoute() },
		func() { r.clearRoute() },
	)

	// Demo identities never touch the remote backend; everyone else
	// starts on remote unless the connectivity probe fails. Either way
	// the downgrade is one-way for the session lifetime.
	if demo || cfg.Primary == nil {
		r.downgraded = true
	} else {
		probeTimeout := cfg.ProbeTimeout
		if probeTimeout <= 0 {
			probeTimeout = 3 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		if err := cfg.Primary.Ping(ctx); err != nil {
			logger.Logger.Warn().
				Err(err).
				Str("user_id", userID).
				Msg("Remote backend unreachable, session starts on local fallback")
			r.downgraded = true
			downgradeTotal.Inc()
		}
	}

	return r
}

// Downgraded reports whether the session has fallen back to local
// storage.
func (r *Reconciler) Downgraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.downgraded
}

func (r *Reconciler) UserID() string {
	return r.userID
}

func (r *Reconciler) activeLocked() domain.Backend {
	if r.downgraded {
		return r.fallback
	}
	return r.primary
}

// attempt runs one mutation against the active backend. On a hard
// failure of the remote backend it downgrades the session and retries
// the same operation once against the fallback. ErrNotFound is a
// business outcome, not a backend failure, and never triggers a
// downgrade.
func (r *Reconciler) attempt(ctx context.Context, op, key string, col collection, fn func(domain.Backend) error) bool {
	r.mu.Lock()
	backend := r.activeLocked()
	r.seq[key]++
	mySeq := r.seq[key]
	r.mu.Unlock()

	opsTotal.WithLabelValues(op, backend.Name()).Inc()

	err := fn(backend)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		r.mu.Lock()
		firstFailure := !r.downgraded
		if firstFailure {
			r.downgraded = true
		}
		r.mu.Unlock()

		if firstFailure {
			downgradeTotal.Inc()
			logger.Warn(ctx).
				Err(err).
				Str("operation", op).
				Str("user_id", r.userID).
				Msg("Remote backend failed, downgrading session to local fallback")
			opsTotal.WithLabelValues(op, r.fallback.Name()).Inc()
			err = fn(r.fallback)
		}
	}

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug(ctx).
				Str("operation", op).
				Str("user_id", r.userID).
				Msg("Nothing to remove")
		} else {
			opFailures.WithLabelValues(op).Inc()
			logger.Error(ctx).
				Err(err).
				Str("operation", op).
				Str("user_id", r.userID).
				Msg("Mutation failed")
		}
		return false
	}

	// A newer mutation for the same key superseded this one while it was
	// in flight; let that one refresh the snapshot.
	r.mu.Lock()
	stale := r.seq[key] != mySeq
	r.mu.Unlock()
	if !stale {
		if err := r.refreshCollection(ctx, col); err != nil {
			logger.Warn(ctx).
				Err(err).
				Str("operation", op).
				Msg("Snapshot refresh failed after mutation")
		}
	}

	return true
}

// Refresh reloads every collection from the active backend.
func (r *Reconciler) Refresh(ctx context.Context) error {
	var firstErr error
	for _, col := range []collection{colFavorites, colProductFavorites, colStoreFavorites, colCart} {
		if err := r.refreshCollection(ctx, col); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Reconciler) refreshCollection(ctx context.Context, col collection) error {
	r.mu.Lock()
	backend := r.activeLocked()
	r.mu.Unlock()

	err := r.loadCollection(ctx, backend, col)
	if err == nil {
		return nil
	}

	r.mu.Lock()
	firstFailure := !r.downgraded
	if firstFailure {
		r.downgraded = true
	}
	r.mu.Unlock()

	if !firstFailure {
		return err
	}

	downgradeTotal.Inc()
	logger.Warn(ctx).
		Err(err).
		Str("user_id", r.userID).
		Msg("Remote backend failed on read, downgrading session to local fallback")
	return r.loadCollection(ctx, r.fallback, col)
}

func (r *Reconciler) loadCollection(ctx context.Context, backend domain.Backend, col collection) error {
	switch col {
	case colFavorites:
		favorites, err := backend.ListFavorites(ctx, r.userID)
		if err != nil {
			return fmt.Errorf("failed to load favorites: %w", err)
		}
		r.mu.Lock()
		r.favorites = favorites
		r.mu.Unlock()

	case colProductFavorites:
		favorites, err := backend.ListProductFavorites(ctx, r.userID)
		if err != nil {
			return fmt.Errorf("failed to load product favorites: %w", err)
		}
		r.mu.Lock()
		r.productFavorites = favorites
		r.mu.Unlock()

	case colStoreFavorites:
		favorites, err := backend.ListStoreFavorites(ctx, r.userID)
		if err != nil {
			return fmt.Errorf("failed to load store favorites: %w", err)
		}
		r.mu.Lock()
		r.storeFavorites = favorites
		r.mu.Unlock()

	case colCart:
		items, err := backend.ListCartItems(ctx, r.userID)
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		r.mu.Lock()
		r.cartItems = items
		r.mu.Unlock()
		r.debouncer.Observe(CartSignature(items))
	}
	return nil
}

// --- Favorites ---

func (r *Reconciler) AddFavorite(ctx context.Context, productID uint) bool {
	if productID == 0 {
		return false
	}
	return r.attempt(ctx, "add_favorite", favKey(productID), colFavorites, func(b domain.Backend) error {
		return b.AddFavorite(ctx, r.userID, productID)
	})
}

func (r *Reconciler) RemoveFavorite(ctx context.Context, productID uint) bool {
	if productID == 0 {
		return false
	}
	return r.attempt(ctx, "remove_favorite", favKey(productID), colFavorites, func(b domain.Backend) error {
		return b.RemoveFavorite(ctx, r.userID, productID)
	})
}

// --- Product favorites ---

// ProductFavoriteInput is the payload for favoriting a product by name.
type ProductFavoriteInput struct {
	NameEn   string
	NameZh   string
	Image    string
	Category string
}

func (r *Reconciler) AddProductFavorite(ctx context.Context, input ProductFavoriteInput) bool {
	if strings.TrimSpace(input.NameEn) == "" {
		return false
	}
	key := "pfav:" + strings.ToLower(input.NameEn)
	return r.attempt(ctx, "add_product_favorite", key, colProductFavorites, func(b domain.Backend) error {
		fav := domain.ProductFavorite{
			UserID:   r.userID,
			NameEn:   input.NameEn,
			NameZh:   input.NameZh,
			Image:    input.Image,
			Category: input.Category,
		}
		return b.AddProductFavorite(ctx, &fav)
	})
}

func (r *Reconciler) RemoveProductFavorite(ctx context.Context, nameEn string) bool {
	if strings.TrimSpace(nameEn) == "" {
		return false
	}
	key := "pfav:" + strings.ToLower(nameEn)
	return r.attempt(ctx, "remove_product_favorite", key, colProductFavorites, func(b domain.Backend) error {
		return b.RemoveProductFavorite(ctx, r.userID, nameEn)
	})
}

// --- Store favorites ---

func (r *Reconciler) AddStoreFavorite(ctx context.Context, supermarketID uint) bool {
	if supermarketID == 0 {
		return false
	}
	ok := r.attempt(ctx, "add_store_favorite", storeKey(supermarketID), colStoreFavorites, func(b domain.Backend) error {
		return b.AddStoreFavorite(ctx, r.userID, supermarketID)
	})
	if ok {
		r.notifyStoreFavorites(ctx)
	}
	return ok
}

func (r *Reconciler) RemoveStoreFavorite(ctx context.Context, supermarketID uint) bool {
	if supermarketID == 0 {
		return false
	}
	ok := r.attempt(ctx, "remove_store_favorite", storeKey(supermarketID), colStoreFavorites, func(b domain.Backend) error {
		return b.RemoveStoreFavorite(ctx, r.userID, supermarketID)
	})
	if ok {
		r.notifyStoreFavorites(ctx)
	}
	return ok
}

func (r *Reconciler) notifyStoreFavorites(ctx context.Context) {
	if r.notifier != nil {
		r.notifier.StoreFavoritesChanged(ctx, r.userID)
	}
}

// --- Cart ---

// AddCartItem upserts a cart row. An existing (user, product) row gets
// its quantity and notes overwritten, not added to.
func (r *Reconciler) AddCartItem(ctx context.Context, productID uint, quantity int, notes string) bool {
	if productID == 0 || quantity < 1 {
		return false
	}

	item := domain.CartItem{
		UserID:    r.userID,
		ProductID: productID,
		Quantity:  quantity,
		Notes:     notes,
	}
	r.resolveSnapshot(ctx, &item)

	return r.attempt(ctx, "add_cart_item", cartKey(productID), colCart, func(b domain.Backend) error {
		row := item
		return b.UpsertCartItem(ctx, &row)
	})
}

// UpdateCartQuantity sets the quantity for an existing row. Zero or
// negative quantity is a removal signal, not an error.
func (r *Reconciler) UpdateCartQuantity(ctx context.Context, productID uint, quantity int) bool {
	if productID == 0 {
		return false
	}
	if quantity <= 0 {
		return r.RemoveCartItem(ctx, productID)
	}
	return r.attempt(ctx, "update_cart_quantity", cartKey(productID), colCart, func(b domain.Backend) error {
		return b.UpdateCartQuantity(ctx, r.userID, productID, quantity)
	})
}

func (r *Reconciler) RemoveCartItem(ctx context.Context, productID uint) bool {
	if productID == 0 {
		return false
	}
	return r.attempt(ctx, "remove_cart_item", cartKey(productID), colCart, func(b domain.Backend) error {
		return b.RemoveCartItem(ctx, r.userID, productID)
	})
}

func (r *Reconciler) ClearCart(ctx context.Context) bool {
	return r.attempt(ctx, "clear_cart", "cart:clear", colCart, func(b domain.Backend) error {
		return b.ClearCart(ctx, r.userID)
	})
}

// resolveSnapshot fills the denormalized product/store columns from the
// catalog. Resolution is best-effort; an unresolved row still enters
// the cart and simply contributes nothing to cost and route.
func (r *Reconciler) resolveSnapshot(ctx context.Context, item *domain.CartItem) {
	if r.catalog == nil {
		return
	}
	resolved, err := r.catalog.ResolveProduct(ctx, item.ProductID)
	if err != nil {
		logger.Debug(ctx).
			Err(err).
			Uint("product_id", item.ProductID).
			Msg("Cart snapshot resolution failed")
		return
	}
	item.ProductNameEn = resolved.Product.NameEn
	item.ProductNameZh = resolved.Product.NameZh
	item.UnitPrice = resolved.Product.Price
	item.Unit = resolved.Product.Unit
	if resolved.Store != nil {
		item.SupermarketID = resolved.Store.ID
		item.SupermarketName = resolved.Store.Name
		item.SupermarketLocation = resolved.Store.Location
		item.Lat = resolved.Store.Lat
		item.Lng = resolved.Store.Lng
	}
}

// --- Membership checks (pure snapshot lookups, no I/O) ---

func (r *Reconciler) IsFavorite(productID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.favorites {
		if f.ProductID == productID {
			return true
		}
	}
	return false
}

func (r *Reconciler) IsInCart(productID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.cartItems {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

func (r *Reconciler) IsProductFavorite(nameEn string) bool {
	key := strings.ToLower(nameEn)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.productFavorites {
		if f.NameKey == key || strings.ToLower(f.NameEn) == key {
			return true
		}
	}
	return false
}

func (r *Reconciler) IsStoreFavorite(supermarketID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.storeFavorites {
		if f.SupermarketID == supermarketID {
			return true
		}
	}
	return false
}

// --- Snapshot accessors (copies, never live references) ---

func (r *Reconciler) Favorites() []domain.Favorite {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Favorite, len(r.favorites))
	copy(out, r.favorites)
	return out
}

func (r *Reconciler) ProductFavorites() []domain.ProductFavorite {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ProductFavorite, len(r.productFavorites))
	copy(out, r.productFavorites)
	return out
}

func (r *Reconciler) StoreFavorites() []domain.StoreFavorite {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.StoreFavorite, len(r.storeFavorites))
	copy(out, r.storeFavorites)
	return out
}

func (r *Reconciler) CartItems() []domain.CartItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.CartItem, len(r.cartItems))
	copy(out, r.cartItems)
	return out
}

// --- Route ---

// Route returns the derived shopping route, nil when there is nothing
// to plan. The debounced recomputation keeps the cached route warm;
// a read between mutation and timer expiry computes synchronously so
// callers never observe a route for a different cart.
func (r *Reconciler) Route() *domain.ShoppingRoute {
	r.mu.Lock()
	items := make([]domain.CartItem, len(r.cartItems))
	copy(items, r.cartItems)
	sig := CartSignature(items)
	if sig == "" {
		r.route = nil
		r.routeSig = ""
		r.mu.Unlock()
		return nil
	}
	if sig == r.routeSig {
		cached := r.route
		r.mu.Unlock()
		return cached
	}
	r.mu.Unlock()

	computed := r.estimator.Estimate(items)
	r.mu.Lock()
	r.route = computed
	r.routeSig = sig
	r.mu.Unlock()
	return computed
}

func (r *Reconciler) recomputeRoute() {
	r.Route()
}

func (r *Reconciler) clearRoute() {
	r.mu.Lock()
	r.route = nil
	r.routeSig = ""
	r.mu.Unlock()
}

// Close stops background work for the session.
func (r *Reconciler) Close() {
	r.debouncer.Stop()
}

func favKey(productID uint) string {
	return fmt.Sprintf("fav:%d", productID)
}

func storeKey(supermarketID uint) string {
	return fmt.Sprintf("sfav:%d", supermarketID)
}

func cartKey(productID uint) string {
	return fmt.Sprintf("cart:%d", productID)
}
