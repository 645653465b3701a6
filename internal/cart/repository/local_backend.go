package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/saulet/grocery-compare/internal/cart/domain"
	"github.com/saulet/grocery-compare/pkg/logger"
)

// LocalBackend is the fallback persistence backend: mutex-guarded maps
// snapshotted to one JSON file per user. Operations are synchronous and
// never fail on I/O — a snapshot write error is logged and the in-memory
// state stays authoritative for the session.
//
// With an empty directory the backend is memory-only, which is what
// tests use.
type LocalBackend struct {
	mu    sync.Mutex
	dir   string
	users map[string]*userState
}

type userState struct {
	NextID           uint                     `json:"next_id"`
	Favorites        []domain.Favorite        `json:"favorites"`
	ProductFavorites []domain.ProductFavorite `json:"product_favorites"`
	StoreFavorites   []domain.StoreFavorite   `json:"store_favorites"`
	CartItems        []domain.CartItem        `json:"cart_items"`
}

// NewLocalBackend creates a local backend persisting under dir. An empty
// dir disables persistence.
func NewLocalBackend(dir string) *LocalBackend {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Logger.Warn().
				Err(err).
				Str("dir", dir).
				Msg("Local backend falling back to memory-only mode")
			dir = ""
		}
	}
	return &LocalBackend{
		dir:   dir,
		users: make(map[string]*userState),
	}
}

func (b *LocalBackend) Name() string {
	return "local"
}

// Ping always succeeds: the local backend is the last line of defense.
func (b *LocalBackend) Ping(ctx context.Context) error {
	return nil
}

// state returns the loaded state for a user, reading the snapshot file
// on first access. Callers must hold b.mu.
func (b *LocalBackend) state(userID string) *userState {
	if st, ok := b.users[userID]; ok {
		return st
	}

	st := &userState{NextID: 1}
	if b.dir != "" {
		data, err := os.ReadFile(b.userFile(userID))
		if err == nil {
			if jsonErr := json.Unmarshal(data, st); jsonErr != nil {
				logger.Logger.Warn().
					Err(jsonErr).
					Str("user_id", userID).
					Msg("Discarding corrupt local snapshot")
				st = &userState{NextID: 1}
			}
		}
		if st.NextID == 0 {
			st.NextID = 1
		}
	}

	b.users[userID] = st
	return st
}

// persist writes the user snapshot. Callers must hold b.mu.
func (b *LocalBackend) persist(userID string) {
	if b.dir == "" {
		return
	}
	st := b.users[userID]
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		logger.Logger.Error().Err(err).Str("user_id", userID).Msg("Failed to encode local snapshot")
		return
	}
	if err := os.WriteFile(b.userFile(userID), data, 0o644); err != nil {
		logger.Logger.Error().Err(err).Str("user_id", userID).Msg("Failed to write local snapshot")
	}
}

func (b *LocalBackend) userFile(userID string) string {
	// User ids come from JWT claims; strip path-hostile characters anyway.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, userID)
	return filepath.Join(b.dir, fmt.Sprintf("user_%s.json", safe))
}

// --- Favorites ---

func (b *LocalBackend) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(userID)
	out := make([]domain.Favorite, len(st.Favorites))
	copy(out, st.Favorites)
	return out, nil
}

func (b *LocalBackend) AddFavorite(ctx context.Context, userID string, productID uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(userID)
	for _, f := range st.Favorites {
		if f.ProductID == productID {
			return nil
		}
	}
	st.Favorites = append(st.Favorites, domain.Favorite{
		ID:        st.nextID(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	})
	b.persist(userID)
	return nil
}

func (b *LocalBackend) RemoveFavorite(ctx context.Context, userID string, productID uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(userID)
	for i, f := range st.Favorites {
		if f.ProductID == productID {
			st.Favorites = append(st.Favorites[:i], st.Favorites[i+1:]...)
			b.persist(userID)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Product favorites ---

func (b *LocalBackend) ListProductFavorites(ctx context.Context, userID string) ([]domain.ProductFavorite, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(userID)
	out := make([]domain.ProductFavorite, len(st.ProductFavorites))
	copy(out, st.ProductFavorites)
	return out, nil
}

func (b *LocalBackend) AddProductFavorite(ctx context.Context, fav *domain.ProductFavorite) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	key := strings.ToLower(fav.NameEn)
	st := b.state(fav.UserID)
	for i := range st.ProductFavorites {
		if st.ProductFavorites[i].NameKey == key {
			st.ProductFavorites[i].LastViewedAt = now
			b.persist(fav.UserID)
			return nil
		}
	}

	fav.ID = st.nextID()
	fav.NameKey = key
	fav.CreatedAt = now
	fav.LastViewedAt = now
	st.ProductFavorites = append(st.ProductFavorites, *fav)
	b.persist(fav.UserID)
	return nil
}

func (b *LocalBackend) RemoveProductFavorite(ctx context.Context, userID, nameEn string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.ToLower(nameEn)
	st := b.state(userID)
	for i, f := range st.ProductFavorites {
		if f.NameKey == key {
			st.ProductFavorites = append(st.ProductFavorites[:i], st.ProductFavorites[i+1:]...)
			b.persist(userID)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Store favorites ---

func (b *LocalBackend) ListStoreFavorites(ctx context.Context, userID string) ([]domain.StoreFavorite, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(userID)
	out := make([]domain.StoreFavorite, len(st.StoreFavorites))
	copy(out, st.StoreFavorites)
	return out, nil
}

func (b *LocalBackend) AddStoreFavorite(ctx context.Context, userID string, supermarketID uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(userID)
	for _, f := range st.StoreFavorites {
		if f.SupermarketID == supermarketID {
			return nil
		}
	}
	st.StoreFavorites = append(st.StoreFavorites, domain.StoreFavorite{
		ID:            st.nextID(),
		UserID:        userID,
		SupermarketID: supermarketID,
		CreatedAt:     time.Now(),
	})
	b.persist(userID)
	return nil
}

func (b *LocalBackend) RemoveStoreFavorite(ctx context.Context, userID string, supermarketID uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(userID)
	for i, f := range st.StoreFavorites {
		if f.SupermarketID == supermarketID {
			st.StoreFavorites = append(st.StoreFavorites[:i], st.StoreFavorites[i+1:]...)
			b.persist(userID)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Cart ---

func (b *LocalBackend) ListCartItems(ctx context.Context, userID string) ([]domain.CartItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(userID)
	out := make([]domain.CartItem, len(st.CartItems))
	copy(out, st.CartItems)
	return out, nil
}

func (b *LocalBackend) UpsertCartItem(ctx context.Context, item *domain.CartItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	st := b.state(item.UserID)
	for i := range st.CartItems {
		if st.CartItems[i].ProductID == item.ProductID {
			existing := &st.CartItems[i]
			existing.Quantity = item.Quantity
			existing.Notes = item.Notes
			existing.UpdatedAt = now
			if item.HasStoreInfo() {
				existing.ProductNameEn = item.ProductNameEn
				existing.ProductNameZh = item.ProductNameZh
				existing.UnitPrice = item.UnitPrice
				existing.Unit = item.Unit
				existing.SupermarketID = item.SupermarketID
				existing.SupermarketName = item.SupermarketName
				existing.SupermarketLocation = item.SupermarketLocation
				existing.Lat = item.Lat
				existing.Lng = item.Lng
			}
			b.persist(item.UserID)
			return nil
		}
	}

	item.ID = st.nextID()
	item.AddedAt = now
	item.UpdatedAt = now
	st.CartItems = append(st.CartItems, *item)
	b.persist(item.UserID)
	return nil
}

func (b *LocalBackend) UpdateCartQuantity(ctx context.Context, userID string, productID uint, quantity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(userID)
	for i := range st.CartItems {
		if st.CartItems[i].ProductID == productID {
			st.CartItems[i].Quantity = quantity
			st.CartItems[i].UpdatedAt = time.Now()
			b.persist(userID)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (b *LocalBackend) RemoveCartItem(ctx context.Context, userID string, productID uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(userID)
	for i, item := range st.CartItems {
		if item.ProductID == productID {
			st.CartItems = append(st.CartItems[:i], st.CartItems[i+1:]...)
			b.persist(userID)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (b *LocalBackend) ClearCart(ctx context.Context, userID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(userID)
	st.CartItems = nil
	b.persist(userID)
	return nil
}

func (s *userState) nextID() uint {
	id := s.NextID
	s.NextID++
	return id
}
