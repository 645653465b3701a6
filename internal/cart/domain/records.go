package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound signals that a record does not exist. Backends must return
// it for remove/update on a missing key so callers can distinguish
// "nothing to remove" from a backend failure.
var ErrNotFound = errors.New("record not found")

// Favorite marks a specific store listing as a user's favorite.
// At most one row exists per (user_id, product_id).
type Favorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;index;uniqueIndex:idx_favorites_user_product"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_favorites_user_product"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// ProductFavorite favorites a product by name rather than a specific
// store's listing. NameKey holds the lowercased English name and drives
// the case-insensitive uniqueness per user.
type ProductFavorite struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"not null;index;uniqueIndex:idx_product_favorites_user_name"`
	NameKey      string    `json:"-" gorm:"not null;uniqueIndex:idx_product_favorites_user_name"`
	NameEn       string    `json:"name_en" gorm:"not null"`
	NameZh       string    `json:"name_zh"`
	Image        string    `json:"image"`
	Category     string    `json:"category"`
	CreatedAt    time.Time `json:"created_at"`
	LastViewedAt time.Time `json:"last_viewed_at"`
}

func (ProductFavorite) TableName() string {
	return "product_favorites"
}

// StoreFavorite marks a supermarket as a user's favorite.
type StoreFavorite struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"not null;index;uniqueIndex:idx_store_favorites_user_store"`
	SupermarketID uint      `json:"supermarket_id" gorm:"not null;uniqueIndex:idx_store_favorites_user_store"`
	CreatedAt     time.Time `json:"created_at"`
}

func (StoreFavorite) TableName() string {
	return "store_favorites"
}

// CartItem is one cart row per (user_id, product_id). A repeated add
// overwrites quantity and notes rather than creating a second row.
//
// The product/store columns are a denormalized snapshot resolved from
// the catalog at add time. They exist for display and route estimation
// only and may go stale relative to the live catalog; a zero
// SupermarketID means the snapshot could not be resolved.
type CartItem struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UserID    string `json:"user_id" gorm:"not null;index;uniqueIndex:idx_cart_items_user_product"`
	ProductID uint   `json:"product_id" gorm:"not null;uniqueIndex:idx_cart_items_user_product"`
	Quantity  int    `json:"quantity" gorm:"not null;default:1"`
	Notes     string `json:"notes"`

	ProductNameEn       string  `json:"product_name_en"`
	ProductNameZh       string  `json:"product_name_zh"`
	UnitPrice           float64 `json:"unit_price"`
	Unit                string  `json:"unit"`
	SupermarketID       uint    `json:"supermarket_id"`
	SupermarketName     string  `json:"supermarket_name"`
	SupermarketLocation string  `json:"supermarket_location"`
	Lat                 float64 `json:"lat"`
	Lng                 float64 `json:"lng"`

	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// HasStoreInfo reports whether the snapshot resolved an owning store.
func (c *CartItem) HasStoreInfo() bool {
	return c.SupermarketID != 0
}

// LineTotal is the cost contribution of this row. Rows without a
// resolved snapshot contribute zero.
func (c *CartItem) LineTotal() float64 {
	return c.UnitPrice * float64(c.Quantity)
}

// DisplayName prefers the English snapshot name.
func (c *CartItem) DisplayName() string {
	if c.ProductNameEn != "" {
		return c.ProductNameEn
	}
	return c.ProductNameZh
}

// Backend is the persistence contract shared by the remote store and the
// local fallback store. Implementations must keep the per-key uniqueness
// invariants: add-favorite operations are insert-or-ignore, cart upserts
// are last-write-wins on (user, product).
type Backend interface {
	Name() string
	Ping(ctx context.Context) error

	ListFavorites(ctx context.Context, userID string) ([]Favorite, error)
	AddFavorite(ctx context.Context, userID string, productID uint) error
	RemoveFavorite(ctx context.Context, userID string, productID uint) error

	ListProductFavorites(ctx context.Context, userID string) ([]ProductFavorite, error)
	AddProductFavorite(ctx context.Context, fav *ProductFavorite) error
	RemoveProductFavorite(ctx context.Context, userID, nameEn string) error

	ListStoreFavorites(ctx context.Context, userID string) ([]StoreFavorite, error)
	AddStoreFavorite(ctx context.Context, userID string, supermarketID uint) error
	RemoveStoreFavorite(ctx context.Context, userID string, supermarketID uint) error

	ListCartItems(ctx context.Context, userID string) ([]CartItem, error)
	UpsertCartItem(ctx context.Context, item *CartItem) error
	UpdateCartQuantity(ctx context.Context, userID string, productID uint, quantity int) error
	RemoveCartItem(ctx context.Context, userID string, productID uint) error
	ClearCart(ctx context.Context, userID string) error
}
