package domain

import (
	"context"
	"errors"
	"time"
)

var ErrProductNotFound = errors.New("product not found")

// Product is one supermarket's listing of a grocery item.
type Product struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	NameEn        string    `json:"name_en" gorm:"not null;index"`
	NameZh        string    `json:"name_zh"`
	Price         float64   `json:"price" gorm:"not null"`
	Unit          string    `json:"unit"`
	Image         string    `json:"image"`
	Category      string    `json:"category" gorm:"index"`
	SupermarketID uint      `json:"supermarket_id" gorm:"not null;index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Supermarket is a store carrying products.
type Supermarket struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Location  string    `json:"location"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	CreatedAt time.Time `json:"created_at"`
}

func (Supermarket) TableName() string {
	return "supermarkets"
}

// ResolvedProduct is a product joined with its owning store, used to
// fill the denormalized cart snapshot.
type ResolvedProduct struct {
	Product Product
	Store   *Supermarket
}

// Catalog resolves product and store lookups. The cart layer treats it
// as best-effort: a failed resolution leaves the cart row without a
// snapshot instead of failing the mutation.
type Catalog interface {
	ResolveProduct(ctx context.Context, productID uint) (*ResolvedProduct, error)
	GetSupermarket(ctx context.Context, supermarketID uint) (*Supermarket, error)
}
