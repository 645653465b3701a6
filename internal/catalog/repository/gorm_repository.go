package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/saulet/grocery-compare/internal/catalog/domain"
)

// GormCatalog resolves products and supermarkets from PostgreSQL.
type GormCatalog struct {
	db *gorm.DB
}

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

func (r *GormCatalog) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Product{}, &domain.Supermarket{})
}

func (r *GormCatalog) ResolveProduct(ctx context.Context, productID uint) (*domain.ResolvedProduct, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product %d: %w", productID, err)
	}

	resolved := &domain.ResolvedProduct{Product: product}

	if product.SupermarketID != 0 {
		var store domain.Supermarket
		err := r.db.WithContext(ctx).First(&store, product.SupermarketID).Error
		switch {
		case err == nil:
			resolved.Store = &store
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Listing without a resolvable store still goes into the cart.
		default:
			return nil, fmt.Errorf("failed to load supermarket %d: %w", product.SupermarketID, err)
		}
	}

	return resolved, nil
}

func (r *GormCatalog) GetSupermarket(ctx context.Context, supermarketID uint) (*domain.Supermarket, error) {
	var store domain.Supermarket
	if err := r.db.WithContext(ctx).First(&store, supermarketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load supermarket %d: %w", supermarketID, err)
	}
	return &store, nil
}
