package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/saulet/grocery-compare/internal/cart/domain"
)

// GormBackend is the remote (primary) persistence backend on PostgreSQL.
// Uniqueness is enforced by composite unique indexes; adds are
// insert-or-ignore and cart adds are single-statement upserts.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

func (r *GormBackend) AutoMigrate() error {
	return r.db.AutoMigrate(
		&domain.Favorite{},
		&domain.ProductFavorite{},
		&domain.StoreFavorite{},
		&domain.CartItem{},
	)
}

func (r *GormBackend) Name() string {
	return "remote"
}

func (r *GormBackend) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// --- Favorites ---

func (r *GormBackend) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	var favorites []domain.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	return favorites, err
}

func (r *GormBackend) AddFavorite(ctx context.Context, userID string, productID uint) error {
	fav := domain.Favorite{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}
	// Duplicate adds are successful no-ops.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&fav).Error
}

func (r *GormBackend) RemoveFavorite(ctx context.Context, userID string, productID uint) error {
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.Favorite{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --- Product favorites ---

func (r *GormBackend) ListProductFavorites(ctx context.Context, userID string) ([]domain.ProductFavorite, error) {
	var favorites []domain.ProductFavorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	return favorites, err
}

func (r *GormBackend) AddProductFavorite(ctx context.Context, fav *domain.ProductFavorite) error {
	now := time.Now()
	fav.NameKey = strings.ToLower(fav.NameEn)
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = now
	}
	fav.LastViewedAt = now

	// Re-adding an existing name only touches last_viewed_at.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "name_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"last_viewed_at": now}),
		}).
		Create(fav).Error
}

func (r *GormBackend) RemoveProductFavorite(ctx context.Context, userID, nameEn string) error {
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND name_key = ?", userID, strings.ToLower(nameEn)).
		Delete(&domain.ProductFavorite{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --- Store favorites ---

func (r *GormBackend) ListStoreFavorites(ctx context.Context, userID string) ([]domain.StoreFavorite, error) {
	var favorites []domain.StoreFavorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	return favorites, err
}

func (r *GormBackend) AddStoreFavorite(ctx context.Context, userID string, supermarketID uint) error {
	fav := domain.StoreFavorite{
		UserID:        userID,
		SupermarketID: supermarketID,
		CreatedAt:     time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "supermarket_id"}},
			DoNothing: true,
		}).
		Create(&fav).Error
}

func (r *GormBackend) RemoveStoreFavorite(ctx context.Context, userID string, supermarketID uint) error {
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND supermarket_id = ?", userID, supermarketID).
		Delete(&domain.StoreFavorite{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --- Cart ---

func (r *GormBackend) ListCartItems(ctx context.Context, userID string) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Find(&items).Error
	return items, err
}

func (r *GormBackend) UpsertCartItem(ctx context.Context, item *domain.CartItem) error {
	now := time.Now()
	if item.AddedAt.IsZero() {
		item.AddedAt = now
	}
	item.UpdatedAt = now

	// Last write wins on (user, product): quantity and notes are
	// overwritten, not accumulated.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"quantity", "notes", "updated_at",
				"product_name_en", "product_name_zh", "unit_price", "unit",
				"supermarket_id", "supermarket_name", "supermarket_location", "lat", "lng",
			}),
		}).
		Create(item).Error
}

func (r *GormBackend) UpdateCartQuantity(ctx context.Context, userID string, productID uint, quantity int) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormBackend) RemoveCartItem(ctx context.Context, userID string, productID uint) error {
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.CartItem{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormBackend) ClearCart(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.CartItem{}).Error
}
