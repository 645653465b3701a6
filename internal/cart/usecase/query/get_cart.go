package query

import (
	"context"

	"github.com/saulet/grocery-compare/internal/cart/domain"
	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// GetCartQuery requests the full snapshot for a user.
type GetCartQuery struct {
	UserID string
	Demo   bool
}

// CartSnapshot is a read-only copy of the session's collections.
type CartSnapshot struct {
	Favorites        []domain.Favorite        `json:"favorites"`
	ProductFavorites []domain.ProductFavorite `json:"product_favorites"`
	StoreFavorites   []domain.StoreFavorite   `json:"store_favorites"`
	CartItems        []domain.CartItem        `json:"cart_items"`
	Downgraded       bool                     `json:"downgraded"`
}

// GetCartHandler handles snapshot reads.
type GetCartHandler struct {
	sessions *reconcile.Manager
}

// NewGetCartHandler creates a new get cart handler.
func NewGetCartHandler(sessions *reconcile.Manager) *GetCartHandler {
	return &GetCartHandler{sessions: sessions}
}

// Handle returns copies of the session collections, never live
// references.
func (h *GetCartHandler) Handle(ctx context.Context, q GetCartQuery) (*CartSnapshot, error) {
	rec, err := h.sessions.Session(ctx, q.UserID, q.Demo)
	if err != nil {
		return nil, err
	}

	return &CartSnapshot{
		Favorites:        rec.Favorites(),
		ProductFavorites: rec.ProductFavorites(),
		StoreFavorites:   rec.StoreFavorites(),
		CartItems:        rec.CartItems(),
		Downgraded:       rec.Downgraded(),
	}, nil
}
