package query

import (
	"context"

	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// CheckMembershipQuery asks which of the given keys are present in the
// user's collections. Unset keys are skipped.
type CheckMembershipQuery struct {
	UserID        string
	Demo          bool
	ProductID     uint
	NameEn        string
	SupermarketID uint
}

// MembershipResult reports the predicate outcomes.
type MembershipResult struct {
	IsFavorite        bool `json:"is_favorite"`
	IsInCart          bool `json:"is_in_cart"`
	IsProductFavorite bool `json:"is_product_favorite"`
	IsStoreFavorite   bool `json:"is_store_favorite"`
}

// CheckMembershipHandler handles membership checks.
type CheckMembershipHandler struct {
	sessions *reconcile.Manager
}

// NewCheckMembershipHandler creates a new membership check handler.
func NewCheckMembershipHandler(sessions *reconcile.Manager) *CheckMembershipHandler {
	return &CheckMembershipHandler{sessions: sessions}
}

// Handle evaluates the predicates against the in-memory snapshot. The
// lookups are synchronous and reflect the latest successful mutation.
func (h *CheckMembershipHandler) Handle(ctx context.Context, q CheckMembershipQuery) (*MembershipResult, error) {
	rec, err := h.sessions.Session(ctx, q.UserID, q.Demo)
	if err != nil {
		return nil, err
	}

	result := &MembershipResult{}
	if q.ProductID != 0 {
		result.IsFavorite = rec.IsFavorite(q.ProductID)
		result.IsInCart = rec.IsInCart(q.ProductID)
	}
	if q.NameEn != "" {
		result.IsProductFavorite = rec.IsProductFavorite(q.NameEn)
	}
	if q.SupermarketID != 0 {
		result.IsStoreFavorite = rec.IsStoreFavorite(q.SupermarketID)
	}
	return result, nil
}
