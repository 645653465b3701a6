package query

import (
	"context"

	"github.com/saulet/grocery-compare/internal/cart/domain"
	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// GetRouteQuery requests the suggested shopping route.
type GetRouteQuery struct {
	UserID string
	Demo   bool
}

// GetRouteHandler handles the route query.
type GetRouteHandler struct {
	sessions *reconcile.Manager
}

// NewGetRouteHandler creates a new get route handler.
func NewGetRouteHandler(sessions *reconcile.Manager) *GetRouteHandler {
	return &GetRouteHandler{sessions: sessions}
}

// Handle returns the derived route. A nil route with a nil error means
// there is nothing to plan: the cart is empty or no row resolved a
// store.
func (h *GetRouteHandler) Handle(ctx context.Context, q GetRouteQuery) (*domain.ShoppingRoute, error) {
	rec, err := h.sessions.Session(ctx, q.UserID, q.Demo)
	if err != nil {
		return nil, err
	}
	return rec.Route(), nil
}
