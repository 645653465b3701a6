package query

import (
	"context"

	"github.com/saulet/grocery-compare/internal/cart/domain"
	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// GetStatsQuery requests derived cart statistics.
type GetStatsQuery struct {
	UserID string
	Demo   bool
}

// GetStatsHandler handles the cart stats query.
type GetStatsHandler struct {
	sessions *reconcile.Manager
}

// NewGetStatsHandler creates a new get stats handler.
func NewGetStatsHandler(sessions *reconcile.Manager) *GetStatsHandler {
	return &GetStatsHandler{sessions: sessions}
}

// Handle recomputes stats from the live cart snapshot.
func (h *GetStatsHandler) Handle(ctx context.Context, q GetStatsQuery) (*domain.CartStats, error) {
	rec, err := h.sessions.Session(ctx, q.UserID, q.Demo)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(rec.CartItems())
	return &stats, nil
}

// ComputeStats is the pure aggregation from cart rows to stats.
//
// Rows without a resolved product snapshot contribute zero cost and no
// store; a non-empty cart where no row resolved a store still reports
// one store, so the UI never shows "0 stores" next to items.
func ComputeStats(items []domain.CartItem) domain.CartStats {
	stats := domain.CartStats{TotalItems: len(items)}
	if len(items) == 0 {
		return stats
	}

	stores := make(map[uint]struct{})
	for _, item := range items {
		stats.ItemsCount += item.Quantity
		stats.TotalCost += item.LineTotal()
		if item.HasStoreInfo() {
			stores[item.SupermarketID] = struct{}{}
		}
	}

	stats.UniqueStores = len(stores)
	if stats.UniqueStores == 0 {
		stats.UniqueStores = 1
	}
	return stats
}
