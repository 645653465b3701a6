package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saulet/grocery-compare/internal/cart/domain"
)

func TestComputeStatsEmptyCart(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Equal(t, 0, stats.TotalItems)
	assert.Equal(t, 0, stats.ItemsCount)
	assert.Equal(t, 0.0, stats.TotalCost)
	assert.Equal(t, 0, stats.UniqueStores)
}

func TestComputeStatsAggregates(t *testing.T) {
	items := []domain.CartItem{
		{ProductID: 101, Quantity: 3, UnitPrice: 2.99, SupermarketID: 1},
		{ProductID: 102, Quantity: 1, UnitPrice: 4.50, SupermarketID: 1},
		{ProductID: 103, Quantity: 2, UnitPrice: 12.99, SupermarketID: 2},
	}

	stats := ComputeStats(items)
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 6, stats.ItemsCount)
	assert.InDelta(t, 39.45, stats.TotalCost, 0.001)
	assert.Equal(t, 2, stats.UniqueStores)
}

func TestComputeStatsUnresolvedRows(t *testing.T) {
	items := []domain.CartItem{
		{ProductID: 101, Quantity: 2, UnitPrice: 2.99, SupermarketID: 1},
		{ProductID: 999, Quantity: 4}, // never resolved a snapshot
	}

	stats := ComputeStats(items)
	assert.Equal(t, 2, stats.TotalItems)
	assert.Equal(t, 6, stats.ItemsCount)
	// unresolved row contributes zero cost
	assert.InDelta(t, 5.98, stats.TotalCost, 0.001)
	assert.Equal(t, 1, stats.UniqueStores)
}

func TestComputeStatsNonEmptyCartNeverZeroStores(t *testing.T) {
	items := []domain.CartItem{
		{ProductID: 999, Quantity: 1},
	}

	stats := ComputeStats(items)
	assert.Equal(t, 1, stats.UniqueStores)
}
