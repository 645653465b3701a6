package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulet/grocery-compare/internal/cart/domain"
)

func item(productID uint, qty int, price float64, storeID uint, storeName string) domain.CartItem {
	return domain.CartItem{
		ProductID:       productID,
		Quantity:        qty,
		UnitPrice:       price,
		ProductNameEn:   "Product",
		SupermarketID:   storeID,
		SupermarketName: storeName,
	}
}

func TestEstimateEmptyCart(t *testing.T) {
	e := NewEstimator()
	assert.Nil(t, e.Estimate(nil))
	assert.Nil(t, e.Estimate([]domain.CartItem{}))
}

func TestEstimateUnresolvedRowsOnly(t *testing.T) {
	e := NewEstimator()
	items := []domain.CartItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}
	assert.Nil(t, e.Estimate(items))
}

func TestEstimateSingleStore(t *testing.T) {
	e := NewEstimator()
	items := []domain.CartItem{
		item(101, 3, 2.99, 1, "Wellcome"),
		item(102, 1, 4.50, 1, "Wellcome"),
	}

	route := e.Estimate(items)
	require.NotNil(t, route)
	require.Len(t, route.Stores, 1)

	store := route.Stores[0]
	assert.Equal(t, uint(1), store.SupermarketID)
	assert.Len(t, store.Products, 2)
	assert.InDelta(t, 13.47, store.StoreTotal, 0.001)
	// 2 products is under the 15 minute floor
	assert.Equal(t, 15, store.EstimatedTimeMinutes)

	assert.InDelta(t, 13.47, route.TotalCost, 0.001)
	assert.Equal(t, 15, route.TotalTimeMinutes)
	assert.Equal(t, 0.0, route.TotalDistanceKm)
	assert.Equal(t, 100, route.EfficiencyScore)
}

func TestEstimateTwoStores(t *testing.T) {
	e := NewEstimator()
	items := []domain.CartItem{
		item(101, 3, 2.99, 1, "Wellcome"),
		item(102, 1, 4.50, 1, "Wellcome"),
		item(103, 2, 12.99, 2, "ParknShop"),
	}

	route := e.Estimate(items)
	require.NotNil(t, route)
	require.Len(t, route.Stores, 2)

	// Store 1 has more products so it scores higher and comes first
	assert.Equal(t, uint(1), route.Stores[0].SupermarketID)
	assert.Equal(t, uint(2), route.Stores[1].SupermarketID)

	assert.InDelta(t, 13.47, route.Stores[0].StoreTotal, 0.001)
	assert.InDelta(t, 25.98, route.Stores[1].StoreTotal, 0.001)

	assert.InDelta(t, 39.45, route.TotalCost, 0.001)
	assert.Equal(t, 30, route.TotalTimeMinutes)
	assert.InDelta(t, 5.0, route.TotalDistanceKm, 0.001)
	assert.Equal(t, 90, route.EfficiencyScore)
}

func TestEstimateSkipsUnresolvedRows(t *testing.T) {
	e := NewEstimator()
	items := []domain.CartItem{
		item(101, 1, 2.99, 1, "Wellcome"),
		{ProductID: 999, Quantity: 5}, // no store snapshot
	}

	route := e.Estimate(items)
	require.NotNil(t, route)
	require.Len(t, route.Stores, 1)
	assert.Len(t, route.Stores[0].Products, 1)
	assert.InDelta(t, 2.99, route.TotalCost, 0.001)
}

func TestEstimateStoreTimeScalesWithProducts(t *testing.T) {
	e := NewEstimator()
	var items []domain.CartItem
	for i := uint(1); i <= 6; i++ {
		items = append(items, item(100+i, 1, 1.00, 1, "Wellcome"))
	}

	route := e.Estimate(items)
	require.NotNil(t, route)
	// 6 products at 3 minutes each beats the 15 minute floor
	assert.Equal(t, 18, route.Stores[0].EstimatedTimeMinutes)
}

func TestEfficiencyScoreClampsAtFloor(t *testing.T) {
	e := NewEstimator()
	var items []domain.CartItem
	for i := uint(1); i <= 12; i++ {
		items = append(items, item(100+i, 1, 1.00, i, "Store"))
	}

	route := e.Estimate(items)
	require.NotNil(t, route)
	// 100 - 11*10 would be negative; floor is 10
	assert.Equal(t, 10, route.EfficiencyScore)
}

func TestEstimateTieBreaksOnStoreID(t *testing.T) {
	e := NewEstimator()
	items := []domain.CartItem{
		item(201, 1, 3.00, 7, "B"),
		item(202, 1, 3.00, 3, "A"),
	}

	route := e.Estimate(items)
	require.NotNil(t, route)
	require.Len(t, route.Stores, 2)
	assert.Equal(t, uint(3), route.Stores[0].SupermarketID)
	assert.Equal(t, uint(7), route.Stores[1].SupermarketID)
}
