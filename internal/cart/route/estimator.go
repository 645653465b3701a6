package route

import (
	"sort"

	"github.com/saulet/grocery-compare/internal/cart/domain"
)

// Estimator derives a shopping route from the cart snapshot. The
// heuristic is deliberately simple: there is no travel-time data, so
// stores are ordered by a greedy score that favors stops with many
// items and a short in-store time, and distance is a flat per-store
// proxy.
type Estimator struct {
	// KmPerExtraStore approximates the distance of a multi-store trip.
	KmPerExtraStore float64
	// EfficiencyPenalty is subtracted from the score for every store
	// beyond the first.
	EfficiencyPenalty int
}

const (
	minStoreTimeMinutes = 15
	minutesPerProduct   = 3
	minEfficiencyScore  = 10
	maxEfficiencyScore  = 100
	scoreWeightPerItem  = 10
)

// NewEstimator returns the canonical configuration.
func NewEstimator() *Estimator {
	return &Estimator{
		KmPerExtraStore:   2.5,
		EfficiencyPenalty: 10,
	}
}

// Estimate computes the route. It returns nil for an empty cart and for
// carts where no row resolved an owning store.
func (e *Estimator) Estimate(items []domain.CartItem) *domain.ShoppingRoute {
	groups := make(map[uint][]domain.CartItem)
	for _, item := range items {
		if !item.HasStoreInfo() {
			continue
		}
		groups[item.SupermarketID] = append(groups[item.SupermarketID], item)
	}
	if len(groups) == 0 {
		return nil
	}

	stores := make([]domain.RouteStore, 0, len(groups))
	for storeID, group := range groups {
		store := domain.RouteStore{
			SupermarketID: storeID,
			Name:          group[0].SupermarketName,
			Location:      group[0].SupermarketLocation,
			Lat:           group[0].Lat,
			Lng:           group[0].Lng,
		}
		for _, item := range group {
			line := domain.RouteProduct{
				ProductID: item.ProductID,
				Name:      item.DisplayName(),
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				TotalCost: item.LineTotal(),
			}
			store.Products = append(store.Products, line)
			store.StoreTotal += line.TotalCost
		}
		store.EstimatedTimeMinutes = estimateStoreTime(len(store.Products))
		stores = append(stores, store)
	}

	// Big stops first: more products raise the score, in-store time
	// lowers it. Ties break on store id to keep output deterministic.
	sort.Slice(stores, func(i, j int) bool {
		si := storeScore(stores[i])
		sj := storeScore(stores[j])
		if si != sj {
			return si > sj
		}
		return stores[i].SupermarketID < stores[j].SupermarketID
	})

	route := &domain.ShoppingRoute{Stores: stores}
	for _, store := range stores {
		route.TotalCost += store.StoreTotal
		route.TotalTimeMinutes += store.EstimatedTimeMinutes
	}
	if len(stores) > 1 {
		route.TotalDistanceKm = float64(len(stores)) * e.KmPerExtraStore
	}
	route.EfficiencyScore = e.efficiency(len(stores))

	return route
}

func estimateStoreTime(productCount int) int {
	minutes := productCount * minutesPerProduct
	if minutes < minStoreTimeMinutes {
		return minStoreTimeMinutes
	}
	return minutes
}

func storeScore(store domain.RouteStore) int {
	return len(store.Products)*scoreWeightPerItem - store.EstimatedTimeMinutes
}

func (e *Estimator) efficiency(storeCount int) int {
	score := maxEfficiencyScore - (storeCount-1)*e.EfficiencyPenalty
	if score < minEfficiencyScore {
		return minEfficiencyScore
	}
	if score > maxEfficiencyScore {
		return maxEfficiencyScore
	}
	return score
}
