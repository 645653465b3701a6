package domain

// CartStats is derived from the live cart rows on every change and is
// never persisted, so it cannot drift from the cart itself.
type CartStats struct {
	TotalItems   int     `json:"total_items"`
	ItemsCount   int     `json:"items_count"`
	TotalCost    float64 `json:"total_cost"`
	UniqueStores int     `json:"unique_stores"`
}

// RouteProduct is one product line inside a route stop.
type RouteProduct struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	TotalCost float64 `json:"total_cost"`
}

// RouteStore is one stop on the suggested shopping trip.
type RouteStore struct {
	SupermarketID        uint           `json:"supermarket_id"`
	Name                 string         `json:"name"`
	Location             string         `json:"location"`
	Lat                  float64        `json:"lat"`
	Lng                  float64        `json:"lng"`
	Products             []RouteProduct `json:"products"`
	StoreTotal           float64        `json:"store_total"`
	EstimatedTimeMinutes int            `json:"estimated_time_minutes"`
}

// ShoppingRoute is the derived trip plan. A nil route means there is
// nothing to plan (empty cart, or no row resolved an owning store).
type ShoppingRoute struct {
	Stores           []RouteStore `json:"stores"`
	TotalCost        float64      `json:"total_cost"`
	TotalTimeMinutes int          `json:"total_time_minutes"`
	TotalDistanceKm  float64      `json:"total_distance_km"`
	EfficiencyScore  int          `json:"efficiency_score"`
}
