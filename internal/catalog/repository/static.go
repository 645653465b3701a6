package repository

import (
	"context"

	"github.com/saulet/grocery-compare/internal/catalog/domain"
)

// StaticCatalog serves a fixed product/store set. Demo sessions use it
// so the cart works with no database at all; tests use it for
// deterministic snapshot resolution.
type StaticCatalog struct {
	products map[uint]domain.Product
	stores   map[uint]domain.Supermarket
}

// NewStaticCatalog builds a catalog from fixed data.
func NewStaticCatalog(products []domain.Product, stores []domain.Supermarket) *StaticCatalog {
	c := &StaticCatalog{
		products: make(map[uint]domain.Product, len(products)),
		stores:   make(map[uint]domain.Supermarket, len(stores)),
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	for _, s := range stores {
		c.stores[s.ID] = s
	}
	return c
}

// NewDemoCatalog returns the built-in demo data set.
func NewDemoCatalog() *StaticCatalog {
	stores := []domain.Supermarket{
		{ID: 1, Name: "ParknShop", Location: "Causeway Bay", Lat: 22.2800, Lng: 114.1850},
		{ID: 2, Name: "Wellcome", Location: "Wan Chai", Lat: 22.2770, Lng: 114.1720},
		{ID: 3, Name: "Market Place", Location: "Central", Lat: 22.2820, Lng: 114.1580},
	}
	products := []domain.Product{
		{ID: 101, NameEn: "Whole Milk 1L", NameZh: "全脂牛奶 1升", Price: 2.99, Unit: "bottle", Category: "dairy", SupermarketID: 1},
		{ID: 102, NameEn: "Free Range Eggs 12pc", NameZh: "走地雞蛋 12隻", Price: 4.50, Unit: "box", Category: "dairy", SupermarketID: 1},
		{ID: 103, NameEn: "Jasmine Rice 5kg", NameZh: "茉莉香米 5公斤", Price: 12.99, Unit: "bag", Category: "staples", SupermarketID: 2},
		{ID: 104, NameEn: "Bananas", NameZh: "香蕉", Price: 1.80, Unit: "kg", Category: "produce", SupermarketID: 2},
		{ID: 105, NameEn: "Soy Sauce 500ml", NameZh: "醬油 500毫升", Price: 3.20, Unit: "bottle", Category: "condiments", SupermarketID: 3},
	}
	return NewStaticCatalog(products, stores)
}

func (c *StaticCatalog) ResolveProduct(ctx context.Context, productID uint) (*domain.ResolvedProduct, error) {
	p, ok := c.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	resolved := &domain.ResolvedProduct{Product: p}
	if s, ok := c.stores[p.SupermarketID]; ok {
		store := s
		resolved.Store = &store
	}
	return resolved, nil
}

func (c *StaticCatalog) GetSupermarket(ctx context.Context, supermarketID uint) (*domain.Supermarket, error) {
	s, ok := c.stores[supermarketID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	store := s
	return &store, nil
}
