package http

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckQueryFromValues(t *testing.T) {
	r := httptest.NewRequest("GET", "/checks?product_id=101&name_en=Whole+Milk&supermarket_id=2", nil)
	q := CheckQueryFromValues(r)
	assert.Equal(t, uint(101), q.ProductID)
	assert.Equal(t, "Whole Milk", q.NameEn)
	assert.Equal(t, uint(2), q.SupermarketID)
}

func TestCheckQueryFromValuesPartial(t *testing.T) {
	r := httptest.NewRequest("GET", "/checks?product_id=101", nil)
	q := CheckQueryFromValues(r)
	assert.Equal(t, uint(101), q.ProductID)
	assert.Empty(t, q.NameEn)
	assert.Zero(t, q.SupermarketID)
}

func TestCheckQueryFromValuesMalformedIDsTreatedAsUnset(t *testing.T) {
	r := httptest.NewRequest("GET", "/checks?product_id=abc&supermarket_id=-1", nil)
	q := CheckQueryFromValues(r)
	assert.Zero(t, q.ProductID)
	assert.Zero(t, q.SupermarketID)
}

func TestIdentityFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/cart", nil)
	r.Header.Set("X-User-ID", "alice")
	r.Header.Set("X-Demo", "true")

	id := identityFromRequest(r)
	assert.Equal(t, "alice", id.UserID)
	assert.True(t, id.Demo)

	r.Header.Set("X-Demo", "1")
	assert.False(t, identityFromRequest(r).Demo)
}
