package reconcile

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/saulet/grocery-compare/internal/cart/domain"
)

func TestDebouncerCoalescesRapidChanges(t *testing.T) {
	var fires, clears int64
	d := NewDebouncer(30*time.Millisecond,
		func() { atomic.AddInt64(&fires, 1) },
		func() { atomic.AddInt64(&clears, 1) },
	)
	defer d.Stop()

	d.Observe("1:1")
	d.Observe("1:2")
	d.Observe("1:3")
	d.Observe("1:4")
	d.Observe("1:5")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&fires))
	assert.Equal(t, int64(0), atomic.LoadInt64(&clears))
}

func TestDebouncerEmptySignatureClearsImmediately(t *testing.T) {
	var fires, clears int64
	d := NewDebouncer(30*time.Millisecond,
		func() { atomic.AddInt64(&fires, 1) },
		func() { atomic.AddInt64(&clears, 1) },
	)
	defer d.Stop()

	d.Observe("1:1")
	d.Observe("")

	// clear is synchronous, no waiting needed
	assert.Equal(t, int64(1), atomic.LoadInt64(&clears))

	time.Sleep(100 * time.Millisecond)
	// the pending recomputation was cancelled
	assert.Equal(t, int64(0), atomic.LoadInt64(&fires))
}

func TestDebouncerUnchangedSignatureIsNoOp(t *testing.T) {
	var fires int64
	d := NewDebouncer(20*time.Millisecond,
		func() { atomic.AddInt64(&fires, 1) },
		func() {},
	)
	defer d.Stop()

	d.Observe("1:1")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&fires))

	// same content again must not schedule another recomputation
	d.Observe("1:1")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&fires))
}

func TestCartSignature(t *testing.T) {
	assert.Equal(t, "", CartSignature(nil))

	a := []domain.CartItem{
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 3},
	}
	b := []domain.CartItem{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 1},
	}
	// order-insensitive
	assert.Equal(t, CartSignature(a), CartSignature(b))

	c := []domain.CartItem{
		{ProductID: 1, Quantity: 4},
		{ProductID: 2, Quantity: 1},
	}
	assert.NotEqual(t, CartSignature(a), CartSignature(c))
}
