package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/saulet/grocery-compare/internal/cart/domain"
)

// DefaultDebounceInterval is the quiet period before the route is
// recomputed after a cart change.
const DefaultDebounceInterval = 400 * time.Millisecond

// Debouncer coalesces rapid cart mutations into a single route
// recomputation. An empty cart bypasses the quiet period: the route is
// cleared immediately and any pending timer is cancelled.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	lastSig  string
	fire     func()
	clear    func()
}

// NewDebouncer creates a debouncer. fire recomputes the route, clear
// drops it.
func NewDebouncer(interval time.Duration, fire, clear func()) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	return &Debouncer{
		interval: interval,
		fire:     fire,
		clear:    clear,
	}
}

// Observe records the current cart signature. A changed non-empty
// signature (re)schedules the recomputation; an unchanged one is a
// no-op.
func (d *Debouncer) Observe(signature string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if signature == "" {
		d.cancelLocked()
		d.lastSig = ""
		d.clear()
		return
	}

	if signature == d.lastSig {
		return
	}

	d.cancelLocked()
	sig := signature
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		d.lastSig = sig
		d.timer = nil
		d.mu.Unlock()
		d.fire()
	})
}

// Stop cancels any pending recomputation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// CartSignature renders the cart as sorted productID:quantity pairs so
// reorderings and snapshot refreshes with identical content do not
// retrigger route computation. An empty cart yields "".
func CartSignature(items []domain.CartItem) string {
	if len(items) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(items))
	for _, item := range items {
		pairs = append(pairs, fmt.Sprintf("%d:%d", item.ProductID, item.Quantity))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
