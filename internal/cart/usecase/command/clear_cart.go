package command

import (
	"context"

	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// ClearCartCommand empties a user's cart.
type ClearCartCommand struct {
	UserID string
	Demo   bool
}

// ClearCartHandler handles the clear cart command.
type ClearCartHandler struct {
	sessions *reconcile.Manager
}

// NewClearCartHandler creates a new clear cart handler.
func NewClearCartHandler(sessions *reconcile.Manager) *ClearCartHandler {
	return &ClearCartHandler{sessions: sessions}
}

// Handle executes the command. Clearing also drops the derived route
// immediately, without waiting for the debounce period.
func (h *ClearCartHandler) Handle(ctx context.Context, cmd ClearCartCommand) bool {
	if cmd.UserID == "" {
		return false
	}

	rec, err := h.sessions.Session(ctx, cmd.UserID, cmd.Demo)
	if err != nil {
		return false
	}
	return rec.ClearCart(ctx)
}
