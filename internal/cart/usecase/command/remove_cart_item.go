package command

import (
	"context"

	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// RemoveCartItemCommand removes a product from the cart.
type RemoveCartItemCommand struct {
	UserID    string
	Demo      bool
	ProductID uint
}

// RemoveCartItemHandler handles the remove cart item command.
type RemoveCartItemHandler struct {
	sessions *reconcile.Manager
}

// NewRemoveCartItemHandler creates a new remove cart item handler.
func NewRemoveCartItemHandler(sessions *reconcile.Manager) *RemoveCartItemHandler {
	return &RemoveCartItemHandler{sessions: sessions}
}

// Handle executes the command.
func (h *RemoveCartItemHandler) Handle(ctx context.Context, cmd RemoveCartItemCommand) bool {
	if cmd.UserID == "" || cmd.ProductID == 0 {
		return false
	}

	rec, err := h.sessions.Session(ctx, cmd.UserID, cmd.Demo)
	if err != nil {
		return false
	}
	return rec.RemoveCartItem(ctx, cmd.ProductID)
}
