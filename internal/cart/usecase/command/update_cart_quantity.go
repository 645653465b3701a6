package command

import (
	"context"

	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// UpdateCartQuantityCommand changes the quantity of a cart row.
type UpdateCartQuantityCommand struct {
	UserID    string
	Demo      bool
	ProductID uint
	Quantity  int
}

// UpdateCartQuantityHandler handles the update quantity command.
type UpdateCartQuantityHandler struct {
	sessions *reconcile.Manager
}

// NewUpdateCartQuantityHandler creates a new update quantity handler.
func NewUpdateCartQuantityHandler(sessions *reconcile.Manager) *UpdateCartQuantityHandler {
	return &UpdateCartQuantityHandler{sessions: sessions}
}

// Handle executes the command. Quantity zero or below removes the row;
// the resulting cart state is identical to an explicit removal.
func (h *UpdateCartQuantityHandler) Handle(ctx context.Context, cmd UpdateCartQuantityCommand) bool {
	if cmd.UserID == "" || cmd.ProductID == 0 {
		return false
	}

	rec, err := h.sessions.Session(ctx, cmd.UserID, cmd.Demo)
	if err != nil {
		return false
	}
	return rec.UpdateCartQuantity(ctx, cmd.ProductID, cmd.Quantity)
}
