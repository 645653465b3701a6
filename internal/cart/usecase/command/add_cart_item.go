package command

import (
	"context"

	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// AddCartItemCommand puts a product in the cart.
type AddCartItemCommand struct {
	UserID    string
	Demo      bool
	ProductID uint
	Quantity  int
	Notes     string
}

// AddCartItemHandler handles the add cart item command.
type AddCartItemHandler struct {
	sessions *reconcile.Manager
}

// NewAddCartItemHandler creates a new add cart item handler.
func NewAddCartItemHandler(sessions *reconcile.Manager) *AddCartItemHandler {
	return &AddCartItemHandler{sessions: sessions}
}

// Handle executes the command. Adding an already-carted product
// overwrites quantity and notes (last write wins). A non-positive
// quantity on add is invalid input and is rejected before any I/O —
// unlike update, where zero is a removal signal.
func (h *AddCartItemHandler) Handle(ctx context.Context, cmd AddCartItemCommand) bool {
	if cmd.UserID == "" || cmd.ProductID == 0 || cmd.Quantity < 1 {
		return false
	}

	rec, err := h.sessions.Session(ctx, cmd.UserID, cmd.Demo)
	if err != nil {
		return false
	}
	return rec.AddCartItem(ctx, cmd.ProductID, cmd.Quantity, cmd.Notes)
}
