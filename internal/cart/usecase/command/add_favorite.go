package command

import (
	"context"

	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// AddFavoriteCommand represents the command to favorite a store listing.
type AddFavoriteCommand struct {
	UserID    string
	Demo      bool
	ProductID uint
}

// AddFavoriteHandler handles the add favorite command.
type AddFavoriteHandler struct {
	sessions *reconcile.Manager
}

// NewAddFavoriteHandler creates a new add favorite handler.
func NewAddFavoriteHandler(sessions *reconcile.Manager) *AddFavoriteHandler {
	return &AddFavoriteHandler{sessions: sessions}
}

// Handle executes the command. Favoriting an already-favorited product
// is a successful no-op.
func (h *AddFavoriteHandler) Handle(ctx context.Context, cmd AddFavoriteCommand) bool {
	if cmd.UserID == "" || cmd.ProductID == 0 {
		return false
	}

	rec, err := h.sessions.Session(ctx, cmd.UserID, cmd.Demo)
	if err != nil {
		return false
	}
	return rec.AddFavorite(ctx, cmd.ProductID)
}
