package command

import (
	"context"

	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// RemoveStoreFavoriteCommand unfavorites a supermarket.
type RemoveStoreFavoriteCommand struct {
	UserID        string
	Demo          bool
	SupermarketID uint
}

// RemoveStoreFavoriteHandler handles the remove store favorite command.
type RemoveStoreFavoriteHandler struct {
	sessions *reconcile.Manager
}

// NewRemoveStoreFavoriteHandler creates a new handler.
func NewRemoveStoreFavoriteHandler(sessions *reconcile.Manager) *RemoveStoreFavoriteHandler {
	return &RemoveStoreFavoriteHandler{sessions: sessions}
}

// Handle executes the command.
func (h *RemoveStoreFavoriteHandler) Handle(ctx context.Context, cmd RemoveStoreFavoriteCommand) bool {
	if cmd.UserID == "" || cmd.SupermarketID == 0 {
		return false
	}

	rec, err := h.sessions.Session(ctx, cmd.UserID, cmd.Demo)
	if err != nil {
		return false
	}
	return rec.RemoveStoreFavorite(ctx, cmd.SupermarketID)
}
