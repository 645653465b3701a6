package command

import (
	"context"

	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// RemoveFavoriteCommand represents the command to unfavorite a listing.
type RemoveFavoriteCommand struct {
	UserID    string
	Demo      bool
	ProductID uint
}

// RemoveFavoriteHandler handles the remove favorite command.
type RemoveFavoriteHandler struct {
	sessions *reconcile.Manager
}

// NewRemoveFavoriteHandler creates a new remove favorite handler.
func NewRemoveFavoriteHandler(sessions *reconcile.Manager) *RemoveFavoriteHandler {
	return &RemoveFavoriteHandler{sessions: sessions}
}

// Handle executes the command. Removing an absent favorite reports
// false; callers render it as already-absent rather than as an error.
func (h *RemoveFavoriteHandler) Handle(ctx context.Context, cmd RemoveFavoriteCommand) bool {
	if cmd.UserID == "" || cmd.ProductID == 0 {
		return false
	}

	rec, err := h.sessions.Session(ctx, cmd.UserID, cmd.Demo)
	if err != nil {
		return false
	}
	return rec.RemoveFavorite(ctx, cmd.ProductID)
}
