package command

import (
	"context"

	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// AddStoreFavoriteCommand favorites a supermarket.
type AddStoreFavoriteCommand struct {
	UserID        string
	Demo          bool
	SupermarketID uint
}

// AddStoreFavoriteHandler handles the add store favorite command.
type AddStoreFavoriteHandler struct {
	sessions *reconcile.Manager
}

// NewAddStoreFavoriteHandler creates a new handler.
func NewAddStoreFavoriteHandler(sessions *reconcile.Manager) *AddStoreFavoriteHandler {
	return &AddStoreFavoriteHandler{sessions: sessions}
}

// Handle executes the command. A successful mutation also broadcasts a
// store-favorites-changed notification to interested consumers.
func (h *AddStoreFavoriteHandler) Handle(ctx context.Context, cmd AddStoreFavoriteCommand) bool {
	if cmd.UserID == "" || cmd.SupermarketID == 0 {
		return false
	}

	rec, err := h.sessions.Session(ctx, cmd.UserID, cmd.Demo)
	if err != nil {
		return false
	}
	return rec.AddStoreFavorite(ctx, cmd.SupermarketID)
}
