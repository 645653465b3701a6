package command

import (
	"context"
	"strings"

	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// RemoveProductFavoriteCommand removes a by-name product favorite.
type RemoveProductFavoriteCommand struct {
	UserID string
	Demo   bool
	NameEn string
}

// RemoveProductFavoriteHandler handles the remove product favorite command.
type RemoveProductFavoriteHandler struct {
	sessions *reconcile.Manager
}

// NewRemoveProductFavoriteHandler creates a new handler.
func NewRemoveProductFavoriteHandler(sessions *reconcile.Manager) *RemoveProductFavoriteHandler {
	return &RemoveProductFavoriteHandler{sessions: sessions}
}

// Handle executes the command.
func (h *RemoveProductFavoriteHandler) Handle(ctx context.Context, cmd RemoveProductFavoriteCommand) bool {
	if cmd.UserID == "" || strings.TrimSpace(cmd.NameEn) == "" {
		return false
	}

	rec, err := h.sessions.Session(ctx, cmd.UserID, cmd.Demo)
	if err != nil {
		return false
	}
	return rec.RemoveProductFavorite(ctx, cmd.NameEn)
}
