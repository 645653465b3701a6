package command

import (
	"context"
	"strings"

	"github.com/saulet/grocery-compare/internal/cart/reconcile"
)

// AddProductFavoriteCommand favorites a product by name rather than a
// specific store's listing.
type AddProductFavoriteCommand struct {
	UserID   string
	Demo     bool
	NameEn   string
	NameZh   string
	Image    string
	Category string
}

// AddProductFavoriteHandler handles the add product favorite command.
type AddProductFavoriteHandler struct {
	sessions *reconcile.Manager
}

// NewAddProductFavoriteHandler creates a new handler.
func NewAddProductFavoriteHandler(sessions *reconcile.Manager) *AddProductFavoriteHandler {
	return &AddProductFavoriteHandler{sessions: sessions}
}

// Handle executes the command. Name matching is case-insensitive;
// re-adding an existing name only touches its last-viewed time.
func (h *AddProductFavoriteHandler) Handle(ctx context.Context, cmd AddProductFavoriteCommand) bool {
	if cmd.UserID == "" || strings.TrimSpace(cmd.NameEn) == "" {
		return false
	}

	rec, err := h.sessions.Session(ctx, cmd.UserID, cmd.Demo)
	if err != nil {
		return false
	}
	return rec.AddProductFavorite(ctx, reconcile.ProductFavoriteInput{
		NameEn:   cmd.NameEn,
		NameZh:   cmd.NameZh,
		Image:    cmd.Image,
		Category: cmd.Category,
	})
}
