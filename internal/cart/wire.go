//go:build wireinject
// +build wireinject

package cart

import (
	"github.com/google/wire"

	"github.com/saulet/grocery-compare/internal/cart/delivery/http"
	"github.com/saulet/grocery-compare/internal/cart/reconcile"
	"github.com/saulet/grocery-compare/internal/cart/usecase/command"
	"github.com/saulet/grocery-compare/internal/cart/usecase/query"
)

// Command Handlers Providers
func ProvideAddFavoriteHandler(sessions *reconcile.Manager) *command.AddFavoriteHandler {
	return command.NewAddFavoriteHandler(sessions)
}

func ProvideRemoveFavoriteHandler(sessions *reconcile.Manager) *command.RemoveFavoriteHandler {
	return command.NewRemoveFavoriteHandler(sessions)
}

func ProvideAddProductFavoriteHandler(sessions *reconcile.Manager) *command.AddProductFavoriteHandler {
	return command.NewAddProductFavoriteHandler(sessions)
}

func ProvideRemoveProductFavoriteHandler(sessions *reconcile.Manager) *command.RemoveProductFavoriteHandler {
	return command.NewRemoveProductFavoriteHandler(sessions)
}

func ProvideAddStoreFavoriteHandler(sessions *reconcile.Manager) *command.AddStoreFavoriteHandler {
	return command.NewAddStoreFavoriteHandler(sessions)
}

func ProvideRemoveStoreFavoriteHandler(sessions *reconcile.Manager) *command.RemoveStoreFavoriteHandler {
	return command.NewRemoveStoreFavoriteHandler(sessions)
}

func ProvideAddCartItemHandler(sessions *reconcile.Manager) *command.AddCartItemHandler {
	return command.NewAddCartItemHandler(sessions)
}

func ProvideUpdateCartQuantityHandler(sessions *reconcile.Manager) *command.UpdateCartQuantityHandler {
	return command.NewUpdateCartQuantityHandler(sessions)
}

func ProvideRemoveCartItemHandler(sessions *reconcile.Manager) *command.RemoveCartItemHandler {
	return command.NewRemoveCartItemHandler(sessions)
}

func ProvideClearCartHandler(sessions *reconcile.Manager) *command.ClearCartHandler {
	return command.NewClearCartHandler(sessions)
}

// Query Handlers Providers
func ProvideGetCartHandler(sessions *reconcile.Manager) *query.GetCartHandler {
	return query.NewGetCartHandler(sessions)
}

func ProvideGetStatsHandler(sessions *reconcile.Manager) *query.GetStatsHandler {
	return query.NewGetStatsHandler(sessions)
}

func ProvideGetRouteHandler(sessions *reconcile.Manager) *query.GetRouteHandler {
	return query.NewGetRouteHandler(sessions)
}

func ProvideCheckMembershipHandler(sessions *reconcile.Manager) *query.CheckMembershipHandler {
	return query.NewCheckMembershipHandler(sessions)
}

// Wire sets
var CommandHandlerSet = wire.NewSet(
	ProvideAddFavoriteHandler,
	ProvideRemoveFavoriteHandler,
	ProvideAddProductFavoriteHandler,
	ProvideRemoveProductFavoriteHandler,
	ProvideAddStoreFavoriteHandler,
	ProvideRemoveStoreFavoriteHandler,
	ProvideAddCartItemHandler,
	ProvideUpdateCartQuantityHandler,
	ProvideRemoveCartItemHandler,
	ProvideClearCartHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetCartHandler,
	ProvideGetStatsHandler,
	ProvideGetRouteHandler,
	ProvideCheckMembershipHandler,
)

var AllHandlersSet = wire.NewSet(
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(sessions *reconcile.Manager) (*http.CartHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewCartHandlerWithDI,
	)
	return nil, nil
}
