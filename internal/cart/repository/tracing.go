package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/saulet/grocery-compare/internal/cart/domain"
)

var tracer = otel.Tracer("cart-backend")

// BackendWithTracing wraps a backend so every operation is recorded as a
// span. The wrapped backend's error semantics are passed through
// untouched, ErrNotFound included.
type BackendWithTracing struct {
	inner domain.Backend
}

func NewBackendWithTracing(inner domain.Backend) *BackendWithTracing {
	return &BackendWithTracing{inner: inner}
}

func (b *BackendWithTracing) span(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("backend.name", b.inner.Name()))
	return tracer.Start(ctx, "backend."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	return err
}

func (b *BackendWithTracing) Name() string {
	return b.inner.Name()
}

func (b *BackendWithTracing) Ping(ctx context.Context) error {
	ctx, span := b.span(ctx, "Ping")
	return finish(span, b.inner.Ping(ctx))
}

func (b *BackendWithTracing) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	ctx, span := b.span(ctx, "ListFavorites", attribute.String("user.id", userID))
	favorites, err := b.inner.ListFavorites(ctx, userID)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(favorites)))
	}
	return favorites, finish(span, err)
}

func (b *BackendWithTracing) AddFavorite(ctx context.Context, userID string, productID uint) error {
	ctx, span := b.span(ctx, "AddFavorite",
		attribute.String("user.id", userID),
		attribute.Int("product.id", int(productID)),
	)
	return finish(span, b.inner.AddFavorite(ctx, userID, productID))
}

func (b *BackendWithTracing) RemoveFavorite(ctx context.Context, userID string, productID uint) error {
	ctx, span := b.span(ctx, "RemoveFavorite",
		attribute.String("user.id", userID),
		attribute.Int("product.id", int(productID)),
	)
	return finish(span, b.inner.RemoveFavorite(ctx, userID, productID))
}

func (b *BackendWithTracing) ListProductFavorites(ctx context.Context, userID string) ([]domain.ProductFavorite, error) {
	ctx, span := b.span(ctx, "ListProductFavorites", attribute.String("user.id", userID))
	favorites, err := b.inner.ListProductFavorites(ctx, userID)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(favorites)))
	}
	return favorites, finish(span, err)
}

func (b *BackendWithTracing) AddProductFavorite(ctx context.Context, fav *domain.ProductFavorite) error {
	ctx, span := b.span(ctx, "AddProductFavorite",
		attribute.String("user.id", fav.UserID),
		attribute.String("product.name", fav.NameEn),
	)
	return finish(span, b.inner.AddProductFavorite(ctx, fav))
}

func (b *BackendWithTracing) RemoveProductFavorite(ctx context.Context, userID, nameEn string) error {
	ctx, span := b.span(ctx, "RemoveProductFavorite",
		attribute.String("user.id", userID),
		attribute.String("product.name", nameEn),
	)
	return finish(span, b.inner.RemoveProductFavorite(ctx, userID, nameEn))
}

func (b *BackendWithTracing) ListStoreFavorites(ctx context.Context, userID string) ([]domain.StoreFavorite, error) {
	ctx, span := b.span(ctx, "ListStoreFavorites", attribute.String("user.id", userID))
	favorites, err := b.inner.ListStoreFavorites(ctx, userID)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(favorites)))
	}
	return favorites, finish(span, err)
}

func (b *BackendWithTracing) AddStoreFavorite(ctx context.Context, userID string, supermarketID uint) error {
	ctx, span := b.span(ctx, "AddStoreFavorite",
		attribute.String("user.id", userID),
		attribute.Int("supermarket.id", int(supermarketID)),
	)
	return finish(span, b.inner.AddStoreFavorite(ctx, userID, supermarketID))
}

func (b *BackendWithTracing) RemoveStoreFavorite(ctx context.Context, userID string, supermarketID uint) error {
	ctx, span := b.span(ctx, "RemoveStoreFavorite",
		attribute.String("user.id", userID),
		attribute.Int("supermarket.id", int(supermarketID)),
	)
	return finish(span, b.inner.RemoveStoreFavorite(ctx, userID, supermarketID))
}

func (b *BackendWithTracing) ListCartItems(ctx context.Context, userID string) ([]domain.CartItem, error) {
	ctx, span := b.span(ctx, "ListCartItems", attribute.String("user.id", userID))
	items, err := b.inner.ListCartItems(ctx, userID)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(items)))
	}
	return items, finish(span, err)
}

func (b *BackendWithTracing) UpsertCartItem(ctx context.Context, item *domain.CartItem) error {
	ctx, span := b.span(ctx, "UpsertCartItem",
		attribute.String("user.id", item.UserID),
		attribute.Int("product.id", int(item.ProductID)),
		attribute.Int("cart.quantity", item.Quantity),
	)
	return finish(span, b.inner.UpsertCartItem(ctx, item))
}

func (b *BackendWithTracing) UpdateCartQuantity(ctx context.Context, userID string, productID uint, quantity int) error {
	ctx, span := b.span(ctx, "UpdateCartQuantity",
		attribute.String("user.id", userID),
		attribute.Int("product.id", int(productID)),
		attribute.Int("cart.quantity", quantity),
	)
	return finish(span, b.inner.UpdateCartQuantity(ctx, userID, productID, quantity))
}

func (b *BackendWithTracing) RemoveCartItem(ctx context.Context, userID string, productID uint) error {
	ctx, span := b.span(ctx, "RemoveCartItem",
		attribute.String("user.id", userID),
		attribute.Int("product.id", int(productID)),
	)
	return finish(span, b.inner.RemoveCartItem(ctx, userID, productID))
}

func (b *BackendWithTracing) ClearCart(ctx context.Context, userID string) error {
	ctx, span := b.span(ctx, "ClearCart", attribute.String("user.id", userID))
	return finish(span, b.inner.ClearCart(ctx, userID))
}
