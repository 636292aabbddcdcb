package trade

import (
	"context"
	"fmt"

	"github.com/retail/storefront/internal/domain/cart"
	"github.com/retail/storefront/internal/domain/catalog"
	"github.com/retail/storefront/internal/infrastructure/cache"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CartBackend is the backend cart API
type CartBackend interface {
	Get(ctx context.Context, userID int64) ([]cart.Item, error)
	Add(ctx context.Context, item cart.Item) (cart.Item, error)
	UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}

// CartService mutates a user's server cart. After every mutation the cached
// cart is dropped and reloaded, never merged locally.
type CartService struct {
	carts CartBackend
	cache *cache.Collections
}

// NewCartService creates a new CartService
func NewCartService(carts CartBackend, collections *cache.Collections) *CartService {
	return &CartService{carts: carts, cache: collections}
}

// Get returns the user's cart
func (s *CartService) Get(ctx context.Context, userID int64) (cart.Cart, error) {
	items, err := cache.GetOrLoad(ctx, s.cache, cache.CartKey(userID), func(ctx context.Context) ([]cart.Item, error) {
		return s.carts.Get(ctx, userID)
	})
	if err != nil {
		return cart.New(userID, nil), err
	}
	return cart.New(userID, items), nil
}

// AddToCart adds one unit of a product
func (s *CartService) AddToCart(ctx context.Context, userID int64, product catalog.Product) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "add",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, product.ID))
	defer span.End()

	_, err := s.carts.Add(ctx, cart.Item{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  1,
		Price:     product.Price,
		Name:      product.Name,
		ImageURL:  product.ImageURL,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("add product %d to cart: %w", product.ID, err)
	}
	s.refresh(ctx, userID)
	return nil
}

// UpdateQuantity sets an item's quantity. Quantities below one are ignored
// without calling the backend.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity < 1 {
		return nil
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "update_quantity",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, quantity))
	defer span.End()

	if err := s.carts.UpdateQuantity(ctx, userID, productID, quantity); err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("Failed to update cart quantity",
			zap.Int64("product_id", productID), zap.Int("quantity", quantity), zap.Error(err))
		return fmt.Errorf("update cart item %d: %w", productID, err)
	}
	s.refresh(ctx, userID)
	return nil
}

// RemoveItem removes a product from the cart
func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "remove",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID))
	defer span.End()

	if err := s.carts.Remove(ctx, userID, productID); err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("Failed to remove cart item", zap.Int64("product_id", productID), zap.Error(err))
		return fmt.Errorf("remove cart item %d: %w", productID, err)
	}
	s.refresh(ctx, userID)
	return nil
}

// Clear empties the server cart and drops the cached copy
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	defer s.cache.Invalidate(cache.CartKey(userID))
	return s.carts.Clear(ctx, userID)
}

// refresh drops the cached cart and reloads it. A failed reload is only
// logged; the mutation itself already succeeded.
func (s *CartService) refresh(ctx context.Context, userID int64) {
	s.cache.Invalidate(cache.CartKey(userID))
	if _, err := s.Get(ctx, userID); err != nil {
		logger.L(ctx).Warn("Failed to reload cart", zap.Error(err))
	}
}
