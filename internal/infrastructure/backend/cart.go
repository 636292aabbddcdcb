package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/retail/storefront/internal/domain/cart"
)

// CartClient wraps /api/cart
type CartClient struct{ c *Client }

// NewCartClient creates a cart client
func NewCartClient(c *Client) *CartClient { return &CartClient{c: c} }

// Get returns the user's cart lines
func (cc *CartClient) Get(ctx context.Context, userID int64) ([]cart.Item, error) {
	var out []cart.Item
	if err := cc.c.do(ctx, request{resource: "cart", method: http.MethodGet, path: pathf("cart", userID)}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Add puts a line into the cart; the backend merges repeated products
func (cc *CartClient) Add(ctx context.Context, item cart.Item) (cart.Item, error) {
	var out cart.Item
	err := cc.c.do(ctx, request{resource: "cart", method: http.MethodPost, path: pathf("cart"), body: item}, &out)
	return out, err
}

// UpdateQuantity sets the quantity of a product's line
func (cc *CartClient) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	q := url.Values{"quantity": {strconv.Itoa(quantity)}}
	return cc.c.do(ctx, request{resource: "cart", method: http.MethodPut, path: pathf("cart", userID, "items", productID), query: q}, nil)
}

// Remove deletes a product's line
func (cc *CartClient) Remove(ctx context.Context, userID, productID int64) error {
	return cc.c.do(ctx, request{resource: "cart", method: http.MethodDelete, path: pathf("cart", userID, "items", productID)}, nil)
}

// Clear empties the cart
func (cc *CartClient) Clear(ctx context.Context, userID int64) error {
	return cc.c.do(ctx, request{resource: "cart", method: http.MethodDelete, path: pathf("cart", userID)}, nil)
}
