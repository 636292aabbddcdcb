package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// InventoryClient wraps /api/inventory
type InventoryClient struct{ c *Client }

// NewInventoryClient creates an inventory client
func NewInventoryClient(c *Client) *InventoryClient { return &InventoryClient{c: c} }

// UpdateStock sets the stock level of a product
func (i *InventoryClient) UpdateStock(ctx context.Context, productID int64, quantity int) error {
	q := url.Values{"quantity": {strconv.Itoa(quantity)}}
	return i.c.do(ctx, request{resource: "inventory", method: http.MethodPut, path: pathf("inventory", productID), query: q}, nil)
}
