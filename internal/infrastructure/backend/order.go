package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/retail/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the order placement payload
type CreateOrderRequest struct {
	UserID          int64           `json:"userId"`
	Items           []order.Item    `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentID       int64           `json:"paymentId"`
	TransactionID   string          `json:"transactionId"`
}

// OrderClient wraps /api/orders
type OrderClient struct{ c *Client }

// NewOrderClient creates an order client
func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

// Create places an order
func (o *OrderClient) Create(ctx context.Context, req CreateOrderRequest) (order.Order, error) {
	var out order.Order
	err := o.c.do(ctx, request{resource: "orders", method: http.MethodPost, path: pathf("orders"), body: req}, &out)
	return out, err
}

// List returns every order (admin)
func (o *OrderClient) List(ctx context.Context) ([]order.Order, error) {
	var out []order.Order
	if err := o.c.do(ctx, request{resource: "orders", method: http.MethodGet, path: pathf("orders")}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// ListByUser returns one customer's orders
func (o *OrderClient) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	var out []order.Order
	if err := o.c.do(ctx, request{resource: "orders", method: http.MethodGet, path: pathf("orders", "user", userID)}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// UpdateStatus moves an order to a new status
func (o *OrderClient) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	q := url.Values{"status": {status.String()}}
	return o.c.do(ctx, request{resource: "orders", method: http.MethodPut, path: pathf("orders", id, "status"), query: q}, nil)
}
