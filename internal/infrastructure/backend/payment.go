package backend

import (
	"context"
	"net/http"

	"github.com/retail/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

// PaymentRequest is the payment payload
type PaymentRequest struct {
	UserID        int64               `json:"userId"`
	Amount        decimal.Decimal     `json:"amount"`
	PaymentMethod order.PaymentMethod `json:"paymentMethod"`
	Status        string              `json:"status"`
}

// PaymentResponse identifies a recorded payment
type PaymentResponse struct {
	ID            int64  `json:"id"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

// PaymentClient wraps /api/payments
type PaymentClient struct{ c *Client }

// NewPaymentClient creates a payment client
func NewPaymentClient(c *Client) *PaymentClient { return &PaymentClient{c: c} }

// Process records a payment
func (p *PaymentClient) Process(ctx context.Context, req PaymentRequest) (PaymentResponse, error) {
	var out PaymentResponse
	err := p.c.do(ctx, request{resource: "payments", method: http.MethodPost, path: pathf("payments"), body: req}, &out)
	return out, err
}
