package order

import (
	"cmp"
	"slices"

	"github.com/retail/storefront/internal/domain/cart"
	"github.com/retail/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Item is an order line. It carries the same snapshot fields as a cart line
// without the cart's own identifiers.
type Item struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"imageUrl"`
}

// Subtotal returns price times quantity for the line
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a placed order as served by the backend
type Order struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"userId"`
	Items           []Item           `json:"items"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	ShippingAddress string           `json:"shippingAddress"`
	Status          Status           `json:"status"`
	PaymentID       int64            `json:"paymentId,omitempty"`
	TransactionID   string           `json:"transactionId,omitempty"`
	CreatedAt       shared.Timestamp `json:"createdAt"`
}

// ItemsFromCart converts cart lines to order lines, dropping cart identifiers
func ItemsFromCart(items []cart.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, Item{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Name:      it.Name,
			ImageURL:  it.ImageURL,
		})
	}
	return out
}

// Subtotal returns the sum of line subtotals
func (o Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// NewestFirst returns a copy of orders sorted by creation time, newest first,
// with the higher id first on equal timestamps
func NewestFirst(orders []Order) []Order {
	out := slices.Clone(orders)
	slices.SortStableFunc(out, func(a, b Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

// CountAwaitingApproval counts PENDING and CONFIRMED orders
func CountAwaitingApproval(orders []Order) int {
	n := 0
	for _, o := range orders {
		if o.Status.IsAwaitingApproval() {
			n++
		}
	}
	return n
}

// Find returns the order with the given id
func Find(orders []Order, id int64) (Order, bool) {
	for _, o := range orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}
