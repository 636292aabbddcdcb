package cart

import (
	"github.com/shopspring/decimal"
)

// Item is a cart line. Price, name and image are snapshots taken when the
// product was added and are not refreshed from the catalog.
type Item struct {
	ID        int64           `json:"id,omitempty"`
	UserID    int64           `json:"userId"`
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

// Cart is the server-side cart of one user
type Cart struct {
	UserID int64
	Items  []Item
}

// New wraps the items returned by the backend
func New(userID int64, items []Item) Cart {
	if items == nil {
		items = []Item{}
	}
	return Cart{UserID: userID, Items: items}
}

// Total returns the sum of price times quantity over all items
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart has no items
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Count returns the number of cart lines
func (c Cart) Count() int {
	return len(c.Items)
}

// Find returns the line for a product
func (c Cart) Find(productID int64) (Item, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return Item{}, false
}
