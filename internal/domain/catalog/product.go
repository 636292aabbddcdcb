package catalog

import (
	"strconv"
	"strings"

	"github.com/retail/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Category groups products for browsing
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product is a catalog entry as served by the backend
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Category    *Category       `json:"category,omitempty"`
	ImageURL    string          `json:"imageUrl"`
}

// CategoryName returns the product's category name, or "" when uncategorized
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// CategoryID returns the product's category id, or 0 when uncategorized
func (p Product) CategoryID() int64 {
	if p.Category == nil {
		return 0
	}
	return p.Category.ID
}

// InStock reports whether any units are available
func (p Product) InStock() bool {
	return p.Quantity > 0
}

// Validation errors for admin product input
var (
	ErrInvalidPrice    = shared.NewDomainError("INVALID_PRICE", "Please enter a valid price")
	ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Please enter a valid quantity")
	ErrInvalidCategory = shared.NewDomainError("INVALID_CATEGORY", "Please select a valid category")
	ErrNameRequired    = shared.NewDomainError("NAME_REQUIRED", "Product name is required")
)

// ProductDraft is raw admin form input before validation
type ProductDraft struct {
	Name        string
	Description string
	Price       string
	Quantity    string
	CategoryID  string
	ImageURL    string
}

// ParseDraft validates everything in a draft that needs no category list.
// The returned product has no category yet.
func ParseDraft(draft ProductDraft) (Product, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return Product{}, ErrNameRequired
	}

	price, err := decimal.NewFromString(strings.TrimSpace(draft.Price))
	if err != nil || price.IsNegative() {
		return Product{}, ErrInvalidPrice
	}

	qty, err := strconv.Atoi(strings.TrimSpace(draft.Quantity))
	if err != nil || qty < 0 {
		return Product{}, ErrInvalidQuantity
	}

	if id, err := strconv.ParseInt(strings.TrimSpace(draft.CategoryID), 10, 64); err != nil || id <= 0 {
		return Product{}, ErrInvalidCategory
	}

	return Product{
		Name:        name,
		Description: strings.TrimSpace(draft.Description),
		Price:       price,
		Quantity:    qty,
		ImageURL:    strings.TrimSpace(draft.ImageURL),
	}, nil
}

// NewProduct validates a draft against the known categories and builds the
// product to send to the backend. The category must resolve to one of the
// given categories; a missing or unknown category is rejected.
func NewProduct(draft ProductDraft, categories []Category) (Product, error) {
	p, err := ParseDraft(draft)
	if err != nil {
		return Product{}, err
	}
	category, ok := ResolveCategory(categories, draft.CategoryID)
	if !ok {
		return Product{}, ErrInvalidCategory
	}
	p.Category = &category
	return p, nil
}

// DraftFrom fills an edit form from an existing product
func DraftFrom(p Product) ProductDraft {
	d := ProductDraft{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		Quantity:    strconv.Itoa(p.Quantity),
		ImageURL:    p.ImageURL,
	}
	if id := p.CategoryID(); id > 0 {
		d.CategoryID = strconv.FormatInt(id, 10)
	}
	return d
}

// ResolveCategory finds a category by its id given as form text
func ResolveCategory(categories []Category, rawID string) (Category, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id <= 0 {
		return Category{}, false
	}
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
