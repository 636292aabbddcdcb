package backend

import (
	"context"
	"net/http"

	"github.com/retail/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductRequest is the create/update payload. The backend accepts either the
// nested category or its id.
type ProductRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	Quantity    int               `json:"quantity"`
	CategoryID  int64             `json:"categoryId"`
	Category    *catalog.Category `json:"category,omitempty"`
	ImageURL    string            `json:"imageUrl"`
}

// NewProductRequest builds the payload for a validated product
func NewProductRequest(p catalog.Product) ProductRequest {
	return ProductRequest{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		CategoryID:  p.CategoryID(),
		Category:    p.Category,
		ImageURL:    p.ImageURL,
	}
}

// ProductClient wraps /api/products
type ProductClient struct{ c *Client }

// NewProductClient creates a product client
func NewProductClient(c *Client) *ProductClient { return &ProductClient{c: c} }

// List returns every product
func (p *ProductClient) List(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	if err := p.c.do(ctx, request{resource: "products", method: http.MethodGet, path: pathf("products")}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Get returns one product
func (p *ProductClient) Get(ctx context.Context, id int64) (catalog.Product, error) {
	var out catalog.Product
	err := p.c.do(ctx, request{resource: "products", method: http.MethodGet, path: pathf("products", id)}, &out)
	return out, err
}

// Create adds a product and returns it with its assigned id
func (p *ProductClient) Create(ctx context.Context, req ProductRequest) (catalog.Product, error) {
	var out catalog.Product
	err := p.c.do(ctx, request{resource: "products", method: http.MethodPost, path: pathf("products"), body: req}, &out)
	return out, err
}

// Update replaces a product
func (p *ProductClient) Update(ctx context.Context, id int64, req ProductRequest) (catalog.Product, error) {
	var out catalog.Product
	err := p.c.do(ctx, request{resource: "products", method: http.MethodPut, path: pathf("products", id), body: req}, &out)
	return out, err
}

// Delete removes a product
func (p *ProductClient) Delete(ctx context.Context, id int64) error {
	return p.c.do(ctx, request{resource: "products", method: http.MethodDelete, path: pathf("products", id)}, nil)
}

// CategoryClient wraps /api/categories
type CategoryClient struct{ c *Client }

// NewCategoryClient creates a category client
func NewCategoryClient(c *Client) *CategoryClient { return &CategoryClient{c: c} }

// List returns every category
func (cc *CategoryClient) List(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	if err := cc.c.do(ctx, request{resource: "categories", method: http.MethodGet, path: pathf("categories")}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
