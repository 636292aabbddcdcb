package catalog

import (
	"context"

	"github.com/retail/storefront/internal/domain/catalog"
	"github.com/retail/storefront/internal/infrastructure/cache"
)

// ProductReader lists products from the backend
type ProductReader interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id int64) (catalog.Product, error)
}

// CategoryReader lists categories from the backend
type CategoryReader interface {
	List(ctx context.Context) ([]catalog.Category, error)
}

// CatalogService serves the product and category collections through the
// collection cache
type CatalogService struct {
	products   ProductReader
	categories CategoryReader
	cache      *cache.Collections
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(products ProductReader, categories CategoryReader, collections *cache.Collections) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		cache:      collections,
	}
}

// Products returns every product
func (s *CatalogService) Products(ctx context.Context) ([]catalog.Product, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.KeyProducts, s.products.List)
}

// Categories returns every category
func (s *CatalogService) Categories(ctx context.Context) ([]catalog.Category, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.KeyCategories, s.categories.List)
}

// Product looks a product up in the cached list, falling back to the backend
func (s *CatalogService) Product(ctx context.Context, id int64) (catalog.Product, error) {
	if products, err := s.Products(ctx); err == nil {
		for _, p := range products {
			if p.ID == id {
				return p, nil
			}
		}
	}
	return s.products.Get(ctx, id)
}

// InvalidateProducts drops the cached product list
func (s *CatalogService) InvalidateProducts() {
	s.cache.Invalidate(cache.KeyProducts)
}
