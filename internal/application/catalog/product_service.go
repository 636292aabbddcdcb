package catalog

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	appshared "github.com/retail/storefront/internal/application/shared"
	"github.com/retail/storefront/internal/domain/catalog"
	"github.com/retail/storefront/internal/domain/notification"
	"github.com/retail/storefront/internal/infrastructure/backend"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Post-action names, used as metric labels
const (
	ActionInitInventory = "init_inventory"
	ActionSyncInventory = "sync_inventory"
	ActionNotifyLaunch  = "notify_product_launch"
)

// ProductWriter mutates products on the backend
type ProductWriter interface {
	Create(ctx context.Context, req backend.ProductRequest) (catalog.Product, error)
	Update(ctx context.Context, id int64, req backend.ProductRequest) (catalog.Product, error)
	Delete(ctx context.Context, id int64) error
}

// StockUpdater sets a product's stock level
type StockUpdater interface {
	UpdateStock(ctx context.Context, productID int64, quantity int) error
}

// NotificationSender sends a notification
type NotificationSender interface {
	Send(ctx context.Context, note notification.Notification) error
}

// ProductService handles admin product management
type ProductService struct {
	catalog       *CatalogService
	products      ProductWriter
	inventory     StockUpdater
	notifications NotificationSender
	validate      *validator.Validate
	observer      appshared.FailureObserver
}

// NewProductService creates a new ProductService
func NewProductService(
	catalogService *CatalogService,
	products ProductWriter,
	inventory StockUpdater,
	notifications NotificationSender,
	observer appshared.FailureObserver,
) *ProductService {
	return &ProductService{
		catalog:       catalogService,
		products:      products,
		inventory:     inventory,
		notifications: notifications,
		validate:      validator.New(),
		observer:      observer,
	}
}

// Create validates the draft, creates the product, then initialises its
// stock and announces it
func (s *ProductService) Create(ctx context.Context, draft catalog.ProductDraft) (catalog.Product, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "admin_product", "create")
	defer span.End()

	product, err := s.prepare(ctx, draft)
	if err != nil {
		telemetry.RecordError(span, err)
		return catalog.Product{}, err
	}

	created, err := s.products.Create(ctx, backend.NewProductRequest(product))
	if err != nil {
		telemetry.RecordError(span, err)
		return catalog.Product{}, fmt.Errorf("create product: %w", err)
	}
	s.catalog.InvalidateProducts()
	telemetry.SetAttributes(span, telemetry.SpanAttrProductID, created.ID)

	appshared.RunBestEffort(ctx, s.observer,
		appshared.PostAction{
			Name: ActionInitInventory,
			Run: func(ctx context.Context) error {
				return s.inventory.UpdateStock(ctx, created.ID, product.Quantity)
			},
		},
		appshared.PostAction{
			Name: ActionNotifyLaunch,
			Run: func(ctx context.Context) error {
				return s.notifications.Send(ctx, notification.NewProductLaunch(product.Name))
			},
		},
	)

	logger.L(ctx).Info("Product created", zap.Int64("product_id", created.ID), zap.String("name", product.Name))
	return created, nil
}

// Update validates the draft, updates the product, then syncs its stock
func (s *ProductService) Update(ctx context.Context, id int64, draft catalog.ProductDraft) (catalog.Product, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "admin_product", "update",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, id))
	defer span.End()

	product, err := s.prepare(ctx, draft)
	if err != nil {
		telemetry.RecordError(span, err)
		return catalog.Product{}, err
	}

	updated, err := s.products.Update(ctx, id, backend.NewProductRequest(product))
	if err != nil {
		telemetry.RecordError(span, err)
		return catalog.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	s.catalog.InvalidateProducts()

	appshared.RunBestEffort(ctx, s.observer, appshared.PostAction{
		Name: ActionSyncInventory,
		Run: func(ctx context.Context) error {
			return s.inventory.UpdateStock(ctx, id, product.Quantity)
		},
	})

	logger.L(ctx).Info("Product updated", zap.Int64("product_id", id))
	return updated, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "admin_product", "delete",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, id))
	defer span.End()

	if err := s.products.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	s.catalog.InvalidateProducts()

	logger.L(ctx).Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

// prepare runs every local check. Checks that need no category list run
// first, so malformed input never reaches the backend.
func (s *ProductService) prepare(ctx context.Context, draft catalog.ProductDraft) (catalog.Product, error) {
	if err := s.validate.Struct(ProductInputFrom(draft)); err != nil {
		return catalog.Product{}, validationError(err)
	}
	if _, err := catalog.ParseDraft(draft); err != nil {
		return catalog.Product{}, err
	}

	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("load categories: %w", err)
	}
	return catalog.NewProduct(draft, categories)
}
