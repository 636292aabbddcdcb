// Package report assembles the dashboard pages from several backend
// collections loaded side by side.
package report

import (
	"context"
	"slices"
	"sync"

	"github.com/retail/storefront/internal/domain/cart"
	"github.com/retail/storefront/internal/domain/catalog"
	"github.com/retail/storefront/internal/domain/notification"
	"github.com/retail/storefront/internal/domain/order"
	"github.com/retail/storefront/internal/infrastructure/cache"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Collection names, as logged and reported in Failed
const (
	CollectionProducts      = "products"
	CollectionCategories    = "categories"
	CollectionCart          = "cart"
	CollectionOrders        = "orders"
	CollectionNotifications = "notifications"
)

// Catalog serves products and categories
type Catalog interface {
	Products(ctx context.Context) ([]catalog.Product, error)
	Categories(ctx context.Context) ([]catalog.Category, error)
}

// Carts serves a user's cart
type Carts interface {
	Get(ctx context.Context, userID int64) (cart.Cart, error)
}

// Orders serves order lists
type Orders interface {
	UserOrders(ctx context.Context, userID int64) ([]order.Order, error)
	AllOrders(ctx context.Context) ([]order.Order, error)
}

// NotificationLister lists a user's notifications from the backend
type NotificationLister interface {
	ListByUser(ctx context.Context, userID int64) ([]notification.Notification, error)
}

// CustomerDashboard holds everything the customer pages render. Collections
// that failed to load are empty and named in Failed.
type CustomerDashboard struct {
	Products      []catalog.Product
	Categories    []catalog.Category
	Cart          cart.Cart
	Orders        []order.Order
	Notifications []notification.Notification
	Failed        []string
}

// AdminDashboard holds everything the admin pages render
type AdminDashboard struct {
	Products      []catalog.Product
	Orders        []order.Order
	Categories    []catalog.Category
	PendingOrders int
	Failed        []string
}

// ProductsUnavailable reports whether the product list failed to load
func (d AdminDashboard) ProductsUnavailable() bool {
	for _, name := range d.Failed {
		if name == CollectionProducts {
			return true
		}
	}
	return false
}

// DashboardService loads dashboards. Every collection is fetched
// concurrently and a failure only blanks its own collection.
type DashboardService struct {
	catalog       Catalog
	carts         Carts
	orders        Orders
	notifications NotificationLister
	cache         *cache.Collections
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	catalogService Catalog,
	carts Carts,
	orders Orders,
	notifications NotificationLister,
	collections *cache.Collections,
) *DashboardService {
	return &DashboardService{
		catalog:       catalogService,
		carts:         carts,
		orders:        orders,
		notifications: notifications,
		cache:         collections,
	}
}

// Customer loads the customer dashboard
func (s *DashboardService) Customer(ctx context.Context, userID int64) CustomerDashboard {
	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "customer",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID))
	defer span.End()

	d := CustomerDashboard{Cart: cart.New(userID, nil)}
	var loads loadSet
	loads.run(ctx, CollectionProducts, func(ctx context.Context) (err error) {
		d.Products, err = s.catalog.Products(ctx)
		return err
	})
	loads.run(ctx, CollectionCategories, func(ctx context.Context) (err error) {
		d.Categories, err = s.catalog.Categories(ctx)
		return err
	})
	loads.run(ctx, CollectionCart, func(ctx context.Context) error {
		c, err := s.carts.Get(ctx, userID)
		if err == nil {
			d.Cart = c
		}
		return err
	})
	loads.run(ctx, CollectionOrders, func(ctx context.Context) (err error) {
		d.Orders, err = s.orders.UserOrders(ctx, userID)
		return err
	})
	loads.run(ctx, CollectionNotifications, func(ctx context.Context) (err error) {
		d.Notifications, err = s.Notifications(ctx, userID)
		return err
	})
	d.Failed = loads.wait()

	d.Products = emptyIfNil(d.Products)
	d.Categories = emptyIfNil(d.Categories)
	d.Orders = emptyIfNil(d.Orders)
	d.Notifications = emptyIfNil(d.Notifications)
	return d
}

// Admin loads the admin dashboard
func (s *DashboardService) Admin(ctx context.Context) AdminDashboard {
	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "admin")
	defer span.End()

	var d AdminDashboard
	var loads loadSet
	loads.run(ctx, CollectionProducts, func(ctx context.Context) (err error) {
		d.Products, err = s.catalog.Products(ctx)
		return err
	})
	loads.run(ctx, CollectionOrders, func(ctx context.Context) (err error) {
		d.Orders, err = s.orders.AllOrders(ctx)
		return err
	})
	loads.run(ctx, CollectionCategories, func(ctx context.Context) (err error) {
		d.Categories, err = s.catalog.Categories(ctx)
		return err
	})
	d.Failed = loads.wait()

	d.Products = emptyIfNil(d.Products)
	d.Orders = emptyIfNil(d.Orders)
	d.Categories = emptyIfNil(d.Categories)
	d.PendingOrders = order.CountAwaitingApproval(d.Orders)
	return d
}

// Notifications returns a user's notifications, newest first
func (s *DashboardService) Notifications(ctx context.Context, userID int64) ([]notification.Notification, error) {
	notes, err := cache.GetOrLoad(ctx, s.cache, cache.NotificationsKey(userID), func(ctx context.Context) ([]notification.Notification, error) {
		return s.notifications.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return notification.NewestFirst(notes), nil
}

// loadSet runs loads concurrently and collects the names of failed ones.
// Loads do not cancel each other.
type loadSet struct {
	wg     sync.WaitGroup
	mu     sync.Mutex
	failed []string
}

func (l *loadSet) run(ctx context.Context, name string, load func(context.Context) error) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := load(ctx); err != nil {
			logger.L(ctx).Warn("Dashboard collection failed to load",
				zap.String("collection", name), zap.Error(err))
			l.mu.Lock()
			l.failed = append(l.failed, name)
			l.mu.Unlock()
		}
	}()
}

func (l *loadSet) wait() []string {
	l.wg.Wait()
	slices.Sort(l.failed)
	return l.failed
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
