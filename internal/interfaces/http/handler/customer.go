package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/retail/storefront/internal/application/catalog"
	"github.com/retail/storefront/internal/application/report"
	"github.com/retail/storefront/internal/application/trade"
	"github.com/retail/storefront/internal/domain/catalog"
	"github.com/retail/storefront/internal/domain/identity"
	"github.com/retail/storefront/internal/domain/order"
	"github.com/retail/storefront/internal/infrastructure/backend"
	"github.com/retail/storefront/internal/infrastructure/config"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/interfaces/http/middleware"
	"github.com/retail/storefront/internal/interfaces/http/view"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Customer dashboard tabs
const (
	TabHome          = "home"
	TabProducts      = "products"
	TabCart          = "cart"
	TabOrders        = "orders"
	TabNotifications = "notifications"
)

// MsgProductUnavailable is shown when a product vanished from the catalog
// between listing and adding it
const MsgProductUnavailable = "Failed to add to cart: Product not found"

var customerTabs = map[string]string{
	TabHome:          "Home",
	TabProducts:      "Products",
	TabCart:          "Cart",
	TabOrders:        "My Orders",
	TabNotifications: "Notifications",
}

// SortOption is one entry of the product sort menu
type SortOption struct {
	Value catalog.SortKey
	Label string
}

var sortOptions = []SortOption{
	{catalog.SortNameAsc, "Name (A-Z)"},
	{catalog.SortNameDesc, "Name (Z-A)"},
	{catalog.SortPriceAsc, "Price: Low to High"},
	{catalog.SortPriceDesc, "Price: High to Low"},
}

var paymentMethods = []order.PaymentMethod{order.PaymentUPI, order.PaymentCard, order.PaymentCOD}

// CategoryCount is a category tile on the home tab
type CategoryCount struct {
	Name  string
	Count int
}

// FilterView echoes the product filter back into the form
type FilterView struct {
	Search   string
	Category string
	Min      string
	Max      string
	Sort     catalog.SortKey
	Active   bool
}

// CustomerPage is the data of the customer dashboard
type CustomerPage struct {
	Page
	Tab         string
	Dashboard   report.CustomerDashboard
	Categories  []CategoryCount
	Products    []catalog.Product
	Filter      FilterView
	SortOptions []SortOption
	Methods     []order.PaymentMethod
	QRCodeURL   string
	Return      string
}

// OrderDetailPage shows one of the customer's orders
type OrderDetailPage struct {
	Page
	Order order.Order
}

// CustomerHandler serves the customer dashboard and its forms
type CustomerHandler struct {
	BaseHandler
	dashboards *report.DashboardService
	catalog    *appcatalog.CatalogService
	carts      *trade.CartService
	checkout   *trade.CheckoutService
	orders     *trade.OrderService
	payment    config.PaymentConfig
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(
	sessions SessionSaver,
	dashboards *report.DashboardService,
	catalogService *appcatalog.CatalogService,
	carts *trade.CartService,
	checkout *trade.CheckoutService,
	orders *trade.OrderService,
	payment config.PaymentConfig,
) *CustomerHandler {
	return &CustomerHandler{
		BaseHandler: BaseHandler{sessions: sessions},
		dashboards:  dashboards,
		catalog:     catalogService,
		carts:       carts,
		checkout:    checkout,
		orders:      orders,
		payment:     payment,
	}
}

// Dashboard renders the selected tab
func (h *CustomerHandler) Dashboard(c *gin.Context) {
	var q FilterQuery
	_ = c.ShouldBindQuery(&q)

	tab := q.Tab
	title, ok := customerTabs[tab]
	if !ok {
		tab, title = TabHome, customerTabs[TabHome]
	}

	dash := h.dashboards.Customer(c.Request.Context(), currentUserID(c))
	filter := parseFilter(q)

	data := CustomerPage{
		Page:        h.page(c, title),
		Tab:         tab,
		Dashboard:   dash,
		Categories:  categoryCounts(dash),
		Products:    catalog.Apply(dash.Products, filter),
		SortOptions: sortOptions,
		Methods:     paymentMethods,
		Return:      c.Request.URL.RequestURI(),
		Filter: FilterView{
			Search:   q.Search,
			Category: filter.Category,
			Min:      q.Min,
			Max:      q.Max,
			Sort:     filter.Sort,
			Active:   filter.IsActive(),
		},
	}
	if !dash.Cart.IsEmpty() {
		data.QRCodeURL = order.UPIQRCodeURL(h.payment.UPIPayee, h.payment.UPIPayeeName, dash.Cart.Total())
	}

	h.render(c, http.StatusOK, view.PageCustomer, data)
}

// AddToCart adds one unit of a product to the cart
func (h *CustomerHandler) AddToCart(c *gin.Context) {
	var form AddToCartForm
	if err := c.ShouldBind(&form); err != nil {
		h.flash(c, identity.FlashError, "Failed to add to cart: "+middleware.ValidationMessage(err))
		h.redirect(c, "/dashboard?tab=products")
		return
	}
	back := localReturn(form.Return, "/dashboard", "/dashboard?tab=products")
	ctx := c.Request.Context()

	product, err := h.catalog.Product(ctx, form.ProductID)
	if err != nil {
		if backend.IsNotFound(err) {
			h.flash(c, identity.FlashError, MsgProductUnavailable)
		} else {
			logger.GetGinLogger(c).Warn("Product lookup failed", zap.Int64("product_id", form.ProductID), zap.Error(err))
			h.flash(c, identity.FlashError, "Failed to add to cart: "+backend.Message(err))
		}
		h.redirect(c, back)
		return
	}
	if !product.InStock() {
		h.flash(c, identity.FlashError, fmt.Sprintf("%s is out of stock", product.Name))
		h.redirect(c, back)
		return
	}

	if err := h.carts.AddToCart(ctx, currentUserID(c), product); err != nil {
		logger.GetGinLogger(c).Warn("Add to cart failed", zap.Int64("product_id", product.ID), zap.Error(err))
		h.flash(c, identity.FlashError, "Failed to add to cart: "+backend.Message(err))
	}
	h.redirect(c, back)
}

// UpdateQuantity sets a cart line's quantity. Quantities below one are ignored.
func (h *CustomerHandler) UpdateQuantity(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		h.NotFound(c)
		return
	}
	var form QuantityForm
	if err := c.ShouldBind(&form); err != nil {
		h.flash(c, identity.FlashError, "Please enter a valid quantity")
		h.redirect(c, "/dashboard?tab=cart")
		return
	}

	if err := h.carts.UpdateQuantity(c.Request.Context(), currentUserID(c), productID, form.Quantity); err != nil {
		logger.GetGinLogger(c).Warn("Cart quantity update failed", zap.Int64("product_id", productID), zap.Error(err))
		h.flash(c, identity.FlashError, "Failed to update quantity: "+backend.Message(err))
	}
	h.redirect(c, "/dashboard?tab=cart")
}

// RemoveItem drops a product from the cart
func (h *CustomerHandler) RemoveItem(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		h.NotFound(c)
		return
	}

	if err := h.carts.RemoveItem(c.Request.Context(), currentUserID(c), productID); err != nil {
		logger.GetGinLogger(c).Warn("Cart item removal failed", zap.Int64("product_id", productID), zap.Error(err))
		h.flash(c, identity.FlashError, "Failed to remove item: "+backend.Message(err))
	}
	h.redirect(c, "/dashboard?tab=cart")
}

// Checkout pays for the cart and places the order
func (h *CustomerHandler) Checkout(c *gin.Context) {
	var form CheckoutForm
	if err := c.ShouldBind(&form); err != nil {
		h.flash(c, identity.FlashError, middleware.ValidationMessage(err))
		h.redirect(c, "/dashboard?tab=cart")
		return
	}

	result := h.checkout.Checkout(c.Request.Context(), currentUserID(c), form.ShippingDetails())
	if !result.Succeeded() {
		h.flash(c, identity.FlashError, result.Message)
		h.redirect(c, "/dashboard?tab=cart")
		return
	}
	h.flash(c, identity.FlashSuccess, result.Message)
	h.redirect(c, "/dashboard?tab=orders")
}

// OrderDetail shows one of the customer's orders
func (h *CustomerHandler) OrderDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}

	o, err := h.orders.UserOrder(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		if errors.Is(err, trade.ErrOrderNotFound) {
			h.NotFound(c)
			return
		}
		logger.GetGinLogger(c).Error("Failed to load order", zap.Int64("order_id", id), zap.Error(err))
		h.renderError(c, http.StatusBadGateway, "Unable to load your order. Please try again.")
		return
	}

	h.render(c, http.StatusOK, view.PageOrderDetail, OrderDetailPage{
		Page:  h.page(c, fmt.Sprintf("Order #%d", o.ID)),
		Order: o,
	})
}

// parseFilter builds the catalog filter. Unparseable or negative bounds are
// treated as absent.
func parseFilter(q FilterQuery) catalog.Filter {
	return catalog.Filter{
		Search:   strings.TrimSpace(q.Search),
		Category: strings.TrimSpace(q.Category),
		MinPrice: parseBound(q.Min),
		MaxPrice: parseBound(q.Max),
		Sort:     catalog.ParseSortKey(q.Sort),
	}
}

func parseBound(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil
	}
	return &d
}

func categoryCounts(dash report.CustomerDashboard) []CategoryCount {
	counts := make([]CategoryCount, 0, len(dash.Categories))
	for _, cat := range dash.Categories {
		counts = append(counts, CategoryCount{
			Name:  cat.Name,
			Count: catalog.CountByCategory(dash.Products, cat.Name),
		})
	}
	return counts
}
