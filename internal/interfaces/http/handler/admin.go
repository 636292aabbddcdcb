package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/retail/storefront/internal/application/catalog"
	"github.com/retail/storefront/internal/application/report"
	"github.com/retail/storefront/internal/application/trade"
	"github.com/retail/storefront/internal/domain/identity"
	"github.com/retail/storefront/internal/domain/order"
	"github.com/retail/storefront/internal/domain/shared"
	"github.com/retail/storefront/internal/infrastructure/backend"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/interfaces/http/view"
	"go.uber.org/zap"
)

// Admin dashboard tabs
const (
	TabAdminDashboard = "dashboard"
	TabAdminProducts  = "products"
	TabAdminOrders    = "orders"
)

var adminTabs = map[string]string{
	TabAdminDashboard: "Admin Dashboard",
	TabAdminProducts:  "Manage Products",
	TabAdminOrders:    "Manage Orders",
}

// Admin flash messages
const (
	MsgProductCreated      = "Product created successfully!"
	MsgProductUpdated      = "Product updated successfully!"
	MsgProductDeleted      = "Product deleted successfully!"
	MsgProductDeleteFailed = "Failed to delete product"
	MsgProductFormInvalid  = "Failed to save product: the form could not be read"
	msgProductSaveFailed   = "Failed to save product: "
)

// AdminPage is the data of the admin dashboard
type AdminPage struct {
	Page
	Tab       string
	Dashboard report.AdminDashboard
	Form      ProductForm
	EditingID int64
}

// AdminHandler serves the admin dashboard and its forms
type AdminHandler struct {
	BaseHandler
	dashboards *report.DashboardService
	products   *appcatalog.ProductService
	orders     *trade.OrderService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	sessions SessionSaver,
	dashboards *report.DashboardService,
	products *appcatalog.ProductService,
	orders *trade.OrderService,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler: BaseHandler{sessions: sessions},
		dashboards:  dashboards,
		products:    products,
		orders:      orders,
	}
}

// Dashboard renders the selected tab. ?edit=ID opens a product in the form.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	tab := c.Query("tab")
	if _, ok := adminTabs[tab]; !ok {
		tab = TabAdminDashboard
	}

	dash := h.dashboards.Admin(c.Request.Context())
	data := AdminPage{
		Page:      h.page(c, adminTabs[tab]),
		Tab:       tab,
		Dashboard: dash,
	}

	if raw := c.Query("edit"); raw != "" && tab == TabAdminProducts {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			for _, p := range dash.Products {
				if p.ID == id {
					data.Form = ProductFormFrom(p)
					data.EditingID = id
					break
				}
			}
		}
	}

	h.render(c, http.StatusOK, view.PageAdmin, data)
}

// CreateProduct adds a product to the catalog
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var form ProductForm
	if !h.bindProductForm(c, &form, 0) {
		return
	}

	if _, err := h.products.Create(c.Request.Context(), form.Draft()); err != nil {
		h.productSaveFailed(c, form, 0, err)
		return
	}
	h.flash(c, identity.FlashSuccess, MsgProductCreated)
	h.redirect(c, "/admin?tab=products")
}

// UpdateProduct saves changes to a product
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	var form ProductForm
	if !h.bindProductForm(c, &form, id) {
		return
	}

	if _, err := h.products.Update(c.Request.Context(), id, form.Draft()); err != nil {
		h.productSaveFailed(c, form, id, err)
		return
	}
	h.flash(c, identity.FlashSuccess, MsgProductUpdated)
	h.redirect(c, "/admin?tab=products")
}

// DeleteProduct removes a product from the catalog
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		logger.GetGinLogger(c).Error("Failed to delete product", zap.Int64("product_id", id), zap.Error(err))
		h.flash(c, identity.FlashError, MsgProductDeleteFailed)
	} else {
		h.flash(c, identity.FlashSuccess, MsgProductDeleted)
	}
	h.redirect(c, "/admin?tab=products")
}

// UpdateOrderStatus moves an order along the approval workflow
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	var form StatusForm
	if err := c.ShouldBind(&form); err != nil {
		h.flash(c, identity.FlashError, trade.MsgStatusUpdateFailed)
		h.redirect(c, "/admin?tab=orders")
		return
	}
	target := order.Status(strings.ToUpper(strings.TrimSpace(form.Status)))

	if err := h.orders.UpdateStatus(c.Request.Context(), id, target); err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == shared.CodeInvalidState {
			h.flash(c, identity.FlashError, domainErr.Message)
		} else {
			h.flash(c, identity.FlashError, trade.MsgStatusUpdateFailed)
		}
		h.redirect(c, "/admin?tab=orders")
		return
	}
	h.flash(c, identity.FlashSuccess, trade.StatusUpdatedMessage(target))
	h.redirect(c, "/admin?tab=orders")
}

// bindProductForm reads the submitted form. An unreadable body is reported
// as a flash and nothing is sent to the backend.
func (h *AdminHandler) bindProductForm(c *gin.Context, form *ProductForm, editingID int64) bool {
	if err := c.ShouldBind(form); err != nil {
		logger.GetGinLogger(c).Warn("Failed to bind product form", zap.Int64("product_id", editingID), zap.Error(err))
		h.flash(c, identity.FlashError, MsgProductFormInvalid)
		h.redirect(c, "/admin?tab=products")
		return false
	}
	return true
}

// productSaveFailed shows input problems inline on the form and reports
// backend failures as a flash
func (h *AdminHandler) productSaveFailed(c *gin.Context, form ProductForm, editingID int64, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		p := h.page(c, adminTabs[TabAdminProducts])
		p.Error = domainErr.Message
		h.render(c, http.StatusUnprocessableEntity, view.PageAdmin, AdminPage{
			Page:      p,
			Tab:       TabAdminProducts,
			Dashboard: h.dashboards.Admin(c.Request.Context()),
			Form:      form,
			EditingID: editingID,
		})
		return
	}

	logger.GetGinLogger(c).Error("Failed to save product", zap.Int64("product_id", editingID), zap.Error(err))
	h.flash(c, identity.FlashError, msgProductSaveFailed+backend.Message(err))
	h.redirect(c, "/admin?tab=products")
}
