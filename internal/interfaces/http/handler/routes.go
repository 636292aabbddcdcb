package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/retail/storefront/internal/domain/identity"
	"github.com/retail/storefront/internal/interfaces/http/middleware"
	"github.com/retail/storefront/internal/interfaces/http/router"
)

// Handlers groups the page handlers behind the route table
type Handlers struct {
	Home     *HomeHandler
	Auth     *AuthHandler
	Customer *CustomerHandler
	Admin    *AdminHandler
}

// Routes builds the storefront's page routes. authLimit throttles the
// sign-in posts; pass nil to disable it.
func Routes(h Handlers, authLimit gin.HandlerFunc) []*router.DomainGroup {
	home := router.NewDomainGroup("home", "")
	home.GET("/", h.Home.Index).
		POST("/logout", h.Auth.Logout)

	auth := router.NewDomainGroup("auth", "")
	if authLimit != nil {
		auth.Use(authLimit)
	}
	auth.GET("/user/auth", h.Auth.CustomerPage).
		POST("/user/auth", h.Auth.CustomerSubmit).
		GET("/admin/login", h.Auth.AdminPage).
		POST("/admin/login", h.Auth.AdminSubmit)

	customer := router.NewDomainGroup("customer", "/dashboard").
		Use(middleware.RequireRole(identity.RoleCustomer), middleware.NoStore())
	customer.GET("", h.Customer.Dashboard).
		GET("/orders/:id", h.Customer.OrderDetail).
		POST("/checkout", h.Customer.Checkout)
	customer.Group("cart", "/cart").
		POST("", h.Customer.AddToCart).
		POST("/:productId/quantity", h.Customer.UpdateQuantity).
		POST("/:productId/remove", h.Customer.RemoveItem)

	admin := router.NewDomainGroup("admin", "/admin").
		Use(middleware.RequireRole(identity.RoleAdmin), middleware.NoStore())
	admin.GET("", h.Admin.Dashboard)
	admin.Group("admin-products", "/products").
		POST("", h.Admin.CreateProduct).
		POST("/:id", h.Admin.UpdateProduct).
		POST("/:id/delete", h.Admin.DeleteProduct)
	admin.Group("admin-orders", "/orders").
		POST("/:id/status", h.Admin.UpdateOrderStatus)

	return []*router.DomainGroup{home, auth, customer, admin}
}
