package handler

import (
	"github.com/retail/storefront/internal/domain/catalog"
	"github.com/retail/storefront/internal/domain/order"
)

// LoginForm is posted by both login portals
type LoginForm struct {
	Email    string `form:"email" binding:"required,email,max=254"`
	Password string `form:"password" binding:"required,max=128"`
}

// RegisterForm is the customer sign-up form
type RegisterForm struct {
	Email     string `form:"email" binding:"required,email,max=254"`
	Password  string `form:"password" binding:"required,max=128"`
	FirstName string `form:"firstName" binding:"required,max=100"`
	LastName  string `form:"lastName" binding:"required,max=100"`
	Phone     string `form:"phone" binding:"max=20"`
}

// FilterQuery is the product browsing query string
type FilterQuery struct {
	Tab      string `form:"tab"`
	Search   string `form:"q"`
	Category string `form:"category"`
	Min      string `form:"min"`
	Max      string `form:"max"`
	Sort     string `form:"sort"`
}

// AddToCartForm adds one unit of a product
type AddToCartForm struct {
	ProductID int64  `form:"productId" binding:"required,gt=0"`
	Return    string `form:"return"`
}

// QuantityForm sets a cart line's quantity
type QuantityForm struct {
	Quantity int `form:"quantity"`
}

// CheckoutForm is the cart's checkout form
type CheckoutForm struct {
	Address string `form:"address" binding:"max=500"`
	Pincode string `form:"pincode" binding:"omitempty,pincode"`
	Method  string `form:"method" binding:"omitempty,oneof=UPI CARD COD"`
}

// ShippingDetails converts the form for checkout
func (f CheckoutForm) ShippingDetails() order.ShippingDetails {
	return order.ShippingDetails{
		Address: f.Address,
		Pincode: f.Pincode,
		Method:  order.ParsePaymentMethod(f.Method),
	}
}

// ProductForm is the admin add/edit product form. Numbers stay text so that
// bad input reaches the product rules with its own messages.
type ProductForm struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	Price       string `form:"price"`
	Quantity    string `form:"quantity"`
	CategoryID  string `form:"categoryId"`
	ImageURL    string `form:"imageUrl"`
}

// Draft converts the form for the product service
func (f ProductForm) Draft() catalog.ProductDraft {
	return catalog.ProductDraft{
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Quantity:    f.Quantity,
		CategoryID:  f.CategoryID,
		ImageURL:    f.ImageURL,
	}
}

// ProductFormFrom fills the edit form from an existing product
func ProductFormFrom(p catalog.Product) ProductForm {
	d := catalog.DraftFrom(p)
	return ProductForm{
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Quantity:    d.Quantity,
		CategoryID:  d.CategoryID,
		ImageURL:    d.ImageURL,
	}
}

// StatusForm moves an order to a new status
type StatusForm struct {
	Status string `form:"status" binding:"required"`
}
