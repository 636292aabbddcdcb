package order

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/retail/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the payment option chosen at checkout
type PaymentMethod string

const (
	PaymentUPI  PaymentMethod = "UPI"
	PaymentCard PaymentMethod = "CARD"
	PaymentCOD  PaymentMethod = "COD"
)

// PaymentStatusSuccess is sent with every payment request. The storefront
// has no decline path.
const PaymentStatusSuccess = "SUCCESS"

// ParsePaymentMethod returns the method for s, defaulting to UPI
func ParsePaymentMethod(s string) PaymentMethod {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case PaymentUPI, PaymentCard, PaymentCOD:
		return m
	}
	return PaymentUPI
}

// Label returns the human readable name of the method
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCard:
		return "Credit / Debit Card"
	case PaymentCOD:
		return "Cash on Delivery"
	}
	return "UPI"
}

// CheckoutState is the state of one checkout attempt
type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "IDLE"
	CheckoutProcessing CheckoutState = "PROCESSING"
	CheckoutCompleted  CheckoutState = "COMPLETED"
	CheckoutFailed     CheckoutState = "FAILED"
)

// CanTransitionTo checks if the checkout may move from s to target
func (s CheckoutState) CanTransitionTo(target CheckoutState) bool {
	switch s {
	case CheckoutIdle:
		return target == CheckoutProcessing
	case CheckoutProcessing:
		return target == CheckoutCompleted || target == CheckoutFailed
	}
	return false
}

// IsTerminal reports whether the checkout has finished
func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutCompleted || s == CheckoutFailed
}

// Checkout errors
var (
	ErrEmptyCart          = shared.NewDomainError("EMPTY_CART", "Your cart is empty")
	ErrAddressRequired    = shared.NewDomainError("ADDRESS_REQUIRED", "Please enter a shipping address")
	ErrCheckoutInProgress = shared.NewDomainError("CHECKOUT_IN_PROGRESS", "Checkout already in progress")
)

// ShippingDetails is the checkout form input
type ShippingDetails struct {
	Address string
	Pincode string
	Method  PaymentMethod
}

// Validate checks the details before any payment is attempted
func (d ShippingDetails) Validate() error {
	if strings.TrimSpace(d.Address) == "" {
		return ErrAddressRequired
	}
	return nil
}

// FullAddress returns the address sent with the order, with the pincode
// appended when one was given
func (d ShippingDetails) FullAddress() string {
	addr := strings.TrimSpace(d.Address)
	if pin := strings.TrimSpace(d.Pincode); pin != "" {
		return addr + ", PIN " + pin
	}
	return addr
}

// Checkout tracks one attempt through payment and order creation
type Checkout struct {
	state   CheckoutState
	orderID int64
	reason  string
}

// NewCheckout returns a checkout in the Idle state
func NewCheckout() *Checkout {
	return &Checkout{state: CheckoutIdle}
}

// State returns the current state
func (c *Checkout) State() CheckoutState {
	return c.state
}

// OrderID returns the created order id once Completed
func (c *Checkout) OrderID() int64 {
	return c.orderID
}

// Start moves Idle to Processing
func (c *Checkout) Start() error {
	return c.transition(CheckoutProcessing)
}

// Complete moves Processing to Completed with the created order id
func (c *Checkout) Complete(orderID int64) error {
	if err := c.transition(CheckoutCompleted); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

// Fail moves Processing to Failed with a reason for the user
func (c *Checkout) Fail(reason string) error {
	if err := c.transition(CheckoutFailed); err != nil {
		return err
	}
	c.reason = reason
	return nil
}

// Message returns the user-facing outcome text for a terminal checkout
func (c *Checkout) Message() string {
	switch c.state {
	case CheckoutCompleted:
		return fmt.Sprintf("Order placed successfully! Order ID: %d", c.orderID)
	case CheckoutFailed:
		return "Checkout failed: " + c.reason
	}
	return ""
}

func (c *Checkout) transition(target CheckoutState) error {
	if !c.state.CanTransitionTo(target) {
		return shared.InvalidState(
			fmt.Sprintf("cannot move checkout from %s to %s", c.state, target))
	}
	c.state = target
	return nil
}

// UPIQRCodeURL returns an image URL encoding a UPI payment intent for the
// total, rounded to whole rupees
func UPIQRCodeURL(payee, payeeName string, total decimal.Decimal) string {
	intent := fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=INR",
		payee, url.QueryEscape(payeeName), total.Round(0).String())
	q := url.Values{}
	q.Set("size", "150x150")
	q.Set("data", intent)
	return "https://api.qrserver.com/v1/create-qr-code/?" + q.Encode()
}
