package trade

import (
	"context"
	"time"

	appshared "github.com/retail/storefront/internal/application/shared"
	"github.com/retail/storefront/internal/domain/order"
	"github.com/retail/storefront/internal/domain/shared"
	"github.com/retail/storefront/internal/infrastructure/backend"
	"github.com/retail/storefront/internal/infrastructure/cache"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultCheckoutGuardTTL bounds how long an abandoned checkout blocks the next one
const DefaultCheckoutGuardTTL = 30 * time.Second

// ActionClearCart names the post-checkout cart clear
const ActionClearCart = "clear_cart"

const msgCheckoutUnavailable = "Checkout is temporarily unavailable. Please try again."

// PaymentProcessor records payments
type PaymentProcessor interface {
	Process(ctx context.Context, req backend.PaymentRequest) (backend.PaymentResponse, error)
}

// OrderCreator places orders
type OrderCreator interface {
	Create(ctx context.Context, req backend.CreateOrderRequest) (order.Order, error)
}

// CheckoutObserver is told how each checkout ended
type CheckoutObserver interface {
	appshared.FailureObserver
	ObserveCheckout(outcome string)
}

// CheckoutResult is what the cart page shows after a checkout attempt
type CheckoutResult struct {
	State   order.CheckoutState
	OrderID int64
	Message string
}

// Succeeded reports whether an order was placed
func (r CheckoutResult) Succeeded() bool {
	return r.State == order.CheckoutCompleted
}

// CheckoutService pays for the cart and turns it into an order
type CheckoutService struct {
	carts    *CartService
	payments PaymentProcessor
	orders   OrderCreator
	cache    *cache.Collections
	guard    shared.InFlightGuard
	guardTTL time.Duration
	observer CheckoutObserver
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	carts *CartService,
	payments PaymentProcessor,
	orders OrderCreator,
	collections *cache.Collections,
	guard shared.InFlightGuard,
	observer CheckoutObserver,
) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		payments: payments,
		orders:   orders,
		cache:    collections,
		guard:    guard,
		guardTTL: DefaultCheckoutGuardTTL,
		observer: observer,
	}
}

// Checkout runs payment then order creation for the user's cart. Input
// problems are rejected before any backend call; a failed payment or order
// leaves the cart untouched.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64, details order.ShippingDetails) CheckoutResult {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "place_order",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID),
		telemetry.WithAttribute(telemetry.SpanAttrPaymentMethod, string(details.Method)))
	defer span.End()
	log := logger.L(ctx)

	if err := details.Validate(); err != nil {
		return s.reject(span, err.Error())
	}

	key := cache.CheckoutGuardKey(userID)
	token, ok, err := s.guard.Acquire(ctx, key, s.guardTTL)
	if err != nil {
		log.Error("Failed to acquire checkout guard", zap.Error(err))
		return s.reject(span, msgCheckoutUnavailable)
	}
	if !ok {
		return s.reject(span, order.ErrCheckoutInProgress.Message)
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), key, token); err != nil {
			log.Warn("Failed to release checkout guard", zap.Error(err))
		}
	}()

	current, err := s.carts.Get(ctx, userID)
	if err != nil {
		log.Error("Failed to load cart for checkout", zap.Error(err))
		return s.reject(span, "Checkout failed: "+backend.Message(err))
	}
	if current.IsEmpty() {
		return s.reject(span, order.ErrEmptyCart.Message)
	}

	co := order.NewCheckout()
	if err := co.Start(); err != nil {
		return s.reject(span, err.Error())
	}

	total := current.Total()
	telemetry.SetAttributes(span, telemetry.SpanAttrAmount, total.String())

	payment, err := s.payments.Process(ctx, backend.PaymentRequest{
		UserID:        userID,
		Amount:        total,
		PaymentMethod: details.Method,
		Status:        order.PaymentStatusSuccess,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Payment failed", zap.String("amount", total.String()), zap.Error(err))
		return s.fail(co, backend.Message(err))
	}
	telemetry.AddEvent(span, telemetry.EventPaymentRecorded,
		telemetry.SpanAttrPaymentID, payment.ID,
		telemetry.SpanAttrTransactionID, payment.TransactionID)

	created, err := s.orders.Create(ctx, backend.CreateOrderRequest{
		UserID:          userID,
		Items:           order.ItemsFromCart(current.Items),
		TotalAmount:     total,
		ShippingAddress: details.FullAddress(),
		PaymentID:       payment.ID,
		TransactionID:   payment.TransactionID,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Order creation failed after payment",
			zap.Int64("payment_id", payment.ID),
			zap.String("transaction_id", payment.TransactionID),
			zap.Error(err))
		return s.fail(co, backend.Message(err))
	}
	_ = co.Complete(created.ID)
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, created.ID)

	appshared.RunBestEffort(ctx, s.observer, appshared.PostAction{
		Name: ActionClearCart,
		Run: func(ctx context.Context) error {
			return s.carts.Clear(ctx, userID)
		},
	})
	s.cache.Invalidate(
		cache.CartKey(userID),
		cache.UserOrdersKey(userID),
		cache.KeyAllOrders,
		cache.KeyProducts,
		cache.NotificationsKey(userID),
	)

	log.Info("Order placed",
		zap.Int64("order_id", created.ID),
		zap.Int64("payment_id", payment.ID),
		zap.String("amount", total.String()))
	s.observe(telemetry.CheckoutOutcomeSuccess)
	return CheckoutResult{State: co.State(), OrderID: co.OrderID(), Message: co.Message()}
}

// SetGuardTTL overrides how long a checkout holds its in-flight guard
func (s *CheckoutService) SetGuardTTL(ttl time.Duration) {
	if ttl > 0 {
		s.guardTTL = ttl
	}
}

func (s *CheckoutService) reject(span trace.Span, message string) CheckoutResult {
	telemetry.MarkRejected(span, message)
	s.observe(telemetry.CheckoutOutcomeRejected)
	return CheckoutResult{State: order.CheckoutIdle, Message: message}
}

func (s *CheckoutService) fail(co *order.Checkout, reason string) CheckoutResult {
	_ = co.Fail(reason)
	s.observe(telemetry.CheckoutOutcomeFailed)
	return CheckoutResult{State: co.State(), Message: co.Message()}
}

func (s *CheckoutService) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveCheckout(outcome)
	}
}
