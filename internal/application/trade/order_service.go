package trade

import (
	"context"
	"fmt"
	"strings"

	"github.com/retail/storefront/internal/domain/order"
	"github.com/retail/storefront/internal/domain/shared"
	"github.com/retail/storefront/internal/infrastructure/cache"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OrderBackend reads and updates orders
type OrderBackend interface {
	List(ctx context.Context) ([]order.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status order.Status) error
}

// ErrOrderNotFound is returned when an order is not in the visible list
var ErrOrderNotFound = shared.NewDomainError("NOT_FOUND", "Order not found")

// MsgStatusUpdateFailed is the flash shown when a status change fails
const MsgStatusUpdateFailed = "Failed to update order status"

// OrderService lists orders for customers and admins and applies admin
// status changes
type OrderService struct {
	orders OrderBackend
	cache  *cache.Collections
}

// NewOrderService creates a new OrderService
func NewOrderService(orders OrderBackend, collections *cache.Collections) *OrderService {
	return &OrderService{orders: orders, cache: collections}
}

// UserOrders returns a customer's orders, newest first
func (s *OrderService) UserOrders(ctx context.Context, userID int64) ([]order.Order, error) {
	orders, err := cache.GetOrLoad(ctx, s.cache, cache.UserOrdersKey(userID), func(ctx context.Context) ([]order.Order, error) {
		return s.orders.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return order.NewestFirst(orders), nil
}

// UserOrder returns one of the customer's own orders
func (s *OrderService) UserOrder(ctx context.Context, userID, orderID int64) (order.Order, error) {
	orders, err := s.UserOrders(ctx, userID)
	if err != nil {
		return order.Order{}, err
	}
	o, ok := order.Find(orders, orderID)
	if !ok {
		return order.Order{}, ErrOrderNotFound
	}
	return o, nil
}

// AllOrders returns every order, newest first
func (s *OrderService) AllOrders(ctx context.Context) ([]order.Order, error) {
	orders, err := cache.GetOrLoad(ctx, s.cache, cache.KeyAllOrders, s.orders.List)
	if err != nil {
		return nil, err
	}
	return order.NewestFirst(orders), nil
}

// UpdateStatus moves an order to target. Transitions the status machine does
// not allow are rejected without calling the backend.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, target order.Status) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "admin_order", "update_status",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID),
		telemetry.WithAttribute(telemetry.SpanAttrOrderStatus, target.String()))
	defer span.End()
	log := logger.L(ctx).With(zap.Int64("order_id", orderID), zap.String("target", target.String()))

	orders, err := s.AllOrders(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("load orders: %w", err)
	}
	current, ok := order.Find(orders, orderID)
	if !ok {
		return ErrOrderNotFound
	}
	if !current.Status.CanTransitionTo(target) {
		log.Warn("Rejected order status transition", zap.String("current", current.Status.String()))
		derr := shared.InvalidState(
			fmt.Sprintf("Cannot change order from %s to %s", current.Status.Display(), target))
		telemetry.MarkRejected(span, derr.Message)
		return derr
	}

	if err := s.orders.UpdateStatus(ctx, orderID, target); err != nil {
		telemetry.RecordError(span, err)
		log.Error("Failed to update order status", zap.Error(err))
		return fmt.Errorf("update order %d status: %w", orderID, err)
	}
	s.cache.InvalidatePrefix(cache.PrefixOrders)

	log.Info("Order status updated", zap.String("previous", current.Status.String()))
	return nil
}

// StatusUpdatedMessage is the flash shown after a successful status change
func StatusUpdatedMessage(target order.Status) string {
	return fmt.Sprintf("Order %s successfully!", strings.ToLower(target.String()))
}
