package trade

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/retail/storefront/internal/domain/cart"
	"github.com/retail/storefront/internal/domain/order"
	"github.com/retail/storefront/internal/infrastructure/backend"
	"github.com/retail/storefront/internal/infrastructure/cache"
	"github.com/stretchr/testify/mock"
)

type MockCartBackend struct {
	mock.Mock
}

func (m *MockCartBackend) Get(ctx context.Context, userID int64) ([]cart.Item, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.Item), args.Error(1)
}

func (m *MockCartBackend) Add(ctx context.Context, item cart.Item) (cart.Item, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(cart.Item), args.Error(1)
}

func (m *MockCartBackend) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartBackend) Remove(ctx context.Context, userID, productID int64) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *MockCartBackend) Clear(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) Process(ctx context.Context, req backend.PaymentRequest) (backend.PaymentResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(backend.PaymentResponse), args.Error(1)
}

type MockOrderBackend struct {
	mock.Mock
}

func (m *MockOrderBackend) Create(ctx context.Context, req backend.CreateOrderRequest) (order.Order, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *MockOrderBackend) List(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderBackend) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderBackend) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
	failures []string
}

func (o *recordingObserver) ObserveCheckout(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) ObservePostActionFailure(action string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, action)
}

func newCollections(t *testing.T) *cache.Collections {
	t.Helper()
	c := cache.NewCollections(time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c
}
