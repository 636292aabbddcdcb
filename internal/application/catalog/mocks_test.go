package catalog

import (
	"context"
	"sync"

	"github.com/retail/storefront/internal/domain/catalog"
	"github.com/retail/storefront/internal/domain/notification"
	"github.com/retail/storefront/internal/infrastructure/backend"
	"github.com/stretchr/testify/mock"
)

type MockProductBackend struct {
	mock.Mock
}

func (m *MockProductBackend) List(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductBackend) Get(ctx context.Context, id int64) (catalog.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Product), args.Error(1)
}

func (m *MockProductBackend) Create(ctx context.Context, req backend.ProductRequest) (catalog.Product, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(catalog.Product), args.Error(1)
}

func (m *MockProductBackend) Update(ctx context.Context, id int64, req backend.ProductRequest) (catalog.Product, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(catalog.Product), args.Error(1)
}

func (m *MockProductBackend) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCategoryReader struct {
	mock.Mock
}

func (m *MockCategoryReader) List(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

type MockStockUpdater struct {
	mock.Mock
}

func (m *MockStockUpdater) UpdateStock(ctx context.Context, productID int64, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) Send(ctx context.Context, note notification.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

type recordingObserver struct {
	mu      sync.Mutex
	actions []string
}

func (o *recordingObserver) ObservePostActionFailure(action string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.actions = append(o.actions, action)
}
