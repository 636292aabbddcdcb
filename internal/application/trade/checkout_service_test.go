package trade

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/retail/storefront/internal/domain/cart"
	"github.com/retail/storefront/internal/domain/order"
	"github.com/retail/storefront/internal/infrastructure/backend"
	"github.com/retail/storefront/internal/infrastructure/cache"
	"github.com/retail/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	svc      *CheckoutService
	carts    *MockCartBackend
	payments *MockPaymentProcessor
	orders   *MockOrderBackend
	guard    *cache.InMemoryInFlightGuard
	cache    *cache.Collections
	observer *recordingObserver
}

func setupCheckout(t *testing.T) checkoutFixture {
	f := checkoutFixture{
		carts:    new(MockCartBackend),
		payments: new(MockPaymentProcessor),
		orders:   new(MockOrderBackend),
		guard:    cache.NewInMemoryInFlightGuard(),
		cache:    newCollections(t),
		observer: &recordingObserver{},
	}
	f.svc = NewCheckoutService(NewCartService(f.carts, f.cache), f.payments, f.orders, f.cache, f.guard, f.observer)
	return f
}

func shipping() order.ShippingDetails {
	return order.ShippingDetails{Address: "123 Main St", Method: order.PaymentUPI}
}

func TestCheckoutService_PlacesOrder(t *testing.T) {
	f := setupCheckout(t)
	items := []cart.Item{cartItem(1, 500, 2)}
	f.carts.On("Get", mock.Anything, testUserID).Return(items, nil).Once()
	f.payments.On("Process", mock.Anything, mock.MatchedBy(func(req backend.PaymentRequest) bool {
		return req.UserID == testUserID &&
			req.Amount.Equal(decimal.NewFromInt(1000)) &&
			req.PaymentMethod == order.PaymentUPI &&
			req.Status == "SUCCESS"
	})).Return(backend.PaymentResponse{ID: 55, TransactionID: "TXN-1", Status: "SUCCESS"}, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(req backend.CreateOrderRequest) bool {
		return req.UserID == testUserID &&
			req.TotalAmount.Equal(decimal.NewFromInt(1000)) &&
			req.ShippingAddress == "123 Main St" &&
			req.PaymentID == 55 &&
			req.TransactionID == "TXN-1" &&
			len(req.Items) == 1 && req.Items[0].ProductID == 1 && req.Items[0].Quantity == 2
	})).Return(order.Order{ID: 101}, nil)
	f.carts.On("Clear", mock.Anything, testUserID).Return(nil)

	result := f.svc.Checkout(context.Background(), testUserID, shipping())

	require.True(t, result.Succeeded())
	assert.Equal(t, int64(101), result.OrderID)
	assert.Equal(t, "Order placed successfully! Order ID: 101", result.Message)
	assert.Equal(t, []string{telemetry.CheckoutOutcomeSuccess}, f.observer.outcomes)
	f.payments.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.carts.AssertExpectations(t)

	f.carts.On("Get", mock.Anything, testUserID).Return([]cart.Item{}, nil).Once()
	after, err := f.svc.carts.Get(context.Background(), testUserID)
	require.NoError(t, err)
	assert.True(t, after.IsEmpty())
}

func TestCheckoutService_AppendsPincode(t *testing.T) {
	f := setupCheckout(t)
	f.carts.On("Get", mock.Anything, testUserID).Return([]cart.Item{cartItem(1, 500, 1)}, nil)
	f.payments.On("Process", mock.Anything, mock.Anything).Return(backend.PaymentResponse{ID: 1}, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(req backend.CreateOrderRequest) bool {
		return req.ShippingAddress == "123 Main St, PIN 560001"
	})).Return(order.Order{ID: 2}, nil)
	f.carts.On("Clear", mock.Anything, testUserID).Return(nil)

	details := shipping()
	details.Pincode = "560001"
	result := f.svc.Checkout(context.Background(), testUserID, details)

	assert.True(t, result.Succeeded())
}

func TestCheckoutService_Rejections(t *testing.T) {
	t.Run("blank address", func(t *testing.T) {
		f := setupCheckout(t)

		result := f.svc.Checkout(context.Background(), testUserID, order.ShippingDetails{Address: "   "})

		assert.False(t, result.Succeeded())
		assert.Equal(t, order.CheckoutIdle, result.State)
		assert.Equal(t, "Please enter a shipping address", result.Message)
		f.carts.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		f.payments.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := setupCheckout(t)
		f.carts.On("Get", mock.Anything, testUserID).Return([]cart.Item{}, nil)

		result := f.svc.Checkout(context.Background(), testUserID, shipping())

		assert.Equal(t, "Your cart is empty", result.Message)
		f.payments.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
		assert.Equal(t, []string{telemetry.CheckoutOutcomeRejected}, f.observer.outcomes)
	})

	t.Run("checkout already in progress", func(t *testing.T) {
		f := setupCheckout(t)
		_, ok, err := f.guard.Acquire(context.Background(), cache.CheckoutGuardKey(testUserID), time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		result := f.svc.Checkout(context.Background(), testUserID, shipping())

		assert.Equal(t, "Checkout already in progress", result.Message)
		f.carts.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestCheckoutService_PaymentFailure(t *testing.T) {
	f := setupCheckout(t)
	f.carts.On("Get", mock.Anything, testUserID).Return([]cart.Item{cartItem(1, 500, 2)}, nil)
	f.payments.On("Process", mock.Anything, mock.Anything).
		Return(backend.PaymentResponse{}, &backend.APIError{StatusCode: 502, Message: "Payment gateway unavailable"})

	result := f.svc.Checkout(context.Background(), testUserID, shipping())

	assert.Equal(t, order.CheckoutFailed, result.State)
	assert.Equal(t, "Checkout failed: Payment gateway unavailable", result.Message)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	assert.Equal(t, []string{telemetry.CheckoutOutcomeFailed}, f.observer.outcomes)

	// the guard is released, so a retry may proceed
	_, ok, err := f.guard.Acquire(context.Background(), cache.CheckoutGuardKey(testUserID), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckoutService_OrderFailureLeavesCart(t *testing.T) {
	f := setupCheckout(t)
	f.carts.On("Get", mock.Anything, testUserID).Return([]cart.Item{cartItem(1, 500, 2)}, nil)
	f.payments.On("Process", mock.Anything, mock.Anything).Return(backend.PaymentResponse{ID: 9, TransactionID: "T"}, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(order.Order{}, errors.New("dial tcp: refused"))

	result := f.svc.Checkout(context.Background(), testUserID, shipping())

	assert.Equal(t, order.CheckoutFailed, result.State)
	assert.Equal(t, "Checkout failed: "+backend.ErrUnexpected, result.Message)
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestCheckoutService_ClearFailureStillSucceeds(t *testing.T) {
	f := setupCheckout(t)
	f.carts.On("Get", mock.Anything, testUserID).Return([]cart.Item{cartItem(1, 500, 2)}, nil)
	f.payments.On("Process", mock.Anything, mock.Anything).Return(backend.PaymentResponse{ID: 9}, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(order.Order{ID: 3}, nil)
	f.carts.On("Clear", mock.Anything, testUserID).Return(errors.New("down"))

	result := f.svc.Checkout(context.Background(), testUserID, shipping())

	assert.True(t, result.Succeeded())
	assert.Equal(t, []string{ActionClearCart}, f.observer.failures)
}

func TestCheckoutService_ConcurrentCheckoutsPlaceOneOrder(t *testing.T) {
	f := setupCheckout(t)
	release := make(chan struct{})
	f.carts.On("Get", mock.Anything, testUserID).Return([]cart.Item{cartItem(1, 500, 2)}, nil)
	f.payments.On("Process", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(backend.PaymentResponse{ID: 9}, nil).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(order.Order{ID: 3}, nil).Once()
	f.carts.On("Clear", mock.Anything, testUserID).Return(nil)

	var wg sync.WaitGroup
	results := make([]CheckoutResult, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = f.svc.Checkout(context.Background(), testUserID, shipping())
	}()

	require.Eventually(t, func() bool {
		_, ok, _ := f.guard.Acquire(context.Background(), cache.CheckoutGuardKey(testUserID), time.Nanosecond)
		return !ok
	}, time.Second, 5*time.Millisecond)

	results[1] = f.svc.Checkout(context.Background(), testUserID, shipping())
	close(release)
	wg.Wait()

	assert.True(t, results[0].Succeeded())
	assert.Equal(t, "Checkout already in progress", results[1].Message)
	f.payments.AssertNumberOfCalls(t, "Process", 1)
}
