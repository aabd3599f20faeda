package mocks

import (
	context "context"

	domain "delivery-storefront/storefront-svc/internal/domain"
	service "delivery-storefront/storefront-svc/internal/service"
	mock "github.com/stretchr/testify/mock"
)

// OrderServiceInterface is a mock type for the OrderServiceInterface type
type OrderServiceInterface struct {
	mock.Mock
}

func (_m *OrderServiceInterface) order(ret mock.Arguments) (*domain.Order, error) {
	var r0 *domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}
	return r0, ret.Error(1)
}

func (_m *OrderServiceInterface) orders(ret mock.Arguments) ([]domain.Order, error) {
	var r0 []domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Order)
	}
	return r0, ret.Error(1)
}

// Load provides a mock function with given fields: ctx, forceRefresh
func (_m *OrderServiceInterface) Load(ctx context.Context, forceRefresh bool) ([]domain.Order, error) {
	return _m.orders(_m.Called(ctx, forceRefresh))
}

// CreateOrder provides a mock function with given fields: ctx, session, snapshot, restaurantID
func (_m *OrderServiceInterface) CreateOrder(ctx context.Context, session *service.Session, snapshot []domain.CartLineItem, restaurantID int) (*domain.Order, error) {
	return _m.order(_m.Called(ctx, session, snapshot, restaurantID))
}

// UpdateStatus provides a mock function with given fields: ctx, orderID, status
func (_m *OrderServiceInterface) UpdateStatus(ctx context.Context, orderID int, status domain.OrderStatus) (*domain.Order, error) {
	return _m.order(_m.Called(ctx, orderID, status))
}

// ByID provides a mock function with given fields: ctx, orderID
func (_m *OrderServiceInterface) ByID(ctx context.Context, orderID int) (*domain.Order, error) {
	return _m.order(_m.Called(ctx, orderID))
}

// Select provides a mock function with given fields: ctx, orderID
func (_m *OrderServiceInterface) Select(ctx context.Context, orderID int) (*domain.Order, error) {
	return _m.order(_m.Called(ctx, orderID))
}

// ByUser provides a mock function with given fields: ctx, userID
func (_m *OrderServiceInterface) ByUser(ctx context.Context, userID int) ([]domain.Order, error) {
	return _m.orders(_m.Called(ctx, userID))
}

// ByRestaurant provides a mock function with given fields: ctx, restaurantID
func (_m *OrderServiceInterface) ByRestaurant(ctx context.Context, restaurantID int) ([]domain.Order, error) {
	return _m.orders(_m.Called(ctx, restaurantID))
}

// Filter provides a mock function with given fields: ctx, filter
func (_m *OrderServiceInterface) Filter(ctx context.Context, filter service.OrderFilter) ([]domain.Order, error) {
	return _m.orders(_m.Called(ctx, filter))
}

// Stats provides a mock function with given fields: ctx
func (_m *OrderServiceInterface) Stats(ctx context.Context) (service.OrderStats, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(service.OrderStats), ret.Error(1)
}

// QRCode provides a mock function with given fields: orderID
func (_m *OrderServiceInterface) QRCode(orderID int) ([]byte, error) {
	ret := _m.Called(orderID)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Error(1)
}

// NewOrderServiceInterface creates a new instance of OrderServiceInterface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewOrderServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderServiceInterface {
	mock := &OrderServiceInterface{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
