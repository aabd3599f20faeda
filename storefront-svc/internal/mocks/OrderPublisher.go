package mocks

import (
	context "context"

	domain "delivery-storefront/storefront-svc/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// OrderPublisher is a mock type for the OrderPublisher type
type OrderPublisher struct {
	mock.Mock
}

// PublishOrderEvent provides a mock function with given fields: ctx, event
func (_m *OrderPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}

// NewOrderPublisher creates a new instance of OrderPublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewOrderPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderPublisher {
	mock := &OrderPublisher{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
