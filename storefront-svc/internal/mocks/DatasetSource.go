package mocks

import (
	context "context"

	domain "delivery-storefront/storefront-svc/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// DatasetSource is a mock type for the DatasetSource type
type DatasetSource struct {
	mock.Mock
}

// Fetch provides a mock function with given fields: ctx
func (_m *DatasetSource) Fetch(ctx context.Context) (*domain.Dataset, error) {
	ret := _m.Called(ctx)

	var r0 *domain.Dataset
	if rf, ok := ret.Get(0).(func(context.Context) *domain.Dataset); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Dataset)
	}

	return r0, ret.Error(1)
}

// NewDatasetSource creates a new instance of DatasetSource. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewDatasetSource(t interface {
	mock.TestingT
	Cleanup(func())
}) *DatasetSource {
	mock := &DatasetSource{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
