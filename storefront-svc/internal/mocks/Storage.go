package mocks

import (
	context "context"

	mock "github.com/stretchr/testify/mock"
)

// Storage is a mock type for the Storage type
type Storage struct {
	mock.Mock
}

// Get provides a mock function with given fields: ctx, key
func (_m *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	ret := _m.Called(ctx, key)
	return ret.String(0), ret.Bool(1), ret.Error(2)
}

// Set provides a mock function with given fields: ctx, key, value
func (_m *Storage) Set(ctx context.Context, key string, value string) error {
	ret := _m.Called(ctx, key, value)
	return ret.Error(0)
}

// Remove provides a mock function with given fields: ctx, keys
func (_m *Storage) Remove(ctx context.Context, keys ...string) error {
	_va := make([]interface{}, len(keys))
	for _i := range keys {
		_va[_i] = keys[_i]
	}
	var _ca []interface{}
	_ca = append(_ca, ctx)
	_ca = append(_ca, _va...)
	ret := _m.Called(_ca...)
	return ret.Error(0)
}

// NewStorage creates a new instance of Storage. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewStorage(t interface {
	mock.TestingT
	Cleanup(func())
}) *Storage {
	mock := &Storage{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
