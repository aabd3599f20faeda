package mocks

import (
	context "context"

	domain "delivery-storefront/storefront-svc/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// AuthServiceInterface is a mock type for the AuthServiceInterface type
type AuthServiceInterface struct {
	mock.Mock
}

// Login provides a mock function with given fields: ctx, email, password
func (_m *AuthServiceInterface) Login(ctx context.Context, email string, password string) (*domain.PublicUser, error) {
	ret := _m.Called(ctx, email, password)

	var r0 *domain.PublicUser
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.PublicUser)
	}

	return r0, ret.Error(1)
}

// NewAuthServiceInterface creates a new instance of AuthServiceInterface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewAuthServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *AuthServiceInterface {
	mock := &AuthServiceInterface{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
