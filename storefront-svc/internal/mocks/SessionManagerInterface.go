package mocks

import (
	context "context"

	domain "delivery-storefront/storefront-svc/internal/domain"
	service "delivery-storefront/storefront-svc/internal/service"
	mock "github.com/stretchr/testify/mock"
)

// SessionManagerInterface is a mock type for the SessionManagerInterface type
type SessionManagerInterface struct {
	mock.Mock
}

// Start provides a mock function with given fields: ctx, user
func (_m *SessionManagerInterface) Start(ctx context.Context, user domain.PublicUser) (*service.Session, string, error) {
	ret := _m.Called(ctx, user)

	var r0 *service.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*service.Session)
	}

	return r0, ret.String(1), ret.Error(2)
}

// Restore provides a mock function with given fields: ctx, token
func (_m *SessionManagerInterface) Restore(ctx context.Context, token string) (*service.Session, error) {
	ret := _m.Called(ctx, token)

	var r0 *service.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*service.Session)
	}

	return r0, ret.Error(1)
}

// Logout provides a mock function with given fields: ctx, sessionID
func (_m *SessionManagerInterface) Logout(ctx context.Context, sessionID string) error {
	ret := _m.Called(ctx, sessionID)
	return ret.Error(0)
}

// End provides a mock function with given fields: ctx, session
func (_m *SessionManagerInterface) End(ctx context.Context, session *service.Session) error {
	ret := _m.Called(ctx, session)
	return ret.Error(0)
}

// SaveCart provides a mock function with given fields: ctx, session
func (_m *SessionManagerInterface) SaveCart(ctx context.Context, session *service.Session) error {
	ret := _m.Called(ctx, session)
	return ret.Error(0)
}

// NewSessionManagerInterface creates a new instance of SessionManagerInterface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewSessionManagerInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *SessionManagerInterface {
	mock := &SessionManagerInterface{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
