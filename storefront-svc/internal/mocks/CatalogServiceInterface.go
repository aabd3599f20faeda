package mocks

import (
	context "context"

	domain "delivery-storefront/storefront-svc/internal/domain"
	service "delivery-storefront/storefront-svc/internal/service"
	mock "github.com/stretchr/testify/mock"
)

// CatalogServiceInterface is a mock type for the CatalogServiceInterface type
type CatalogServiceInterface struct {
	mock.Mock
}

// FetchAll provides a mock function with given fields: ctx, forceRefresh
func (_m *CatalogServiceInterface) FetchAll(ctx context.Context, forceRefresh bool) (*domain.Dataset, error) {
	ret := _m.Called(ctx, forceRefresh)

	var r0 *domain.Dataset
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Dataset)
	}

	return r0, ret.Error(1)
}

// FindRestaurant provides a mock function with given fields: id
func (_m *CatalogServiceInterface) FindRestaurant(id int) (domain.Restaurant, bool) {
	ret := _m.Called(id)
	return ret.Get(0).(domain.Restaurant), ret.Bool(1)
}

// FindDish provides a mock function with given fields: restaurantID, dishID
func (_m *CatalogServiceInterface) FindDish(restaurantID int, dishID int) (domain.Dish, bool) {
	ret := _m.Called(restaurantID, dishID)
	return ret.Get(0).(domain.Dish), ret.Bool(1)
}

// FetchRestaurant provides a mock function with given fields: ctx, id
func (_m *CatalogServiceInterface) FetchRestaurant(ctx context.Context, id int) (*domain.Restaurant, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.Restaurant
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Restaurant)
	}

	return r0, ret.Error(1)
}

// FetchDish provides a mock function with given fields: ctx, restaurantID, dishID
func (_m *CatalogServiceInterface) FetchDish(ctx context.Context, restaurantID int, dishID int) (*domain.Dish, error) {
	ret := _m.Called(ctx, restaurantID, dishID)

	var r0 *domain.Dish
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Dish)
	}

	return r0, ret.Error(1)
}

// Restaurants provides a mock function with given fields: ctx, filter, forceRefresh
func (_m *CatalogServiceInterface) Restaurants(ctx context.Context, filter service.RestaurantFilter, forceRefresh bool) ([]domain.Restaurant, error) {
	ret := _m.Called(ctx, filter, forceRefresh)

	var r0 []domain.Restaurant
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Restaurant)
	}

	return r0, ret.Error(1)
}

// CuisineTypes provides a mock function with given fields: ctx
func (_m *CatalogServiceInterface) CuisineTypes(ctx context.Context) ([]string, error) {
	ret := _m.Called(ctx)

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}

	return r0, ret.Error(1)
}

// Stats provides a mock function with given fields: ctx
func (_m *CatalogServiceInterface) Stats(ctx context.Context) (service.RestaurantStats, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(service.RestaurantStats), ret.Error(1)
}

// Status provides a mock function with given fields:
func (_m *CatalogServiceInterface) Status() service.CatalogStatus {
	ret := _m.Called()
	return ret.Get(0).(service.CatalogStatus)
}

// NewCatalogServiceInterface creates a new instance of CatalogServiceInterface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCatalogServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *CatalogServiceInterface {
	mock := &CatalogServiceInterface{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
