package service

import (
	"context"

	"delivery-storefront/storefront-svc/internal/domain"
)

// DatasetSource fetches the whole static document.
type DatasetSource interface {
	Fetch(ctx context.Context) (*domain.Dataset, error)
}

// Storage is durable key-value storage for session state. A missing key
// reads as ("", false, nil).
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

type OrderPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

type QRGenerator interface {
	Generate(orderID int) ([]byte, error)
}

type CatalogServiceInterface interface {
	FetchAll(ctx context.Context, forceRefresh bool) (*domain.Dataset, error)
	FindRestaurant(id int) (domain.Restaurant, bool)
	FindDish(restaurantID, dishID int) (domain.Dish, bool)
	FetchRestaurant(ctx context.Context, id int) (*domain.Restaurant, error)
	FetchDish(ctx context.Context, restaurantID, dishID int) (*domain.Dish, error)
	Restaurants(ctx context.Context, filter RestaurantFilter, forceRefresh bool) ([]domain.Restaurant, error)
	CuisineTypes(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (RestaurantStats, error)
	Status() CatalogStatus
}

type OrderServiceInterface interface {
	Load(ctx context.Context, forceRefresh bool) ([]domain.Order, error)
	CreateOrder(ctx context.Context, session *Session, snapshot []domain.CartLineItem, restaurantID int) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int, status domain.OrderStatus) (*domain.Order, error)
	ByID(ctx context.Context, orderID int) (*domain.Order, error)
	Select(ctx context.Context, orderID int) (*domain.Order, error)
	ByUser(ctx context.Context, userID int) ([]domain.Order, error)
	ByRestaurant(ctx context.Context, restaurantID int) ([]domain.Order, error)
	Filter(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	Stats(ctx context.Context) (OrderStats, error)
	QRCode(orderID int) ([]byte, error)
}

type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*domain.PublicUser, error)
}

type SessionManagerInterface interface {
	Start(ctx context.Context, user domain.PublicUser) (*Session, string, error)
	Restore(ctx context.Context, token string) (*Session, error)
	Logout(ctx context.Context, sessionID string) error
	End(ctx context.Context, session *Session) error
	SaveCart(ctx context.Context, session *Session) error
}
