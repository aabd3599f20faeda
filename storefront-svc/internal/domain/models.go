package domain

import "time"

type Restaurant struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Phone         string  `json:"phone"`
	CuisineType   string  `json:"cuisineType"`
	AverageRating float64 `json:"averageRating"`
	Image         string  `json:"image"`
	Dishes        []Dish  `json:"dishes"`
}

type Dish struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Category     string   `json:"category"`
	Image        string   `json:"image"`
	Allergens    []string `json:"allergens"`
	RestaurantID *int     `json:"restaurantId,omitempty"`
}

// OwnerID returns the owning restaurant id, zero when the dish carries none.
func (d Dish) OwnerID() int {
	if d.RestaurantID == nil {
		return 0
	}
	return *d.RestaurantID
}

type CartLineItem struct {
	Dish
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"totalPrice"`
}

type Order struct {
	ID           int         `json:"id"`
	UserID       int         `json:"userId"`
	RestaurantID int         `json:"restaurantId"`
	Status       OrderStatus `json:"status"`
	OrderDate    time.Time   `json:"orderDate"`
	DeliveryDate *time.Time  `json:"deliveryDate"`
	TotalPrice   float64     `json:"totalPrice"`
	Items        []OrderItem `json:"items"`
}

type OrderItem struct {
	ProductID int     `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type User struct {
	ID           int       `json:"id"`
	LastName     string    `json:"lastName"`
	FirstName    string    `json:"firstName"`
	Email        string    `json:"email"`
	Password     string    `json:"password"`
	Role         Role      `json:"role"`
	RestaurantID *int      `json:"restaurantId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is a User without its password.
type PublicUser struct {
	ID           int       `json:"id"`
	LastName     string    `json:"lastName"`
	FirstName    string    `json:"firstName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	RestaurantID *int      `json:"restaurantId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		LastName:     u.LastName,
		FirstName:    u.FirstName,
		Email:        u.Email,
		Role:         u.Role,
		RestaurantID: u.RestaurantID,
		CreatedAt:    u.CreatedAt,
	}
}

// Dataset is the whole static document.
type Dataset struct {
	Restaurants []Restaurant `json:"restaurants"`
	Users       []User       `json:"users"`
	Commands    []Order      `json:"commands"`
}

type OrderEvent struct {
	Type         string      `json:"type"`
	OrderID      int         `json:"order_id"`
	UserID       int         `json:"user_id"`
	RestaurantID int         `json:"restaurant_id"`
	Status       OrderStatus `json:"status"`
	TotalPrice   float64     `json:"total_price"`
	Timestamp    time.Time   `json:"timestamp"`
}

const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
)

// IntPtr is a helper for optional id fields.
func IntPtr(v int) *int {
	return &v
}
