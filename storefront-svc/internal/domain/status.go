package domain

import "fmt"

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusInProgress OrderStatus = "in-progress"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists the canonical statuses in lifecycle order.
var OrderStatuses = []OrderStatus{StatusPending, StatusInProgress, StatusDelivered, StatusCancelled}

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusDelivered, StatusCancelled},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, status := range OrderStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Pending is only ever entered at creation.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleUser         Role = "user"
	RoleRestaurateur Role = "restaurateur"
)

const LoginPage = "/login"

// LandingPage is where an authenticated user of the role is sent when a
// route is not meant for them.
func (r Role) LandingPage() string {
	switch r {
	case RoleAdmin:
		return "/admin/back-office"
	case RoleRestaurateur:
		return "/admin/restaurateur"
	default:
		return "/restaurants"
	}
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser || r == RoleRestaurateur
}
