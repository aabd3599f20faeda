package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"delivery-storefront/storefront-svc/internal/domain"
)

type SortKey string

const (
	SortByName    SortKey = "name"
	SortByRating  SortKey = "rating"
	SortByCuisine SortKey = "cuisine"

	SortByOrderDate  SortKey = "orderDate"
	SortByTotalPrice SortKey = "totalPrice"
	SortByStatus     SortKey = "status"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

func parseSortOrder(s string, fallback SortOrder) (SortOrder, error) {
	switch SortOrder(strings.ToLower(s)) {
	case "":
		return fallback, nil
	case Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	}
	return "", fmt.Errorf("%w: unknown sort order %q", domain.ErrValidation, s)
}

type RestaurantFilterParams struct {
	Query       string
	CuisineType string
	MinRating   float64
	SortBy      string
	SortOrder   string
}

// RestaurantFilter is an immutable, validated restaurant query. The zero
// value matches everything, sorted by name ascending.
type RestaurantFilter struct {
	query       string
	cuisineType string
	minRating   float64
	sortBy      SortKey
	order       SortOrder
}

func NewRestaurantFilter(p RestaurantFilterParams) (RestaurantFilter, error) {
	f := RestaurantFilter{
		query:       strings.ToLower(strings.TrimSpace(p.Query)),
		cuisineType: strings.ToLower(strings.TrimSpace(p.CuisineType)),
		minRating:   p.MinRating,
	}

	if p.MinRating < 0 || p.MinRating > 5 {
		return RestaurantFilter{}, fmt.Errorf("%w: minimum rating must be between 0 and 5", domain.ErrValidation)
	}

	switch SortKey(p.SortBy) {
	case "", SortByName:
		f.sortBy = SortByName
	case SortByRating, SortByCuisine:
		f.sortBy = SortKey(p.SortBy)
	default:
		return RestaurantFilter{}, fmt.Errorf("%w: unknown restaurant sort key %q", domain.ErrValidation, p.SortBy)
	}

	order, err := parseSortOrder(p.SortOrder, Ascending)
	if err != nil {
		return RestaurantFilter{}, err
	}
	f.order = order
	return f, nil
}

func (f RestaurantFilter) matches(r domain.Restaurant) bool {
	if f.query != "" &&
		!strings.Contains(strings.ToLower(r.Name), f.query) &&
		!strings.Contains(strings.ToLower(r.CuisineType), f.query) &&
		!strings.Contains(strings.ToLower(r.Address), f.query) {
		return false
	}
	if f.cuisineType != "" && strings.ToLower(r.CuisineType) != f.cuisineType {
		return false
	}
	if f.minRating > 0 && r.AverageRating < f.minRating {
		return false
	}
	return true
}

func (f RestaurantFilter) compare(a, b domain.Restaurant) int {
	switch f.sortBy {
	case SortByRating:
		return compareFloat(a.AverageRating, b.AverageRating)
	case SortByCuisine:
		return strings.Compare(strings.ToLower(a.CuisineType), strings.ToLower(b.CuisineType))
	default:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
}

// Apply returns the matching restaurants in a new slice.
func (f RestaurantFilter) Apply(restaurants []domain.Restaurant) []domain.Restaurant {
	filtered := make([]domain.Restaurant, 0, len(restaurants))
	for _, r := range restaurants {
		if f.matches(r) {
			filtered = append(filtered, r)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		c := f.compare(filtered[i], filtered[j])
		if f.order == Descending {
			return c > 0
		}
		return c < 0
	})
	return filtered
}

type OrderFilterParams struct {
	Query        string
	Status       string
	RestaurantID int
	UserID       int
	MinAmount    float64
	MaxAmount    float64
	DateFrom     time.Time
	DateTo       time.Time
	SortBy       string
	SortOrder    string
}

// OrderFilter is an immutable, validated order query. Zero ids and amounts
// mean "any"; the zero value sorts newest first.
type OrderFilter struct {
	query        string
	status       domain.OrderStatus
	restaurantID int
	userID       int
	minAmount    float64
	maxAmount    float64
	dateFrom     time.Time
	dateTo       time.Time
	sortBy       SortKey
	order        SortOrder
}

func NewOrderFilter(p OrderFilterParams) (OrderFilter, error) {
	f := OrderFilter{
		query:        strings.ToLower(strings.TrimSpace(p.Query)),
		restaurantID: p.RestaurantID,
		userID:       p.UserID,
		minAmount:    p.MinAmount,
		maxAmount:    p.MaxAmount,
		dateFrom:     p.DateFrom,
	}

	if p.Status != "" {
		status, err := domain.ParseOrderStatus(p.Status)
		if err != nil {
			return OrderFilter{}, err
		}
		f.status = status
	}
	if p.MinAmount < 0 || p.MaxAmount < 0 {
		return OrderFilter{}, fmt.Errorf("%w: amounts must not be negative", domain.ErrValidation)
	}
	if p.MaxAmount > 0 && p.MinAmount > p.MaxAmount {
		return OrderFilter{}, fmt.Errorf("%w: minimum amount exceeds maximum amount", domain.ErrValidation)
	}
	if !p.DateTo.IsZero() {
		y, m, d := p.DateTo.Date()
		f.dateTo = time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), p.DateTo.Location())
	}

	switch SortKey(p.SortBy) {
	case "", SortByOrderDate:
		f.sortBy = SortByOrderDate
	case SortByTotalPrice, SortByStatus:
		f.sortBy = SortKey(p.SortBy)
	default:
		return OrderFilter{}, fmt.Errorf("%w: unknown order sort key %q", domain.ErrValidation, p.SortBy)
	}

	order, err := parseSortOrder(p.SortOrder, Descending)
	if err != nil {
		return OrderFilter{}, err
	}
	f.order = order
	return f, nil
}

// Scoped narrows the filter to one user or one restaurant on top of what
// the caller asked for.
func (f OrderFilter) Scoped(userID, restaurantID int) OrderFilter {
	if userID != 0 {
		f.userID = userID
	}
	if restaurantID != 0 {
		f.restaurantID = restaurantID
	}
	return f
}

func (f OrderFilter) matches(o domain.Order) bool {
	if f.query != "" && !strings.Contains(strconv.Itoa(o.ID), f.query) {
		return false
	}
	if f.status != "" && o.Status != f.status {
		return false
	}
	if f.restaurantID != 0 && o.RestaurantID != f.restaurantID {
		return false
	}
	if f.userID != 0 && o.UserID != f.userID {
		return false
	}
	if f.minAmount > 0 && o.TotalPrice < f.minAmount {
		return false
	}
	if f.maxAmount > 0 && o.TotalPrice > f.maxAmount {
		return false
	}
	if !f.dateFrom.IsZero() && o.OrderDate.Before(f.dateFrom) {
		return false
	}
	if !f.dateTo.IsZero() && o.OrderDate.After(f.dateTo) {
		return false
	}
	return true
}

func (f OrderFilter) compare(a, b domain.Order) int {
	switch f.sortBy {
	case SortByTotalPrice:
		return compareFloat(a.TotalPrice, b.TotalPrice)
	case SortByStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	default:
		return a.OrderDate.Compare(b.OrderDate)
	}
}

// Apply returns the matching orders in a new slice.
func (f OrderFilter) Apply(orders []domain.Order) []domain.Order {
	if f.sortBy == "" {
		f.sortBy, f.order = SortByOrderDate, Descending
	}

	filtered := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if f.matches(o) {
			filtered = append(filtered, o)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		c := f.compare(filtered[i], filtered[j])
		if f.order == Descending {
			return c > 0
		}
		return c < 0
	})
	return filtered
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
