package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"delivery-storefront/storefront-svc/internal/domain"
)

type RestaurantOrderStats struct {
	RestaurantID int     `json:"restaurantId"`
	OrderCount   int     `json:"orderCount"`
	Revenue      float64 `json:"revenue"`
}

type OrderStats struct {
	Total             int                        `json:"total"`
	ByStatus          map[domain.OrderStatus]int `json:"byStatus"`
	TotalRevenue      float64                    `json:"totalRevenue"`
	AverageOrderValue float64                    `json:"averageOrderValue"`
	TopRestaurants    []RestaurantOrderStats     `json:"topRestaurants"`
	RecentOrders      []domain.Order             `json:"recentOrders"`
}

const (
	topRestaurantsLimit = 10
	recentOrdersLimit   = 20
	recentOrdersWindow  = 7 * 24 * time.Hour
)

// OrderService keeps the order list of the document plus the orders created
// through this process.
type OrderService struct {
	source    DatasetSource
	publisher OrderPublisher
	qr        QRGenerator
	clock     Clock
	ttl       time.Duration
	strict    bool

	mu        sync.RWMutex
	orders    []domain.Order
	local     map[int]domain.Order
	current   *domain.Order
	lastFetch time.Time
	lastErr   string
}

type OrderOption func(*OrderService)

func WithOrderClock(clock Clock) OrderOption {
	return func(s *OrderService) { s.clock = clock }
}

// WithStrictTransitions toggles enforcement of the status lifecycle. When
// off, any known status can replace any other.
func WithStrictTransitions(strict bool) OrderOption {
	return func(s *OrderService) { s.strict = strict }
}

func WithPublisher(publisher OrderPublisher) OrderOption {
	return func(s *OrderService) { s.publisher = publisher }
}

func NewOrderService(source DatasetSource, qr QRGenerator, opts ...OrderOption) *OrderService {
	s := &OrderService{
		source: source,
		qr:     qr,
		ttl:    OrdersTTL,
		strict: true,
		local:  make(map[int]domain.Order),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns all known orders, refetching the document when the cache is
// stale or forceRefresh is set. Orders created or changed through this
// service replace the fetched copy with the same id and are never dropped.
func (s *OrderService) Load(ctx context.Context, forceRefresh bool) ([]domain.Order, error) {
	s.mu.RLock()
	if !forceRefresh && fresh(s.lastFetch, s.clock.now(), s.ttl) {
		orders := cloneOrders(s.orders)
		s.mu.RUnlock()
		return orders, nil
	}
	s.mu.RUnlock()

	ds, err := s.source.Fetch(ctx)
	if err == nil && ds == nil {
		err = fmt.Errorf("empty document")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
		s.lastErr = err.Error()
		log.Error().Err(err).Msg("orders fetch failed")
		return nil, err
	}

	fetched := make(map[int]struct{}, len(ds.Commands))
	merged := make([]domain.Order, 0, len(ds.Commands)+len(s.local))
	for _, o := range ds.Commands {
		fetched[o.ID] = struct{}{}
		if local, ok := s.local[o.ID]; ok {
			o = local
		}
		merged = append(merged, o)
	}
	for id, o := range s.local {
		if _, ok := fetched[id]; !ok {
			merged = append(merged, o)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })

	s.orders = merged
	s.lastFetch = s.clock.now()
	s.lastErr = ""
	return cloneOrders(s.orders), nil
}

// ensureLoaded fills the cache once so ids and lookups see the document.
// It fails while the document has never been loaded.
func (s *OrderService) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := !s.lastFetch.IsZero()
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	_, err := s.Load(ctx, false)
	return err
}

// CreateOrder turns a cart snapshot into a pending order for the session's
// user.
func (s *OrderService) CreateOrder(ctx context.Context, session *Session, snapshot []domain.CartLineItem, restaurantID int) (*domain.Order, error) {
	if !session.IsAuthenticated() {
		return nil, fmt.Errorf("%w: login required to place an order", domain.ErrNotAuthenticated)
	}
	if len(snapshot) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}
	if restaurantID == 0 {
		restaurantID = snapshot[0].OwnerID()
	}

	items := make([]domain.OrderItem, 0, len(snapshot))
	totals := make([]float64, 0, len(snapshot))
	for _, line := range snapshot {
		if line.OwnerID() != restaurantID {
			return nil, fmt.Errorf("%w: all dishes must come from restaurant %d", domain.ErrValidation, restaurantID)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: dish %d has no quantity", domain.ErrValidation, line.ID)
		}
		items = append(items, domain.OrderItem{
			ProductID: line.ID,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
		})
		totals = append(totals, domain.LineTotal(line.Price, line.Quantity))
	}

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	order := domain.Order{
		ID:           s.nextID(),
		UserID:       session.User.ID,
		RestaurantID: restaurantID,
		Status:       domain.StatusPending,
		OrderDate:    s.clock.now().UTC(),
		TotalPrice:   domain.SumRounded(totals...),
		Items:        items,
	}
	s.orders = append(s.orders, order)
	s.local[order.ID] = cloneOrder(order)
	s.mu.Unlock()

	log.Info().
		Int("order_id", order.ID).
		Int("user_id", order.UserID).
		Int("restaurant_id", order.RestaurantID).
		Float64("total_price", order.TotalPrice).
		Msg("order created")
	s.publish(ctx, domain.EventOrderCreated, order)

	created := cloneOrder(order)
	return &created, nil
}

func (s *OrderService) nextID() int {
	maxID := 0
	for _, o := range s.orders {
		if o.ID > maxID {
			maxID = o.ID
		}
	}
	return maxID + 1
}

// UpdateStatus moves an order to status. Entering delivered stamps the
// delivery date.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int, status domain.OrderStatus) (*domain.Order, error) {
	if _, err := domain.ParseOrderStatus(string(status)); err != nil {
		return nil, err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	i := s.indexOf(orderID)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: order %d", domain.ErrEntityNotFound, orderID)
	}

	order := &s.orders[i]
	if s.strict && !order.Status.CanTransitionTo(status) {
		from := order.Status
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, status)
	}

	order.Status = status
	if status == domain.StatusDelivered {
		delivered := s.clock.now().UTC()
		order.DeliveryDate = &delivered
	}
	updated := cloneOrder(*order)
	s.local[orderID] = cloneOrder(updated)
	if s.current != nil && s.current.ID == orderID {
		mirrored := cloneOrder(updated)
		s.current = &mirrored
	}
	s.mu.Unlock()

	log.Info().Int("order_id", orderID).Str("status", string(status)).Msg("order status updated")
	s.publish(ctx, domain.EventOrderStatusChanged, updated)
	return &updated, nil
}

func (s *OrderService) indexOf(orderID int) int {
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			return i
		}
	}
	return -1
}

func (s *OrderService) publish(ctx context.Context, eventType string, order domain.Order) {
	if s.publisher == nil {
		return
	}
	event := domain.OrderEvent{
		Type:         eventType,
		OrderID:      order.ID,
		UserID:       order.UserID,
		RestaurantID: order.RestaurantID,
		Status:       order.Status,
		TotalPrice:   order.TotalPrice,
		Timestamp:    s.clock.now().UTC(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		log.Warn().Err(err).Str("type", eventType).Int("order_id", order.ID).Msg("order event not published")
	}
}

func (s *OrderService) ByID(ctx context.Context, orderID int) (*domain.Order, error) {
	if _, err := s.Load(ctx, false); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(orderID)
	if i < 0 {
		return nil, fmt.Errorf("%w: order %d", domain.ErrEntityNotFound, orderID)
	}
	order := cloneOrder(s.orders[i])
	return &order, nil
}

// Select makes the order the current one.
func (s *OrderService) Select(ctx context.Context, orderID int) (*domain.Order, error) {
	order, err := s.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	current := cloneOrder(*order)
	s.current = &current
	s.mu.Unlock()
	return order, nil
}

func (s *OrderService) Current() (*domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	order := cloneOrder(*s.current)
	return &order, true
}

func (s *OrderService) ByUser(ctx context.Context, userID int) ([]domain.Order, error) {
	return s.Filter(ctx, OrderFilter{}.Scoped(userID, 0))
}

func (s *OrderService) ByRestaurant(ctx context.Context, restaurantID int) ([]domain.Order, error) {
	return s.Filter(ctx, OrderFilter{}.Scoped(0, restaurantID))
}

func (s *OrderService) Filter(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	orders, err := s.Load(ctx, false)
	if err != nil {
		return nil, err
	}
	return filter.Apply(orders), nil
}

func (s *OrderService) Stats(ctx context.Context) (OrderStats, error) {
	orders, err := s.Load(ctx, false)
	if err != nil {
		return OrderStats{}, err
	}

	stats := OrderStats{
		Total:          len(orders),
		ByStatus:       make(map[domain.OrderStatus]int, len(domain.OrderStatuses)),
		TopRestaurants: []RestaurantOrderStats{},
		RecentOrders:   []domain.Order{},
	}
	for _, status := range domain.OrderStatuses {
		stats.ByStatus[status] = 0
	}

	totals := make([]float64, 0, len(orders))
	perRestaurant := make(map[int]*RestaurantOrderStats)
	var restaurantOrder []int
	cutoff := s.clock.now().Add(-recentOrdersWindow)

	for _, o := range orders {
		if _, known := stats.ByStatus[o.Status]; known {
			stats.ByStatus[o.Status]++
		}
		totals = append(totals, o.TotalPrice)

		rs, ok := perRestaurant[o.RestaurantID]
		if !ok {
			rs = &RestaurantOrderStats{RestaurantID: o.RestaurantID}
			perRestaurant[o.RestaurantID] = rs
			restaurantOrder = append(restaurantOrder, o.RestaurantID)
		}
		rs.OrderCount++
		rs.Revenue = domain.SumRounded(rs.Revenue, o.TotalPrice)

		if !o.OrderDate.Before(cutoff) {
			stats.RecentOrders = append(stats.RecentOrders, o)
		}
	}

	stats.TotalRevenue = domain.SumRounded(totals...)
	if len(orders) > 0 {
		stats.AverageOrderValue = domain.Round2(stats.TotalRevenue / float64(len(orders)))
	}

	for _, id := range restaurantOrder {
		stats.TopRestaurants = append(stats.TopRestaurants, *perRestaurant[id])
	}
	sort.SliceStable(stats.TopRestaurants, func(i, j int) bool {
		return stats.TopRestaurants[i].OrderCount > stats.TopRestaurants[j].OrderCount
	})
	if len(stats.TopRestaurants) > topRestaurantsLimit {
		stats.TopRestaurants = stats.TopRestaurants[:topRestaurantsLimit]
	}

	sort.SliceStable(stats.RecentOrders, func(i, j int) bool {
		return stats.RecentOrders[i].OrderDate.After(stats.RecentOrders[j].OrderDate)
	})
	if len(stats.RecentOrders) > recentOrdersLimit {
		stats.RecentOrders = stats.RecentOrders[:recentOrdersLimit]
	}
	return stats, nil
}

func (s *OrderService) QRCode(orderID int) ([]byte, error) {
	s.mu.RLock()
	found := s.indexOf(orderID) >= 0
	s.mu.RUnlock()
	if !found {
		return nil, fmt.Errorf("%w: order %d", domain.ErrEntityNotFound, orderID)
	}
	return s.qr.Generate(orderID)
}

// LastError is the message of the last failed load, empty after a success.
func (s *OrderService) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

var _ OrderServiceInterface = (*OrderService)(nil)

// VisibleTo reports whether user may see order: admins see everything,
// restaurateurs their restaurant's orders, users their own.
func VisibleTo(user domain.PublicUser, order domain.Order) bool {
	switch user.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleRestaurateur:
		return user.RestaurantID != nil && *user.RestaurantID == order.RestaurantID
	default:
		return order.UserID == user.ID
	}
}

// ScopeFor narrows filter to what user may see.
func ScopeFor(user domain.PublicUser, filter OrderFilter) OrderFilter {
	switch user.Role {
	case domain.RoleAdmin:
		return filter
	case domain.RoleRestaurateur:
		rid := -1
		if user.RestaurantID != nil {
			rid = *user.RestaurantID
		}
		return filter.Scoped(0, rid)
	default:
		return filter.Scoped(user.ID, 0)
	}
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	if o.DeliveryDate != nil {
		d := *o.DeliveryDate
		o.DeliveryDate = &d
	}
	return o
}

func cloneOrders(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, cloneOrder(o))
	}
	return out
}
