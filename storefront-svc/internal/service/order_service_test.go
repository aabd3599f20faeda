package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"delivery-storefront/storefront-svc/internal/domain"
	"delivery-storefront/storefront-svc/internal/mocks"
	"delivery-storefront/storefront-svc/internal/service"
)

func authedSession(userID int) *service.Session {
	return &service.Session{ID: "s1", Authenticated: true, User: domain.PublicUser{ID: userID, Role: domain.RoleUser}}
}

func lines(restaurantID int, prices ...float64) []domain.CartLineItem {
	items := make([]domain.CartLineItem, 0, len(prices))
	for i, price := range prices {
		items = append(items, domain.CartLineItem{
			Dish:       dish(100+i, restaurantID, price),
			Quantity:   i + 1,
			TotalPrice: domain.LineTotal(price, i+1),
		})
	}
	return items
}

func ordersDataset(orders ...domain.Order) *domain.Dataset {
	ds := sampleDataset()
	ds.Commands = orders
	return ds
}

func order(id, userID, restaurantID int, status domain.OrderStatus, total float64, at time.Time) domain.Order {
	return domain.Order{
		ID: id, UserID: userID, RestaurantID: restaurantID, Status: status, TotalPrice: total, OrderDate: at,
		Items: []domain.OrderItem{{ProductID: 1, Quantity: 1, UnitPrice: total}},
	}
}

func TestOrderService_CreateOrderIDs(t *testing.T) {
	clock := newFakeClock()
	tests := []struct {
		name     string
		existing []domain.Order
		wantID   int
	}{
		{name: "first order", wantID: 1},
		{
			name: "max plus one",
			existing: []domain.Order{
				order(1, 1, 1, domain.StatusDelivered, 10, clock.now),
				order(3, 1, 1, domain.StatusPending, 10, clock.now),
			},
			wantID: 4,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			source := mocks.NewDatasetSource(t)
			source.On("Fetch", mock.Anything).Return(ordersDataset(testCase.existing...), nil).Once()

			svc := service.NewOrderService(source, mocks.NewQRGenerator(t), service.WithOrderClock(clock.Now))
			created, err := svc.CreateOrder(context.Background(), authedSession(1), lines(1, 12.5), 1)
			require.NoError(t, err)
			assert.Equal(t, testCase.wantID, created.ID)

			next, err := svc.CreateOrder(context.Background(), authedSession(1), lines(1, 12.5), 1)
			require.NoError(t, err)
			assert.Equal(t, testCase.wantID+1, next.ID)
		})
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	clock := newFakeClock()
	source := mocks.NewDatasetSource(t)
	source.On("Fetch", mock.Anything).Return(ordersDataset(), nil).Once()

	publisher := mocks.NewOrderPublisher(t)
	publisher.On("PublishOrderEvent", mock.Anything, mock.MatchedBy(func(e domain.OrderEvent) bool {
		return e.Type == domain.EventOrderCreated && e.OrderID == 1 && e.Status == domain.StatusPending
	})).Return(nil).Once()

	svc := service.NewOrderService(source, mocks.NewQRGenerator(t),
		service.WithOrderClock(clock.Now), service.WithPublisher(publisher))

	snapshot := lines(2, 12.5, 0.1)
	created, err := svc.CreateOrder(context.Background(), authedSession(7), snapshot, 2)
	require.NoError(t, err)

	assert.Equal(t, 7, created.UserID)
	assert.Equal(t, 2, created.RestaurantID)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, clock.now, created.OrderDate)
	assert.Nil(t, created.DeliveryDate)
	assert.Equal(t, 12.7, created.TotalPrice)
	assert.Equal(t, []domain.OrderItem{
		{ProductID: 100, Quantity: 1, UnitPrice: 12.5},
		{ProductID: 101, Quantity: 2, UnitPrice: 0.1},
	}, created.Items)

	snapshot[0].Price = 99
	stored, err := svc.ByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.7, stored.TotalPrice)
	assert.Equal(t, 12.5, stored.Items[0].UnitPrice)
}

func TestOrderService_CreateOrderRejects(t *testing.T) {
	tests := []struct {
		name     string
		session  *service.Session
		snapshot []domain.CartLineItem
		wantErr  error
	}{
		{name: "no session", snapshot: lines(1, 5), wantErr: domain.ErrNotAuthenticated},
		{name: "logged out session", session: &service.Session{}, snapshot: lines(1, 5), wantErr: domain.ErrNotAuthenticated},
		{name: "empty cart", session: authedSession(1), wantErr: domain.ErrValidation},
		{
			name:     "dishes from two restaurants",
			session:  authedSession(1),
			snapshot: append(lines(1, 5), lines(2, 6)...),
			wantErr:  domain.ErrValidation,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			svc := service.NewOrderService(mocks.NewDatasetSource(t), mocks.NewQRGenerator(t))
			created, err := svc.CreateOrder(context.Background(), testCase.session, testCase.snapshot, 1)
			assert.ErrorIs(t, err, testCase.wantErr)
			assert.Nil(t, created)
		})
	}
}

func TestOrderService_UpdateStatusStrict(t *testing.T) {
	clock := newFakeClock()
	tests := []struct {
		name    string
		steps   []domain.OrderStatus
		wantErr error
		want    domain.OrderStatus
	}{
		{name: "start preparing", steps: []domain.OrderStatus{domain.StatusInProgress}, want: domain.StatusInProgress},
		{
			name:  "full lifecycle",
			steps: []domain.OrderStatus{domain.StatusInProgress, domain.StatusDelivered},
			want:  domain.StatusDelivered,
		},
		{name: "cancel pending", steps: []domain.OrderStatus{domain.StatusCancelled}, want: domain.StatusCancelled},
		{name: "skip preparation", steps: []domain.OrderStatus{domain.StatusDelivered}, wantErr: domain.ErrInvalidTransition},
		{name: "back to pending", steps: []domain.OrderStatus{domain.StatusPending}, wantErr: domain.ErrInvalidTransition},
		{
			name:    "cancelled is terminal",
			steps:   []domain.OrderStatus{domain.StatusCancelled, domain.StatusInProgress},
			wantErr: domain.ErrInvalidTransition,
		},
		{name: "unknown status", steps: []domain.OrderStatus{"preparing"}, wantErr: domain.ErrValidation},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			source := mocks.NewDatasetSource(t)
			source.On("Fetch", mock.Anything).
				Return(ordersDataset(order(5, 1, 1, domain.StatusPending, 20, clock.now)), nil).Maybe()
			svc := service.NewOrderService(source, mocks.NewQRGenerator(t), service.WithOrderClock(clock.Now))

			var (
				updated *domain.Order
				err     error
			)
			for _, status := range testCase.steps {
				updated, err = svc.UpdateStatus(context.Background(), 5, status)
				if err != nil {
					break
				}
			}

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, updated.Status)
			if testCase.want == domain.StatusDelivered {
				require.NotNil(t, updated.DeliveryDate)
				assert.Equal(t, clock.now, *updated.DeliveryDate)
			} else {
				assert.Nil(t, updated.DeliveryDate)
			}
		})
	}
}

func TestOrderService_UpdateStatusPermissive(t *testing.T) {
	clock := newFakeClock()
	source := mocks.NewDatasetSource(t)
	source.On("Fetch", mock.Anything).
		Return(ordersDataset(order(5, 1, 1, domain.StatusDelivered, 20, clock.now)), nil).Once()

	svc := service.NewOrderService(source, mocks.NewQRGenerator(t),
		service.WithOrderClock(clock.Now), service.WithStrictTransitions(false))

	updated, err := svc.UpdateStatus(context.Background(), 5, domain.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, updated.Status)
}

func TestOrderService_UpdateStatusUnknownOrder(t *testing.T) {
	clock := newFakeClock()
	source := mocks.NewDatasetSource(t)
	source.On("Fetch", mock.Anything).
		Return(ordersDataset(order(5, 1, 1, domain.StatusPending, 20, clock.now)), nil).Once()

	svc := service.NewOrderService(source, mocks.NewQRGenerator(t), service.WithOrderClock(clock.Now))

	_, err := svc.UpdateStatus(context.Background(), 6, domain.StatusInProgress)
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	existing, err := svc.ByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, existing.Status)
}

func TestOrderService_UpdateStatusMirrorsSelection(t *testing.T) {
	clock := newFakeClock()
	source := mocks.NewDatasetSource(t)
	source.On("Fetch", mock.Anything).
		Return(ordersDataset(order(5, 1, 1, domain.StatusPending, 20, clock.now)), nil).Once()

	publisher := mocks.NewOrderPublisher(t)
	publisher.On("PublishOrderEvent", mock.Anything, mock.MatchedBy(func(e domain.OrderEvent) bool {
		return e.Type == domain.EventOrderStatusChanged && e.Status == domain.StatusInProgress
	})).Return(assert.AnError).Once()

	svc := service.NewOrderService(source, mocks.NewQRGenerator(t),
		service.WithOrderClock(clock.Now), service.WithPublisher(publisher))
	ctx := context.Background()

	_, err := svc.Select(ctx, 5)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, 5, domain.StatusInProgress)
	require.NoError(t, err, "a failed event publish does not fail the update")

	current, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, domain.StatusInProgress, current.Status)
}

func TestOrderService_LoadFreshness(t *testing.T) {
	clock := newFakeClock()
	source := mocks.NewDatasetSource(t)
	source.On("Fetch", mock.Anything).
		Return(ordersDataset(order(1, 1, 1, domain.StatusPending, 10, clock.now)), nil).Twice()

	svc := service.NewOrderService(source, mocks.NewQRGenerator(t), service.WithOrderClock(clock.Now))
	ctx := context.Background()

	_, err := svc.Load(ctx, false)
	require.NoError(t, err)

	created, err := svc.CreateOrder(ctx, authedSession(1), lines(1, 4), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, created.ID)

	clock.Advance(service.OrdersTTL - time.Millisecond)
	orders, err := svc.Load(ctx, false)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	clock.Advance(2 * time.Millisecond)
	orders, err = svc.Load(ctx, false)
	require.NoError(t, err)
	require.Len(t, orders, 2, "local order survives the refresh")
	assert.Equal(t, 2, orders[1].ID)
}

func TestOrderService_LoadFailure(t *testing.T) {
	source := mocks.NewDatasetSource(t)
	source.On("Fetch", mock.Anything).Return(nil, assert.AnError).Once()

	svc := service.NewOrderService(source, mocks.NewQRGenerator(t))
	_, err := svc.Load(context.Background(), false)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.NotEmpty(t, svc.LastError())
}

func TestOrderService_StatusSurvivesRefresh(t *testing.T) {
	clock := newFakeClock()
	source := mocks.NewDatasetSource(t)
	source.On("Fetch", mock.Anything).
		Return(ordersDataset(order(1, 1, 1, domain.StatusPending, 10, clock.now)), nil).Twice()

	svc := service.NewOrderService(source, mocks.NewQRGenerator(t), service.WithOrderClock(clock.Now))
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, 1, domain.StatusInProgress)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, 1, domain.StatusDelivered)
	require.NoError(t, err)

	clock.Advance(service.OrdersTTL + time.Millisecond)
	orders, err := svc.Load(ctx, false)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.StatusDelivered, orders[0].Status)
	assert.NotNil(t, orders[0].DeliveryDate)

	_, err = svc.UpdateStatus(ctx, 1, domain.StatusCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestOrderService_CreateOrderNeedsDocument(t *testing.T) {
	clock := newFakeClock()
	source := mocks.NewDatasetSource(t)
	source.On("Fetch", mock.Anything).Return(nil, assert.AnError).Once()
	source.On("Fetch", mock.Anything).
		Return(ordersDataset(order(1, 9, 1, domain.StatusPending, 99, clock.now)), nil).Twice()

	svc := service.NewOrderService(source, mocks.NewQRGenerator(t), service.WithOrderClock(clock.Now))
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, authedSession(7), lines(1, 4), 1)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Nil(t, created)

	created, err = svc.CreateOrder(ctx, authedSession(7), lines(1, 4), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, created.ID)

	orders, err := svc.Load(ctx, true)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	mine, err := svc.ByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 2, mine[0].ID)
}

func TestOrderService_Queries(t *testing.T) {
	clock := newFakeClock()
	day := 24 * time.Hour
	source := mocks.NewDatasetSource(t)
	source.On("Fetch", mock.Anything).Return(ordersDataset(
		order(1, 1, 1, domain.StatusDelivered, 30, clock.now.Add(-10*day)),
		order(2, 1, 2, domain.StatusPending, 12.5, clock.now.Add(-2*day)),
		order(3, 2, 1, domain.StatusInProgress, 45.25, clock.now.Add(-1*day)),
		order(12, 2, 1, domain.StatusCancelled, 8, clock.now.Add(-3*day)),
	), nil).Once()

	svc := service.NewOrderService(source, mocks.NewQRGenerator(t), service.WithOrderClock(clock.Now))
	ctx := context.Background()

	ids := func(orders []domain.Order) []int {
		out := make([]int, 0, len(orders))
		for _, o := range orders {
			out = append(out, o.ID)
		}
		return out
	}

	byUser, err := svc.ByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, ids(byUser))

	byRestaurant, err := svc.ByRestaurant(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 12, 1}, ids(byRestaurant))

	filterTests := []struct {
		name    string
		params  service.OrderFilterParams
		wantIDs []int
	}{
		{name: "id substring", params: service.OrderFilterParams{Query: "1"}, wantIDs: []int{12, 1}},
		{name: "status", params: service.OrderFilterParams{Status: "pending"}, wantIDs: []int{2}},
		{name: "amount range", params: service.OrderFilterParams{MinAmount: 10, MaxAmount: 31}, wantIDs: []int{2, 1}},
		{
			name:    "date range inclusive of last day",
			params:  service.OrderFilterParams{DateFrom: clock.now.Add(-3 * day), DateTo: clock.now.Add(-2 * day).Truncate(day)},
			wantIDs: []int{2, 12},
		},
		{
			name:    "total ascending",
			params:  service.OrderFilterParams{SortBy: "totalPrice", SortOrder: "asc"},
			wantIDs: []int{12, 2, 1, 3},
		},
	}
	for _, testCase := range filterTests {
		t.Run(testCase.name, func(t *testing.T) {
			filter, err := service.NewOrderFilter(testCase.params)
			require.NoError(t, err)
			orders, err := svc.Filter(ctx, filter)
			require.NoError(t, err)
			assert.Equal(t, testCase.wantIDs, ids(orders))
		})
	}

	_, err = service.NewOrderFilter(service.OrderFilterParams{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewOrderFilter(service.OrderFilterParams{MinAmount: 20, MaxAmount: 10})
	assert.ErrorIs(t, err, domain.ErrValidation)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, map[domain.OrderStatus]int{
		domain.StatusPending:    1,
		domain.StatusInProgress: 1,
		domain.StatusDelivered:  1,
		domain.StatusCancelled:  1,
	}, stats.ByStatus)
	assert.Equal(t, 95.75, stats.TotalRevenue)
	assert.Equal(t, 23.94, stats.AverageOrderValue)
	require.Len(t, stats.TopRestaurants, 2)
	assert.Equal(t, service.RestaurantOrderStats{RestaurantID: 1, OrderCount: 3, Revenue: 83.25}, stats.TopRestaurants[0])
	assert.Equal(t, []int{3, 2, 12}, ids(stats.RecentOrders))
}

func TestOrderService_QRCode(t *testing.T) {
	clock := newFakeClock()
	source := mocks.NewDatasetSource(t)
	source.On("Fetch", mock.Anything).
		Return(ordersDataset(order(5, 1, 1, domain.StatusPending, 20, clock.now)), nil).Once()

	qr := mocks.NewQRGenerator(t)
	qr.On("Generate", 5).Return([]byte("png"), nil).Once()

	svc := service.NewOrderService(source, qr, service.WithOrderClock(clock.Now))
	_, err := svc.Load(context.Background(), false)
	require.NoError(t, err)

	png, err := svc.QRCode(5)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), png)

	_, err = svc.QRCode(6)
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}

func TestDefaultQRGenerator(t *testing.T) {
	gen := service.DefaultQRGenerator{BaseURL: "http://localhost:8081/"}
	assert.Equal(t, "http://localhost:8081/orders/42", gen.TrackingURL(42))

	png, err := gen.Generate(42)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestVisibility(t *testing.T) {
	o := domain.Order{ID: 1, UserID: 3, RestaurantID: 7}
	tests := []struct {
		name string
		user domain.PublicUser
		want bool
	}{
		{name: "admin", user: domain.PublicUser{ID: 9, Role: domain.RoleAdmin}, want: true},
		{name: "owner", user: domain.PublicUser{ID: 3, Role: domain.RoleUser}, want: true},
		{name: "other user", user: domain.PublicUser{ID: 4, Role: domain.RoleUser}},
		{name: "restaurateur of restaurant", user: domain.PublicUser{ID: 5, Role: domain.RoleRestaurateur, RestaurantID: domain.IntPtr(7)}, want: true},
		{name: "restaurateur elsewhere", user: domain.PublicUser{ID: 5, Role: domain.RoleRestaurateur, RestaurantID: domain.IntPtr(8)}},
		{name: "restaurateur without restaurant", user: domain.PublicUser{ID: 5, Role: domain.RoleRestaurateur}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, service.VisibleTo(testCase.user, o))

			visible := service.ScopeFor(testCase.user, service.OrderFilter{}).Apply([]domain.Order{o})
			assert.Equal(t, testCase.want, len(visible) == 1)
		})
	}
}
