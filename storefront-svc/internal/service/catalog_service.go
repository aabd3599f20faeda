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

// CatalogErrors keeps the last failure per lookup category. An empty string
// means the last attempt in that category succeeded.
type CatalogErrors struct {
	Restaurants       string `json:"restaurants,omitempty"`
	CurrentRestaurant string `json:"currentRestaurant,omitempty"`
	CurrentDish       string `json:"currentDish,omitempty"`
}

type CatalogStatus struct {
	Loaded          bool          `json:"loaded"`
	Fresh           bool          `json:"fresh"`
	LastFetch       *time.Time    `json:"lastFetch"`
	RestaurantCount int           `json:"restaurantCount"`
	UserCount       int           `json:"userCount"`
	OrderCount      int           `json:"orderCount"`
	Errors          CatalogErrors `json:"errors"`
}

type RestaurantStats struct {
	Total         int                 `json:"total"`
	AverageRating float64             `json:"averageRating"`
	TotalDishes   int                 `json:"totalDishes"`
	TopRated      []domain.Restaurant `json:"topRated"`
}

const (
	topRatedThreshold = 4.5
	topRatedLimit     = 5
)

// CatalogService caches the static document and answers restaurant and dish
// lookups from it.
type CatalogService struct {
	source DatasetSource
	clock  Clock
	ttl    time.Duration

	mu        sync.RWMutex
	dataset   *domain.Dataset
	lastFetch time.Time
	errs      CatalogErrors
}

func NewCatalogService(source DatasetSource, clock Clock) *CatalogService {
	return &CatalogService{source: source, clock: clock, ttl: RestaurantsTTL}
}

// FetchAll returns the cached document while it is fresh, otherwise fetches
// it again. On failure the previous document stays cached.
func (s *CatalogService) FetchAll(ctx context.Context, forceRefresh bool) (*domain.Dataset, error) {
	s.mu.RLock()
	if !forceRefresh && s.dataset != nil && fresh(s.lastFetch, s.clock.now(), s.ttl) {
		ds := s.dataset
		s.mu.RUnlock()
		return ds, nil
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
		s.errs.Restaurants = err.Error()
		log.Error().Err(err).Msg("catalog fetch failed")
		return nil, err
	}

	normalizeDishes(ds)
	s.dataset = ds
	s.lastFetch = s.clock.now()
	s.errs.Restaurants = ""
	log.Debug().
		Int("restaurants", len(ds.Restaurants)).
		Int("orders", len(ds.Commands)).
		Msg("catalog refreshed")
	return ds, nil
}

// normalizeDishes stamps every dish with the id of the restaurant it is
// listed under when the document omits it.
func normalizeDishes(ds *domain.Dataset) {
	for i := range ds.Restaurants {
		r := &ds.Restaurants[i]
		for j := range r.Dishes {
			if r.Dishes[j].RestaurantID == nil {
				r.Dishes[j].RestaurantID = domain.IntPtr(r.ID)
			}
		}
	}
}

// Invalidate forces the next FetchAll to hit the source.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.lastFetch = time.Time{}
	s.mu.Unlock()
}

func (s *CatalogService) FindRestaurant(id int) (domain.Restaurant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dataset == nil {
		return domain.Restaurant{}, false
	}
	for _, r := range s.dataset.Restaurants {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Restaurant{}, false
}

func (s *CatalogService) FindDish(restaurantID, dishID int) (domain.Dish, bool) {
	r, ok := s.FindRestaurant(restaurantID)
	if !ok {
		return domain.Dish{}, false
	}
	for _, d := range r.Dishes {
		if d.ID == dishID {
			return d, true
		}
	}
	return domain.Dish{}, false
}

func (s *CatalogService) FetchRestaurant(ctx context.Context, id int) (*domain.Restaurant, error) {
	if _, err := s.FetchAll(ctx, false); err != nil {
		s.setError(func(e *CatalogErrors) { e.CurrentRestaurant = err.Error() })
		return nil, err
	}

	r, ok := s.FindRestaurant(id)
	if !ok {
		err := fmt.Errorf("%w: restaurant %d", domain.ErrEntityNotFound, id)
		s.setError(func(e *CatalogErrors) { e.CurrentRestaurant = err.Error() })
		return nil, err
	}
	s.setError(func(e *CatalogErrors) { e.CurrentRestaurant = "" })
	return &r, nil
}

func (s *CatalogService) FetchDish(ctx context.Context, restaurantID, dishID int) (*domain.Dish, error) {
	if _, err := s.FetchAll(ctx, false); err != nil {
		s.setError(func(e *CatalogErrors) { e.CurrentDish = err.Error() })
		return nil, err
	}

	d, ok := s.FindDish(restaurantID, dishID)
	if !ok {
		err := fmt.Errorf("%w: dish %d of restaurant %d", domain.ErrEntityNotFound, dishID, restaurantID)
		s.setError(func(e *CatalogErrors) { e.CurrentDish = err.Error() })
		return nil, err
	}
	s.setError(func(e *CatalogErrors) { e.CurrentDish = "" })
	return &d, nil
}

func (s *CatalogService) setError(update func(*CatalogErrors)) {
	s.mu.Lock()
	update(&s.errs)
	s.mu.Unlock()
}

func (s *CatalogService) Restaurants(ctx context.Context, filter RestaurantFilter, forceRefresh bool) ([]domain.Restaurant, error) {
	ds, err := s.FetchAll(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return filter.Apply(ds.Restaurants), nil
}

// CuisineTypes lists the distinct cuisine types, sorted.
func (s *CatalogService) CuisineTypes(ctx context.Context) ([]string, error) {
	ds, err := s.FetchAll(ctx, false)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	cuisines := make([]string, 0)
	for _, r := range ds.Restaurants {
		if r.CuisineType == "" {
			continue
		}
		if _, ok := seen[r.CuisineType]; ok {
			continue
		}
		seen[r.CuisineType] = struct{}{}
		cuisines = append(cuisines, r.CuisineType)
	}
	sort.Strings(cuisines)
	return cuisines, nil
}

func (s *CatalogService) Stats(ctx context.Context) (RestaurantStats, error) {
	ds, err := s.FetchAll(ctx, false)
	if err != nil {
		return RestaurantStats{}, err
	}

	stats := RestaurantStats{Total: len(ds.Restaurants), TopRated: []domain.Restaurant{}}
	ratings := make([]float64, 0, len(ds.Restaurants))
	for _, r := range ds.Restaurants {
		ratings = append(ratings, r.AverageRating)
		stats.TotalDishes += len(r.Dishes)
		if r.AverageRating >= topRatedThreshold {
			stats.TopRated = append(stats.TopRated, r)
		}
	}
	if len(ratings) > 0 {
		stats.AverageRating = domain.Round2(domain.SumRounded(ratings...) / float64(len(ratings)))
	}

	sort.SliceStable(stats.TopRated, func(i, j int) bool {
		return stats.TopRated[i].AverageRating > stats.TopRated[j].AverageRating
	})
	if len(stats.TopRated) > topRatedLimit {
		stats.TopRated = stats.TopRated[:topRatedLimit]
	}
	return stats, nil
}

func (s *CatalogService) Errors() CatalogErrors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errs
}

// LastFetch is the time of the last successful fetch, zero if none.
func (s *CatalogService) LastFetch() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFetch
}

func (s *CatalogService) Status() CatalogStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := CatalogStatus{
		Loaded: s.dataset != nil,
		Fresh:  s.dataset != nil && fresh(s.lastFetch, s.clock.now(), s.ttl),
		Errors: s.errs,
	}
	if !s.lastFetch.IsZero() {
		last := s.lastFetch
		status.LastFetch = &last
	}
	if s.dataset != nil {
		status.RestaurantCount = len(s.dataset.Restaurants)
		status.UserCount = len(s.dataset.Users)
		status.OrderCount = len(s.dataset.Commands)
	}
	return status
}

var _ CatalogServiceInterface = (*CatalogService)(nil)
