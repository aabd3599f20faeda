package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"delivery-storefront/storefront-svc/internal/domain"
	"delivery-storefront/storefront-svc/internal/service"
	"delivery-storefront/storefront-svc/internal/storage"
)

type Handler struct {
	Catalog  service.CatalogServiceInterface
	Orders   service.OrderServiceInterface
	Auth     service.AuthServiceInterface
	Sessions service.SessionManagerInterface
	DataFile string
}

func NewHandler(catalog service.CatalogServiceInterface, orders service.OrderServiceInterface, auth service.AuthServiceInterface, sessions service.SessionManagerInterface, dataFile string) *Handler {
	return &Handler{
		Catalog:  catalog,
		Orders:   orders,
		Auth:     auth,
		Sessions: sessions,
		DataFile: dataFile,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.HandleFunc("/api/data.json", h.dataDocument).Methods("GET")

	r.HandleFunc("/api/restaurants", h.getRestaurants).Methods("GET")
	r.HandleFunc("/api/restaurants/cuisines", h.getCuisines).Methods("GET")
	r.HandleFunc("/api/restaurants/stats", h.getRestaurantStats).Methods("GET")
	r.HandleFunc("/api/restaurants/{id:[0-9]+}", h.getRestaurant).Methods("GET")
	r.HandleFunc("/api/restaurants/{id:[0-9]+}/dishes", h.getRestaurantDishes).Methods("GET")
	r.HandleFunc("/api/restaurants/{id:[0-9]+}/dishes/{dishId:[0-9]+}", h.getDish).Methods("GET")
	r.HandleFunc("/api/catalog/status", h.requireRole(h.catalogStatus, domain.RoleAdmin)).Methods("GET")

	r.HandleFunc("/api/auth/login", h.login).Methods("POST")
	r.HandleFunc("/api/auth/logout", h.requireAuth(h.logout)).Methods("POST")
	r.HandleFunc("/api/auth/me", h.requireAuth(h.me)).Methods("GET")
	r.HandleFunc("/api/session/landing", h.requireAuth(h.landing)).Methods("GET")

	r.HandleFunc("/api/cart", h.requireAuth(h.getCart)).Methods("GET")
	r.HandleFunc("/api/cart", h.requireAuth(h.clearCart)).Methods("DELETE")
	r.HandleFunc("/api/cart/items", h.requireAuth(h.addCartItem)).Methods("POST")
	r.HandleFunc("/api/cart/items/{dishId:[0-9]+}", h.requireAuth(h.updateCartItem)).Methods("PUT")
	r.HandleFunc("/api/cart/items/{dishId:[0-9]+}", h.requireAuth(h.removeCartItem)).Methods("DELETE")
	r.HandleFunc("/api/cart/items/{dishId:[0-9]+}/increment", h.requireAuth(h.incrementCartItem)).Methods("POST")
	r.HandleFunc("/api/cart/items/{dishId:[0-9]+}/decrement", h.requireAuth(h.decrementCartItem)).Methods("POST")

	r.HandleFunc("/api/orders", h.requireAuth(h.checkout)).Methods("POST")
	r.HandleFunc("/api/orders", h.requireAuth(h.getOrders)).Methods("GET")
	r.HandleFunc("/api/orders/{id:[0-9]+}", h.requireAuth(h.getOrder)).Methods("GET")
	r.HandleFunc("/api/orders/{id:[0-9]+}/qrcode", h.requireAuth(h.getOrderQRCode)).Methods("GET")
	r.HandleFunc("/api/orders/{id:[0-9]+}/status",
		h.requireRole(h.updateOrderStatus, domain.RoleRestaurateur, domain.RoleAdmin)).Methods("PATCH")
	r.HandleFunc("/api/admin/orders/stats", h.requireRole(h.orderStats, domain.RoleAdmin)).Methods("GET")
	r.HandleFunc("/api/restaurateur/orders", h.requireRole(h.restaurateurOrders, domain.RoleRestaurateur)).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "storefront-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// dataDocument serves the document file as is, or the built-in default
// document when the file cannot be read or parsed.
func (h *Handler) dataDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")

	ds, raw, err := storage.LoadDocument(h.DataFile)
	if err != nil {
		log.Warn().Err(err).Str("file", h.DataFile).Msg("serving default document")
		writeJSON(w, http.StatusOK, storage.DefaultDocument())
		return
	}

	log.Debug().Int("restaurants", len(ds.Restaurants)).Msg("serving document")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrValidation, name)
	}
	return v, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
	}
	return v, nil
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrValidation, name)
	}
	return v, nil
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date", domain.ErrValidation, name)
	}
	return t, nil
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}
	return nil
}

func (h *Handler) getRestaurants(w http.ResponseWriter, r *http.Request) {
	minRating, err := queryFloat(r, "minRating")
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	filter, err := service.NewRestaurantFilter(service.RestaurantFilterParams{
		Query:       q.Get("q"),
		CuisineType: q.Get("cuisine"),
		MinRating:   minRating,
		SortBy:      q.Get("sort"),
		SortOrder:   q.Get("order"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	restaurants, err := h.Catalog.Restaurants(r.Context(), filter, q.Get("refresh") == "true")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *Handler) getCuisines(w http.ResponseWriter, r *http.Request) {
	cuisines, err := h.Catalog.CuisineTypes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cuisines)
}

func (h *Handler) getRestaurantStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Catalog.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	rest, err := h.Catalog.FetchRestaurant(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

func (h *Handler) getRestaurantDishes(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	rest, err := h.Catalog.FetchRestaurant(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	dishes := rest.Dishes
	if dishes == nil {
		dishes = []domain.Dish{}
	}
	writeJSON(w, http.StatusOK, dishes)
}

func (h *Handler) getDish(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	dishID, err := pathInt(r, "dishId")
	if err != nil {
		writeError(w, err)
		return
	}
	dish, err := h.Catalog.FetchDish(r.Context(), restaurantID, dishID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dish)
}

func (h *Handler) catalogStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Status())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string            `json:"token"`
	User     domain.PublicUser `json:"user"`
	Redirect string            `json:"redirect"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, fmt.Errorf("%w: email and password are required", domain.ErrValidation))
		return
	}

	user, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid email or password"})
		return
	}

	_, token, err := h.Sessions.Start(r.Context(), *user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: *user, Redirect: user.Role.LandingPage()})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	session, _ := service.SessionFrom(r.Context())
	if err := h.Sessions.End(r.Context(), session); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": domain.LoginPage})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	session, _ := service.SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":            session.User,
		"isAuthenticated": session.IsAuthenticated(),
	})
}

func (h *Handler) landing(w http.ResponseWriter, r *http.Request) {
	session, _ := service.SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"redirect": session.User.Role.LandingPage()})
}
