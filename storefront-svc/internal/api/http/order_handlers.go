package httpapi

import (
	"fmt"
	"net/http"

	"delivery-storefront/storefront-svc/internal/domain"
	"delivery-storefront/storefront-svc/internal/service"
)

type statusRequest struct {
	Status string `json:"status"`
}

// checkout turns the session cart into an order and empties the cart.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	session, _ := service.SessionFrom(r.Context())
	cart := session.Cart

	if cart.IsEmpty() {
		writeError(w, fmt.Errorf("%w: cart is empty", domain.ErrValidation))
		return
	}
	if !cart.ValidateSameRestaurant() {
		writeError(w, fmt.Errorf("%w: cart holds dishes from several restaurants", domain.ErrValidation))
		return
	}
	restaurantID, _ := cart.RestaurantID()

	order, err := h.Orders.CreateOrder(r.Context(), session, cart.Items(), restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := cart.Clear(); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Sessions.SaveCart(r.Context(), session); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func orderFilterFromQuery(r *http.Request) (service.OrderFilter, error) {
	restaurantID, err := queryInt(r, "restaurantId")
	if err != nil {
		return service.OrderFilter{}, err
	}
	userID, err := queryInt(r, "userId")
	if err != nil {
		return service.OrderFilter{}, err
	}
	minAmount, err := queryFloat(r, "minAmount")
	if err != nil {
		return service.OrderFilter{}, err
	}
	maxAmount, err := queryFloat(r, "maxAmount")
	if err != nil {
		return service.OrderFilter{}, err
	}
	dateFrom, err := queryDate(r, "dateFrom")
	if err != nil {
		return service.OrderFilter{}, err
	}
	dateTo, err := queryDate(r, "dateTo")
	if err != nil {
		return service.OrderFilter{}, err
	}

	q := r.URL.Query()
	return service.NewOrderFilter(service.OrderFilterParams{
		Query:        q.Get("q"),
		Status:       q.Get("status"),
		RestaurantID: restaurantID,
		UserID:       userID,
		MinAmount:    minAmount,
		MaxAmount:    maxAmount,
		DateFrom:     dateFrom,
		DateTo:       dateTo,
		SortBy:       q.Get("sort"),
		SortOrder:    q.Get("order"),
	})
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	session, _ := service.SessionFrom(r.Context())

	filter, err := orderFilterFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("refresh") == "true" {
		if _, err := h.Orders.Load(r.Context(), true); err != nil {
			writeError(w, err)
			return
		}
	}

	orders, err := h.Orders.Filter(r.Context(), service.ScopeFor(session.User, filter))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// visibleOrder loads the order named in the path and checks the caller may
// see it.
func (h *Handler) visibleOrder(r *http.Request) (*domain.Order, error) {
	session, _ := service.SessionFrom(r.Context())
	id, err := pathInt(r, "id")
	if err != nil {
		return nil, err
	}
	order, err := h.Orders.ByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if !service.VisibleTo(session.User, *order) {
		return nil, fmt.Errorf("%w: order %d", domain.ErrForbidden, id)
	}
	return order, nil
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.visibleOrder(r)
	if err != nil {
		writeError(w, err)
		return
	}
	selected, err := h.Orders.Select(r.Context(), order.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, selected)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	order, err := h.visibleOrder(r)
	if err != nil {
		writeError(w, err)
		return
	}
	png, err := h.Orders.QRCode(order.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	order, err := h.visibleOrder(r)
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.Orders.UpdateStatus(r.Context(), order.ID, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) orderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Orders.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) restaurateurOrders(w http.ResponseWriter, r *http.Request) {
	session, _ := service.SessionFrom(r.Context())
	if session.User.RestaurantID == nil {
		writeError(w, fmt.Errorf("%w: no restaurant attached to this account", domain.ErrForbidden))
		return
	}

	orders, err := h.Orders.ByRestaurant(r.Context(), *session.User.RestaurantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
