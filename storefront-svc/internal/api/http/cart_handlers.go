package httpapi

import (
	"net/http"

	"delivery-storefront/storefront-svc/internal/service"
)

type addItemRequest struct {
	RestaurantID int `json:"restaurantId"`
	DishID       int `json:"dishId"`
	Quantity     int `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// mutateCart applies change to the session cart and persists it on success.
func (h *Handler) mutateCart(w http.ResponseWriter, r *http.Request, change func(*service.Cart) error) {
	session, _ := service.SessionFrom(r.Context())
	if err := change(session.Cart); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Sessions.SaveCart(r.Context(), session); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Cart.View())
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	session, _ := service.SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, session.Cart.View())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, func(c *service.Cart) error { return c.Clear() })
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	dish, err := h.Catalog.FetchDish(r.Context(), req.RestaurantID, req.DishID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.mutateCart(w, r, func(c *service.Cart) error { return c.AddItem(*dish, req.Quantity) })
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	dishID, err := pathInt(r, "dishId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req quantityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	h.mutateCart(w, r, func(c *service.Cart) error { return c.UpdateQuantity(dishID, req.Quantity) })
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	dishID, err := pathInt(r, "dishId")
	if err != nil {
		writeError(w, err)
		return
	}
	h.mutateCart(w, r, func(c *service.Cart) error { return c.RemoveItem(dishID) })
}

func (h *Handler) incrementCartItem(w http.ResponseWriter, r *http.Request) {
	dishID, err := pathInt(r, "dishId")
	if err != nil {
		writeError(w, err)
		return
	}
	h.mutateCart(w, r, func(c *service.Cart) error { return c.Increment(dishID) })
}

func (h *Handler) decrementCartItem(w http.ResponseWriter, r *http.Request) {
	dishID, err := pathInt(r, "dishId")
	if err != nil {
		writeError(w, err)
		return
	}
	h.mutateCart(w, r, func(c *service.Cart) error { return c.Decrement(dishID) })
}
