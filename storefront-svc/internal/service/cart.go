package service

import (
	"encoding/json"
	"fmt"

	"delivery-storefront/storefront-svc/internal/domain"
)

const cartAuthMessage = "you must be logged in to modify the cart"

// AuthChecker reports whether the owning session is authenticated.
type AuthChecker interface {
	IsAuthenticated() bool
}

// Cart holds the line items of one session. Line items are unique per dish
// id and keep insertion order.
type Cart struct {
	items                 []domain.CartLineItem
	err                   string
	auth                  AuthChecker
	enforceSameRestaurant bool
}

type CartOption func(*Cart)

// WithSameRestaurantEnforced makes AddItem reject dishes from a second
// restaurant instead of leaving it to ValidateSameRestaurant.
func WithSameRestaurantEnforced(enforce bool) CartOption {
	return func(c *Cart) { c.enforceSameRestaurant = enforce }
}

func NewCart(auth AuthChecker, opts ...CartOption) *Cart {
	c := &Cart{auth: auth, items: []domain.CartLineItem{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cart) guard() error {
	if c.auth == nil || !c.auth.IsAuthenticated() {
		c.err = cartAuthMessage
		return domain.ErrNotAuthenticated
	}
	return nil
}

func (c *Cart) index(dishID int) int {
	for i, item := range c.items {
		if item.ID == dishID {
			return i
		}
	}
	return -1
}

func (c *Cart) AddItem(dish domain.Dish, quantity int) error {
	if err := c.guard(); err != nil {
		return err
	}
	if quantity < 1 {
		quantity = 1
	}

	if c.enforceSameRestaurant {
		if rid, ok := c.RestaurantID(); ok && dish.OwnerID() != rid {
			err := fmt.Errorf("%w: cart already holds dishes from restaurant %d", domain.ErrValidation, rid)
			c.err = err.Error()
			return err
		}
	}

	if i := c.index(dish.ID); i >= 0 {
		c.items[i].Quantity += quantity
		c.items[i].TotalPrice = domain.LineTotal(c.items[i].Price, c.items[i].Quantity)
	} else {
		c.items = append(c.items, domain.CartLineItem{
			Dish:       dish,
			Quantity:   quantity,
			TotalPrice: domain.LineTotal(dish.Price, quantity),
		})
	}
	c.err = ""
	return nil
}

func (c *Cart) RemoveItem(dishID int) error {
	if err := c.guard(); err != nil {
		return err
	}
	if i := c.index(dishID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	c.err = ""
	return nil
}

// UpdateQuantity sets the quantity of a line; a non-positive quantity
// removes it.
func (c *Cart) UpdateQuantity(dishID, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(dishID)
	}
	if err := c.guard(); err != nil {
		return err
	}
	if i := c.index(dishID); i >= 0 {
		c.items[i].Quantity = quantity
		c.items[i].TotalPrice = domain.LineTotal(c.items[i].Price, quantity)
	}
	c.err = ""
	return nil
}

func (c *Cart) Increment(dishID int) error {
	if i := c.index(dishID); i >= 0 {
		return c.UpdateQuantity(dishID, c.items[i].Quantity+1)
	}
	if err := c.guard(); err != nil {
		return err
	}
	c.err = ""
	return nil
}

func (c *Cart) Decrement(dishID int) error {
	if i := c.index(dishID); i >= 0 {
		return c.UpdateQuantity(dishID, c.items[i].Quantity-1)
	}
	if err := c.guard(); err != nil {
		return err
	}
	c.err = ""
	return nil
}

func (c *Cart) Clear() error {
	if err := c.guard(); err != nil {
		return err
	}
	c.items = []domain.CartLineItem{}
	c.err = ""
	return nil
}

// reset empties the cart without the auth check, used on logout.
func (c *Cart) reset() {
	c.items = []domain.CartLineItem{}
	c.err = ""
}

// ValidateSameRestaurant reports whether every line belongs to the same
// restaurant. An empty cart is valid; dishes without a restaurant id count
// as restaurant 0.
func (c *Cart) ValidateSameRestaurant() bool {
	if len(c.items) == 0 {
		return true
	}
	first := c.items[0].OwnerID()
	for _, item := range c.items[1:] {
		if item.OwnerID() != first {
			return false
		}
	}
	return true
}

// RestaurantID is the restaurant of the first line item.
func (c *Cart) RestaurantID() (int, bool) {
	if len(c.items) == 0 {
		return 0, false
	}
	return c.items[0].OwnerID(), true
}

func (c *Cart) TotalPrice() float64 {
	totals := make([]float64, 0, len(c.items))
	for _, item := range c.items {
		totals = append(totals, item.TotalPrice)
	}
	return domain.SumRounded(totals...)
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) UniqueItemCount() int { return len(c.items) }

func (c *Cart) Quantity(dishID int) int {
	if i := c.index(dishID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

func (c *Cart) Has(dishID int) bool { return c.index(dishID) >= 0 }

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Items returns a copy of the line items.
func (c *Cart) Items() []domain.CartLineItem {
	items := make([]domain.CartLineItem, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Cart) Error() string { return c.err }

func (c *Cart) ClearError() { c.err = "" }

// CartView is the JSON shape of a cart returned to clients.
type CartView struct {
	Items            []domain.CartLineItem `json:"items"`
	TotalPrice       float64               `json:"totalPrice"`
	ItemCount        int                   `json:"itemCount"`
	UniqueItemCount  int                   `json:"uniqueItemCount"`
	RestaurantID     *int                  `json:"restaurantId"`
	IsSameRestaurant bool                  `json:"isSameRestaurant"`
	Error            string                `json:"error,omitempty"`
}

func (c *Cart) View() CartView {
	view := CartView{
		Items:            c.Items(),
		TotalPrice:       c.TotalPrice(),
		ItemCount:        c.ItemCount(),
		UniqueItemCount:  c.UniqueItemCount(),
		IsSameRestaurant: c.ValidateSameRestaurant(),
		Error:            c.err,
	}
	if rid, ok := c.RestaurantID(); ok {
		view.RestaurantID = domain.IntPtr(rid)
	}
	return view
}

// MarshalJSON persists only the line items.
func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.items)
}

// UnmarshalJSON restores line items, recomputing each line total.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []domain.CartLineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	restored := make([]domain.CartLineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		item.TotalPrice = domain.LineTotal(item.Price, item.Quantity)
		restored = append(restored, item)
	}
	c.items = restored
	return nil
}
