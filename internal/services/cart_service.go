package services

import (
	"context"
	"encoding/json"

	"storefront/internal/domain"
	"storefront/internal/validate"
)

// CartEntry is one product id with its desired quantity (always >= 1).
type CartEntry struct {
	ProductID string `json:"pid"`
	Qty       int    `json:"qty"`
}

// Cart is the session-scoped shopping cart. Entries keep insertion order and
// Revision increases on every mutation.
type Cart struct {
	Entries  []CartEntry `json:"entries"`
	Revision int64       `json:"rev"`
}

func (c *Cart) find(pid string) int {
	for i, e := range c.Entries {
		if e.ProductID == pid {
			return i
		}
	}
	return -1
}

// Add increments the quantity of pid by one, creating the entry if needed.
func (c *Cart) Add(pid string) {
	if i := c.find(pid); i >= 0 {
		c.Entries[i].Qty++
	} else {
		c.Entries = append(c.Entries, CartEntry{ProductID: pid, Qty: 1})
	}
	c.Revision++
}

// Update sets the quantity from raw form input. Non-numeric input means 1,
// anything <= 0 removes the entry.
func (c *Cart) Update(pid, raw string) {
	qty := validate.CartQty(raw)
	if qty <= 0 {
		c.Remove(pid)
		return
	}
	if i := c.find(pid); i >= 0 {
		c.Entries[i].Qty = qty
	} else {
		c.Entries = append(c.Entries, CartEntry{ProductID: pid, Qty: qty})
	}
	c.Revision++
}

// Remove deletes pid; unknown ids are ignored.
func (c *Cart) Remove(pid string) {
	if i := c.find(pid); i >= 0 {
		c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
		c.Revision++
	}
}

func (c *Cart) Clear() {
	c.Entries = nil
	c.Revision++
}

func (c *Cart) Qty(pid string) int {
	if i := c.find(pid); i >= 0 {
		return c.Entries[i].Qty
	}
	return 0
}

func (c *Cart) Len() int { return len(c.Entries) }

func (c *Cart) ids() []string {
	out := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.ProductID
	}
	return out
}

// SessionStore is the slice of a session the cart needs.
type SessionStore interface {
	Get(key string) any
	Set(key string, val any)
}

// LoadCart reads the cart stored under key; a missing or unreadable value
// yields an empty cart.
func LoadCart(s SessionStore, key string) *Cart {
	c := &Cart{}
	if raw, ok := s.Get(key).(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), c); err != nil {
			return &Cart{}
		}
	}
	return c
}

func SaveCart(s SessionStore, key string, c *Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	s.Set(key, string(b))
	return nil
}

// ProductLookup is the catalog read surface the cart depends on.
type ProductLookup interface {
	Get(ctx context.Context, id string) (domain.Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error)
}

type CartService struct {
	Prods ProductLookup
}

func NewCartService(prods ProductLookup) *CartService {
	return &CartService{Prods: prods}
}

// Add puts one more unit of an existing product into the cart.
func (s *CartService) Add(ctx context.Context, c *Cart, productID string) error {
	if _, err := s.Prods.Get(ctx, productID); err != nil {
		return err
	}
	c.Add(productID)
	return nil
}

// Snapshot prices the cart against the live catalog in one lookup. Entries
// whose product is gone are left out and pruned from the cart.
func (s *CartService) Snapshot(ctx context.Context, c *Cart) (domain.Snapshot, error) {
	snap := domain.Snapshot{Lines: []domain.CartLine{}, Total: domain.ZeroMoney, Revision: c.Revision}
	if c.Len() == 0 {
		return snap, nil
	}
	prods, err := s.Prods.GetMany(ctx, c.ids())
	if err != nil {
		return domain.Snapshot{}, err
	}
	kept := c.Entries[:0:0]
	for _, e := range c.Entries {
		p, ok := prods[e.ProductID]
		if !ok {
			snap.Missing = append(snap.Missing, e.ProductID)
			continue
		}
		kept = append(kept, e)
		sub := p.Price.Times(e.Qty)
		snap.Lines = append(snap.Lines, domain.CartLine{Product: p, Quantity: e.Qty, Subtotal: sub})
		snap.Total = snap.Total.Plus(sub)
	}
	c.Entries = kept
	return snap, nil
}
