package store

import (
	"sync"

	"etalase/internal/models"
)

// CartStore holds the quantities a user intends to buy, in insertion order.
// It never talks to the network; stock is only checked by the server at
// checkout.
type CartStore struct {
	mu    sync.RWMutex
	lines []models.CartLine
}

// NewCartStore creates an empty cart.
func NewCartStore() *CartStore {
	return &CartStore{}
}

// Add merges requested units of a product into the cart, clamping the line to
// models.MaxCartQuantity. Requests below one unit are ignored.
func (c *CartStore) Add(productID int64, name string, requested int) {
	if requested < 1 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(productID); i >= 0 {
		c.lines[i].Quantity = min(c.lines[i].Quantity+requested, models.MaxCartQuantity)
		return
	}
	c.lines = append(c.lines, models.CartLine{
		ProductID: productID,
		Name:      name,
		Quantity:  min(requested, models.MaxCartQuantity),
	})
}

// Remove deletes the line of a product, if present.
func (c *CartStore) Remove(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Clear empties the cart.
func (c *CartStore) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines returns a copy of the cart lines in insertion order.
func (c *CartStore) Lines() []models.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Quantity returns the units of a product in the cart.
func (c *CartStore) Quantity(productID int64) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Remaining returns how many more units of a product fit under the cap.
func (c *CartStore) Remaining(productID int64) int {
	return models.MaxCartQuantity - c.Quantity(productID)
}

// TotalItemCount sums the quantities of all lines.
func (c *CartStore) TotalItemCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// Len returns the number of distinct products in the cart.
func (c *CartStore) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines)
}

func (c *CartStore) indexOf(productID int64) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
