// Package store holds the per-session cart and wishlist state containers.
package store

import (
	"sync"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/shopspring/decimal"
)

// Cart is the line-item collection of one storefront session. Every
// operation is total; the save hook runs after each mutation of the items.
type Cart struct {
	mu     sync.RWMutex
	items  []model.LineItem
	isOpen bool
	save   func(model.CartSnapshot)
}

// NewCart returns an empty cart. save may be nil.
func NewCart(save func(model.CartSnapshot)) *Cart {
	return &Cart{save: save}
}

// LoadCart rebuilds a cart from a persisted snapshot. Lines are merged by
// key and quantities floored at 1 so a hand-edited snapshot cannot break
// the cart invariants. The drawer always starts closed.
func LoadCart(snapshot model.CartSnapshot, save func(model.CartSnapshot)) *Cart {
	c := &Cart{save: save}
	for _, item := range snapshot.Items {
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if i := c.indexOf(item.Key()); i >= 0 {
			c.items[i].Quantity += item.Quantity
			continue
		}
		c.items = append(c.items, item)
	}
	return c
}

// AddItem merges into an existing line with the same product, size and
// color, or appends a new line. Quantities below 1 count as 1.
func (c *Cart) AddItem(product model.ProductSnapshot, size, color string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := model.LineKey{ProductID: product.ID, Size: size, Color: color}
	if i := c.indexOf(key); i >= 0 {
		c.items[i].Quantity += quantity
	} else {
		c.items = append(c.items, model.LineItem{
			Product:  product,
			Size:     size,
			Color:    color,
			Quantity: quantity,
		})
	}
	c.persist()
}

// RemoveItem deletes the matching line; absent lines are ignored.
func (c *Cart) RemoveItem(productID int64, size, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(model.LineKey{ProductID: productID, Size: size, Color: color})
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.persist()
}

// UpdateQuantity sets the quantity of the matching line, floored at 1.
// Removal only happens through RemoveItem.
func (c *Cart) UpdateQuantity(productID int64, size, color string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(model.LineKey{ProductID: productID, Size: size, Color: color})
	if i < 0 {
		return
	}
	c.items[i].Quantity = max(1, quantity)
	c.persist()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.persist()
}

// Total is the sum of unit price times quantity, computed on every call.
func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items) == 0
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []model.LineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyItems()
}

func (c *Cart) Snapshot() model.CartSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return model.CartSnapshot{Items: c.copyItems()}
}

func (c *Cart) Open() {
	c.mu.Lock()
	c.isOpen = true
	c.mu.Unlock()
}

func (c *Cart) Close() {
	c.mu.Lock()
	c.isOpen = false
	c.mu.Unlock()
}

func (c *Cart) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isOpen
}

// caller holds c.mu
func (c *Cart) indexOf(key model.LineKey) int {
	for i, item := range c.items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// caller holds c.mu
func (c *Cart) copyItems() []model.LineItem {
	items := make([]model.LineItem, len(c.items))
	copy(items, c.items)
	return items
}

// caller holds c.mu for writing, so saves are issued in mutation order
func (c *Cart) persist() {
	if c.save != nil {
		c.save(model.CartSnapshot{Items: c.copyItems()})
	}
}
