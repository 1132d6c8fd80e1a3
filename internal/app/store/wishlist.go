package store

import (
	"sync"
	"time"

	"github.com/ikkim/manajir-storefront/internal/app/model"
)

// Wishlist holds at most one entry per product id.
type Wishlist struct {
	mu    sync.RWMutex
	items []model.WishlistEntry
	save  func(model.WishlistSnapshot)
	now   func() time.Time
}

func NewWishlist(save func(model.WishlistSnapshot)) *Wishlist {
	return &Wishlist{save: save, now: time.Now}
}

// LoadWishlist rebuilds a wishlist from a snapshot, dropping duplicate ids.
func LoadWishlist(snapshot model.WishlistSnapshot, save func(model.WishlistSnapshot)) *Wishlist {
	w := NewWishlist(save)
	for _, entry := range snapshot.Items {
		if w.indexOf(entry.Product.ID) < 0 {
			w.items = append(w.items, entry)
		}
	}
	return w
}

// WithClock replaces the timestamp source.
func (w *Wishlist) WithClock(now func() time.Time) *Wishlist {
	w.mu.Lock()
	w.now = now
	w.mu.Unlock()
	return w
}

// AddItem appends the product unless it is already present. A duplicate
// add leaves the original AddedAt untouched.
func (w *Wishlist) AddItem(product model.ProductSnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.add(product)
}

func (w *Wishlist) RemoveItem(productID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.remove(productID)
}

func (w *Wishlist) IsInWishlist(productID int64) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.indexOf(productID) >= 0
}

// ToggleItem removes the product if present, else adds it, and reports
// whether the product is in the wishlist afterwards.
func (w *Wishlist) ToggleItem(product model.ProductSnapshot) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.indexOf(product.ID) >= 0 {
		w.remove(product.ID)
		return false
	}
	w.add(product)
	return true
}

func (w *Wishlist) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = nil
	w.persist()
}

func (w *Wishlist) Items() []model.WishlistEntry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.copyItems()
}

func (w *Wishlist) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.items)
}

func (w *Wishlist) Snapshot() model.WishlistSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return model.WishlistSnapshot{Items: w.copyItems()}
}

func (w *Wishlist) add(product model.ProductSnapshot) {
	if w.indexOf(product.ID) >= 0 {
		return
	}
	w.items = append(w.items, model.WishlistEntry{Product: product, AddedAt: w.now()})
	w.persist()
}

func (w *Wishlist) remove(productID int64) {
	i := w.indexOf(productID)
	if i < 0 {
		return
	}
	w.items = append(w.items[:i], w.items[i+1:]...)
	w.persist()
}

func (w *Wishlist) indexOf(productID int64) int {
	for i, entry := range w.items {
		if entry.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (w *Wishlist) copyItems() []model.WishlistEntry {
	items := make([]model.WishlistEntry, len(w.items))
	copy(items, w.items)
	return items
}

func (w *Wishlist) persist() {
	if w.save != nil {
		w.save(model.WishlistSnapshot{Items: w.copyItems()})
	}
}
