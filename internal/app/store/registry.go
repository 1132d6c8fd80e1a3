package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/repository"
	"github.com/ikkim/manajir-storefront/pkg/logger"
)

const defaultSaveTimeout = 3 * time.Second

// ChangeListener is told about every cart or wishlist state after it has
// been written back.
type ChangeListener func(sessionID, storeName string, state interface{})

// Registry owns the live cart and wishlist of every storefront session.
// A store is loaded from the snapshot repository on first access and
// written back after every mutation. Last write wins between processes.
type Registry struct {
	repo        repository.SnapshotRepository
	saveTimeout time.Duration
	now         func() time.Time

	mu        sync.Mutex
	listener  ChangeListener
	carts     map[string]*Cart
	wishlists map[string]*Wishlist
	lastSeen  map[string]time.Time
}

func NewRegistry(repo repository.SnapshotRepository) *Registry {
	return &Registry{
		repo:        repo,
		saveTimeout: defaultSaveTimeout,
		now:         time.Now,
		carts:       make(map[string]*Cart),
		wishlists:   make(map[string]*Wishlist),
		lastSeen:    make(map[string]time.Time),
	}
}

// SetListener registers the function called after every save.
func (r *Registry) SetListener(l ChangeListener) {
	r.mu.Lock()
	r.listener = l
	r.mu.Unlock()
}

// Cart returns the session's cart, loading it on first use.
func (r *Registry) Cart(ctx context.Context, sessionID string) *Cart {
	r.mu.Lock()
	r.lastSeen[sessionID] = r.now()
	if c, ok := r.carts[sessionID]; ok {
		r.mu.Unlock()
		return c
	}
	r.mu.Unlock()

	key := model.StorageKey(model.CartStorageName, sessionID)
	var snapshot model.CartSnapshot
	r.load(ctx, key, &snapshot)
	loaded := LoadCart(snapshot, func(s model.CartSnapshot) {
		r.save(key, s)
		r.notify(sessionID, model.CartStorageName, s)
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.carts[sessionID]; ok {
		return c
	}
	r.carts[sessionID] = loaded
	return loaded
}

// Wishlist returns the session's wishlist, loading it on first use.
func (r *Registry) Wishlist(ctx context.Context, sessionID string) *Wishlist {
	r.mu.Lock()
	r.lastSeen[sessionID] = r.now()
	if w, ok := r.wishlists[sessionID]; ok {
		r.mu.Unlock()
		return w
	}
	r.mu.Unlock()

	key := model.StorageKey(model.WishlistStorageName, sessionID)
	var snapshot model.WishlistSnapshot
	r.load(ctx, key, &snapshot)
	loaded := LoadWishlist(snapshot, func(s model.WishlistSnapshot) {
		r.save(key, s)
		r.notify(sessionID, model.WishlistStorageName, s)
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.wishlists[sessionID]; ok {
		return w
	}
	r.wishlists[sessionID] = loaded
	return loaded
}

// Evict drops the in-memory stores of a session; the next access reloads
// them from the repository.
func (r *Registry) Evict(sessionID string) {
	r.mu.Lock()
	delete(r.carts, sessionID)
	delete(r.wishlists, sessionID)
	delete(r.lastSeen, sessionID)
	r.mu.Unlock()
}

// EvictIdle drops every session not accessed within maxIdle and returns
// their ids. Persisted snapshots are kept.
func (r *Registry) EvictIdle(maxIdle time.Duration) []string {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for sessionID, seen := range r.lastSeen {
		if seen.After(cutoff) {
			continue
		}
		delete(r.carts, sessionID)
		delete(r.wishlists, sessionID)
		delete(r.lastSeen, sessionID)
		evicted = append(evicted, sessionID)
	}
	return evicted
}

// Sessions 메모리에 올라와 있는 세션 수
func (r *Registry) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lastSeen)
}

// load decodes a persisted state into dst. Missing or unreadable
// snapshots leave dst empty.
func (r *Registry) load(ctx context.Context, key string, dst interface{}) {
	data, err := r.repo.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrSnapshotNotFound) {
			logger.Error("Failed to load snapshot, starting empty", err, map[string]interface{}{
				"key": key,
			})
		}
		return
	}

	if err := DecodeState(data, dst); err != nil {
		logger.Warn("Discarding unreadable snapshot", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (r *Registry) save(key string, state interface{}) {
	data, err := EncodeState(state)
	if err != nil {
		logger.Error("Failed to encode snapshot", err, map[string]interface{}{
			"key": key,
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.saveTimeout)
	defer cancel()

	if err := r.repo.Save(ctx, key, data); err != nil {
		logger.Error("Failed to persist snapshot", err, map[string]interface{}{
			"key": key,
		})
	}
}

func (r *Registry) notify(sessionID, storeName string, state interface{}) {
	r.mu.Lock()
	l := r.listener
	r.mu.Unlock()
	if l != nil {
		l(sessionID, storeName, state)
	}
}

// EncodeState wraps a store snapshot in the persisted envelope.
func EncodeState(state interface{}) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return json.Marshal(model.PersistedState{State: raw, Version: model.SnapshotVersion})
}

// DecodeState unwraps the persisted envelope into dst.
func DecodeState(data []byte, dst interface{}) error {
	var envelope model.PersistedState
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.Version != model.SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", envelope.Version)
	}
	if len(envelope.State) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.State, dst); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	return nil
}
