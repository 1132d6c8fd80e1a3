package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/repository"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegistry(t *testing.T) (*Registry, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRegistry(repository.NewRedisSnapshotRepository(client, time.Hour)), mr
}

func TestRegistry_PersistsAcrossReload(t *testing.T) {
	registry, mr := setupRegistry(t)
	ctx := context.Background()

	cart := registry.Cart(ctx, "s1")
	cart.AddItem(product(1, "100"), "M", "Red", 2)
	cart.Open()
	registry.Wishlist(ctx, "s1").AddItem(product(9, "40"))

	assert.True(t, mr.Exists("cart-storage:s1"))
	assert.True(t, mr.Exists("wishlist-storage:s1"))

	raw, err := mr.Get("cart-storage:s1")
	require.NoError(t, err)
	assert.Contains(t, raw, `"version":0`)
	assert.Contains(t, raw, `"selectedSize":"M"`)
	assert.NotContains(t, raw, "isOpen")

	registry.Evict("s1")

	reloaded := registry.Cart(ctx, "s1")
	assert.NotSame(t, cart, reloaded)
	assert.False(t, reloaded.IsOpen())
	item, ok := findLine(reloaded, 1, "M", "Red")
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, decimal.NewFromInt(200).Equal(reloaded.Total()))

	assert.True(t, registry.Wishlist(ctx, "s1").IsInWishlist(9))
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	registry, _ := setupRegistry(t)
	ctx := context.Background()

	registry.Cart(ctx, "a").AddItem(product(1, "10"), "", "", 1)

	assert.Same(t, registry.Cart(ctx, "a"), registry.Cart(ctx, "a"))
	assert.True(t, registry.Cart(ctx, "b").IsEmpty())
}

func TestRegistry_UnreadableSnapshotStartsEmpty(t *testing.T) {
	registry, mr := setupRegistry(t)
	ctx := context.Background()

	mr.Set("cart-storage:s1", "{broken")
	mr.Set("wishlist-storage:s1", `{"state":{"items":[]},"version":3}`)

	assert.True(t, registry.Cart(ctx, "s1").IsEmpty())
	assert.Equal(t, 0, registry.Wishlist(ctx, "s1").Count())
}

func TestRegistry_StorageUnavailableKeepsMemoryState(t *testing.T) {
	registry, mr := setupRegistry(t)
	ctx := context.Background()
	mr.Close()

	cart := registry.Cart(ctx, "s1")
	cart.AddItem(product(1, "10"), "S", "Red", 1)

	assert.Equal(t, 1, cart.ItemCount())
}

func TestEncodeDecodeState(t *testing.T) {
	data, err := EncodeState(model.CartSnapshot{Items: []model.LineItem{
		{Product: product(1, "12.50"), Size: "M", Color: "Red", Quantity: 2},
	}})
	require.NoError(t, err)

	var snapshot model.CartSnapshot
	require.NoError(t, DecodeState(data, &snapshot))
	require.Len(t, snapshot.Items, 1)
	assert.True(t, decimal.RequireFromString("12.5").Equal(snapshot.Items[0].Product.Price))

	assert.Error(t, DecodeState([]byte(`{"state":{},"version":1}`), &snapshot))
	assert.NoError(t, DecodeState([]byte(`{"version":0}`), &snapshot))
}

func TestRegistry_NotifiesListenerAfterSave(t *testing.T) {
	registry, _ := setupRegistry(t)
	ctx := context.Background()

	type change struct {
		sessionID string
		storeName string
	}
	var changes []change
	registry.SetListener(func(sessionID, storeName string, state interface{}) {
		changes = append(changes, change{sessionID, storeName})
		if storeName == model.CartStorageName {
			snapshot, ok := state.(model.CartSnapshot)
			require.True(t, ok)
			assert.Len(t, snapshot.Items, 1)
		}
	})

	registry.Cart(ctx, "s1").AddItem(product(1, "10"), "M", "Red", 1)
	registry.Wishlist(ctx, "s1").AddItem(product(2, "20"))

	assert.Equal(t, []change{
		{"s1", model.CartStorageName},
		{"s1", model.WishlistStorageName},
	}, changes)
}

func TestRegistry_EvictIdle(t *testing.T) {
	registry, _ := setupRegistry(t)
	ctx := context.Background()

	clock := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return clock }

	registry.Cart(ctx, "idle").AddItem(product(1, "100"), "M", "Red", 1)
	clock = clock.Add(20 * time.Minute)
	registry.Wishlist(ctx, "active").AddItem(product(9, "40"))
	clock = clock.Add(15 * time.Minute)

	evicted := registry.EvictIdle(30 * time.Minute)

	assert.Equal(t, []string{"idle"}, evicted)
	assert.Equal(t, 1, registry.Sessions())

	// the persisted cart comes back on the next access
	assert.Equal(t, 1, registry.Cart(ctx, "idle").ItemCount())
	assert.Equal(t, 2, registry.Sessions())
	assert.Empty(t, registry.EvictIdle(30*time.Minute))
}
