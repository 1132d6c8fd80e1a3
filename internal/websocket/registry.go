package websocket

import (
	"context"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/store"
)

// RegistrySnapshot answers "sync" with the same payloads the registry
// publishes on change.
func RegistrySnapshot(registry *store.Registry) SnapshotFunc {
	return func(ctx context.Context, sessionID string) []Event {
		return []Event{
			{Type: EventCartUpdated, SessionID: sessionID, Data: registry.Cart(ctx, sessionID).Snapshot()},
			{Type: EventWishlistUpdated, SessionID: sessionID, Data: registry.Wishlist(ctx, sessionID).Snapshot()},
		}
	}
}

func eventType(storeName string) string {
	switch storeName {
	case model.CartStorageName:
		return EventCartUpdated
	case model.WishlistStorageName:
		return EventWishlistUpdated
	}
	return storeName + ".updated"
}
