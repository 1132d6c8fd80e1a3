package model

import (
	"encoding/json"
	"time"
)

const (
	CartStorageName     = "cart-storage"
	WishlistStorageName = "wishlist-storage"

	// SnapshotVersion is bumped when the persisted layout changes.
	SnapshotVersion = 0
)

// PersistedState is the envelope written under a storage key.
type PersistedState struct {
	State   json.RawMessage `json:"state"`
	Version int             `json:"version"`
}

// StorageSnapshot is the database row backing a storage key.
type StorageSnapshot struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StorageSnapshot) TableName() string {
	return "storage_snapshots"
}

// StorageKey names the snapshot of one store for one storefront session.
func StorageKey(name, sessionID string) string {
	return name + ":" + sessionID
}
