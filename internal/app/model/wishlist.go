package model

import "time"

type WishlistEntry struct {
	Product ProductSnapshot `json:"product"`
	AddedAt time.Time       `json:"addedAt"`
}

type WishlistSnapshot struct {
	Items []WishlistEntry `json:"items"`
}
