package domain

import "time"

// InventoryEntry records internal custody of one unit of a skin. An entry is
// created when the user acquires the skin and deleted when it is liquidated
// or when an accepted delivery moves ownership to the external platform.
// Exactly one entry exists per internally held unit.
type InventoryEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	SkinID     string    `json:"skin_id"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// InventoryItem is an entry joined with its catalog data, as returned by the
// inventory listing.
type InventoryItem struct {
	EntryID  string `json:"entry_id"`
	SkinID   string `json:"skin_id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	Price    Money  `json:"price"`
}
