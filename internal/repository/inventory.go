package repository

import (
	"context"

	"github.com/gwskins/GWSkins_Go/internal/domain"
)

// Inventory defines the interface for inventory persistence outside of
// settlement transactions.
type Inventory interface {
	AddEntry(ctx context.Context, userID, skinID string) (*domain.InventoryEntry, error)
	ListByUser(ctx context.Context, userID string) ([]domain.InventoryItem, error)
}
