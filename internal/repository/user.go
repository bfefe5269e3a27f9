package repository

import (
	"context"

	"github.com/gwskins/GWSkins_Go/internal/domain"
)

// User defines the interface for user persistence
type User interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetBySteamID(ctx context.Context, steamID string) (*domain.User, error)
	UpdateTradeURL(ctx context.Context, userID, tradeURL string) error
}
