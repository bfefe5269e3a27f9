package repository

import (
	"context"

	"github.com/gwskins/GWSkins_Go/internal/domain"
)

// Catalog defines the interface for catalog persistence. Catalog rows are
// immutable; there are no write methods.
type Catalog interface {
	ListCases(ctx context.Context) ([]domain.Case, error)
	ListSkinsByCase(ctx context.Context, caseID string) ([]domain.Skin, error)
	GetSkin(ctx context.Context, skinID string) (*domain.Skin, error)
}
