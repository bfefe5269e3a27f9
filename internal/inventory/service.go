package inventory

import (
	"context"

	"github.com/gwskins/GWSkins_Go/internal/domain"
	"github.com/gwskins/GWSkins_Go/internal/logger"
	"github.com/gwskins/GWSkins_Go/internal/repository"
)

// Service defines the interface for inventory operations
type Service interface {
	// List returns the user's entries joined with their skins.
	List(ctx context.Context, userID string) ([]domain.InventoryItem, error)

	// Grant appends a new entry for the skin to the user's inventory. Callers
	// are the case-opening flow and operator tooling.
	Grant(ctx context.Context, userID, skinID string) (*domain.InventoryEntry, error)
}

type service struct {
	repo  repository.Inventory
	users repository.User
}

// NewService creates a new inventory service
func NewService(repo repository.Inventory, users repository.User) Service {
	return &service{repo: repo, users: users}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.InventoryItem, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Grant(ctx context.Context, userID, skinID string) (*domain.InventoryEntry, error) {
	log := logger.FromContext(ctx)

	if userID == "" || skinID == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	entry, err := s.repo.AddEntry(ctx, userID, skinID)
	if err != nil {
		log.Error("Failed to grant inventory entry", "user_id", userID, "skin_id", skinID, "error", err)
		return nil, err
	}
	log.Info("Inventory entry granted", "user_id", userID, "skin_id", skinID, "entry_id", entry.ID)
	return entry, nil
}
