package catalog

import (
	"context"

	"github.com/gwskins/GWSkins_Go/internal/domain"
	"github.com/gwskins/GWSkins_Go/internal/logger"
	"github.com/gwskins/GWSkins_Go/internal/repository"
)

// Service defines the interface for catalog operations
type Service interface {
	ListCases(ctx context.Context) ([]domain.Case, error)
	ListSkinsByCase(ctx context.Context, caseID string) ([]domain.Skin, error)
	GetSkin(ctx context.Context, skinID string) (*domain.Skin, error)
}

type service struct {
	repo  repository.Catalog
	cache *catalogCache
}

// NewService creates a new catalog service
func NewService(repo repository.Catalog) Service {
	return &service{
		repo:  repo,
		cache: newCatalogCache(),
	}
}

func (s *service) ListCases(ctx context.Context) ([]domain.Case, error) {
	if cases, ok := s.cache.GetCases(); ok {
		return cases, nil
	}

	cases, err := s.repo.ListCases(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to list cases", "error", err)
		return nil, err
	}
	s.cache.SetCases(cases)
	return cases, nil
}

func (s *service) ListSkinsByCase(ctx context.Context, caseID string) ([]domain.Skin, error) {
	if caseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if skins, ok := s.cache.GetSkins(caseID); ok {
		return skins, nil
	}

	skins, err := s.repo.ListSkinsByCase(ctx, caseID)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to list skins", "case_id", caseID, "error", err)
		return nil, err
	}
	s.cache.SetSkins(caseID, skins)
	return skins, nil
}

func (s *service) GetSkin(ctx context.Context, skinID string) (*domain.Skin, error) {
	if skinID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.GetSkin(ctx, skinID)
}
