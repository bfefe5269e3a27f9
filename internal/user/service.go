package user

import (
	"context"
	"fmt"
	"regexp"

	"github.com/gwskins/GWSkins_Go/internal/domain"
	"github.com/gwskins/GWSkins_Go/internal/logger"
	"github.com/gwskins/GWSkins_Go/internal/repository"
)

// tradeURLPattern matches the canonical trade offer URL shape. The partner
// and token query parameters are what the transfer API actually needs.
var tradeURLPattern = regexp.MustCompile(`^https://steamcommunity\.com/tradeoffer/new/\?partner=\d+&token=[A-Za-z0-9_-]+$`)

// Wallet is a user's balance view
type Wallet struct {
	UserID  string       `json:"user_id"`
	SteamID string       `json:"steam_id"`
	Balance domain.Money `json:"balance"`
}

// Service defines the interface for user operations
type Service interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetWallet(ctx context.Context, steamID string) (*Wallet, error)
	UpdateTradeURL(ctx context.Context, userID, tradeURL string) error
}

type service struct {
	repo repository.User
}

// NewService creates a new user service
func NewService(repo repository.User) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *service) GetWallet(ctx context.Context, steamID string) (*Wallet, error) {
	if steamID == "" {
		return nil, domain.ErrInvalidInput
	}
	u, err := s.repo.GetBySteamID(ctx, steamID)
	if err != nil {
		return nil, err
	}
	return &Wallet{UserID: u.ID, SteamID: u.SteamID, Balance: u.Balance}, nil
}

func (s *service) UpdateTradeURL(ctx context.Context, userID, tradeURL string) error {
	log := logger.FromContext(ctx)

	if userID == "" {
		return domain.ErrInvalidInput
	}
	if !tradeURLPattern.MatchString(tradeURL) {
		return fmt.Errorf("%w: malformed trade URL", domain.ErrInvalidInput)
	}

	if err := s.repo.UpdateTradeURL(ctx, userID, tradeURL); err != nil {
		log.Error("Failed to update trade URL", "user_id", userID, "error", err)
		return err
	}
	log.Info("Trade URL updated", "user_id", userID)
	return nil
}
