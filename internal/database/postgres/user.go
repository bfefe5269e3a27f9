package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gwskins/GWSkins_Go/internal/domain"
)

// UserRepository implements the user repository for PostgreSQL
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, steam_id, name, avatar_url, balance, trade_url, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.SteamID, &u.Name, &u.AvatarURL, &u.Balance, &u.TradeURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// GetByID retrieves a user by internal id
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return scanUser(r.db.QueryRow(ctx, query, userID))
}

// GetBySteamID retrieves a user by external platform identity
func (r *UserRepository) GetBySteamID(ctx context.Context, steamID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE steam_id = $1`
	return scanUser(r.db.QueryRow(ctx, query, steamID))
}

// UpdateTradeURL stores the user's delivery destination
func (r *UserRepository) UpdateTradeURL(ctx context.Context, userID, tradeURL string) error {
	query := `UPDATE users SET trade_url = $1, updated_at = NOW() WHERE user_id = $2`
	tag, err := r.db.Exec(ctx, query, tradeURL, userID)
	if err != nil {
		return fmt.Errorf("failed to update trade url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
