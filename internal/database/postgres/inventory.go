package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gwskins/GWSkins_Go/internal/domain"
)

// InventoryRepository implements the inventory repository for PostgreSQL
type InventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository creates a new InventoryRepository
func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// AddEntry creates one inventory entry for the user
func (r *InventoryRepository) AddEntry(ctx context.Context, userID, skinID string) (*domain.InventoryEntry, error) {
	query := `
		INSERT INTO inventory (user_id, skin_id, acquired_at)
		VALUES ($1, $2, NOW())
		RETURNING entry_id, user_id, skin_id, acquired_at
	`
	var e domain.InventoryEntry
	err := r.db.QueryRow(ctx, query, userID, skinID).Scan(&e.ID, &e.UserID, &e.SkinID, &e.AcquiredAt)
	if err != nil {
		var pgErr interface{ SQLState() string }
		if errors.As(err, &pgErr) && pgErr.SQLState() == "23503" {
			// Foreign key violation: the user or skin does not exist
			return nil, domain.ErrSkinNotFound
		}
		return nil, fmt.Errorf("failed to insert inventory entry: %w", err)
	}
	return &e, nil
}

// ListByUser returns the user's entries joined with catalog data
func (r *InventoryRepository) ListByUser(ctx context.Context, userID string) ([]domain.InventoryItem, error) {
	query := `
		SELECT inv.entry_id, s.skin_id, s.name, s.image_url, s.price
		FROM inventory inv
		JOIN skins s ON inv.skin_id = s.skin_id
		WHERE inv.user_id = $1
		ORDER BY inv.acquired_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.EntryID, &it.SkinID, &it.Name, &it.ImageURL, &it.Price); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
