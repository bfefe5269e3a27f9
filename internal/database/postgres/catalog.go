package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gwskins/GWSkins_Go/internal/domain"
)

// CatalogRepository implements the catalog repository for PostgreSQL
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListCases returns every case in the catalog
func (r *CatalogRepository) ListCases(ctx context.Context) ([]domain.Case, error) {
	rows, err := r.db.Query(ctx, `SELECT case_id, name, image_url FROM cases ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	var cases []domain.Case
	for rows.Next() {
		var c domain.Case
		if err := rows.Scan(&c.ID, &c.Name, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

const skinColumns = `skin_id, case_id, name, image_url, price, market_hash_name`

// ListSkinsByCase returns the skins belonging to a case
func (r *CatalogRepository) ListSkinsByCase(ctx context.Context, caseID string) ([]domain.Skin, error) {
	rows, err := r.db.Query(ctx, `SELECT `+skinColumns+` FROM skins WHERE case_id = $1 ORDER BY name`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skins: %w", err)
	}
	defer rows.Close()

	var skins []domain.Skin
	for rows.Next() {
		var s domain.Skin
		if err := rows.Scan(&s.ID, &s.CaseID, &s.Name, &s.ImageURL, &s.Price, &s.MarketHashName); err != nil {
			return nil, fmt.Errorf("failed to scan skin: %w", err)
		}
		skins = append(skins, s)
	}
	return skins, rows.Err()
}

// GetSkin retrieves one skin by id
func (r *CatalogRepository) GetSkin(ctx context.Context, skinID string) (*domain.Skin, error) {
	var s domain.Skin
	err := r.db.QueryRow(ctx, `SELECT `+skinColumns+` FROM skins WHERE skin_id = $1`, skinID).
		Scan(&s.ID, &s.CaseID, &s.Name, &s.ImageURL, &s.Price, &s.MarketHashName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSkinNotFound
		}
		return nil, fmt.Errorf("failed to get skin: %w", err)
	}
	return &s, nil
}
