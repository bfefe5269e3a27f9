package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gwskins/GWSkins_Go/internal/domain"
	"github.com/gwskins/GWSkins_Go/internal/repository"
)

// SettlementRepository implements the settlement repository for PostgreSQL
type SettlementRepository struct {
	db *pgxpool.Pool
}

// NewSettlementRepository creates a new SettlementRepository
func NewSettlementRepository(db *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{db: db}
}

// SettlementTx implements repository.Tx
type SettlementTx struct {
	tx pgx.Tx
}

// BeginTx starts a new transaction
func (r *SettlementRepository) BeginTx(ctx context.Context) (repository.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerError, err)
	}
	return &SettlementTx{tx: tx}, nil
}

const deliveryColumns = `delivery_id, user_id, destination, state, proposal_id, outcome, created_at, updated_at`

func scanDelivery(row pgx.Row) (*domain.DeliveryRequest, error) {
	var d domain.DeliveryRequest
	var outcome string
	err := row.Scan(&d.ID, &d.UserID, &d.Destination, &d.State, &d.ProposalID, &outcome, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDeliveryNotFound
		}
		return nil, fmt.Errorf("failed to scan delivery request: %w", err)
	}
	d.Outcome = domain.DeliveryOutcome(outcome)
	return &d, nil
}

func (r *SettlementRepository) loadEntryIDs(ctx context.Context, d *domain.DeliveryRequest) error {
	rows, err := r.db.Query(ctx,
		`SELECT entry_id FROM delivery_request_items WHERE delivery_id = $1`, d.ID)
	if err != nil {
		return fmt.Errorf("failed to load delivery items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan delivery item: %w", err)
		}
		d.EntryIDs = append(d.EntryIDs, id)
	}
	return rows.Err()
}

// GetDelivery retrieves a delivery request with its entry ids
func (r *SettlementRepository) GetDelivery(ctx context.Context, deliveryID string) (*domain.DeliveryRequest, error) {
	d, err := scanDelivery(r.db.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM delivery_requests WHERE delivery_id = $1`, deliveryID))
	if err != nil {
		return nil, err
	}
	if err := r.loadEntryIDs(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// GetDeliveryByProposalID retrieves a delivery request by external proposal id
func (r *SettlementRepository) GetDeliveryByProposalID(ctx context.Context, proposalID string) (*domain.DeliveryRequest, error) {
	d, err := scanDelivery(r.db.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM delivery_requests WHERE proposal_id = $1 AND proposal_id <> ''`, proposalID))
	if err != nil {
		return nil, err
	}
	if err := r.loadEntryIDs(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ListDeliveriesByState returns every delivery request in the given state
func (r *SettlementRepository) ListDeliveriesByState(ctx context.Context, state domain.DeliveryState) ([]domain.DeliveryRequest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+deliveryColumns+` FROM delivery_requests WHERE state = $1 ORDER BY created_at`, string(state))
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery requests: %w", err)
	}
	defer rows.Close()

	var out []domain.DeliveryRequest
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// MarkDispatched transitions pending -> dispatched, recording the proposal id
func (r *SettlementRepository) MarkDispatched(ctx context.Context, deliveryID, proposalID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE delivery_requests
		SET state = $1, proposal_id = $2, updated_at = NOW()
		WHERE delivery_id = $3 AND state = $4
	`, string(domain.DeliveryDispatched), proposalID, deliveryID, string(domain.DeliveryPending))
	if err != nil {
		return false, fmt.Errorf("failed to mark delivery dispatched: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Commit commits the transaction
func (t *SettlementTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLedgerError, err)
	}
	return nil
}

// Rollback rolls back the transaction
func (t *SettlementTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// GetEntryWithPriceForUpdate row-locks one entry and joins its skin
func (t *SettlementTx) GetEntryWithPriceForUpdate(ctx context.Context, entryID string) (*repository.EntryWithPrice, error) {
	query := `
		SELECT inv.entry_id, inv.user_id, inv.skin_id, inv.acquired_at,
		       s.skin_id, s.case_id, s.name, s.image_url, s.price, s.market_hash_name
		FROM inventory inv
		JOIN skins s ON inv.skin_id = s.skin_id
		WHERE inv.entry_id = $1
		FOR UPDATE OF inv
	`
	var ep repository.EntryWithPrice
	err := t.tx.QueryRow(ctx, query, entryID).Scan(
		&ep.Entry.ID, &ep.Entry.UserID, &ep.Entry.SkinID, &ep.Entry.AcquiredAt,
		&ep.Skin.ID, &ep.Skin.CaseID, &ep.Skin.Name, &ep.Skin.ImageURL, &ep.Skin.Price, &ep.Skin.MarketHashName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get inventory entry: %w", err)
	}
	return &ep, nil
}

// ListEligibleEntriesForUpdate row-locks every unreserved entry of the user
func (t *SettlementTx) ListEligibleEntriesForUpdate(ctx context.Context, userID string) ([]repository.EntryWithPrice, error) {
	query := `
		SELECT inv.entry_id, inv.user_id, inv.skin_id, inv.acquired_at,
		       s.skin_id, s.case_id, s.name, s.image_url, s.price, s.market_hash_name
		FROM inventory inv
		JOIN skins s ON inv.skin_id = s.skin_id
		WHERE inv.user_id = $1
		  AND NOT EXISTS (
			SELECT 1
			FROM delivery_request_items dri
			JOIN delivery_requests dr ON dri.delivery_id = dr.delivery_id
			WHERE dri.entry_id = inv.entry_id
			  AND dr.state NOT IN ('finalized', 'reversed')
		  )
		ORDER BY inv.acquired_at
		FOR UPDATE OF inv
	`
	rows, err := t.tx.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible entries: %w", err)
	}
	defer rows.Close()

	var out []repository.EntryWithPrice
	for rows.Next() {
		var ep repository.EntryWithPrice
		if err := rows.Scan(
			&ep.Entry.ID, &ep.Entry.UserID, &ep.Entry.SkinID, &ep.Entry.AcquiredAt,
			&ep.Skin.ID, &ep.Skin.CaseID, &ep.Skin.Name, &ep.Skin.ImageURL, &ep.Skin.Price, &ep.Skin.MarketHashName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan eligible entry: %w", err)
		}
		out = append(out, ep)
	}
	return out, rows.Err()
}

// EntryReserved reports whether the entry belongs to a non-terminal delivery
func (t *SettlementTx) EntryReserved(ctx context.Context, entryID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM delivery_request_items dri
			JOIN delivery_requests dr ON dri.delivery_id = dr.delivery_id
			WHERE dri.entry_id = $1
			  AND dr.state NOT IN ('finalized', 'reversed')
		)
	`
	var reserved bool
	if err := t.tx.QueryRow(ctx, query, entryID).Scan(&reserved); err != nil {
		return false, fmt.Errorf("failed to check reservation: %w", err)
	}
	return reserved, nil
}

// DeleteEntries removes inventory rows
func (t *SettlementTx) DeleteEntries(ctx context.Context, entryIDs []string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM inventory WHERE entry_id = ANY($1)`, entryIDs)
	if err != nil {
		return fmt.Errorf("failed to delete inventory entries: %w", err)
	}
	if tag.RowsAffected() != int64(len(entryIDs)) {
		return fmt.Errorf("%w: expected to delete %d entries, deleted %d",
			domain.ErrLedgerError, len(entryIDs), tag.RowsAffected())
	}
	return nil
}

// CreditBalance adds the amount to the user's balance
func (t *SettlementTx) CreditBalance(ctx context.Context, userID string, amount domain.Money) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE users SET balance = balance + $1, updated_at = NOW() WHERE user_id = $2`,
		int64(amount), userID)
	if err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// CreateDelivery inserts the pending request and its item associations
func (t *SettlementTx) CreateDelivery(ctx context.Context, req *domain.DeliveryRequest) error {
	query := `
		INSERT INTO delivery_requests (user_id, destination, state)
		VALUES ($1, $2, $3)
		RETURNING delivery_id, created_at, updated_at
	`
	err := t.tx.QueryRow(ctx, query, req.UserID, req.Destination, string(domain.DeliveryPending)).
		Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert delivery request: %w", err)
	}
	req.State = domain.DeliveryPending

	for _, entryID := range req.EntryIDs {
		if _, err := t.tx.Exec(ctx,
			`INSERT INTO delivery_request_items (delivery_id, entry_id) VALUES ($1, $2)`,
			req.ID, entryID); err != nil {
			return fmt.Errorf("failed to insert delivery item: %w", err)
		}
	}
	return nil
}

// DeliveryEntryIDs returns the entry ids associated with a delivery
func (t *SettlementTx) DeliveryEntryIDs(ctx context.Context, deliveryID string) ([]string, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT entry_id FROM delivery_request_items WHERE delivery_id = $1`, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery items: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan delivery item: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkTerminal is the compare-and-set terminal transition
func (t *SettlementTx) MarkTerminal(ctx context.Context, deliveryID string, from, to domain.DeliveryState, outcome domain.DeliveryOutcome) (bool, error) {
	if !to.Terminal() {
		return false, fmt.Errorf("%w: %q is not a terminal state", domain.ErrInvalidInput, to)
	}
	tag, err := t.tx.Exec(ctx, `
		UPDATE delivery_requests
		SET state = $1, outcome = $2, updated_at = NOW()
		WHERE delivery_id = $3 AND state = $4
	`, string(to), string(outcome), deliveryID, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to mark delivery terminal: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
