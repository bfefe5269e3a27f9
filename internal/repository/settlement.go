package repository

import (
	"context"

	"github.com/gwskins/GWSkins_Go/internal/domain"
)

// EntryWithPrice is an inventory entry joined with its skin, as read under a
// settlement transaction.
type EntryWithPrice struct {
	Entry domain.InventoryEntry
	Skin  domain.Skin
}

// Settlement defines the interface for settlement and delivery persistence.
// Everything that touches balances, inventory rows, and delivery state goes
// through here so the invariants live in one place.
type Settlement interface {
	BeginTx(ctx context.Context) (Tx, error)

	GetDelivery(ctx context.Context, deliveryID string) (*domain.DeliveryRequest, error)
	GetDeliveryByProposalID(ctx context.Context, proposalID string) (*domain.DeliveryRequest, error)
	ListDeliveriesByState(ctx context.Context, state domain.DeliveryState) ([]domain.DeliveryRequest, error)

	// MarkDispatched transitions pending -> dispatched, recording the external
	// proposal id. Returns false if the request was not in pending.
	MarkDispatched(ctx context.Context, deliveryID, proposalID string) (bool, error)
}

// Tx defines the interface for settlement transactions. Terminal delivery
// transitions and the ledger mutations they imply must share one transaction.
type Tx interface {
	// GetEntryWithPriceForUpdate row-locks one entry and joins its skin.
	// Returns domain.ErrEntryNotFound if absent.
	GetEntryWithPriceForUpdate(ctx context.Context, entryID string) (*EntryWithPrice, error)

	// ListEligibleEntriesForUpdate row-locks every entry of the user that is
	// not attached to a non-terminal delivery request.
	ListEligibleEntriesForUpdate(ctx context.Context, userID string) ([]EntryWithPrice, error)

	// EntryReserved reports whether the entry is attached to a non-terminal
	// delivery request.
	EntryReserved(ctx context.Context, entryID string) (bool, error)

	DeleteEntries(ctx context.Context, entryIDs []string) error
	CreditBalance(ctx context.Context, userID string, amount domain.Money) error

	// CreateDelivery inserts the request in pending state together with its
	// item associations; the insert is the reservation.
	CreateDelivery(ctx context.Context, req *domain.DeliveryRequest) error

	// DeliveryEntryIDs returns the entry ids associated with a delivery.
	DeliveryEntryIDs(ctx context.Context, deliveryID string) ([]string, error)

	// MarkTerminal is the compare-and-set terminal transition: it moves the
	// request from the given state to Finalized or Reversed and records the
	// outcome. Returns false without error when the request was not in the
	// expected state, which makes redelivered events no-ops.
	MarkTerminal(ctx context.Context, deliveryID string, from, to domain.DeliveryState, outcome domain.DeliveryOutcome) (bool, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
