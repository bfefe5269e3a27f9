package settlement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gwskins/GWSkins_Go/internal/domain"
	"github.com/gwskins/GWSkins_Go/internal/repository"
)

// fakeLedger is an in-memory Settlement implementation with the same
// reservation and compare-and-set semantics as the postgres repository.
type fakeLedger struct {
	mu            sync.Mutex
	entries       map[string]repository.EntryWithPrice
	balances      map[string]domain.Money
	deliveries    map[string]*domain.DeliveryRequest
	deliveryItems map[string][]string
	deliverySeq   int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		entries:       make(map[string]repository.EntryWithPrice),
		balances:      make(map[string]domain.Money),
		deliveries:    make(map[string]*domain.DeliveryRequest),
		deliveryItems: make(map[string][]string),
	}
}

func (f *fakeLedger) addEntry(entryID, userID string, price domain.Money, marketHashName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[entryID] = repository.EntryWithPrice{
		Entry: domain.InventoryEntry{ID: entryID, UserID: userID, SkinID: "skin-" + entryID},
		Skin:  domain.Skin{ID: "skin-" + entryID, Price: price, MarketHashName: marketHashName},
	}
}

func (f *fakeLedger) balance(userID string) domain.Money {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID]
}

func (f *fakeLedger) entryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *fakeLedger) delivery(id string) *domain.DeliveryRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.deliveries[id]; ok {
		cp := *d
		return &cp
	}
	return nil
}

func (f *fakeLedger) reservedLocked(entryID string) bool {
	for id, d := range f.deliveries {
		if d.State.Terminal() {
			continue
		}
		for _, e := range f.deliveryItems[id] {
			if e == entryID {
				return true
			}
		}
	}
	return false
}

func (f *fakeLedger) BeginTx(ctx context.Context) (repository.Tx, error) {
	// pgx refuses to begin on a dead context; the fake does the same so
	// cleanup paths cannot lean on a canceled caller context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &fakeTx{ledger: f}, nil
}

func (f *fakeLedger) GetDelivery(ctx context.Context, deliveryID string) (*domain.DeliveryRequest, error) {
	if d := f.delivery(deliveryID); d != nil {
		return d, nil
	}
	return nil, domain.ErrDeliveryNotFound
}

func (f *fakeLedger) GetDeliveryByProposalID(ctx context.Context, proposalID string) (*domain.DeliveryRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.deliveries {
		if d.ProposalID == proposalID && proposalID != "" {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrDeliveryNotFound
}

func (f *fakeLedger) ListDeliveriesByState(ctx context.Context, state domain.DeliveryState) ([]domain.DeliveryRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.DeliveryRequest
	for _, d := range f.deliveries {
		if d.State == state {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeLedger) MarkDispatched(ctx context.Context, deliveryID, proposalID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deliveries[deliveryID]
	if !ok || d.State != domain.DeliveryPending {
		return false, nil
	}
	d.State = domain.DeliveryDispatched
	d.ProposalID = proposalID
	d.UpdatedAt = time.Now()
	return true, nil
}

// fakeTx applies mutations directly; the tests exercise service logic, not
// rollback isolation.
type fakeTx struct {
	ledger *fakeLedger
	closed bool
}

func (t *fakeTx) GetEntryWithPriceForUpdate(ctx context.Context, entryID string) (*repository.EntryWithPrice, error) {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	e, ok := t.ledger.entries[entryID]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	cp := e
	return &cp, nil
}

func (t *fakeTx) ListEligibleEntriesForUpdate(ctx context.Context, userID string) ([]repository.EntryWithPrice, error) {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	var out []repository.EntryWithPrice
	for id, e := range t.ledger.entries {
		if e.Entry.UserID != userID {
			continue
		}
		if t.ledger.reservedLocked(id) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (t *fakeTx) EntryReserved(ctx context.Context, entryID string) (bool, error) {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	return t.ledger.reservedLocked(entryID), nil
}

func (t *fakeTx) DeleteEntries(ctx context.Context, entryIDs []string) error {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	for _, id := range entryIDs {
		if _, ok := t.ledger.entries[id]; !ok {
			return domain.ErrEntryNotFound
		}
		delete(t.ledger.entries, id)
	}
	return nil
}

func (t *fakeTx) CreditBalance(ctx context.Context, userID string, amount domain.Money) error {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	t.ledger.balances[userID] += amount
	return nil
}

// CreateDelivery mints the delivery id, mirroring the RETURNING clause of
// the postgres repository.
func (t *fakeTx) CreateDelivery(ctx context.Context, req *domain.DeliveryRequest) error {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	t.ledger.deliverySeq++
	req.ID = fmt.Sprintf("delivery-%d", t.ledger.deliverySeq)
	cp := *req
	t.ledger.deliveries[req.ID] = &cp
	t.ledger.deliveryItems[req.ID] = append([]string(nil), req.EntryIDs...)
	return nil
}

func (t *fakeTx) DeliveryEntryIDs(ctx context.Context, deliveryID string) ([]string, error) {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	return append([]string(nil), t.ledger.deliveryItems[deliveryID]...), nil
}

func (t *fakeTx) MarkTerminal(ctx context.Context, deliveryID string, from, to domain.DeliveryState, outcome domain.DeliveryOutcome) (bool, error) {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	d, ok := t.ledger.deliveries[deliveryID]
	if !ok || d.State != from {
		return false, nil
	}
	d.State = to
	d.Outcome = outcome
	d.UpdatedAt = time.Now()
	return true, nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.closed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.closed = true
	return nil
}
