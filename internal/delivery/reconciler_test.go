package delivery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwskins/GWSkins_Go/internal/domain"
	"github.com/gwskins/GWSkins_Go/internal/repository"
	"github.com/gwskins/GWSkins_Go/internal/steam"
	"github.com/gwskins/GWSkins_Go/internal/testing/leaktest"
)

// testLedger is a minimal in-memory repository.Settlement for reconciler
// tests. Terminal transitions keep the postgres compare-and-set semantics.
type testLedger struct {
	mu            sync.Mutex
	entries       map[string]struct{}
	deliveries    map[string]*domain.DeliveryRequest
	deliveryItems map[string][]string
}

func newTestLedger() *testLedger {
	return &testLedger{
		entries:       make(map[string]struct{}),
		deliveries:    make(map[string]*domain.DeliveryRequest),
		deliveryItems: make(map[string][]string),
	}
}

func (l *testLedger) addDispatched(deliveryID, proposalID string, entryIDs ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range entryIDs {
		l.entries[id] = struct{}{}
	}
	l.deliveries[deliveryID] = &domain.DeliveryRequest{
		ID:         deliveryID,
		UserID:     "user-1",
		EntryIDs:   entryIDs,
		State:      domain.DeliveryDispatched,
		ProposalID: proposalID,
	}
	l.deliveryItems[deliveryID] = append([]string(nil), entryIDs...)
}

func (l *testLedger) addPending(deliveryID string, updatedAt time.Time, entryIDs ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range entryIDs {
		l.entries[id] = struct{}{}
	}
	l.deliveries[deliveryID] = &domain.DeliveryRequest{
		ID:        deliveryID,
		UserID:    "user-1",
		EntryIDs:  entryIDs,
		State:     domain.DeliveryPending,
		UpdatedAt: updatedAt,
	}
	l.deliveryItems[deliveryID] = append([]string(nil), entryIDs...)
}

func (l *testLedger) delivery(id string) *domain.DeliveryRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d, ok := l.deliveries[id]; ok {
		cp := *d
		return &cp
	}
	return nil
}

func (l *testLedger) entryCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *testLedger) BeginTx(ctx context.Context) (repository.Tx, error) {
	return &testLedgerTx{ledger: l}, nil
}

func (l *testLedger) GetDelivery(ctx context.Context, deliveryID string) (*domain.DeliveryRequest, error) {
	if d := l.delivery(deliveryID); d != nil {
		return d, nil
	}
	return nil, domain.ErrDeliveryNotFound
}

func (l *testLedger) GetDeliveryByProposalID(ctx context.Context, proposalID string) (*domain.DeliveryRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range l.deliveries {
		if d.ProposalID == proposalID && proposalID != "" {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrDeliveryNotFound
}

func (l *testLedger) ListDeliveriesByState(ctx context.Context, state domain.DeliveryState) ([]domain.DeliveryRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.DeliveryRequest
	for _, d := range l.deliveries {
		if d.State == state {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (l *testLedger) MarkDispatched(ctx context.Context, deliveryID, proposalID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.deliveries[deliveryID]
	if !ok || d.State != domain.DeliveryPending {
		return false, nil
	}
	d.State = domain.DeliveryDispatched
	d.ProposalID = proposalID
	return true, nil
}

type testLedgerTx struct {
	ledger *testLedger
}

func (t *testLedgerTx) GetEntryWithPriceForUpdate(ctx context.Context, entryID string) (*repository.EntryWithPrice, error) {
	return nil, domain.ErrEntryNotFound
}

func (t *testLedgerTx) ListEligibleEntriesForUpdate(ctx context.Context, userID string) ([]repository.EntryWithPrice, error) {
	return nil, nil
}

func (t *testLedgerTx) EntryReserved(ctx context.Context, entryID string) (bool, error) {
	return false, nil
}

func (t *testLedgerTx) DeleteEntries(ctx context.Context, entryIDs []string) error {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	for _, id := range entryIDs {
		delete(t.ledger.entries, id)
	}
	return nil
}

func (t *testLedgerTx) CreditBalance(ctx context.Context, userID string, amount domain.Money) error {
	return nil
}

func (t *testLedgerTx) CreateDelivery(ctx context.Context, req *domain.DeliveryRequest) error {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	cp := *req
	t.ledger.deliveries[req.ID] = &cp
	t.ledger.deliveryItems[req.ID] = append([]string(nil), req.EntryIDs...)
	return nil
}

func (t *testLedgerTx) DeliveryEntryIDs(ctx context.Context, deliveryID string) ([]string, error) {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	return append([]string(nil), t.ledger.deliveryItems[deliveryID]...), nil
}

func (t *testLedgerTx) MarkTerminal(ctx context.Context, deliveryID string, from, to domain.DeliveryState, outcome domain.DeliveryOutcome) (bool, error) {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	d, ok := t.ledger.deliveries[deliveryID]
	if !ok || d.State != from {
		return false, nil
	}
	d.State = to
	d.Outcome = outcome
	return true, nil
}

func (t *testLedgerTx) Commit(ctx context.Context) error   { return nil }
func (t *testLedgerTx) Rollback(ctx context.Context) error { return nil }

func startReconciler(t *testing.T, ledger *testLedger, platform *fakePlatform) *Reconciler {
	t.Helper()
	r := NewReconciler(ledger, platform, newTestCustody(platform), nil)
	r.Start(context.Background())
	t.Cleanup(r.Stop)
	return r
}

func waitForState(t *testing.T, ledger *testLedger, deliveryID string, want domain.DeliveryState) {
	t.Helper()
	require.Eventually(t, func() bool {
		d := ledger.delivery(deliveryID)
		return d != nil && d.State == want
	}, 2*time.Second, 5*time.Millisecond)
}

func TestReconciler_AcceptedFinalizesAndDeletesEntries(t *testing.T) {
	ledger := newTestLedger()
	ledger.addDispatched("d1", "prop-1", "e1", "e2")
	platform := newFakePlatform()
	startReconciler(t, ledger, platform)

	platform.emit(steam.Event{Type: steam.EventTradeOutcome, ProposalID: "prop-1", Outcome: "accepted"})

	waitForState(t, ledger, "d1", domain.DeliveryFinalized)
	assert.Equal(t, domain.OutcomeAccepted, ledger.delivery("d1").Outcome)
	assert.Equal(t, 0, ledger.entryCount())
}

func TestReconciler_DeclinedReversesAndKeepsEntries(t *testing.T) {
	ledger := newTestLedger()
	ledger.addDispatched("d1", "prop-1", "e1")
	platform := newFakePlatform()
	startReconciler(t, ledger, platform)

	platform.emit(steam.Event{Type: steam.EventTradeOutcome, ProposalID: "prop-1", Outcome: "declined"})

	waitForState(t, ledger, "d1", domain.DeliveryReversed)
	assert.Equal(t, domain.OutcomeDeclined, ledger.delivery("d1").Outcome)
	assert.Equal(t, 1, ledger.entryCount())
}

func TestReconciler_CanceledAndErrorReverse(t *testing.T) {
	for _, outcome := range []string{"canceled", "error"} {
		t.Run(outcome, func(t *testing.T) {
			ledger := newTestLedger()
			ledger.addDispatched("d1", "prop-1", "e1")
			platform := newFakePlatform()
			startReconciler(t, ledger, platform)

			platform.emit(steam.Event{Type: steam.EventTradeOutcome, ProposalID: "prop-1", Outcome: outcome})

			waitForState(t, ledger, "d1", domain.DeliveryReversed)
			assert.Equal(t, domain.DeliveryOutcome(outcome), ledger.delivery("d1").Outcome)
			assert.Equal(t, 1, ledger.entryCount())
		})
	}
}

func TestReconciler_DuplicateOutcomeIsNoOp(t *testing.T) {
	ledger := newTestLedger()
	ledger.addDispatched("d1", "prop-1", "e1")
	platform := newFakePlatform()
	startReconciler(t, ledger, platform)

	platform.emit(steam.Event{Type: steam.EventTradeOutcome, ProposalID: "prop-1", Outcome: "accepted"})
	waitForState(t, ledger, "d1", domain.DeliveryFinalized)

	// Redelivered event lands on a terminal request and must change nothing.
	platform.emit(steam.Event{Type: steam.EventTradeOutcome, ProposalID: "prop-1", Outcome: "declined"})
	time.Sleep(50 * time.Millisecond)

	d := ledger.delivery("d1")
	assert.Equal(t, domain.DeliveryFinalized, d.State)
	assert.Equal(t, domain.OutcomeAccepted, d.Outcome)
}

func TestReconciler_UnknownProposalDiscarded(t *testing.T) {
	ledger := newTestLedger()
	ledger.addDispatched("d1", "prop-1", "e1")
	platform := newFakePlatform()
	startReconciler(t, ledger, platform)

	platform.emit(steam.Event{Type: steam.EventTradeOutcome, ProposalID: "prop-unknown", Outcome: "accepted"})
	time.Sleep(50 * time.Millisecond)

	d := ledger.delivery("d1")
	assert.Equal(t, domain.DeliveryDispatched, d.State)
	assert.Equal(t, 1, ledger.entryCount())
}

func TestReconciler_RecoverReversesAbandonedPending(t *testing.T) {
	ledger := newTestLedger()
	ledger.addPending("d-stale", time.Now().Add(-2*time.Minute), "e1")
	ledger.addPending("d-fresh", time.Now(), "e2")
	platform := newFakePlatform()
	startReconciler(t, ledger, platform)

	// A pending row older than the grace window has no dispatch loop left
	// alive; startup must reverse it so its reservation releases.
	stale := ledger.delivery("d-stale")
	assert.Equal(t, domain.DeliveryReversed, stale.State)
	assert.Equal(t, domain.OutcomeError, stale.Outcome)

	// A recent pending row may still belong to an in-flight request.
	assert.Equal(t, domain.DeliveryPending, ledger.delivery("d-fresh").State)

	// Reversal keeps the entry rows; the user still owns the items.
	assert.Equal(t, 2, ledger.entryCount())
}

func TestReconciler_IncomingOfferDeclined(t *testing.T) {
	ledger := newTestLedger()
	platform := newFakePlatform()
	startReconciler(t, ledger, platform)

	platform.emit(steam.Event{Type: steam.EventIncomingOffer, ProposalID: "in-1", Partner: "76561198000000002", ItemsToReceive: 3})

	require.Eventually(t, func() bool {
		return len(platform.declinedOffers()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"in-1"}, platform.declinedOffers())
}

func TestReconciler_StopWithoutLeaks(t *testing.T) {
	leaktest.CheckNoGoroutineLeak(t, func() {
		ledger := newTestLedger()
		platform := newFakePlatform()
		r := NewReconciler(ledger, platform, newTestCustody(platform), nil)
		r.Start(context.Background())
		r.Stop()
	})
}
