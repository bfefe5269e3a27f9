package delivery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gwskins/GWSkins_Go/internal/custody"
	"github.com/gwskins/GWSkins_Go/internal/domain"
	"github.com/gwskins/GWSkins_Go/internal/event"
	"github.com/gwskins/GWSkins_Go/internal/repository"
	"github.com/gwskins/GWSkins_Go/internal/steam"
)

// Reconciler consumes platform outcome events and applies the matching
// terminal transition to the durable delivery request. Transitions are
// compare-and-set, so a redelivered or duplicate event is a no-op.
type Reconciler struct {
	repo     repository.Settlement
	platform steam.Platform
	custody  *custody.Manager
	bus      event.Bus

	pendingGrace time.Duration
	shutdown     chan struct{}
	wg           sync.WaitGroup
}

// NewReconciler creates an outcome reconciler.
func NewReconciler(repo repository.Settlement, platform steam.Platform, custodyMgr *custody.Manager, bus event.Bus) *Reconciler {
	return &Reconciler{
		repo:         repo,
		platform:     platform,
		custody:      custodyMgr,
		bus:          bus,
		pendingGrace: DefaultPendingGrace,
		shutdown:     make(chan struct{}),
	}
}

// Start recovers in-flight deliveries and begins consuming platform events.
func (r *Reconciler) Start(ctx context.Context) {
	r.recover(ctx)

	events := r.platform.Subscribe()
	r.wg.Add(1)
	go r.run(ctx, events)
	slog.Info(LogMsgReconcilerStarted)
}

// Stop halts event consumption.
func (r *Reconciler) Stop() {
	close(r.shutdown)
	r.wg.Wait()
	slog.Info(LogMsgReconcilerStopped)
}

// recover lists deliveries still in dispatched state. Their rows carry the
// proposal id, so the redelivered outcome events the platform emits after
// reconnect land on them normally.
//
// Pending rows are different: a crash between the reservation commit and the
// dispatch record leaves them with no dispatch loop to drive them terminal,
// and their reservations would hold forever. Any pending row older than the
// dispatch retry window is reversed here.
func (r *Reconciler) recover(ctx context.Context) {
	inflight, err := r.repo.ListDeliveriesByState(ctx, domain.DeliveryDispatched)
	if err != nil {
		slog.Error("Failed to list dispatched deliveries on startup", "error", err)
		return
	}
	if len(inflight) > 0 {
		slog.Info(LogMsgRecoveredDispatched, "count", len(inflight))
	}

	pending, err := r.repo.ListDeliveriesByState(ctx, domain.DeliveryPending)
	if err != nil {
		slog.Error("Failed to list pending deliveries on startup", "error", err)
		return
	}
	cutoff := time.Now().Add(-r.pendingGrace)
	for i := range pending {
		req := &pending[i]
		if req.UpdatedAt.After(cutoff) {
			continue
		}
		slog.Warn(LogMsgAbandonedPending, "delivery_id", req.ID, "updated_at", req.UpdatedAt)
		r.reverse(ctx, req, domain.DeliveryPending, domain.OutcomeError)
	}
}

func (r *Reconciler) run(ctx context.Context, events <-chan steam.Event) {
	defer r.wg.Done()

	for {
		select {
		case <-r.shutdown:
			return
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			r.handle(ctx, evt)
		}
	}
}

func (r *Reconciler) handle(ctx context.Context, evt steam.Event) {
	switch evt.Type {
	case steam.EventTradeOutcome:
		r.applyOutcome(ctx, evt)
	case steam.EventIncomingOffer:
		r.declineIncoming(ctx, evt)
	}
}

// applyOutcome maps a trade outcome event onto the delivery request that owns
// the proposal id and drives it to its terminal state.
func (r *Reconciler) applyOutcome(ctx context.Context, evt steam.Event) {
	req, err := r.repo.GetDeliveryByProposalID(ctx, evt.ProposalID)
	if err != nil {
		if errors.Is(err, domain.ErrDeliveryNotFound) {
			// Manual trades from the agent account, or events from before
			// this deployment. Nothing to reconcile.
			slog.Warn(LogMsgUnknownProposal, "proposal_id", evt.ProposalID, "outcome", evt.Outcome)
			return
		}
		slog.Error("Failed to load delivery for proposal", "proposal_id", evt.ProposalID, "error", err)
		return
	}

	slog.Info(LogMsgOutcomeReceived,
		"delivery_id", req.ID,
		"proposal_id", evt.ProposalID,
		"outcome", evt.Outcome)

	switch evt.Outcome {
	case string(domain.OutcomeAccepted):
		r.finalize(ctx, req)
	case string(domain.OutcomeDeclined), string(domain.OutcomeCanceled), string(domain.OutcomeError):
		r.reverse(ctx, req, domain.DeliveryDispatched, domain.DeliveryOutcome(evt.Outcome))
	default:
		slog.Warn("Unrecognized trade outcome discarded", "proposal_id", evt.ProposalID, "outcome", evt.Outcome)
	}
}

// finalize deletes the delivered entries and marks the request finalized in
// one transaction. Ownership already moved externally, so the entry rows must
// not survive the commit.
func (r *Reconciler) finalize(ctx context.Context, req *domain.DeliveryRequest) {
	tx, err := r.repo.BeginTx(ctx)
	if err != nil {
		slog.Error("Failed to begin finalize transaction", "delivery_id", req.ID, "error", err)
		return
	}
	defer repository.SafeRollback(ctx, tx)

	moved, err := tx.MarkTerminal(ctx, req.ID, domain.DeliveryDispatched, domain.DeliveryFinalized, domain.OutcomeAccepted)
	if err != nil {
		slog.Error("Failed to finalize delivery", "delivery_id", req.ID, "error", err)
		return
	}
	if !moved {
		slog.Info(LogMsgStaleTransition, "delivery_id", req.ID)
		return
	}

	entryIDs, err := tx.DeliveryEntryIDs(ctx, req.ID)
	if err != nil {
		slog.Error("Failed to load delivery entries", "delivery_id", req.ID, "error", err)
		return
	}
	if err := tx.DeleteEntries(ctx, entryIDs); err != nil {
		slog.Error("Failed to delete delivered entries", "delivery_id", req.ID, "error", err)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		slog.Error("Failed to commit finalize transaction", "delivery_id", req.ID, "error", err)
		return
	}

	req.State = domain.DeliveryFinalized
	req.Outcome = domain.OutcomeAccepted
	slog.Info(LogMsgFinalized, "delivery_id", req.ID, "entries", len(entryIDs))
	r.publish(ctx, event.DeliveryFinalized, req)
}

// reverse marks the request reversed. The entry rows stay untouched, which is
// exactly what releases the reservation.
func (r *Reconciler) reverse(ctx context.Context, req *domain.DeliveryRequest, from domain.DeliveryState, outcome domain.DeliveryOutcome) {
	tx, err := r.repo.BeginTx(ctx)
	if err != nil {
		slog.Error("Failed to begin reverse transaction", "delivery_id", req.ID, "error", err)
		return
	}
	defer repository.SafeRollback(ctx, tx)

	moved, err := tx.MarkTerminal(ctx, req.ID, from, domain.DeliveryReversed, outcome)
	if err != nil {
		slog.Error("Failed to reverse delivery", "delivery_id", req.ID, "error", err)
		return
	}
	if !moved {
		slog.Info(LogMsgStaleTransition, "delivery_id", req.ID)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		slog.Error("Failed to commit reverse transaction", "delivery_id", req.ID, "error", err)
		return
	}

	req.State = domain.DeliveryReversed
	req.Outcome = outcome
	slog.Info(LogMsgReversed, "delivery_id", req.ID, "outcome", outcome)
	r.publish(ctx, event.DeliveryReversed, req)
}

// declineIncoming rejects offers initiated by other accounts. The agent only
// ever gives items away through its own proposals; anything arriving inbound
// is unsolicited and auto-declined.
func (r *Reconciler) declineIncoming(ctx context.Context, evt steam.Event) {
	channel, err := r.custody.EnsureAuthenticated(ctx)
	if err != nil {
		slog.Error(LogMsgIncomingDeclineFail, "proposal_id", evt.ProposalID, "error", err)
		return
	}
	if err := channel.DeclineOffer(ctx, evt.ProposalID); err != nil {
		slog.Error(LogMsgIncomingDeclineFail, "proposal_id", evt.ProposalID, "error", err)
		return
	}
	slog.Info(LogMsgIncomingDeclined, "proposal_id", evt.ProposalID, "partner", evt.Partner)
}

func (r *Reconciler) publish(ctx context.Context, t event.Type, req *domain.DeliveryRequest) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, event.NewDeliveryEvent(t, req)); err != nil {
		slog.Warn("Failed to publish delivery event", "delivery_id", req.ID, "error", err)
	}
}
