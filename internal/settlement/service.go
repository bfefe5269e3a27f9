package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gwskins/GWSkins_Go/internal/delivery"
	"github.com/gwskins/GWSkins_Go/internal/domain"
	"github.com/gwskins/GWSkins_Go/internal/event"
	"github.com/gwskins/GWSkins_Go/internal/logger"
	"github.com/gwskins/GWSkins_Go/internal/repository"
	"github.com/gwskins/GWSkins_Go/internal/steam"
)

// LiquidateResult contains the result of a liquidation
type LiquidateResult struct {
	Credited  domain.Money `json:"credited"`
	ItemsSold int          `json:"items_sold"`
}

// Service defines the interface for settlement operations
type Service interface {
	// LiquidateOne converts a single owned, unreserved entry into balance.
	LiquidateOne(ctx context.Context, userID, entryID string) (*LiquidateResult, error)

	// LiquidateAll converts every eligible entry of the user into balance.
	// Succeeds with a zero result when nothing is eligible.
	LiquidateAll(ctx context.Context, userID string) (*LiquidateResult, error)

	// RequestDelivery reserves the entries, dispatches a transfer proposal
	// and returns the dispatched request. The outcome arrives asynchronously.
	RequestDelivery(ctx context.Context, userID string, entryIDs []string) (*domain.DeliveryRequest, error)

	// GetDelivery returns a delivery request by id.
	GetDelivery(ctx context.Context, deliveryID string) (*domain.DeliveryRequest, error)

	// AgentInventory returns the custodial agent's tradable inventory.
	AgentInventory(ctx context.Context) ([]steam.AssetRef, error)
}

// Dispatcher defines the interface for proposal dispatch
type Dispatcher interface {
	Dispatch(ctx context.Context, req *domain.DeliveryRequest, entries []repository.EntryWithPrice, dest steam.Destination) (string, error)
}

// Custodian defines the slice of the custody manager the service uses
type Custodian interface {
	Snapshot() []steam.AssetRef
	RefreshInventory(ctx context.Context) error
}

type service struct {
	repo       repository.Settlement
	users      repository.User
	dispatcher Dispatcher
	custodian  Custodian
	bus        event.Bus

	retryCap int
	backoff  time.Duration
}

// NewService creates a new settlement service
func NewService(repo repository.Settlement, users repository.User, dispatcher Dispatcher, custodian Custodian, bus event.Bus, retryCap int, backoff time.Duration) Service {
	if retryCap < 1 {
		retryCap = 1
	}
	return &service{
		repo:       repo,
		users:      users,
		dispatcher: dispatcher,
		custodian:  custodian,
		bus:        bus,
		retryCap:   retryCap,
		backoff:    backoff,
	}
}

func (s *service) LiquidateOne(ctx context.Context, userID, entryID string) (*LiquidateResult, error) {
	log := logger.FromContext(ctx)

	if userID == "" || entryID == "" {
		return nil, domain.ErrInvalidInput
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	ewp, err := tx.GetEntryWithPriceForUpdate(ctx, entryID)
	if err != nil {
		return nil, err
	}
	// Ownership failures look identical to absence so entry ids cannot be
	// probed across users.
	if ewp.Entry.UserID != userID {
		return nil, domain.ErrEntryNotFound
	}

	reserved, err := tx.EntryReserved(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to check reservation: %w", err)
	}
	if reserved {
		return nil, domain.ErrEntryReserved
	}

	if err := tx.DeleteEntries(ctx, []string{entryID}); err != nil {
		return nil, fmt.Errorf("failed to delete entry: %w", err)
	}
	if err := tx.CreditBalance(ctx, userID, ewp.Skin.Price); err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit liquidation: %w", err)
	}

	log.Info(LogMsgLiquidated, "user_id", userID, "entries", 1, "credited", ewp.Skin.Price)
	s.publish(ctx, event.NewItemLiquidatedEvent(userID, []string{entryID}, ewp.Skin.Price))

	return &LiquidateResult{Credited: ewp.Skin.Price, ItemsSold: 1}, nil
}

func (s *service) LiquidateAll(ctx context.Context, userID string) (*LiquidateResult, error) {
	log := logger.FromContext(ctx)

	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	eligible, err := tx.ListEligibleEntriesForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible entries: %w", err)
	}
	if len(eligible) == 0 {
		log.Info(LogMsgNothingToSell, "user_id", userID)
		return &LiquidateResult{}, nil
	}

	var total domain.Money
	entryIDs := make([]string, 0, len(eligible))
	for _, e := range eligible {
		total += e.Skin.Price
		entryIDs = append(entryIDs, e.Entry.ID)
	}

	if err := tx.DeleteEntries(ctx, entryIDs); err != nil {
		return nil, fmt.Errorf("failed to delete entries: %w", err)
	}
	if total > 0 {
		if err := tx.CreditBalance(ctx, userID, total); err != nil {
			return nil, fmt.Errorf("failed to credit balance: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit liquidation: %w", err)
	}

	log.Info(LogMsgLiquidated, "user_id", userID, "entries", len(entryIDs), "credited", total)
	s.publish(ctx, event.NewItemLiquidatedEvent(userID, entryIDs, total))

	return &LiquidateResult{Credited: total, ItemsSold: len(entryIDs)}, nil
}

func (s *service) RequestDelivery(ctx context.Context, userID string, entryIDs []string) (*domain.DeliveryRequest, error) {
	log := logger.FromContext(ctx)

	if userID == "" || len(entryIDs) == 0 {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TradeURL == "" {
		return nil, domain.ErrNoTradeURL
	}

	req, entries, err := s.reserve(ctx, user, entryIDs)
	if err != nil {
		return nil, err
	}

	log.Info(LogMsgDeliveryRequested, "delivery_id", req.ID, "user_id", userID, "entries", len(entryIDs))

	dest := steam.Destination{SteamID: user.SteamID, TradeURL: user.TradeURL}
	proposalID, err := s.dispatchWithRetry(ctx, req, entries, dest)
	if err != nil {
		s.reversePending(ctx, req)
		return nil, err
	}

	moved, err := s.repo.MarkDispatched(ctx, req.ID, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to record dispatch: %w", err)
	}
	if !moved {
		// Something else drove the request terminal while we were talking
		// to the platform; report what the row says now.
		return s.repo.GetDelivery(ctx, req.ID)
	}

	req.State = domain.DeliveryDispatched
	req.ProposalID = proposalID
	s.publish(ctx, event.NewDeliveryEvent(event.DeliveryDispatched, req))
	return req, nil
}

// reserve creates the pending delivery request in one transaction, which
// locks every entry, validates ownership and reservation, and attaches the
// item rows that constitute the reservation.
func (s *service) reserve(ctx context.Context, user *domain.User, entryIDs []string) (*domain.DeliveryRequest, []repository.EntryWithPrice, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	entries := make([]repository.EntryWithPrice, 0, len(entryIDs))
	seen := make(map[string]struct{}, len(entryIDs))
	for _, entryID := range entryIDs {
		if _, dup := seen[entryID]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate entry id", domain.ErrInvalidInput)
		}
		seen[entryID] = struct{}{}

		ewp, err := tx.GetEntryWithPriceForUpdate(ctx, entryID)
		if err != nil {
			return nil, nil, err
		}
		if ewp.Entry.UserID != user.ID {
			return nil, nil, domain.ErrEntryNotFound
		}
		reserved, err := tx.EntryReserved(ctx, entryID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check reservation: %w", err)
		}
		if reserved {
			return nil, nil, domain.ErrEntryReserved
		}
		entries = append(entries, *ewp)
	}

	now := time.Now()
	req := &domain.DeliveryRequest{
		UserID:      user.ID,
		EntryIDs:    entryIDs,
		Destination: user.TradeURL,
		State:       domain.DeliveryPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.CreateDelivery(ctx, req); err != nil {
		return nil, nil, fmt.Errorf("failed to create delivery: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit reservation: %w", err)
	}
	return req, entries, nil
}

// dispatchWithRetry attempts the dispatch up to the configured cap, backing
// off between retryable failures.
func (s *service) dispatchWithRetry(ctx context.Context, req *domain.DeliveryRequest, entries []repository.EntryWithPrice, dest steam.Destination) (string, error) {
	log := logger.FromContext(ctx)

	var lastErr error
	delay := s.backoff
	for attempt := 1; attempt <= s.retryCap; attempt++ {
		proposalID, err := s.dispatcher.Dispatch(ctx, req, entries, dest)
		if err == nil {
			return proposalID, nil
		}
		lastErr = err

		var de *delivery.DispatchError
		if !errors.As(err, &de) || !de.Retryable {
			break
		}
		if attempt == s.retryCap {
			break
		}

		log.Warn(LogMsgDispatchRetry, "delivery_id", req.ID, "attempt", attempt, "error", err)
		select {
		case <-time.After(delay):
			delay *= 2
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	log.Error(LogMsgDispatchGaveUp, "delivery_id", req.ID, "error", lastErr)
	return "", lastErr
}

// reversePending releases the reservation of a request that never reached
// the platform. The entries stay owned by the user. The reversal runs on a
// detached context so it still lands when the caller has gone away.
func (s *service) reversePending(ctx context.Context, req *domain.DeliveryRequest) {
	log := logger.FromContext(ctx)
	ctx = context.WithoutCancel(ctx)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		log.Error("Failed to begin reverse transaction", "delivery_id", req.ID, "error", err)
		return
	}
	defer repository.SafeRollback(ctx, tx)

	moved, err := tx.MarkTerminal(ctx, req.ID, domain.DeliveryPending, domain.DeliveryReversed, domain.OutcomeError)
	if err != nil {
		log.Error("Failed to reverse pending delivery", "delivery_id", req.ID, "error", err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		log.Error("Failed to commit reverse transaction", "delivery_id", req.ID, "error", err)
		return
	}
	if !moved {
		return
	}

	req.State = domain.DeliveryReversed
	req.Outcome = domain.OutcomeError
	log.Info(LogMsgDeliveryReversed, "delivery_id", req.ID)
	s.publish(ctx, event.NewDeliveryEvent(event.DeliveryReversed, req))
}

func (s *service) GetDelivery(ctx context.Context, deliveryID string) (*domain.DeliveryRequest, error) {
	if deliveryID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.GetDelivery(ctx, deliveryID)
}

func (s *service) AgentInventory(ctx context.Context) ([]steam.AssetRef, error) {
	snapshot := s.custodian.Snapshot()
	if len(snapshot) > 0 {
		return snapshot, nil
	}
	if err := s.custodian.RefreshInventory(ctx); err != nil {
		return nil, err
	}
	return s.custodian.Snapshot(), nil
}

func (s *service) publish(ctx context.Context, evt event.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish event", "type", evt.Type, "error", err)
	}
}
