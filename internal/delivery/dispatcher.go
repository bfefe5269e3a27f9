package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/gwskins/GWSkins_Go/internal/custody"
	"github.com/gwskins/GWSkins_Go/internal/domain"
	"github.com/gwskins/GWSkins_Go/internal/logger"
	"github.com/gwskins/GWSkins_Go/internal/repository"
	"github.com/gwskins/GWSkins_Go/internal/steam"
)

// DispatchError classifies a failed dispatch attempt. Retryable failures are
// transient (session, transport); non-retryable ones will fail the same way
// on every attempt.
type DispatchError struct {
	Retryable bool
	Err       error
}

func (e *DispatchError) Error() string {
	if e.Retryable {
		return fmt.Sprintf("dispatch failed (retryable): %v", e.Err)
	}
	return fmt.Sprintf("dispatch failed: %v", e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

func retryable(err error) *DispatchError    { return &DispatchError{Retryable: true, Err: err} }
func nonRetryable(err error) *DispatchError { return &DispatchError{Retryable: false, Err: err} }

// Dispatcher turns a reserved delivery request into an external transfer
// proposal. It never touches persistence; the settlement service records the
// proposal id it returns.
type Dispatcher struct {
	custody *custody.Manager
	message string
}

// NewDispatcher creates a dispatcher. The message is attached to every
// outgoing proposal.
func NewDispatcher(custodyMgr *custody.Manager, message string) *Dispatcher {
	return &Dispatcher{custody: custodyMgr, message: message}
}

// Dispatch submits a one-directional transfer proposal for the given entries
// and returns the external proposal id. Failures come back as *DispatchError
// so the caller can decide between retrying and reversing.
func (d *Dispatcher) Dispatch(ctx context.Context, req *domain.DeliveryRequest, entries []repository.EntryWithPrice, dest steam.Destination) (string, error) {
	log := logger.FromContext(ctx)

	if len(entries) == 0 {
		return "", nonRetryable(fmt.Errorf("%w: delivery has no entries", domain.ErrInvalidInput))
	}
	if dest.TradeURL == "" {
		return "", nonRetryable(domain.ErrNoTradeURL)
	}

	channel, err := d.custody.EnsureAuthenticated(ctx)
	if err != nil {
		// Session establishment failures are transient unless credentials
		// themselves were rejected.
		if errors.Is(err, steam.ErrBadCredentials) {
			return "", nonRetryable(err)
		}
		return "", retryable(err)
	}

	assets, dispErr := d.resolveAssets(ctx, entries)
	if dispErr != nil {
		return "", dispErr
	}

	log.Info(LogMsgDispatching,
		"delivery_id", req.ID,
		"user_id", req.UserID,
		"assets", len(assets))

	proposalID, err := channel.SubmitTradeOffer(ctx, dest, assets, d.message)
	if err != nil {
		return "", classifySubmitError(err)
	}

	log.Info(LogMsgDispatched, "delivery_id", req.ID, "proposal_id", proposalID)
	return proposalID, nil
}

// resolveAssets maps each entry to a distinct asset in the agent inventory by
// market hash name. The snapshot is refreshed once when a name is missing;
// a miss after refresh means the item is genuinely gone from custody.
func (d *Dispatcher) resolveAssets(ctx context.Context, entries []repository.EntryWithPrice) ([]steam.AssetRef, *DispatchError) {
	assets, missing := pickAssets(d.custody.Snapshot(), entries)
	if missing == "" {
		return assets, nil
	}

	if err := d.custody.RefreshInventory(ctx); err != nil {
		return nil, retryable(fmt.Errorf("failed to refresh agent inventory: %w", err))
	}

	assets, missing = pickAssets(d.custody.Snapshot(), entries)
	if missing != "" {
		return nil, nonRetryable(fmt.Errorf("%w: %s", domain.ErrAssetUnavailable, missing))
	}
	return assets, nil
}

// pickAssets assigns one distinct asset per entry. Returns the first market
// hash name that could not be satisfied, or "" when all entries resolved.
func pickAssets(snapshot []steam.AssetRef, entries []repository.EntryWithPrice) ([]steam.AssetRef, string) {
	byName := make(map[string][]steam.AssetRef)
	for _, a := range snapshot {
		if !a.Tradable {
			continue
		}
		byName[a.MarketHashName] = append(byName[a.MarketHashName], a)
	}

	assets := make([]steam.AssetRef, 0, len(entries))
	for _, e := range entries {
		name := e.Skin.MarketHashName
		pool := byName[name]
		if len(pool) == 0 {
			return nil, name
		}
		assets = append(assets, pool[len(pool)-1])
		byName[name] = pool[:len(pool)-1]
	}
	return assets, ""
}

func classifySubmitError(err error) *DispatchError {
	switch {
	case errors.Is(err, steam.ErrMalformedProposal):
		return nonRetryable(fmt.Errorf("%w: %v", domain.ErrProposalRejected, err))
	case errors.Is(err, steam.ErrSessionExpired):
		return retryable(err)
	default:
		// Transport and unknown platform failures are assumed transient.
		return retryable(err)
	}
}
