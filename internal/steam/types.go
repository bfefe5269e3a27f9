package steam

import (
	"context"
	"errors"
)

// Credentials carries the agent account login material, including the
// one-time code derived from the shared secret.
type Credentials struct {
	Username    string
	Password    string
	OneTimeCode string
}

// Session is the web session bundle the transfer API requires. It is opaque
// to callers; the custody manager holds the single live instance.
type Session struct {
	Token   string
	SteamID string
}

// AssetRef identifies one concrete item instance in the agent's external
// inventory.
type AssetRef struct {
	AssetID        string `json:"assetid"`
	AppID          int    `json:"appid"`
	ContextID      string `json:"contextid"`
	MarketHashName string `json:"market_hash_name"`
	IconURL        string `json:"icon_url,omitempty"`
	Tradable       bool   `json:"tradable"`
}

// Destination addresses the counterpart of a trade offer.
type Destination struct {
	SteamID  string
	TradeURL string
}

// EventType discriminates platform event stream messages.
type EventType string

const (
	// EventTradeOutcome reports the terminal outcome of a sent offer.
	EventTradeOutcome EventType = "trade_outcome"
	// EventSessionInvalidated signals that the web session was revoked
	// (concurrent login elsewhere, token expiry).
	EventSessionInvalidated EventType = "session_invalidated"
	// EventIncomingOffer reports an offer initiated by another account.
	EventIncomingOffer EventType = "incoming_offer"
)

// Event is one message from the platform event stream.
type Event struct {
	Type       EventType `json:"type"`
	ProposalID string    `json:"proposal_id,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	Partner    string    `json:"partner,omitempty"`
	// ItemsToReceive is the number of items the agent would receive if an
	// incoming offer were accepted; used by the decline policy.
	ItemsToReceive int `json:"items_to_receive,omitempty"`
}

// Errors surfaced by platform implementations. Session-class errors are
// retryable after re-authentication; credential errors are fatal.
var (
	ErrSessionExpired     = errors.New("platform session expired")
	ErrBadCredentials     = errors.New("platform rejected credentials")
	ErrMalformedProposal  = errors.New("platform rejected proposal as malformed")
	ErrStreamDisconnected = errors.New("platform event stream disconnected")
)

// Platform is the capability surface of the external trading platform. The
// rest of the system treats it as a black box.
type Platform interface {
	// Authenticate logs the agent on and returns the web session required by
	// the transfer API. Returns ErrBadCredentials on hard credential failure.
	Authenticate(ctx context.Context, creds Credentials) (*Session, error)

	// ListInventory enumerates the agent's tradable inventory.
	ListInventory(ctx context.Context, session *Session) ([]AssetRef, error)

	// SubmitTradeOffer proposes a one-directional transfer of the given
	// assets and returns the external proposal id.
	SubmitTradeOffer(ctx context.Context, session *Session, dest Destination, assets []AssetRef, message string) (string, error)

	// AcceptConfirmations approves every pending mobile confirmation using
	// the identity secret.
	AcceptConfirmations(ctx context.Context, session *Session, identitySecret string) error

	// DeclineOffer declines an incoming offer by id.
	DeclineOffer(ctx context.Context, session *Session, proposalID string) error

	// Subscribe returns a channel of platform events. Every subscriber
	// receives every event; slow subscribers may drop.
	Subscribe() <-chan Event

	// Start begins the event stream with auto-reconnect; Stop tears it down.
	Start(ctx context.Context)
	Stop()
}
