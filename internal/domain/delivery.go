package domain

import "time"

// DeliveryState is the lifecycle state of a DeliveryRequest.
type DeliveryState string

const (
	// DeliveryPending: created and entries reserved, proposal not yet on the
	// external platform.
	DeliveryPending DeliveryState = "pending"
	// DeliveryDispatched: a transfer proposal exists externally; outcome is
	// awaited.
	DeliveryDispatched DeliveryState = "dispatched"
	// DeliveryFinalized: the counterpart accepted; the entries were deleted
	// and ownership moved externally. Terminal.
	DeliveryFinalized DeliveryState = "finalized"
	// DeliveryReversed: declined, canceled, errored, or retries exhausted;
	// the entries stay internally owned. Terminal.
	DeliveryReversed DeliveryState = "reversed"
)

// Terminal reports whether the state permits no further transitions.
func (s DeliveryState) Terminal() bool {
	return s == DeliveryFinalized || s == DeliveryReversed
}

// DeliveryOutcome is the externally observed result of a dispatched proposal.
type DeliveryOutcome string

const (
	OutcomeAccepted DeliveryOutcome = "accepted"
	OutcomeDeclined DeliveryOutcome = "declined"
	OutcomeCanceled DeliveryOutcome = "canceled"
	OutcomeError    DeliveryOutcome = "error"
)

// DeliveryRequest tracks one requested physical delivery. While the request
// is non-terminal its entries are reserved: ineligible for liquidation and
// for any other delivery. The row is durable so dispatched requests survive
// a process restart.
type DeliveryRequest struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	EntryIDs    []string        `json:"entry_ids"`
	Destination string          `json:"destination"`
	State       DeliveryState   `json:"state"`
	ProposalID  string          `json:"proposal_id,omitempty"`
	Outcome     DeliveryOutcome `json:"outcome,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
