package domain

// Event type names published on the internal bus.
const (
	EventTypeItemLiquidated     = "item.liquidated"
	EventTypeDeliveryDispatched = "delivery.dispatched"
	EventTypeDeliveryFinalized  = "delivery.finalized"
	EventTypeDeliveryReversed   = "delivery.reversed"
	EventTypeSessionState       = "custody.session_state"
)

// ItemLiquidatedPayload is published after a liquidation commits.
type ItemLiquidatedPayload struct {
	UserID    string   `json:"user_id"`
	EntryIDs  []string `json:"entry_ids"`
	Credited  Money    `json:"credited"`
	Timestamp int64    `json:"timestamp"`
}

// DeliveryLifecyclePayload is published on dispatch and on each terminal
// transition of a delivery request.
type DeliveryLifecyclePayload struct {
	DeliveryID string          `json:"delivery_id"`
	UserID     string          `json:"user_id"`
	ProposalID string          `json:"proposal_id,omitempty"`
	ItemCount  int             `json:"item_count"`
	Outcome    DeliveryOutcome `json:"outcome,omitempty"`
	Timestamp  int64           `json:"timestamp"`
}

// SessionStatePayload is published when the custody session changes state.
type SessionStatePayload struct {
	State     string `json:"state"`
	Timestamp int64  `json:"timestamp"`
}
