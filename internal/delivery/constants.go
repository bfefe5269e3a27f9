package delivery

import "time"

// Log messages
const (
	LogMsgDispatching         = "Dispatching delivery proposal"
	LogMsgDispatched          = "Delivery proposal dispatched"
	LogMsgDispatchFailed      = "Delivery dispatch failed"
	LogMsgOutcomeReceived     = "Delivery outcome received"
	LogMsgUnknownProposal     = "Outcome for unknown proposal discarded"
	LogMsgFinalized           = "Delivery finalized"
	LogMsgReversed            = "Delivery reversed"
	LogMsgStaleTransition     = "Delivery already terminal, outcome ignored"
	LogMsgIncomingDeclined    = "Incoming offer declined"
	LogMsgIncomingDeclineFail = "Failed to decline incoming offer"
	LogMsgReconcilerStarted   = "Outcome reconciler started"
	LogMsgReconcilerStopped   = "Outcome reconciler stopped"
	LogMsgRecoveredDispatched = "Recovered dispatched deliveries after restart"
	LogMsgAbandonedPending    = "Reversing abandoned pending delivery"
)

// DefaultPendingGrace is how old a pending delivery must be before startup
// recovery reverses it. It comfortably exceeds the dispatch retry window, so
// anything older cannot belong to a live dispatch attempt.
const DefaultPendingGrace = time.Minute
