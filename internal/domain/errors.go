package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// User errors
	ErrMsgUserNotFound = "user not found"

	// Catalog errors
	ErrMsgSkinNotFound = "skin not found"
	ErrMsgCaseNotFound = "case not found"

	// Inventory errors
	ErrMsgEntryNotFound = "inventory entry not found"
	ErrMsgEntryReserved = "inventory entry is reserved for delivery"

	// Delivery errors
	ErrMsgDeliveryNotFound   = "delivery request not found"
	ErrMsgNoTradeURL         = "no trade URL on file"
	ErrMsgProposalRejected   = "transfer proposal rejected by platform"
	ErrMsgSessionUnavailable = "agent session unavailable"
	ErrMsgAssetUnavailable   = "item not present in agent inventory"

	// Validation errors
	ErrMsgInvalidInput = "invalid input"

	// Database/System errors
	ErrMsgLedgerError = "ledger transaction failed"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// User errors
	ErrUserNotFound = errors.New(ErrMsgUserNotFound)

	// Catalog errors
	ErrSkinNotFound = errors.New(ErrMsgSkinNotFound)
	ErrCaseNotFound = errors.New(ErrMsgCaseNotFound)

	// Inventory errors
	ErrEntryNotFound = errors.New(ErrMsgEntryNotFound)
	ErrEntryReserved = errors.New(ErrMsgEntryReserved)

	// Delivery errors
	ErrDeliveryNotFound   = errors.New(ErrMsgDeliveryNotFound)
	ErrNoTradeURL         = errors.New(ErrMsgNoTradeURL)
	ErrProposalRejected   = errors.New(ErrMsgProposalRejected)
	ErrSessionUnavailable = errors.New(ErrMsgSessionUnavailable)
	ErrAssetUnavailable   = errors.New(ErrMsgAssetUnavailable)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)

	// Database/System errors
	ErrLedgerError = errors.New(ErrMsgLedgerError)
)
