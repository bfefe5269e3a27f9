package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gwskins/GWSkins_Go/internal/domain"
)

// encodeBuffers reuses encode buffers across responses. Payloads are small
// (a delivery, a wallet, an error), so 512 bytes covers nearly all of them.
var encodeBuffers = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := encodeBuffers.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		encodeBuffers.Put(buf)
	}()

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent; nothing left to do but log
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgInvalidRequestError = "Invalid request. Please check your inputs."

	ErrMsgUserNotFoundError     = "User not found"
	ErrMsgCaseNotFoundError     = "Case not found"
	ErrMsgSkinNotFoundError     = "Skin not found"
	ErrMsgEntryNotFoundError    = "Item not found in your inventory"
	ErrMsgEntryReservedError    = "Item is locked by a pending delivery"
	ErrMsgDeliveryNotFoundError = "Delivery not found"
	ErrMsgNoTradeURLError       = "Set your trade URL before requesting delivery"
	ErrMsgProposalRejectedError = "The trading platform rejected the transfer"
	ErrMsgAssetUnavailableError = "Item is temporarily unavailable for delivery"
	ErrMsgSessionUnavailableErr = "Delivery service is temporarily unavailable. Please try again later."
)

// mapServiceErrorToUserMessage maps domain errors to HTTP status codes and
// user-friendly messages.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequestError
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ErrMsgUserNotFoundError
	case errors.Is(err, domain.ErrCaseNotFound):
		return http.StatusNotFound, ErrMsgCaseNotFoundError
	case errors.Is(err, domain.ErrSkinNotFound):
		return http.StatusNotFound, ErrMsgSkinNotFoundError
	case errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound, ErrMsgEntryNotFoundError
	case errors.Is(err, domain.ErrDeliveryNotFound):
		return http.StatusNotFound, ErrMsgDeliveryNotFoundError
	case errors.Is(err, domain.ErrEntryReserved):
		return http.StatusConflict, ErrMsgEntryReservedError
	case errors.Is(err, domain.ErrNoTradeURL):
		return http.StatusBadRequest, ErrMsgNoTradeURLError
	case errors.Is(err, domain.ErrProposalRejected):
		return http.StatusBadGateway, ErrMsgProposalRejectedError
	case errors.Is(err, domain.ErrAssetUnavailable):
		return http.StatusConflict, ErrMsgAssetUnavailableError
	case errors.Is(err, domain.ErrSessionUnavailable):
		return http.StatusServiceUnavailable, ErrMsgSessionUnavailableErr
	case errors.Is(err, domain.ErrLedgerError):
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
