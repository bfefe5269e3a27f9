package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gwskins/GWSkins_Go/internal/inventory"
	"github.com/gwskins/GWSkins_Go/internal/logger"
)

// HandleListInventory returns a user's inventory entries
// @Summary List inventory
// @Description List the user's inventory entries with their skins
// @Tags inventory
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {array} domain.InventoryItem
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /inventory/{user_id} [get]
func HandleListInventory(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		userID := chi.URLParam(r, "user_id")

		items, err := svc.List(r.Context(), userID)
		if err != nil {
			log.Error("Failed to list inventory", "user_id", userID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, items)
	}
}

type GrantEntryRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
	SkinID string `json:"skin_id" validate:"required,uuid4"`
}

// HandleGrantEntry appends a skin to a user's inventory
// @Summary Grant inventory entry
// @Description Add a skin to a user's inventory (system action)
// @Tags inventory
// @Accept json
// @Produce json
// @Param request body GrantEntryRequest true "Grant details"
// @Success 200 {object} domain.InventoryEntry
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /inventory [post]
func HandleGrantEntry(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req GrantEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode grant request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Invalid grant request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		entry, err := svc.Grant(r.Context(), req.UserID, req.SkinID)
		if err != nil {
			log.Error("Failed to grant entry", "user_id", req.UserID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, entry)
	}
}
