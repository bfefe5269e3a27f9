package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gwskins/GWSkins_Go/internal/logger"
	"github.com/gwskins/GWSkins_Go/internal/settlement"
)

type LiquidateRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid4"`
	EntryID string `json:"entry_id" validate:"required,uuid4"`
}

// HandleLiquidate sells one inventory entry for balance
// @Summary Liquidate one entry
// @Description Convert one inventory entry into balance at its catalog price
// @Tags settlement
// @Accept json
// @Produce json
// @Param request body LiquidateRequest true "Entry to liquidate"
// @Success 200 {object} settlement.LiquidateResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /settlement/liquidate [post]
func HandleLiquidate(svc settlement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req LiquidateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode liquidate request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Invalid liquidate request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		result, err := svc.LiquidateOne(r.Context(), req.UserID, req.EntryID)
		if err != nil {
			log.Error("Failed to liquidate entry", "user_id", req.UserID, "entry_id", req.EntryID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

type LiquidateAllRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

// HandleLiquidateAll sells every eligible entry of a user
// @Summary Liquidate all entries
// @Description Convert every unreserved inventory entry into balance
// @Tags settlement
// @Accept json
// @Produce json
// @Param request body LiquidateAllRequest true "User"
// @Success 200 {object} settlement.LiquidateResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /settlement/liquidate-all [post]
func HandleLiquidateAll(svc settlement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req LiquidateAllRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode liquidate-all request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Invalid liquidate-all request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		result, err := svc.LiquidateAll(r.Context(), req.UserID)
		if err != nil {
			log.Error("Failed to liquidate entries", "user_id", req.UserID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

type RequestDeliveryRequest struct {
	UserID   string   `json:"user_id" validate:"required,uuid4"`
	EntryIDs []string `json:"entry_ids" validate:"required,min=1,max=50,dive,uuid4"`
}

// HandleRequestDelivery dispatches a physical delivery of inventory entries
// @Summary Request delivery
// @Description Reserve the entries and send a transfer proposal to the user's trade URL
// @Tags settlement
// @Accept json
// @Produce json
// @Param request body RequestDeliveryRequest true "Entries to deliver"
// @Success 202 {object} domain.DeliveryRequest
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /settlement/deliver [post]
func HandleRequestDelivery(svc settlement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req RequestDeliveryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode delivery request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Invalid delivery request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		delivery, err := svc.RequestDelivery(r.Context(), req.UserID, req.EntryIDs)
		if err != nil {
			log.Error("Failed to request delivery", "user_id", req.UserID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		// The outcome arrives asynchronously through the reconciler
		respondJSON(w, http.StatusAccepted, delivery)
	}
}

// HandleGetDelivery returns a delivery request by id
// @Summary Get delivery
// @Description Get the current state of a delivery request
// @Tags settlement
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} domain.DeliveryRequest
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /settlement/deliveries/{id} [get]
func HandleGetDelivery(svc settlement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		deliveryID := chi.URLParam(r, "id")

		delivery, err := svc.GetDelivery(r.Context(), deliveryID)
		if err != nil {
			log.Error("Failed to get delivery", "delivery_id", deliveryID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, delivery)
	}
}

// HandleAgentInventory returns the custodial agent's tradable inventory
// @Summary Agent inventory
// @Description List the items currently held by the custodial agent
// @Tags settlement
// @Produce json
// @Success 200 {array} steam.AssetRef
// @Failure 503 {object} ErrorResponse
// @Router /bot/inventory [get]
func HandleAgentInventory(svc settlement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		assets, err := svc.AgentInventory(r.Context())
		if err != nil {
			log.Error("Failed to get agent inventory", "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, assets)
	}
}
