package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gwskins/GWSkins_Go/internal/logger"
	"github.com/gwskins/GWSkins_Go/internal/user"
)

// HandleGetWallet returns a user's balance
// @Summary Get wallet
// @Description Get a user's balance by steam id
// @Tags user
// @Produce json
// @Param steam_id path string true "Steam ID"
// @Success 200 {object} user.Wallet
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{steam_id}/wallet [get]
func HandleGetWallet(svc user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		steamID := chi.URLParam(r, "steam_id")

		wallet, err := svc.GetWallet(r.Context(), steamID)
		if err != nil {
			log.Error("Failed to get wallet", "steam_id", steamID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, wallet)
	}
}

type UpdateTradeURLRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid4"`
	TradeURL string `json:"trade_url" validate:"required,max=512"`
}

// HandleUpdateTradeURL stores a user's trade offer URL
// @Summary Update trade URL
// @Description Set the trade offer URL deliveries are sent to
// @Tags user
// @Accept json
// @Produce json
// @Param request body UpdateTradeURLRequest true "Trade URL"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/tradeurl [post]
func HandleUpdateTradeURL(svc user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req UpdateTradeURLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode trade URL request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Invalid trade URL request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		if err := svc.UpdateTradeURL(r.Context(), req.UserID, req.TradeURL); err != nil {
			log.Error("Failed to update trade URL", "user_id", req.UserID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Trade URL updated"})
	}
}
