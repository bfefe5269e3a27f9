package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gwskins/GWSkins_Go/internal/catalog"
	"github.com/gwskins/GWSkins_Go/internal/logger"
)

// HandleListCases returns every case in the catalog
// @Summary List cases
// @Description List all cases available for opening
// @Tags catalog
// @Produce json
// @Success 200 {array} domain.Case
// @Failure 500 {object} ErrorResponse
// @Router /cases [get]
func HandleListCases(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		cases, err := svc.ListCases(r.Context())
		if err != nil {
			log.Error("Failed to list cases", "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, cases)
	}
}

// HandleListCaseSkins returns the skins contained in a case
// @Summary List case skins
// @Description List the skins a case can yield
// @Tags catalog
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {array} domain.Skin
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /cases/{id}/skins [get]
func HandleListCaseSkins(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		caseID := chi.URLParam(r, "id")

		skins, err := svc.ListSkinsByCase(r.Context(), caseID)
		if err != nil {
			log.Error("Failed to list case skins", "case_id", caseID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, skins)
	}
}
