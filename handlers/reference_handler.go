package handlers

import (
	"net/http"

	"github.com/Dosada05/league-standings/services"
)

type ReferenceHandler struct {
	referenceService services.ReferenceService
}

func NewReferenceHandler(referenceService services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

func (h *ReferenceHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.referenceService.GetPlayer(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReferenceHandler) GetDivision(w http.ResponseWriter, r *http.Request) {
	tournamentID, divisionID, err := scopeFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	division, err := h.referenceService.GetDivision(r.Context(), tournamentID, divisionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"division": division}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
