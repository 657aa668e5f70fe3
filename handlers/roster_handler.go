package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/league-standings/models"
)

// RosterSource is the cached player directory.
type RosterSource interface {
	ListRoster(ctx context.Context, tournamentID, divisionID int) ([]models.RosterEntry, error)
	Invalidate(ctx context.Context, tournamentID, divisionID int) error
}

type RosterHandler struct {
	roster RosterSource
}

func NewRosterHandler(roster RosterSource) *RosterHandler {
	return &RosterHandler{roster: roster}
}

func (h *RosterHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	tournamentID, divisionID, err := scopeFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.roster.ListRoster(r.Context(), tournamentID, divisionID)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RefreshRoster drops the cached roster after registrations change outside
// this service.
func (h *RosterHandler) RefreshRoster(w http.ResponseWriter, r *http.Request) {
	tournamentID, divisionID, err := scopeFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.roster.Invalidate(r.Context(), tournamentID, divisionID); err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
