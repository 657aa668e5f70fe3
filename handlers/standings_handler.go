package handlers

import (
	"net/http"

	"github.com/Dosada05/league-standings/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(standingsService services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: standingsService}
}

func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, divisionID, err := scopeFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rows, err := h.standingsService.GetStandings(r.Context(), tournamentID, divisionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": rows}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HomeAway tells the UI which side each player would take before a match
// between them exists.
func (h *StandingsHandler) HomeAway(w http.ResponseWriter, r *http.Request) {
	tournamentID, divisionID, err := scopeFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	a, err := getIDFromQuery(r, "a")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	b, err := getIDFromQuery(r, "b")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.standingsService.HomeAway(r.Context(), tournamentID, divisionID, a, b)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"home_away": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
