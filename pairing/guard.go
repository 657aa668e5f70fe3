// Package pairing holds the rules that apply to a pair of players in one
// division of a tournament: duplicate detection and home/away assignment.
package pairing

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/league-standings/models"
)

// ErrDuplicatePairing is returned by Guard.Check when the pair already has a
// match in one of the checked statuses.
var ErrDuplicatePairing = errors.New("duplicate pairing")

// Blocking status sets used by the match lifecycle.
var (
	// CreationStatuses block creating or claiming a second live match.
	CreationStatuses = []models.MatchStatus{models.MatchStatusScheduled, models.MatchStatusPlayed}
	// ResultStatuses block recording a second result for the same pair.
	ResultStatuses = []models.MatchStatus{models.MatchStatusPlayed}
)

// HasConflict reports whether any match between exactly a and b, in either
// home/away order, within the tournament and division has one of the given
// statuses. Matches whose id is in ignore are skipped.
func HasConflict(matches []*models.Match, tournamentID, divisionID, a, b int, statuses []models.MatchStatus, ignore ...int) bool {
	if a == b {
		return false
	}
	for _, m := range matches {
		if m == nil || m.TournamentID != tournamentID || m.DivisionID != divisionID {
			continue
		}
		if !m.IsPair(a, b) || containsID(ignore, m.ID) {
			continue
		}
		for _, s := range statuses {
			if m.Status == s {
				return true
			}
		}
	}
	return false
}

// PairLister loads the matches between two players in a scope.
type PairLister interface {
	ListByPair(ctx context.Context, tournamentID, divisionID, a, b int) ([]*models.Match, error)
}

// Guard runs HasConflict against the matches currently in the store.
type Guard struct {
	matches PairLister
}

func NewGuard(matches PairLister) *Guard {
	return &Guard{matches: matches}
}

func (g *Guard) HasConflict(ctx context.Context, tournamentID, divisionID, a, b int, statuses []models.MatchStatus, ignore ...int) (bool, error) {
	matches, err := g.matches.ListByPair(ctx, tournamentID, divisionID, a, b)
	if err != nil {
		return false, fmt.Errorf("pairing guard: list matches for players %d and %d: %w", a, b, err)
	}
	return HasConflict(matches, tournamentID, divisionID, a, b, statuses, ignore...), nil
}

// Check is HasConflict turned into an error: ErrDuplicatePairing when a
// conflicting match exists, the store error when the lookup failed.
func (g *Guard) Check(ctx context.Context, tournamentID, divisionID, a, b int, statuses []models.MatchStatus, ignore ...int) error {
	conflict, err := g.HasConflict(ctx, tournamentID, divisionID, a, b, statuses, ignore...)
	if err != nil {
		return err
	}
	if conflict {
		return fmt.Errorf("%w: players %d and %d already have a %v match", ErrDuplicatePairing, a, b, statuses)
	}
	return nil
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
