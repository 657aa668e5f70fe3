package models

import (
	"errors"
	"fmt"
	"time"
)

// MatchStatus is the lifecycle state of a match. The zero value is not a valid
// status; use ParseMatchStatus for input coming from outside the process.
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusPlayed    MatchStatus = "played"
)

var ErrInvalidMatchStatus = errors.New("invalid match status")

func ParseMatchStatus(s string) (MatchStatus, error) {
	switch st := MatchStatus(s); st {
	case MatchStatusPending, MatchStatusScheduled, MatchStatusPlayed:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMatchStatus, s)
	}
}

func (s MatchStatus) Valid() bool {
	_, err := ParseMatchStatus(string(s))
	return err == nil
}

// Editable reports whether the schedule of a match in this state can change.
func (s MatchStatus) Editable() bool {
	return s == MatchStatusPending || s == MatchStatusScheduled
}

// MatchSet is one set of a played match. Number is 1-based.
type MatchSet struct {
	MatchID   int `json:"match_id" db:"match_id"`
	Number    int `json:"number" db:"set_number"`
	HomeGames int `json:"home_games" db:"home_games"`
	AwayGames int `json:"away_games" db:"away_games"`
}

// Winner returns +1 when the home side took the set, -1 for the away side and
// 0 for an undecided set.
func (s MatchSet) Winner() int {
	switch {
	case s.HomeGames > s.AwayGames:
		return 1
	case s.HomeGames < s.AwayGames:
		return -1
	default:
		return 0
	}
}

// MatchResult holds the aggregate outcome of a played match.
type MatchResult struct {
	HomeSetsWon  int     `json:"home_sets_won" db:"home_sets_won"`
	AwaySetsWon  int     `json:"away_sets_won" db:"away_sets_won"`
	HomeGamesWon int     `json:"home_games_won" db:"home_games_won"`
	AwayGamesWon int     `json:"away_games_won" db:"away_games_won"`
	HomeHadDrink bool    `json:"home_had_drink" db:"home_had_drink"`
	AwayHadDrink bool    `json:"away_had_drink" db:"away_had_drink"`
	HomeDrinks   int     `json:"home_drinks" db:"home_drinks"`
	AwayDrinks   int     `json:"away_drinks" db:"away_drinks"`
	Anecdote     *string `json:"anecdote,omitempty" db:"anecdote"`
}

// AggregateSets derives won sets and games per side from an ordered set list.
func AggregateSets(sets []MatchSet) MatchResult {
	var r MatchResult
	for _, s := range sets {
		r.HomeGamesWon += s.HomeGames
		r.AwayGamesWon += s.AwayGames
		switch s.Winner() {
		case 1:
			r.HomeSetsWon++
		case -1:
			r.AwaySetsWon++
		}
	}
	return r
}

type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	DivisionID   int         `json:"division_id" db:"division_id"`
	HomePlayerID int         `json:"home_player_id" db:"home_player_id"`
	AwayPlayerID *int        `json:"away_player_id,omitempty" db:"away_player_id"`
	Date         time.Time   `json:"date" db:"match_date"`
	StartTime    *string     `json:"start_time,omitempty" db:"start_time"`
	AreaID       *int        `json:"area_id,omitempty" db:"area_id"`
	Venue        *string     `json:"venue,omitempty" db:"venue"`
	Status       MatchStatus `json:"status" db:"status"`
	MatchResult
	CreatedBy int       `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Sets []MatchSet `json:"sets,omitempty" db:"-"`
}

var (
	ErrMatchMissingAway = errors.New("match without away player must be pending")
	ErrMatchSelfPairing = errors.New("home and away player must differ")
	ErrMatchMissingHome = errors.New("match must have a home player")
)

// Validate checks the structural invariants of a match row.
func (m *Match) Validate() error {
	if !m.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMatchStatus, m.Status)
	}
	if m.HomePlayerID == 0 {
		return ErrMatchMissingHome
	}
	if m.AwayPlayerID == nil {
		if m.Status != MatchStatusPending {
			return ErrMatchMissingAway
		}
		return nil
	}
	if *m.AwayPlayerID == m.HomePlayerID {
		return ErrMatchSelfPairing
	}
	return nil
}

// Involves reports whether the player is on either side of the match.
func (m *Match) Involves(playerID int) bool {
	if m.HomePlayerID == playerID {
		return true
	}
	return m.AwayPlayerID != nil && *m.AwayPlayerID == playerID
}

// IsPair reports whether the match is between exactly a and b, in any order.
func (m *Match) IsPair(a, b int) bool {
	if m.AwayPlayerID == nil {
		return false
	}
	away := *m.AwayPlayerID
	return (m.HomePlayerID == a && away == b) || (m.HomePlayerID == b && away == a)
}

// WinnerID returns the player who won more sets, or 0 when the match is not
// played or the sets are level.
func (m *Match) WinnerID() int {
	if m.Status != MatchStatusPlayed || m.AwayPlayerID == nil {
		return 0
	}
	switch {
	case m.HomeSetsWon > m.AwaySetsWon:
		return m.HomePlayerID
	case m.AwaySetsWon > m.HomeSetsWon:
		return *m.AwayPlayerID
	default:
		return 0
	}
}

// MatchPredicate is the state a conditional write expects the row to be in.
// An empty Statuses slice places no constraint on status.
type MatchPredicate struct {
	Statuses     []MatchStatus
	AwayUnset    bool
	AwayPlayerID *int
}

// Matches evaluates the predicate against an in-memory row.
func (p MatchPredicate) Matches(m *Match) bool {
	if len(p.Statuses) > 0 {
		ok := false
		for _, s := range p.Statuses {
			if m.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if p.AwayUnset && m.AwayPlayerID != nil {
		return false
	}
	if p.AwayPlayerID != nil && (m.AwayPlayerID == nil || *m.AwayPlayerID != *p.AwayPlayerID) {
		return false
	}
	return true
}

// ScheduleFields are the mutable schedule columns of a match.
type ScheduleFields struct {
	Date      time.Time `json:"date"`
	StartTime *string   `json:"start_time,omitempty"`
	AreaID    *int      `json:"area_id,omitempty"`
	Venue     *string   `json:"venue,omitempty"`
}
