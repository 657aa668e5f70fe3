// Package standings orders the players of a division by their aggregated
// results using a fixed chain of tie-break levels.
package standings

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Dosada05/league-standings/models"
)

type scopeKey struct {
	tournamentID int
	divisionID   int
	low, high    int
}

func newScopeKey(tournamentID, divisionID, a, b int) scopeKey {
	if a > b {
		a, b = b, a
	}
	return scopeKey{tournamentID: tournamentID, divisionID: divisionID, low: a, high: b}
}

// headToHead counts match wins for each side of a pairing.
type headToHead struct {
	lowWins, highWins int
}

// Comparator ranks two standings rows. It is not safe for concurrent use
// because the underlying collator keeps internal buffers.
type Comparator struct {
	collator *collate.Collator
	records  map[scopeKey]headToHead
}

// NewComparator indexes the played matches for head-to-head lookups. Matches
// that are not played, or whose sets are level, are ignored.
func NewComparator(matches []models.Match, locale language.Tag) *Comparator {
	c := &Comparator{
		collator: collate.New(locale),
		records:  make(map[scopeKey]headToHead),
	}
	for i := range matches {
		m := &matches[i]
		winner := m.WinnerID()
		if winner == 0 {
			continue
		}
		key := newScopeKey(m.TournamentID, m.DivisionID, m.HomePlayerID, *m.AwayPlayerID)
		rec := c.records[key]
		if winner == key.low {
			rec.lowWins++
		} else {
			rec.highWins++
		}
		c.records[key] = rec
	}
	return c
}

// HeadToHead returns the number of played matches a and b each won against
// the other within the given division and tournament.
func (c *Comparator) HeadToHead(a, b, divisionID, tournamentID int) (aWins, bWins int) {
	if a == b {
		return 0, 0
	}
	key := newScopeKey(tournamentID, divisionID, a, b)
	rec := c.records[key]
	if a == key.low {
		return rec.lowWins, rec.highWins
	}
	return rec.highWins, rec.lowWins
}

// Compare returns -1 when a ranks ahead of b, +1 when b ranks ahead of a and 0
// only for rows of the same player.
func (c *Comparator) Compare(a, b models.StandingsRow, divisionID, tournamentID int) int {
	if a.Points != b.Points {
		return descending(a.Points, b.Points)
	}
	aWins, bWins := c.HeadToHead(a.PlayerID, b.PlayerID, divisionID, tournamentID)
	if aWins != bWins {
		return descending(aWins, bWins)
	}
	return c.compareRatiosAndName(a, b)
}

// compareRatiosAndName applies the levels after head-to-head.
func (c *Comparator) compareRatiosAndName(a, b models.StandingsRow) int {
	if r := compareRatio(a.SetsWon, a.SetsLost, b.SetsWon, b.SetsLost); r != 0 {
		return -r
	}
	if r := compareRatio(a.GamesWon, a.GamesLost, b.GamesWon, b.GamesLost); r != 0 {
		return -r
	}
	if r := c.collator.CompareString(a.Name, b.Name); r != 0 {
		return sign(r)
	}
	return ascending(a.PlayerID, b.PlayerID)
}

// compareRatio compares won/(won+lost) of two records without floating point.
// A record with no sets or games counts as ratio 0. It returns +1 when the
// first ratio is higher.
func compareRatio(wonA, lostA, wonB, lostB int) int {
	denA := int64(wonA) + int64(lostA)
	denB := int64(wonB) + int64(lostB)
	numA, numB := int64(wonA), int64(wonB)
	if denA == 0 {
		numA, denA = 0, 1
	}
	if denB == 0 {
		numB, denB = 0, 1
	}
	left, right := numA*denB, numB*denA
	switch {
	case left > right:
		return 1
	case left < right:
		return -1
	default:
		return 0
	}
}

func descending(a, b int) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

func ascending(a, b int) int {
	return -descending(a, b)
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
