package standings

import (
	"sort"

	"golang.org/x/text/language"

	"github.com/Dosada05/league-standings/models"
)

// Engine ranks a division roster. It holds no mutable state and can be shared.
type Engine struct {
	locale language.Tag
}

func NewEngine(locale language.Tag) *Engine {
	return &Engine{locale: locale}
}

// Comparator builds a comparator over the given matches using the engine's
// collation locale.
func (e *Engine) Comparator(matches []models.Match) *Comparator {
	return NewComparator(matches, e.locale)
}

// Rank returns a copy of rows in ranking order with Rank set from 1.
//
// Rows are ordered by the comparator. Head-to-head results inside a group of
// rows tied on points can form a cycle, in which case no pairwise order
// exists; such a group is ordered by each row's wins against the rest of the
// group and then by the ratio and name levels.
func (e *Engine) Rank(rows []models.StandingsRow, matches []models.Match, divisionID, tournamentID int) []models.StandingsRow {
	ranked := make([]models.StandingsRow, len(rows))
	copy(ranked, rows)
	if len(ranked) == 0 {
		return ranked
	}

	cmp := e.Comparator(matches)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})
	for start := 0; start < len(ranked); {
		end := start + 1
		for end < len(ranked) && ranked[end].Points == ranked[start].Points {
			end++
		}
		orderTied(cmp, ranked[start:end], divisionID, tournamentID)
		start = end
	}

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// orderTied sorts a group of rows sharing the same points in place.
func orderTied(cmp *Comparator, group []models.StandingsRow, divisionID, tournamentID int) {
	if len(group) < 2 {
		return
	}
	if consistentOrder(cmp, group, divisionID, tournamentID) {
		sort.SliceStable(group, func(i, j int) bool {
			return cmp.Compare(group[i], group[j], divisionID, tournamentID) < 0
		})
		return
	}

	wins := tiedGroupWins(cmp, group, divisionID, tournamentID)
	sort.SliceStable(group, func(i, j int) bool {
		a, b := group[i], group[j]
		if wa, wb := wins[a.PlayerID], wins[b.PlayerID]; wa != wb {
			return wa > wb
		}
		return cmp.compareRatiosAndName(a, b) < 0
	})
}

// consistentOrder reports whether Compare is transitive over the group. Every
// pair has a strict answer, so that holds exactly when each row ranks ahead
// of a different number of others.
func consistentOrder(cmp *Comparator, group []models.StandingsRow, divisionID, tournamentID int) bool {
	ahead := make([]int, len(group))
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			if cmp.Compare(group[i], group[j], divisionID, tournamentID) < 0 {
				ahead[i]++
			} else {
				ahead[j]++
			}
		}
	}
	seen := make([]bool, len(group))
	for _, n := range ahead {
		if seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

// tiedGroupWins counts each row's head-to-head wins against the other rows of
// the group.
func tiedGroupWins(cmp *Comparator, group []models.StandingsRow, divisionID, tournamentID int) map[int]int {
	wins := make(map[int]int, len(group))
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			a, b := group[i].PlayerID, group[j].PlayerID
			aWins, bWins := cmp.HeadToHead(a, b, divisionID, tournamentID)
			wins[a] += aWins
			wins[b] += bWins
		}
	}
	return wins
}

// FillRoster returns one row per roster entry, taking aggregated values from
// stats when present and zeros otherwise. Names always come from the roster.
// Stats rows for players who are not on the roster are dropped.
func FillRoster(roster []models.RosterEntry, stats []*models.StandingsRow, divisionID, tournamentID int) []models.StandingsRow {
	byPlayer := make(map[int]*models.StandingsRow, len(stats))
	for _, s := range stats {
		if s != nil {
			byPlayer[s.PlayerID] = s
		}
	}

	rows := make([]models.StandingsRow, 0, len(roster))
	for _, entry := range roster {
		row := models.StandingsRow{
			PlayerID:     entry.PlayerID,
			TournamentID: tournamentID,
			DivisionID:   divisionID,
		}
		if s, ok := byPlayer[entry.PlayerID]; ok {
			row = *s
			row.TournamentID = tournamentID
			row.DivisionID = divisionID
		}
		row.Name = entry.DisplayName()
		rows = append(rows, row)
	}
	return rows
}
