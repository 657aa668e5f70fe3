package standings

import (
	"testing"

	"golang.org/x/text/language"

	"github.com/Dosada05/league-standings/models"
)

func rankedIDs(rows []models.StandingsRow) []int {
	ids := make([]int, len(rows))
	for i, r := range rows {
		ids[i] = r.PlayerID
	}
	return ids
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRankOrdersRoster(t *testing.T) {
	rows := []models.StandingsRow{
		row(1, "Carla", 3, 2, 4, 20, 28),
		row(2, "Bruno", 9, 6, 1, 40, 22),
		row(3, "Ana", 6, 4, 3, 33, 30),
		row(4, "Dario", 6, 5, 2, 36, 25),
		row(5, "Elena", 0, 0, 0, 0, 0),
	}
	// Ana beat Dario, so she goes ahead of him despite the worse set ratio.
	matches := []models.Match{playedMatch(1, 4, 3, 1, 2)}

	ranked := NewEngine(language.Spanish).Rank(rows, matches, testDivision, testTournament)

	want := []int{2, 3, 4, 1, 5}
	if got := rankedIDs(ranked); !equalIDs(got, want) {
		t.Fatalf("Rank order = %v, want %v", got, want)
	}
	for i, r := range ranked {
		if r.Rank != i+1 {
			t.Errorf("row %d has Rank %d, want %d", r.PlayerID, r.Rank, i+1)
		}
	}
	if rows[0].Rank != 0 {
		t.Error("Rank must not modify its input")
	}
}

func TestRankTwoWayTieMatchesComparator(t *testing.T) {
	a := row(1, "Zoe", 6, 2, 6, 20, 40)
	b := row(2, "Ana", 6, 6, 2, 40, 20)
	matches := []models.Match{playedMatch(1, 2, 1, 1, 2)}

	engine := NewEngine(language.Spanish)
	ranked := engine.Rank([]models.StandingsRow{b, a}, matches, testDivision, testTournament)
	cmp := engine.Comparator(matches).Compare(a, b, testDivision, testTournament)

	if cmp != -1 || ranked[0].PlayerID != a.PlayerID {
		t.Fatalf("comparator = %d, ranked first = %d; want player %d first in both", cmp, ranked[0].PlayerID, a.PlayerID)
	}
}

func TestRankThreeWayTieFollowsComparator(t *testing.T) {
	// Cris beat Ana and Ana beat Bea; Bea and Cris never met, so the set ratio
	// puts Cris ahead of Bea and the pairwise order is consistent.
	rows := []models.StandingsRow{
		row(1, "Ana", 6, 9, 1, 54, 20),
		row(2, "Bea", 6, 1, 9, 20, 54),
		row(3, "Cris", 6, 5, 5, 40, 40),
	}
	matches := []models.Match{
		playedMatch(1, 3, 1, 2, 0),
		playedMatch(2, 1, 2, 2, 1),
	}
	engine := NewEngine(language.Spanish)
	cmp := engine.Comparator(matches)
	want := []int{3, 1, 2}

	for _, input := range [][]models.StandingsRow{
		rows,
		{rows[2], rows[1], rows[0]},
		{rows[1], rows[0], rows[2]},
	} {
		ranked := engine.Rank(input, matches, testDivision, testTournament)
		if got := rankedIDs(ranked); !equalIDs(got, want) {
			t.Fatalf("Rank order = %v, want %v", got, want)
		}
		for i := 1; i < len(ranked); i++ {
			if c := cmp.Compare(ranked[i-1], ranked[i], testDivision, testTournament); c != -1 {
				t.Errorf("Rank puts %d above %d but Compare = %d", ranked[i-1].PlayerID, ranked[i].PlayerID, c)
			}
		}
	}
}

func TestRankThreeWayCycleIsDeterministic(t *testing.T) {
	// 1 beat 2, 2 beat 3, 3 beat 1: the group table is level, so ratios decide.
	rows := []models.StandingsRow{
		row(1, "Ana", 6, 4, 4, 30, 30),
		row(2, "Bea", 6, 5, 3, 30, 30),
		row(3, "Cris", 6, 3, 5, 30, 30),
	}
	matches := []models.Match{
		playedMatch(1, 1, 2, 2, 1),
		playedMatch(2, 2, 3, 2, 0),
		playedMatch(3, 3, 1, 2, 1),
	}
	engine := NewEngine(language.Spanish)
	want := []int{2, 1, 3}
	for _, input := range [][]models.StandingsRow{
		rows,
		{rows[2], rows[1], rows[0]},
		{rows[1], rows[2], rows[0]},
	} {
		if got := rankedIDs(engine.Rank(input, matches, testDivision, testTournament)); !equalIDs(got, want) {
			t.Fatalf("Rank order = %v, want %v", got, want)
		}
	}
}

func TestFillRoster(t *testing.T) {
	short := "Pepe"
	roster := []models.RosterEntry{
		{PlayerID: 1, Name: "José García", PreferredName: &short},
		{PlayerID: 2, Name: "Lucía Pérez"},
	}
	stats := []*models.StandingsRow{
		{PlayerID: 1, Points: 4, Wins: 2, SetsWon: 4},
		{PlayerID: 99, Points: 12},
	}

	rows := FillRoster(roster, stats, testDivision, testTournament)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Name != "Pepe" || rows[0].Points != 4 || rows[0].DivisionID != testDivision {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Name != "Lucía Pérez" || rows[1].Points != 0 || rows[1].TournamentID != testTournament {
		t.Errorf("unexpected second row: %+v", rows[1])
	}
}
