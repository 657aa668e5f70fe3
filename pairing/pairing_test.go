package pairing

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/league-standings/models"
)

func intPtr(v int) *int { return &v }

func TestAssignHomeIsOrderIndependent(t *testing.T) {
	for division := 1; division <= 4; division++ {
		for a := 1; a <= 30; a++ {
			for b := a + 1; b <= 30; b++ {
				ab := AssignHome(division, 2025, a, b)
				ba := AssignHome(division, 2025, b, a)
				if ab != ba {
					t.Fatalf("AssignHome(%d, %d) = %d but reversed = %d", a, b, ab, ba)
				}
				if ab != a && ab != b {
					t.Fatalf("AssignHome(%d, %d) = %d, not one of the pair", a, b, ab)
				}
				if again := AssignHome(division, 2025, a, b); again != ab {
					t.Fatalf("AssignHome not stable: %d then %d", ab, again)
				}
			}
		}
	}
}

func TestAssignHomeBalancesSides(t *testing.T) {
	lowHome, total := 0, 0
	for a := 1; a <= 60; a++ {
		for b := a + 1; b <= 60; b++ {
			if AssignHome(1, 1, a, b) == a {
				lowHome++
			}
			total++
		}
	}
	share := float64(lowHome) / float64(total)
	if share < 0.4 || share > 0.6 {
		t.Fatalf("lower id is home in %.2f of %d pairs, want roughly half", share, total)
	}
}

func TestAssignSides(t *testing.T) {
	home, away := AssignSides(3, 9, 12, 5)
	if home == away || (home != 12 && home != 5) || (away != 12 && away != 5) {
		t.Fatalf("AssignSides = (%d, %d)", home, away)
	}
	if home != AssignHome(3, 9, 5, 12) {
		t.Fatalf("AssignSides home %d disagrees with AssignHome", home)
	}
}

func match(id, home int, away *int, status models.MatchStatus) *models.Match {
	return &models.Match{
		ID:           id,
		TournamentID: 1,
		DivisionID:   2,
		HomePlayerID: home,
		AwayPlayerID: away,
		Status:       status,
	}
}

func TestHasConflict(t *testing.T) {
	matches := []*models.Match{
		match(1, 10, intPtr(20), models.MatchStatusScheduled),
		match(2, 30, nil, models.MatchStatusPending),
		match(3, 40, intPtr(10), models.MatchStatusPlayed),
		{ID: 4, TournamentID: 1, DivisionID: 9, HomePlayerID: 50, AwayPlayerID: intPtr(60), Status: models.MatchStatusPlayed},
	}

	tests := []struct {
		name     string
		a, b     int
		statuses []models.MatchStatus
		ignore   []int
		want     bool
	}{
		{"scheduled pair blocks creation", 10, 20, CreationStatuses, nil, true},
		{"reversed order is the same pair", 20, 10, CreationStatuses, nil, true},
		{"scheduled pair does not block result", 10, 20, ResultStatuses, nil, false},
		{"played pair blocks result", 10, 40, ResultStatuses, nil, true},
		{"own match can be ignored", 40, 10, ResultStatuses, []int{3}, false},
		{"pending without away never conflicts", 30, 10, CreationStatuses, nil, false},
		{"other division does not conflict", 50, 60, CreationStatuses, nil, false},
		{"unrelated players", 20, 40, CreationStatuses, nil, false},
		{"same player", 10, 10, CreationStatuses, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasConflict(matches, 1, 2, tt.a, tt.b, tt.statuses, tt.ignore...); got != tt.want {
				t.Fatalf("HasConflict = %v, want %v", got, tt.want)
			}
		})
	}
}

type stubLister struct {
	matches []*models.Match
	err     error
}

func (s stubLister) ListByPair(ctx context.Context, tournamentID, divisionID, a, b int) ([]*models.Match, error) {
	return s.matches, s.err
}

func TestGuardCheck(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(stubLister{matches: []*models.Match{match(1, 10, intPtr(20), models.MatchStatusScheduled)}})

	if err := g.Check(ctx, 1, 2, 20, 10, CreationStatuses); !errors.Is(err, ErrDuplicatePairing) {
		t.Fatalf("Check = %v, want ErrDuplicatePairing", err)
	}
	if err := g.Check(ctx, 1, 2, 20, 10, ResultStatuses); err != nil {
		t.Fatalf("Check = %v, want nil", err)
	}

	storeErr := errors.New("connection reset")
	g = NewGuard(stubLister{err: storeErr})
	if err := g.Check(ctx, 1, 2, 20, 10, CreationStatuses); !errors.Is(err, storeErr) || errors.Is(err, ErrDuplicatePairing) {
		t.Fatalf("Check = %v, want wrapped store error", err)
	}
}
