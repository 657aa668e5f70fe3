package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Dosada05/league-standings/models"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, MatchRepository, MatchSetRepository, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	sets := NewPostgresMatchSetRepository(db)
	return mock, NewPostgresMatchRepository(db, sets), sets, func() { db.Close() }
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}

func TestClaimIsConditional(t *testing.T) {
	mock, repo, _, done := newMock(t)
	defer done()

	claim := regexp.QuoteMeta("WHERE id = $3 AND status = $4 AND away_player_id IS NULL")
	mock.ExpectExec(claim).
		WithArgs(22, models.MatchStatusScheduled, 5, models.MatchStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(claim).
		WithArgs(33, models.MatchStatusScheduled, 5, models.MatchStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	if applied, err := repo.Claim(ctx, 5, 22); err != nil || !applied {
		t.Fatalf("first claim = (%v, %v), want applied", applied, err)
	}
	if applied, err := repo.Claim(ctx, 5, 33); err != nil || applied {
		t.Fatalf("second claim = (%v, %v), want not applied without error", applied, err)
	}
	expectationsMet(t, mock)
}

func TestSaveResultReplacesSetsInTransaction(t *testing.T) {
	mock, repo, _, done := newMock(t)
	defer done()

	sets := []models.MatchSet{{Number: 1, HomeGames: 6, AwayGames: 4}, {Number: 2, HomeGames: 3, AwayGames: 6}, {Number: 3, HomeGames: 7, AwayGames: 5}}
	res := models.AggregateSets(sets)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM match_sets WHERE match_id = $1")).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 2))
	for _, s := range sets {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO match_sets")).
			WithArgs(9, s.Number, s.HomeGames, s.AwayGames).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	expect := models.MatchPredicate{Statuses: []models.MatchStatus{models.MatchStatusScheduled}}
	applied, err := repo.SaveResult(context.Background(), 9, 2, res, sets, expect)
	if err != nil || !applied {
		t.Fatalf("SaveResult = (%v, %v), want applied", applied, err)
	}
	expectationsMet(t, mock)
}

func TestSaveResultLostRaceRollsBack(t *testing.T) {
	mock, repo, _, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	expect := models.MatchPredicate{Statuses: []models.MatchStatus{models.MatchStatusScheduled}}
	sets := []models.MatchSet{{Number: 1, HomeGames: 6, AwayGames: 0}}
	applied, err := repo.SaveResult(context.Background(), 9, 2, models.AggregateSets(sets), sets, expect)
	if err != nil || applied {
		t.Fatalf("SaveResult = (%v, %v), want not applied without error", applied, err)
	}
	expectationsMet(t, mock)
}

func TestDeleteRemovesSetsFirstAndRollsBackOnMiss(t *testing.T) {
	mock, repo, _, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM match_sets WHERE match_id = $1")).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matches WHERE id = $1 AND status = ANY($2)")).
		WithArgs(4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	expect := models.MatchPredicate{Statuses: []models.MatchStatus{models.MatchStatusPending, models.MatchStatusScheduled}}
	applied, err := repo.Delete(context.Background(), 4, expect)
	if err != nil || applied {
		t.Fatalf("Delete = (%v, %v), want not applied", applied, err)
	}
	expectationsMet(t, mock)
}

func TestDeleteStoreFailureIsReported(t *testing.T) {
	mock, repo, _, done := newMock(t)
	defer done()

	storeErr := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM match_sets")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matches")).
		WillReturnError(storeErr)
	mock.ExpectRollback()

	applied, err := repo.Delete(context.Background(), 4, models.MatchPredicate{})
	if applied || !errors.Is(err, storeErr) {
		t.Fatalf("Delete = (%v, %v), want wrapped store error", applied, err)
	}
	expectationsMet(t, mock)
}

var matchColumnNames = []string{
	"id", "tournament_id", "division_id", "home_player_id", "away_player_id", "match_date", "start_time",
	"area_id", "venue", "status", "home_sets_won", "away_sets_won", "home_games_won", "away_games_won",
	"home_had_drink", "away_had_drink", "home_drinks", "away_drinks", "anecdote", "created_by", "created_at",
}

func TestGetByIDLoadsSets(t *testing.T) {
	mock, repo, _, done := newMock(t)
	defer done()

	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM matches")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(matchColumnNames).AddRow(
			3, 1, 2, 10, 20, date, "18:30",
			nil, nil, "played", 2, 1, 16, 15,
			true, false, 2, 0, nil, 10, date,
		))
	mock.ExpectQuery(regexp.QuoteMeta("FROM match_sets")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"match_id", "set_number", "home_games", "away_games"}).
			AddRow(3, 1, 6, 4).
			AddRow(3, 2, 3, 6).
			AddRow(3, 3, 7, 5))

	m, err := repo.GetByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if m.Status != models.MatchStatusPlayed || m.AwayPlayerID == nil || *m.AwayPlayerID != 20 {
		t.Fatalf("unexpected match %+v", m)
	}
	if m.StartTime == nil || *m.StartTime != "18:30" || m.AreaID != nil {
		t.Fatalf("unexpected schedule fields %+v", m)
	}
	if len(m.Sets) != 3 || m.Sets[2].HomeGames != 7 {
		t.Fatalf("sets = %+v", m.Sets)
	}
	expectationsMet(t, mock)
}

func TestGetByIDNotFound(t *testing.T) {
	mock, repo, _, done := newMock(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("FROM matches")).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows(matchColumnNames))

	if _, err := repo.GetByID(context.Background(), 404); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("GetByID = %v, want ErrMatchNotFound", err)
	}
	expectationsMet(t, mock)
}

func TestPredicateClause(t *testing.T) {
	away := 7
	tests := []struct {
		name     string
		p        models.MatchPredicate
		want     string
		wantArgs int
	}{
		{"empty", models.MatchPredicate{}, "", 0},
		{"open pending", models.MatchPredicate{Statuses: []models.MatchStatus{models.MatchStatusPending}, AwayUnset: true},
			" AND status = ANY($4) AND away_player_id IS NULL", 1},
		{"observed away", models.MatchPredicate{Statuses: []models.MatchStatus{models.MatchStatusScheduled}, AwayPlayerID: &away},
			" AND status = ANY($4) AND away_player_id = $5", 2},
		{"away only", models.MatchPredicate{AwayPlayerID: &away}, " AND away_player_id = $4", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, args := predicateClause(tt.p, 4)
			if got != tt.want || len(args) != tt.wantArgs {
				t.Fatalf("predicateClause = (%q, %d args), want (%q, %d args)", got, len(args), tt.want, tt.wantArgs)
			}
		})
	}
}

func TestRegistrationRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM registrations r")).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "preferred_name"}).
			AddRow(10, "Álvaro Pérez", "Alvi").
			AddRow(11, "Beatriz Ruiz", nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(1, 2, 12).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ctx := context.Background()
	roster, err := repo.ListRoster(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListRoster: %v", err)
	}
	if len(roster) != 2 || roster[0].DisplayName() != "Alvi" || roster[1].DisplayName() != "Beatriz Ruiz" {
		t.Fatalf("roster = %+v", roster)
	}
	ok, err := repo.IsRegistered(ctx, 1, 2, 12)
	if err != nil || ok {
		t.Fatalf("IsRegistered = (%v, %v), want false", ok, err)
	}
	expectationsMet(t, mock)
}
