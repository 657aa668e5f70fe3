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

func TestGetPlayerLoadsAreasAndAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewPostgresReferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM players")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "preferred_name", "role", "preferred_areas", "created_at"}).
			AddRow(4, "María José Pérez", "Majo", "player", []byte("{3,5}"), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("FROM player_availability")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"weekday", "time_block"}).
			AddRow(int(time.Saturday), "morning").
			AddRow(int(time.Tuesday), "evening"))

	p, err := repo.GetPlayer(context.Background(), 4)
	if err != nil {
		t.Fatalf("GetPlayer: %v", err)
	}
	if p.DisplayName() != "Majo" || p.Role != models.RolePlayer {
		t.Fatalf("player = %+v", p)
	}
	if len(p.PreferredAreas) != 2 || p.PreferredAreas[1] != 5 {
		t.Fatalf("PreferredAreas = %v", p.PreferredAreas)
	}
	if !p.Availability.IsAvailable(time.Saturday, models.BlockMorning) || p.Availability.IsAvailable(time.Saturday, models.BlockEvening) {
		t.Fatalf("Availability = %v", p.Availability)
	}
	expectationsMet(t, mock)
}

func TestReferenceNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewPostgresReferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM players")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM divisions d")).
		WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetPlayer(context.Background(), 9); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("GetPlayer = %v, want ErrPlayerNotFound", err)
	}
	if _, err := repo.GetDivision(context.Background(), 1, 2); !errors.Is(err, ErrDivisionNotFound) {
		t.Fatalf("GetDivision = %v, want ErrDivisionNotFound", err)
	}
	expectationsMet(t, mock)
}

func TestGetDivision(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE d.id = $1 AND d.tournament_id = $2")).
		WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tournament_id", "name", "status", "id", "name", "status", "created_at"}).
			AddRow(2, 1, "Primera", "active", 1, "Liga de Primavera", "active", time.Now()))

	d, err := NewPostgresReferenceRepository(db).GetDivision(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("GetDivision: %v", err)
	}
	if d.Name != "Primera" || d.Status != models.StatusActive || d.TournamentID != 1 || d.Tournament == nil || d.Tournament.Name != "Liga de Primavera" {
		t.Fatalf("division = %+v", d)
	}
	expectationsMet(t, mock)
}
