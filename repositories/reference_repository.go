package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Dosada05/league-standings/models"
)

var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrDivisionNotFound = errors.New("division not found")
)

// ReferenceRepository reads players and divisions. Both are owned by other
// services; this one never writes them.
type ReferenceRepository interface {
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	GetDivision(ctx context.Context, tournamentID, divisionID int) (*models.Division, error)
}

type postgresReferenceRepository struct {
	db *sql.DB
}

func NewPostgresReferenceRepository(db *sql.DB) ReferenceRepository {
	return &postgresReferenceRepository{db: db}
}

func (r *postgresReferenceRepository) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, name, preferred_name, role, preferred_areas, created_at
		FROM players
		WHERE id = $1`

	var (
		p     models.Player
		areas pq.Int64Array
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.PreferredName, &p.Role, &areas, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	for _, a := range areas {
		p.PreferredAreas = append(p.PreferredAreas, int(a))
	}

	availability, err := r.listAvailability(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Availability = availability
	return &p, nil
}

func (r *postgresReferenceRepository) listAvailability(ctx context.Context, playerID int) (models.Availability, error) {
	query := `
		SELECT weekday, time_block
		FROM player_availability
		WHERE player_id = $1 AND available`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability for player %d: %w", playerID, err)
	}
	defer rows.Close()

	availability := make(models.Availability)
	for rows.Next() {
		var (
			day   int
			block models.TimeBlock
		)
		if err := rows.Scan(&day, &block); err != nil {
			return nil, fmt.Errorf("failed to scan availability row: %w", err)
		}
		weekday := time.Weekday(day)
		if availability[weekday] == nil {
			availability[weekday] = make(map[models.TimeBlock]bool)
		}
		availability[weekday][block] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during availability rows iteration: %w", err)
	}
	return availability, nil
}

func (r *postgresReferenceRepository) GetDivision(ctx context.Context, tournamentID, divisionID int) (*models.Division, error) {
	query := `
		SELECT d.id, d.tournament_id, d.name, d.status, t.id, t.name, t.status, t.created_at
		FROM divisions d
		JOIN tournaments t ON t.id = d.tournament_id
		WHERE d.id = $1 AND d.tournament_id = $2`

	var (
		d models.Division
		t models.Tournament
	)
	err := r.db.QueryRowContext(ctx, query, divisionID, tournamentID).
		Scan(&d.ID, &d.TournamentID, &d.Name, &d.Status, &t.ID, &t.Name, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDivisionNotFound
		}
		return nil, fmt.Errorf("failed to get division %d of tournament %d: %w", divisionID, tournamentID, err)
	}
	d.Tournament = &t
	return &d, nil
}
