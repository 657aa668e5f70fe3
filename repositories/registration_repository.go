package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/league-standings/models"
)

// RegistrationRepository is the read-only player directory of a division.
type RegistrationRepository interface {
	ListRoster(ctx context.Context, tournamentID, divisionID int) ([]models.RosterEntry, error)
	IsRegistered(ctx context.Context, tournamentID, divisionID, playerID int) (bool, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) ListRoster(ctx context.Context, tournamentID, divisionID int) ([]models.RosterEntry, error) {
	query := `
		SELECT p.id, p.name, p.preferred_name
		FROM registrations r
		JOIN players p ON p.id = r.player_id
		WHERE r.tournament_id = $1 AND r.division_id = $2
		ORDER BY p.id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster for tournament %d division %d: %w", tournamentID, divisionID, err)
	}
	defer rows.Close()

	roster := make([]models.RosterEntry, 0)
	for rows.Next() {
		var e models.RosterEntry
		if err := rows.Scan(&e.PlayerID, &e.Name, &e.PreferredName); err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		roster = append(roster, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during roster rows iteration: %w", err)
	}
	return roster, nil
}

func (r *postgresRegistrationRepository) IsRegistered(ctx context.Context, tournamentID, divisionID, playerID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM registrations
			WHERE tournament_id = $1 AND division_id = $2 AND player_id = $3
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tournamentID, divisionID, playerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check registration of player %d: %w", playerID, err)
	}
	return exists, nil
}
