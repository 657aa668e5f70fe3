package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/league-standings/models"
)

// StandingRepository reads the per-player totals maintained by the stats
// aggregator. Points are taken as given.
type StandingRepository interface {
	ListByDivision(ctx context.Context, tournamentID, divisionID int) ([]*models.StandingsRow, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) ListByDivision(ctx context.Context, tournamentID, divisionID int) ([]*models.StandingsRow, error) {
	query := `
		SELECT player_id, tournament_id, division_id, points, wins, losses,
		       sets_won, sets_lost, games_won, games_lost, drinks
		FROM player_division_stats
		WHERE tournament_id = $1 AND division_id = $2`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats for tournament %d division %d: %w", tournamentID, divisionID, err)
	}
	defer rows.Close()

	stats := make([]*models.StandingsRow, 0)
	for rows.Next() {
		var s models.StandingsRow
		if err := rows.Scan(
			&s.PlayerID,
			&s.TournamentID,
			&s.DivisionID,
			&s.Points,
			&s.Wins,
			&s.Losses,
			&s.SetsWon,
			&s.SetsLost,
			&s.GamesWon,
			&s.GamesLost,
			&s.Drinks,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats = append(stats, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during stats rows iteration: %w", err)
	}
	return stats, nil
}
