package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-standings/models"
	"github.com/lib/pq"
)

var ErrMatchSetInvalid = errors.New("match set conflict or invalid")

// MatchSetRepository stores the ordered sets of a match. Methods accept an
// optional executor so they can join a caller's transaction.
type MatchSetRepository interface {
	ReplaceForMatch(ctx context.Context, exec SQLExecutor, matchID int, sets []models.MatchSet) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.MatchSet, error)
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
}

type postgresMatchSetRepository struct {
	db *sql.DB
}

func NewPostgresMatchSetRepository(db *sql.DB) MatchSetRepository {
	return &postgresMatchSetRepository{db: db}
}

func (r *postgresMatchSetRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// ReplaceForMatch deletes the current sets of the match and inserts sets in
// order. Run it inside a transaction to make the swap atomic.
func (r *postgresMatchSetRepository) ReplaceForMatch(ctx context.Context, exec SQLExecutor, matchID int, sets []models.MatchSet) error {
	executor := r.getExecutor(exec)
	if err := r.DeleteByMatch(ctx, executor, matchID); err != nil {
		return err
	}

	query := `
		INSERT INTO match_sets (match_id, set_number, home_games, away_games)
		VALUES ($1, $2, $3, $4)`
	for _, s := range sets {
		if _, err := executor.ExecContext(ctx, query, matchID, s.Number, s.HomeGames, s.AwayGames); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && (pqErr.Code == "23505" || pqErr.Code == "23514") {
				return fmt.Errorf("%w: match %d set %d", ErrMatchSetInvalid, matchID, s.Number)
			}
			return fmt.Errorf("failed to insert set %d for match %d: %w", s.Number, matchID, err)
		}
	}
	return nil
}

func (r *postgresMatchSetRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.MatchSet, error) {
	query := `
		SELECT match_id, set_number, home_games, away_games
		FROM match_sets
		WHERE match_id = $1
		ORDER BY set_number ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sets for match %d: %w", matchID, err)
	}
	defer rows.Close()

	sets := make([]models.MatchSet, 0)
	for rows.Next() {
		var s models.MatchSet
		if err := rows.Scan(&s.MatchID, &s.Number, &s.HomeGames, &s.AwayGames); err != nil {
			return nil, fmt.Errorf("failed to scan match set row: %w", err)
		}
		sets = append(sets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match set rows iteration: %w", err)
	}
	return sets, nil
}

// DeleteByMatch is a no-op when the match has no sets, so repeating it after a
// failed parent delete is safe.
func (r *postgresMatchSetRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	query := `DELETE FROM match_sets WHERE match_id = $1`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, matchID); err != nil {
		return fmt.Errorf("failed to delete sets for match %d: %w", matchID, err)
	}
	return nil
}
