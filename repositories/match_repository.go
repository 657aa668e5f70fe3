package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/Dosada05/league-standings/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound         = errors.New("match not found")
	ErrMatchReferenceInvalid = errors.New("match references an unknown player, tournament or division")
	ErrMatchStateInvalid     = errors.New("match row violates a state constraint")
)

// MatchRepository is the match store. Every write that depends on a prior
// observed state is conditional and reports whether it was applied; a false
// result with a nil error means the row no longer matched the expectation.
type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByScope(ctx context.Context, tournamentID, divisionID int, statuses []models.MatchStatus) ([]*models.Match, error)
	ListByPair(ctx context.Context, tournamentID, divisionID, a, b int) ([]*models.Match, error)
	Claim(ctx context.Context, id, awayPlayerID int) (bool, error)
	UpdateSchedule(ctx context.Context, id int, fields models.ScheduleFields, expect models.MatchPredicate) (bool, error)
	SaveResult(ctx context.Context, id, awayPlayerID int, result models.MatchResult, sets []models.MatchSet, expect models.MatchPredicate) (bool, error)
	Delete(ctx context.Context, id int, expect models.MatchPredicate) (bool, error)
}

type postgresMatchRepository struct {
	db   *sql.DB
	sets MatchSetRepository
}

func NewPostgresMatchRepository(db *sql.DB, sets MatchSetRepository) MatchRepository {
	return &postgresMatchRepository{db: db, sets: sets}
}

const matchColumns = `
		id, tournament_id, division_id, home_player_id, away_player_id, match_date, start_time,
		area_id, venue, status, home_sets_won, away_sets_won, home_games_won, away_games_won,
		home_had_drink, away_had_drink, home_drinks, away_drinks, anecdote, created_by, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner, m *models.Match) error {
	return row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.DivisionID,
		&m.HomePlayerID,
		&m.AwayPlayerID,
		&m.Date,
		&m.StartTime,
		&m.AreaID,
		&m.Venue,
		&m.Status,
		&m.HomeSetsWon,
		&m.AwaySetsWon,
		&m.HomeGamesWon,
		&m.AwayGamesWon,
		&m.HomeHadDrink,
		&m.AwayHadDrink,
		&m.HomeDrinks,
		&m.AwayDrinks,
		&m.Anecdote,
		&m.CreatedBy,
		&m.CreatedAt,
	)
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, division_id, home_player_id, away_player_id, match_date, start_time,
			 area_id, venue, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		match.TournamentID,
		match.DivisionID,
		match.HomePlayerID,
		match.AwayPlayerID,
		match.Date,
		match.StartTime,
		match.AreaID,
		match.Venue,
		match.Status,
		match.CreatedBy,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		return r.handleMatchError(err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE id = $1`

	match := &models.Match{}
	if err := scanMatch(r.db.QueryRowContext(ctx, query, id), match); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}

	sets, err := r.sets.ListByMatch(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	match.Sets = sets
	return match, nil
}

func (r *postgresMatchRepository) ListByScope(ctx context.Context, tournamentID, divisionID int, statuses []models.MatchStatus) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND division_id = $2`
	args := []interface{}{tournamentID, divisionID}
	if len(statuses) > 0 {
		query += " AND status = ANY($3)"
		args = append(args, pq.Array(statusStrings(statuses)))
	}
	query += " ORDER BY match_date ASC, id ASC"

	return r.queryMatches(ctx, query, args...)
}

func (r *postgresMatchRepository) ListByPair(ctx context.Context, tournamentID, divisionID, a, b int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND division_id = $2
		  AND ((home_player_id = $3 AND away_player_id = $4) OR (home_player_id = $4 AND away_player_id = $3))
		ORDER BY id ASC`

	return r.queryMatches(ctx, query, tournamentID, divisionID, a, b)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if err := scanMatch(rows, &match); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, &match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

// Claim attaches the away player only while the match is still pending and
// open. Both columns change in the same statement.
func (r *postgresMatchRepository) Claim(ctx context.Context, id, awayPlayerID int) (bool, error) {
	query := `
		UPDATE matches
		SET away_player_id = $1, status = $2
		WHERE id = $3 AND status = $4 AND away_player_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, awayPlayerID, models.MatchStatusScheduled, id, models.MatchStatusPending)
	if err != nil {
		return false, r.handleMatchError(err)
	}
	return appliedRows(result)
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, id int, fields models.ScheduleFields, expect models.MatchPredicate) (bool, error) {
	query := `
		UPDATE matches
		SET match_date = $1, start_time = $2, area_id = $3, venue = $4
		WHERE id = $5`
	cond, condArgs := predicateClause(expect, 6)
	args := append([]interface{}{fields.Date, fields.StartTime, fields.AreaID, fields.Venue, id}, condArgs...)

	result, err := r.db.ExecContext(ctx, query+cond, args...)
	if err != nil {
		return false, r.handleMatchError(err)
	}
	return appliedRows(result)
}

// SaveResult marks the match played and replaces its sets in one transaction.
// When the match no longer matches expect nothing is written.
func (r *postgresMatchRepository) SaveResult(ctx context.Context, id, awayPlayerID int, res models.MatchResult, sets []models.MatchSet, expect models.MatchPredicate) (bool, error) {
	query := `
		UPDATE matches
		SET status = $1, away_player_id = $2,
		    home_sets_won = $3, away_sets_won = $4, home_games_won = $5, away_games_won = $6,
		    home_had_drink = $7, away_had_drink = $8, home_drinks = $9, away_drinks = $10, anecdote = $11
		WHERE id = $12`
	cond, condArgs := predicateClause(expect, 13)
	args := append([]interface{}{
		models.MatchStatusPlayed, awayPlayerID,
		res.HomeSetsWon, res.AwaySetsWon, res.HomeGamesWon, res.AwayGamesWon,
		res.HomeHadDrink, res.AwayHadDrink, res.HomeDrinks, res.AwayDrinks, res.Anecdote,
		id,
	}, condArgs...)

	applied := false
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query+cond, args...)
		if err != nil {
			return r.handleMatchError(err)
		}
		ok, err := appliedRows(result)
		if err != nil {
			return err
		}
		if !ok {
			return errRollback
		}
		if err := r.sets.ReplaceForMatch(ctx, tx, id, sets); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if errors.Is(err, errRollback) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("save result for match %d: %w", id, err)
	}
	return applied, nil
}

// Delete removes the sets and then the match. A match delete that misses its
// expectation rolls the set delete back.
func (r *postgresMatchRepository) Delete(ctx context.Context, id int, expect models.MatchPredicate) (bool, error) {
	cond, condArgs := predicateClause(expect, 2)
	query := `DELETE FROM matches WHERE id = $1` + cond
	args := append([]interface{}{id}, condArgs...)

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.sets.DeleteByMatch(ctx, tx, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to delete match %d: %w", id, err)
		}
		ok, err := appliedRows(result)
		if err != nil {
			return err
		}
		if !ok {
			return errRollback
		}
		return nil
	})
	if errors.Is(err, errRollback) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrMatchReferenceInvalid, pqErr.Constraint)
		case "23514", "23502": // check_violation, not_null_violation
			return fmt.Errorf("%w: %s", ErrMatchStateInvalid, constraintOrColumn(pqErr))
		}
	}
	return fmt.Errorf("match store: %w", err)
}

func constraintOrColumn(pqErr *pq.Error) string {
	if pqErr.Constraint != "" {
		return pqErr.Constraint
	}
	if pqErr.Column != "" {
		return pqErr.Column
	}
	return strconv.Quote(string(pqErr.Code))
}
