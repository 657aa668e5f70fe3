package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/league-standings/models"
	"github.com/lib/pq"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// appliedRows reports whether a conditional write touched at least one row.
// Zero rows means the asserted prior state no longer held.
func appliedRows(result sql.Result) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected > 0, nil
}

// withTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back otherwise, including on panic.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	return fn(tx)
}

// errRollback aborts withTx without reporting a failure to the caller.
var errRollback = errors.New("rollback requested")

// predicateClause renders p as SQL conditions starting at placeholder index
// next. It returns the clause (beginning with " AND" when non-empty) and its
// arguments.
func predicateClause(p models.MatchPredicate, next int) (string, []interface{}) {
	var b strings.Builder
	var args []interface{}
	if len(p.Statuses) > 0 {
		b.WriteString(" AND status = ANY($")
		b.WriteString(strconv.Itoa(next))
		b.WriteString(")")
		args = append(args, pq.Array(statusStrings(p.Statuses)))
		next++
	}
	if p.AwayUnset {
		b.WriteString(" AND away_player_id IS NULL")
	}
	if p.AwayPlayerID != nil {
		b.WriteString(" AND away_player_id = $")
		b.WriteString(strconv.Itoa(next))
		args = append(args, *p.AwayPlayerID)
	}
	return b.String(), args
}

func statusStrings(statuses []models.MatchStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
