package db

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSchemaDeclaresChangeFeed(t *testing.T) {
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS matches",
		"CREATE TABLE IF NOT EXISTS match_sets",
		"CREATE TABLE IF NOT EXISTS player_division_stats",
		"pg_notify('match_changed'",
		"AFTER INSERT OR UPDATE OR DELETE ON matches",
	} {
		if !strings.Contains(schema, want) {
			t.Errorf("schema is missing %q", want)
		}
	}
}

func TestApplySchema(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta(schema)).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := ApplySchema(context.Background(), conn); err != nil {
		t.Fatalf("ApplySchema: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta(schema)).WillReturnError(errors.New("permission denied"))
	if err := ApplySchema(context.Background(), conn); err == nil {
		t.Fatal("ApplySchema succeeded, want error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
