package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// withTx runs fn in a transaction. The transaction is rolled back when fn
// returns an error and committed otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", slog.String("error", err.Error()))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// closeRows closes rows and logs a failure without returning it
func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Warn("failed to close rows", slog.String("error", err.Error()))
	}
}

func isUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") && strings.Contains(msg, constraint)
}

// dbTime matches the microsecond precision of timestamptz so that values
// read back compare equal to the values written
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := dbTime(t.Time)
	return &v
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
