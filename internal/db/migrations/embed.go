// Package migrations embeds the goose SQL migrations and applies them
package migrations

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

func configure() error {
	goose.SetBaseFS(FS)
	return goose.SetDialect("postgres")
}

// Up applies every pending migration
func Up(ctx context.Context, db *sql.DB) error {
	if err := configure(); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Run executes a goose command such as up, down, status or reset
func Run(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if err := configure(); err != nil {
		return err
	}
	return goose.RunContext(ctx, command, db, ".", args...)
}
