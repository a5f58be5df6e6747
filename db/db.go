package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the schema up to date on startup.
func Migrate(conn *sql.DB) error {
	const op = "db.Migrate"

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
