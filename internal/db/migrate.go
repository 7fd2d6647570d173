package db

import (
	"database/sql"
	"embed"
	"fmt"
)

//go:embed schema.sql
var schemaFS embed.FS

// Migrate creates all tables if they do not exist. Safe to run on every startup.
func Migrate(db *sql.DB) error {
	b, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
