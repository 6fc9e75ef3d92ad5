package db

import (
	"database/sql"
	"embed"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations
var migrationsFS embed.FS

func migrationSource() *migrate.EmbedFileSystemMigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations",
	}
}

// Migrate applies every pending embedded migration and returns how many ran.
func Migrate(db *sql.DB) (int, error) {
	n, err := migrate.Exec(db, "postgres", migrationSource(), migrate.Up)

	if err != nil {
		return n, fmt.Errorf("db migrations have failed: %w", err)
	}

	return n, nil
}
