package dbmigrate

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"github.com/fdg312/meal-planner/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Run applies a goose command. An empty migrationsDir uses the migrations
// embedded in the binary.
func Run(command string, dbURL string, migrationsDir string) error {
	if dbURL == "" {
		return fmt.Errorf("database URL is empty")
	}

	fsys, dir, err := resolveSource(migrationsDir)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Run(command, db, dir); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	return nil
}

func resolveSource(migrationsDir string) (fs.FS, string, error) {
	if migrationsDir == "" {
		return migrations.FS, ".", nil
	}
	info, err := os.Stat(migrationsDir)
	if err != nil {
		return nil, "", fmt.Errorf("migrations dir %s: %w", migrationsDir, err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("migrations dir %s is not a directory", migrationsDir)
	}
	return os.DirFS(migrationsDir), ".", nil
}
