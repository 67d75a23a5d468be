package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"strconv"

	"chess-progression/internal/config"
	"chess-progression/internal/constants"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// connection settings applied by the driver to every pooled connection
var connParams = map[string]string{
	"_journal_mode": "WAL",
	"_synchronous":  "NORMAL",
	"_busy_timeout": strconv.FormatInt(constants.CacheDBBusyTimeout.Milliseconds(), 10),
	"_txlock":       "immediate",
}

func dsn(path string) string {
	q := url.Values{}
	for k, v := range connParams {
		q.Set(k, v)
	}
	return path + "?" + q.Encode()
}

// New opens the rating cache database at cfg.DBPath and brings its schema up
// to date.
func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	logger.Info().Str("path", cfg.DBPath).Msg("opening rating cache database")

	db, err := sql.Open("sqlite3", dsn(cfg.DBPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	db.SetMaxOpenConns(constants.CacheDBMaxOpenConns)
	db.SetMaxIdleConns(constants.CacheDBMaxIdleConns)
	db.SetConnMaxIdleTime(constants.CacheDBConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	var journal string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journal); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach cache database: %w", err)
	}
	logger.Debug().Str("journal_mode", journal).Msg("cache database connected")

	if err := migrate(db, logger); err != nil {
		logger.Error().Err(err).Msg("failed to run migrations")
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB, logger zerolog.Logger) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info().Int64("schema_version", version).Msg("rating cache schema ready")
	return nil
}
