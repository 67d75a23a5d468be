package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chess-progression/internal/constants"

	"github.com/rs/zerolog"
)

// SQLiteStore persists entries in the rating_cache table created by the
// database migrations.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSQLiteStore(db *sql.DB, logger zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, logger: logger}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var (
		ts     int64
		rating sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT timestamp, rating FROM rating_cache WHERE key = ?`, key,
	).Scan(&ts, &rating)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	e := Entry{Timestamp: ts}
	if rating.Valid {
		v := int(rating.Int64)
		e.Rating = &v
	}
	return e, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, e Entry) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var rating sql.NullInt64
	if e.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*e.Rating), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rating_cache (key, timestamp, rating) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET timestamp = excluded.timestamp, rating = excluded.rating
	`, key, e.Timestamp, rating)
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}

	s.logger.Debug().Str("key", key).Msg("cache entry written")
	return nil
}

func (s *SQLiteStore) Invalidate(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM rating_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Prune drops entries captured before cutoff (unix seconds).
func (s *SQLiteStore) Prune(ctx context.Context, cutoff int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM rating_cache WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	n, _ := res.RowsAffected()
	s.logger.Info().Int64("removed", n).Msg("pruned expired cache entries")
	return n, nil
}
