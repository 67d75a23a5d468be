package fx

import (
	"context"
	"fmt"
	"time"

	"chess-progression/internal/api"
	"chess-progression/internal/config"
	"chess-progression/internal/database"
	"chess-progression/internal/logger"
	"chess-progression/internal/ratingcache"
	"chess-progression/internal/server"
	"chess-progression/internal/service"
	"chess-progression/internal/store"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideStore opens the cache backend selected by CACHE_BACKEND and ties its
// connections to the app lifecycle.
func ProvideStore(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (store.Store, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendSQLite:
		sqlDB, err := database.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		st := store.NewSQLiteStore(sqlDB, logger)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				cutoff := time.Now().Add(-cfg.CacheTTL).Unix()
				n, err := st.Prune(ctx, cutoff)
				if err != nil {
					logger.Warn().Err(err).Msg("failed to prune expired cache entries")
					return nil
				}
				logger.Debug().Int64("pruned", n).Msg("expired cache entries pruned")
				return nil
			},
			OnStop: func(ctx context.Context) error {
				if err := sqlDB.Close(); err != nil {
					logger.Warn().Err(err).Msg("error closing database connection")
				}
				return nil
			},
		})
		return st, nil

	case config.CacheBackendRedis:
		st := store.NewRedisStore(cfg.RedisAddr, cfg.CacheTTL, logger)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := st.Ping(ctx); err != nil {
					return fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
				}
				logger.Info().Str("addr", cfg.RedisAddr).Msg("redis cache connected")
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return st.Close()
			},
		})
		return st, nil

	default:
		logger.Info().Str("dir", cfg.CacheDir).Msg("using file cache")
		return store.NewFileStore(cfg.CacheDir, logger), nil
	}
}

func ProvideRatingFetcher(c *api.ChessComClient) ratingcache.RatingFetcher { return c }

func ProvideArchiveSource(c *api.ChessComClient) service.ArchiveSource { return c }

var Module = fx.Options(
	logger.Module,
	config.Module,
	// cache
	fx.Provide(ProvideStore),
	fx.Provide(fx.Annotate(ratingcache.New, fx.As(new(service.RatingLookup)))),
	// api client
	fx.Provide(api.NewChessComClient),
	fx.Provide(ProvideRatingFetcher),
	fx.Provide(ProvideArchiveSource),
	// svc
	fx.Provide(service.NewProgressionService),
	// server
	fx.Provide(server.NewProgressionServer),
)
