package ratingcache

import (
	"context"
	"strings"
	"time"

	"chess-progression/internal/config"
	"chess-progression/internal/constants"
	"chess-progression/internal/domain"
	"chess-progression/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type RatingFetcher interface {
	CurrentRating(ctx context.Context, handle, ratingKey string) (*int, error)
}

// Cache resolves an opponent's current rating, going to the network at most
// once per TTL per key. Failed lookups are cached as nil like any other
// result.
type Cache struct {
	store   store.Store
	fetcher RatingFetcher
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
	logger  zerolog.Logger
}

func New(st store.Store, fetcher RatingFetcher, cfg *config.Config, logger zerolog.Logger) *Cache {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = constants.RatingCacheTTL
	}
	return &Cache{
		store:   st,
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

func Key(account domain.Account, handle string) string {
	return account.Namespace() + "/" + strings.ToLower(handle)
}

// GetOrFetch never fails: transport, decode and storage problems are logged
// and surface as a nil rating. The shared fetch for a key runs detached from
// caller cancellation and its result is always cached; a caller whose ctx
// ends first gets nil.
func (c *Cache) GetOrFetch(ctx context.Context, account domain.Account, handle string) *int {
	key := Key(account, handle)
	shareCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key, func() (any, error) {
		return c.load(shareCtx, account, handle, key), nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		c.logger.Debug().Str("key", key).Msg("rating lookup abandoned by caller")
		return nil
	}
	if res.Shared {
		c.logger.Debug().Str("key", key).Msg("shared in-flight rating lookup")
	}

	rating, _ := res.Val.(*int)
	if rating == nil {
		return nil
	}
	r := *rating
	return &r
}

func (c *Cache) load(ctx context.Context, account domain.Account, handle, key string) *int {
	now := c.now()

	entry, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry unreadable, refetching")
	case ok && entry.Fresh(now, c.ttl):
		c.logger.Debug().Str("key", key).Msg("rating cache hit")
		return entry.Rating
	case ok:
		c.logger.Debug().Str("key", key).Int64("captured_at", entry.Timestamp).Msg("rating cache entry expired")
	}

	if ok || err != nil {
		if err := c.store.Invalidate(ctx, key); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to invalidate stale cache entry")
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, constants.RatingFetchTimeout)
	defer cancel()

	rating, err := c.fetcher.CurrentRating(fetchCtx, handle, account.RatingKey())
	if err != nil {
		c.logger.Warn().Err(err).Str("opponent", handle).Msg("failed to fetch current rating")
		rating = nil
	}

	if err := c.store.Put(ctx, key, store.NewEntry(now, rating)); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to persist rating")
	}
	return rating
}
