package service

import (
	"context"
	"time"

	"chess-progression/internal/api"
	"chess-progression/internal/config"
	"chess-progression/internal/constants"
	"chess-progression/internal/domain"
	"chess-progression/internal/filter"
	"chess-progression/internal/scoring"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type ArchiveSource interface {
	ListArchives(ctx context.Context, handle string) ([]string, error)
	FetchGames(ctx context.Context, archiveURL string) ([]api.Game, error)
	CurrentRating(ctx context.Context, handle, ratingKey string) (*int, error)
}

type RatingLookup interface {
	GetOrFetch(ctx context.Context, account domain.Account, handle string) *int
}

type ProgressionService struct {
	archives    ArchiveSource
	ratings     RatingLookup
	concurrency int
	location    *time.Location
	logger      zerolog.Logger
}

func NewProgressionService(archives ArchiveSource, ratings RatingLookup, cfg *config.Config, logger zerolog.Logger) *ProgressionService {
	concurrency := cfg.FetchConcurrency
	if concurrency < 1 {
		concurrency = constants.DefaultFetchConcurrency
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &ProgressionService{
		archives:    archives,
		ratings:     ratings,
		concurrency: concurrency,
		location:    loc,
		logger:      logger,
	}
}

// Run executes one pipeline run. It never fails: an unreachable archive list
// yields an empty report, a failed archive contributes no games and a failed
// rating lookup leaves that opponent's current rating nil.
func (s *ProgressionService) Run(ctx context.Context, q domain.Query) *domain.Report {
	ctx, cancel := context.WithTimeout(ctx, constants.RunTimeout)
	defer cancel()

	runID, err := gonanoid.New()
	if err != nil {
		runID = "unknown"
	}
	logger := s.logger.With().
		Str("run_id", runID).
		Str("username", q.Account.Handle).
		Str("mode", q.Account.Mode).
		Logger()
	report := domain.NewReport(runID)

	start := time.Now()
	logger.Info().Str("rated_filter", q.Rated.String()).Msg("starting progression run")

	listCtx, listCancel := context.WithTimeout(ctx, constants.ArchiveFetchTimeout)
	archives, err := s.archives.ListArchives(listCtx, q.Account.Handle)
	listCancel()
	if err != nil {
		logger.Error().Err(err).Msg("failed to list archives")
		return report
	}
	logger.Debug().Int("archive_count", len(archives)).Msg("archives listed")

	perArchive := s.fetchArchives(ctx, archives, logger)

	var classified []filter.Classified
	for _, games := range perArchive {
		for _, g := range games {
			c, ok := filter.Classify(g, q, s.location)
			if !ok {
				continue
			}
			classified = append(classified, c)
			report.History = append(report.History, domain.RatingSample{
				PlayedAt: c.PlayedAt,
				Rating:   c.UserRatingAtPlay,
			})
		}
	}

	report.OpponentRatings = s.resolveOpponents(ctx, q.Account, classified, logger)

	for _, c := range classified {
		current := report.OpponentRatings[c.OpponentKey()]
		delta, score := scoring.GameScore(c.OpponentRatingAtPlay, current)
		report.Records = append(report.Records, domain.GameRecord{
			Score:                 score,
			PlayedAt:              c.PlayedAt,
			Opponent:              c.Opponent,
			OpponentRatingAtPlay:  c.OpponentRatingAtPlay,
			UserRatingAtPlay:      c.UserRatingAtPlay,
			Delta:                 delta,
			OpponentCurrentRating: copyRating(current),
			Color:                 c.Color,
			Result:                c.Result,
		})
	}

	logger.Info().
		Int("archives", len(archives)).
		Int("games", len(report.Records)).
		Int("opponents", len(report.OpponentRatings)).
		Dur("elapsed", time.Since(start)).
		Msg("progression run completed")

	return report
}

// fetchArchives downloads archives concurrently and returns their games in
// archive order.
func (s *ProgressionService) fetchArchives(ctx context.Context, archives []string, logger zerolog.Logger) [][]api.Game {
	out := make([][]api.Game, len(archives))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, archiveURL := range archives {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, constants.ArchiveFetchTimeout)
			defer cancel()

			logger.Debug().Str("archive", archiveURL).Msg("fetching archive")
			games, err := s.archives.FetchGames(fetchCtx, archiveURL)
			if err != nil {
				logger.Warn().Err(err).Str("archive", archiveURL).Msg("failed to fetch archive, skipping")
				return nil
			}
			out[i] = games
			return nil
		})
	}
	g.Wait()

	return out
}

// resolveOpponents looks every distinct opponent up exactly once.
func (s *ProgressionService) resolveOpponents(ctx context.Context, account domain.Account, classified []filter.Classified, logger zerolog.Logger) map[string]*int {
	var keys, handles []string
	seen := make(map[string]bool)
	for _, c := range classified {
		key := c.OpponentKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
		handles = append(handles, c.Opponent)
	}

	ratings := make([]*int, len(keys))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, handle := range handles {
		g.Go(func() error {
			ratings[i] = s.ratings.GetOrFetch(ctx, account, handle)
			return nil
		})
	}
	g.Wait()

	out := make(map[string]*int, len(keys))
	unknown := 0
	for i, key := range keys {
		out[key] = ratings[i]
		if ratings[i] == nil {
			unknown++
		}
	}
	logger.Debug().Int("opponents", len(keys)).Int("unknown", unknown).Msg("opponent ratings resolved")
	return out
}

// SelfEntry builds the "user as opponent" row from a finished report. It is
// derived on demand and never written back into the report.
func (s *ProgressionService) SelfEntry(ctx context.Context, q domain.Query, report *domain.Report) (domain.GameRecord, *int, bool) {
	ctx, cancel := context.WithTimeout(ctx, constants.RatingFetchTimeout)
	defer cancel()

	current, err := s.archives.CurrentRating(ctx, q.Account.Handle, q.Account.RatingKey())
	if err != nil {
		s.logger.Warn().Err(err).Str("username", q.Account.Handle).Msg("failed to fetch user rating")
		return domain.GameRecord{}, nil, false
	}

	rec, ok := scoring.SelfProgression(q.Account.Handle, report.History, current, len(report.Records))
	return rec, current, ok
}

func copyRating(r *int) *int {
	if r == nil {
		return nil
	}
	v := *r
	return &v
}
