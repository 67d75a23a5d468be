package main

import (
	"context"
	"encoding/json"
	"os"

	"chess-progression/internal/config"
	"chess-progression/internal/constants"
	"chess-progression/internal/export"
	fxmodules "chess-progression/internal/fx"
	"chess-progression/internal/server"
	"chess-progression/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// One-shot run for the account in CHESS_USERNAME. The report is written to
// stdout as JSON and, when EXPORT_PATH is set, to an xlsx workbook.
func main() {
	var (
		svc    *service.ProgressionService
		cfg    *config.Config
		logger zerolog.Logger
	)
	app := fx.New(
		fxmodules.Module,
		fx.NopLogger,
		fx.Populate(&svc, &cfg, &logger),
	)
	if err := app.Err(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	err := app.Start(startCtx)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start")
	}

	code := run(svc, cfg, logger)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	if err := app.Stop(stopCtx); err != nil {
		logger.Warn().Err(err).Msg("failed to stop cleanly")
	}
	stopCancel()
	os.Exit(code)
}

func run(svc *service.ProgressionService, cfg *config.Config, logger zerolog.Logger) int {
	if cfg.Username == "" {
		logger.Error().Msg("CHESS_USERNAME is required")
		return 2
	}

	ctx := context.Background()
	q := cfg.Query(logger)

	report := svc.Run(ctx, q)
	resp := server.ProgressionResponse{Report: report}

	var user *int
	if rec, current, ok := svc.SelfEntry(ctx, q, report); ok {
		resp.Self = &rec
		user = current
	}
	resp.Ranking = service.RankOpponents(report.OpponentRatings, q.Account.Handle, user)
	resp.Progressions = service.RankProgressions(report.Records, resp.Self)

	if cfg.ExportPath != "" {
		if err := export.WriteXLSX(cfg.ExportPath, export.Workbook{
			Records:      report.Records,
			Self:         resp.Self,
			Ranking:      resp.Ranking,
			Progressions: resp.Progressions,
		}); err != nil {
			logger.Error().Err(err).Str("path", cfg.ExportPath).Msg("failed to export workbook")
			return 1
		}
		logger.Info().Str("path", cfg.ExportPath).Msg("workbook exported")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		logger.Error().Err(err).Msg("failed to write report")
		return 1
	}
	return 0
}
