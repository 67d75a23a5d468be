package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"chess-progression/internal/config"
	"chess-progression/internal/constants"
	"chess-progression/internal/domain"
	"chess-progression/internal/service"

	"github.com/rs/zerolog"
)

const (
	ProgressionPath = "/api/progression"
	HealthPath      = "/api/health"
)

// Runner is the part of the progression service the HTTP surface needs.
type Runner interface {
	Run(ctx context.Context, q domain.Query) *domain.Report
	SelfEntry(ctx context.Context, q domain.Query, report *domain.Report) (domain.GameRecord, *int, bool)
}

type ProgressionResponse struct {
	*domain.Report
	Self         *domain.GameRecord         `json:"self"`
	Ranking      []domain.RankedRating      `json:"ranking"`
	Progressions []domain.RankedProgression `json:"progressions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type ProgressionServer struct {
	svc    Runner
	cfg    *config.Config
	logger zerolog.Logger
}

func NewProgressionServer(svc *service.ProgressionService, cfg *config.Config, logger zerolog.Logger) *ProgressionServer {
	return newProgressionServer(svc, cfg, logger)
}

func newProgressionServer(svc Runner, cfg *config.Config, logger zerolog.Logger) *ProgressionServer {
	return &ProgressionServer{svc: svc, cfg: cfg, logger: logger}
}

func (s *ProgressionServer) Routes(mux *http.ServeMux) {
	mux.HandleFunc(ProgressionPath, s.GetProgression)
	mux.HandleFunc(HealthPath, s.Health)
}

func (s *ProgressionServer) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetProgression runs the pipeline for the account named by the query string,
// falling back to the configured defaults for anything omitted.
func (s *ProgressionServer) GetProgression(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	logger := zerolog.Ctx(r.Context())
	if logger.GetLevel() == zerolog.Disabled {
		logger = &s.logger
	}

	q, err := s.parseQuery(r, *logger)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.RequestTimeout)
	defer cancel()

	report := s.svc.Run(ctx, q)
	resp := ProgressionResponse{Report: report}

	var user *int
	if rec, current, ok := s.svc.SelfEntry(ctx, q, report); ok {
		resp.Self = &rec
		user = current
	}
	resp.Ranking = service.RankOpponents(report.OpponentRatings, q.Account.Handle, user)
	resp.Progressions = service.RankProgressions(report.Records, resp.Self)

	logger.Info().
		Str("run_id", report.RunID).
		Int("games", len(report.Records)).
		Msg("progression served")
	writeJSON(w, http.StatusOK, resp)
}

func (s *ProgressionServer) parseQuery(r *http.Request, logger zerolog.Logger) (domain.Query, error) {
	v := r.URL.Query()

	handle := strings.TrimSpace(v.Get("username"))
	if handle == "" {
		handle = s.cfg.Username
	}
	if handle == "" {
		return domain.Query{}, errors.New("username is required")
	}

	mode := strings.ToLower(strings.TrimSpace(v.Get("mode")))
	if mode == "" {
		mode = s.cfg.GameMode
	}
	if !config.ValidMode(mode) {
		return domain.Query{}, fmt.Errorf("unsupported mode %q", mode)
	}

	rated := s.cfg.RatedFilter
	if v.Has("rated") {
		f, err := config.ParseRatedFilter(v.Get("rated"))
		if err != nil {
			return domain.Query{}, err
		}
		rated = f
	}

	start, end := s.cfg.StartDate, s.cfg.EndDate
	if v.Has("start") {
		start = v.Get("start")
	}
	if v.Has("end") {
		end = v.Get("end")
	}

	return domain.Query{
		Account: domain.Account{Handle: handle, Mode: mode},
		Rated:   rated,
		Window:  config.ParseWindow(start, end, s.cfg.Location, logger),
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
