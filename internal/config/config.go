package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"chess-progression/internal/constants"
	"chess-progression/internal/domain"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// DateLayout is day/month/year; zero padding is optional.
const DateLayout = "2/1/2006"

const (
	CacheBackendFile   = "file"
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
)

var validModes = map[string]bool{
	"bullet": true,
	"blitz":  true,
	"rapid":  true,
	"daily":  true,
}

type Config struct {
	Username         string
	GameMode         string
	StartDate        string
	EndDate          string
	RatedFilter      domain.RatedFilter
	CacheBackend     string
	CacheDir         string
	DBPath           string
	RedisAddr        string
	APIBaseURL       string
	UserAgent        string
	ServerPort       string
	LogLevel         string
	ExportPath       string
	FetchConcurrency int
	CacheTTL         time.Duration
	Location         *time.Location
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	rated, err := ParseRatedFilter(getEnv("RATED_FILTER", "true"))
	if err != nil {
		return nil, err
	}

	concurrency, err := strconv.Atoi(getEnv("FETCH_CONCURRENCY", strconv.Itoa(constants.DefaultFetchConcurrency)))
	if err != nil || concurrency < 1 {
		return nil, fmt.Errorf("FETCH_CONCURRENCY must be a positive integer")
	}
	if concurrency > constants.MaxFetchConcurrency {
		concurrency = constants.MaxFetchConcurrency
	}

	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", constants.RatingCacheTTL.String()))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be a positive duration")
	}

	loc := time.Local
	if tz := getEnv("TIMEZONE", ""); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("failed to load TIMEZONE %q: %w", tz, err)
		}
	}

	cfg := &Config{
		Username:         getEnv("CHESS_USERNAME", ""),
		GameMode:         strings.ToLower(getEnv("GAME_MODE", "rapid")),
		StartDate:        getEnv("START_DATE", ""),
		EndDate:          getEnv("END_DATE", ""),
		RatedFilter:      rated,
		CacheBackend:     strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendFile)),
		CacheDir:         getEnv("CACHE_DIR", "cache"),
		DBPath:           getEnv("DB_PATH", "progression.db"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		APIBaseURL:       strings.TrimRight(getEnv("API_BASE_URL", constants.DefaultBaseURL), "/"),
		UserAgent:        getEnv("USER_AGENT", constants.DefaultUserAgent),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ExportPath:       getEnv("EXPORT_PATH", ""),
		FetchConcurrency: concurrency,
		CacheTTL:         ttl,
		Location:         loc,
	}

	if !ValidMode(cfg.GameMode) {
		return nil, fmt.Errorf("unsupported GAME_MODE %q", cfg.GameMode)
	}

	switch cfg.CacheBackend {
	case CacheBackendFile, CacheBackendSQLite, CacheBackendRedis:
	default:
		return nil, fmt.Errorf("unsupported CACHE_BACKEND %q", cfg.CacheBackend)
	}

	logger.Info().
		Str("username", cfg.Username).
		Str("game_mode", cfg.GameMode).
		Str("rated_filter", cfg.RatedFilter.String()).
		Str("cache_backend", cfg.CacheBackend).
		Str("server_port", cfg.ServerPort).
		Int("fetch_concurrency", cfg.FetchConcurrency).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("configuration loaded")

	return cfg, nil
}

// Query builds the run input for the configured account.
func (c *Config) Query(logger zerolog.Logger) domain.Query {
	return domain.Query{
		Account: domain.Account{Handle: c.Username, Mode: c.GameMode},
		Rated:   c.RatedFilter,
		Window:  ParseWindow(c.StartDate, c.EndDate, c.Location, logger),
	}
}

func ValidMode(mode string) bool {
	return validModes[mode]
}

// ParseRatedFilter accepts "", "any", or anything strconv.ParseBool does.
func ParseRatedFilter(raw string) (domain.RatedFilter, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" || raw == "any" || raw == "none" {
		return domain.RatedAny, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return domain.RatedAny, fmt.Errorf("invalid rated filter %q", raw)
	}
	if b {
		return domain.RatedOnly, nil
	}
	return domain.UnratedOnly, nil
}

// ParseWindow parses dd/mm/yyyy bounds in loc. The end bound is moved to
// 23:59:59 of its day. A malformed bound is logged and left unbounded.
func ParseWindow(start, end string, loc *time.Location, logger zerolog.Logger) domain.DateWindow {
	if loc == nil {
		loc = time.Local
	}

	var w domain.DateWindow
	if start = strings.TrimSpace(start); start != "" {
		t, err := time.ParseInLocation(DateLayout, start, loc)
		if err != nil {
			logger.Warn().Str("start_date", start).Msg("invalid start date, using all available data")
		} else {
			w.Start = &t
		}
	}
	if end = strings.TrimSpace(end); end != "" {
		t, err := time.ParseInLocation(DateLayout, end, loc)
		if err != nil {
			logger.Warn().Str("end_date", end).Msg("invalid end date, using all available data")
		} else {
			t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
			w.End = &t
		}
	}
	return w
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
