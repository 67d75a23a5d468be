package constants

import "time"

const (
	RatingCacheTTL = 24 * time.Hour
)

const (
	ExternalAPITimeout  = 10 * time.Second
	RatingFetchTimeout  = 30 * time.Second
	ArchiveFetchTimeout = 30 * time.Second
	DatabaseTimeout     = 5 * time.Second
	RunTimeout          = 5 * time.Minute
	RequestTimeout      = 5 * time.Minute
)

const (
	APIMaxAttempts   = 3
	APIRetryBaseWait = 250 * time.Millisecond
)

const (
	DefaultFetchConcurrency = 4
	MaxFetchConcurrency     = 16
)

// The rating cache is a single small table hit by at most
// MaxFetchConcurrency lookups at once; sqlite serializes the writes.
const (
	CacheDBMaxOpenConns    = 4
	CacheDBMaxIdleConns    = 4
	CacheDBConnMaxIdleTime = 5 * time.Minute
	CacheDBBusyTimeout     = 5 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultBaseURL   = "https://api.chess.com"
	DefaultUserAgent = "chess-progression/1.0 (+https://github.com/chess-progression)"
)
