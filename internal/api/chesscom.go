package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"chess-progression/internal/config"
	"chess-progression/internal/constants"

	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
)

var ErrNotFound = errors.New("not found")

type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d (%s)", e.Status, e.URL)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Status == fasthttp.StatusNotFound
}

func (e *StatusError) retryable() bool {
	return e.Status == fasthttp.StatusTooManyRequests || e.Status >= fasthttp.StatusInternalServerError
}

// ChessComClient talks to the chess.com published-data API. Every call is a
// GET and safe to retry.
type ChessComClient struct {
	baseURL     string
	userAgent   string
	client      *fasthttp.Client
	timeout     time.Duration
	maxAttempts int
	retryBase   time.Duration
}

func NewChessComClient(cfg *config.Config) *ChessComClient {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = constants.DefaultUserAgent
	}

	return &ChessComClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client: &fasthttp.Client{
			MaxConnsPerHost:     32,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		timeout:     constants.ExternalAPITimeout,
		maxAttempts: constants.APIMaxAttempts,
		retryBase:   constants.APIRetryBaseWait,
	}
}

// ListArchives returns the monthly archive URLs of a player, oldest first.
func (c *ChessComClient) ListArchives(ctx context.Context, handle string) ([]string, error) {
	u := fmt.Sprintf("%s/pub/player/%s/games/archives", c.baseURL, url.PathEscape(strings.ToLower(handle)))
	resp, err := doRequest[ArchivesResponse](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return resp.Archives, nil
}

// FetchGames returns the games of one monthly archive.
func (c *ChessComClient) FetchGames(ctx context.Context, archiveURL string) ([]Game, error) {
	resp, err := doRequest[GamesResponse](ctx, c, archiveURL)
	if err != nil {
		return nil, err
	}
	return resp.Games, nil
}

// CurrentRating reads <ratingKey>.last.rating from the player's stats. A
// missing category or a non-numeric rating is not an error: it yields nil.
func (c *ChessComClient) CurrentRating(ctx context.Context, handle, ratingKey string) (*int, error) {
	u := fmt.Sprintf("%s/pub/player/%s/stats", c.baseURL, url.PathEscape(strings.ToLower(handle)))
	stats, err := doRequest[StatsResponse](ctx, c, u)
	if err != nil {
		return nil, err
	}

	raw, ok := (*stats)[ratingKey]
	if !ok {
		return nil, nil
	}
	var category StatsCategory
	if err := json.Unmarshal(raw, &category); err != nil {
		return nil, nil
	}
	return category.Last.Rating.Ptr(), nil
}

func doRequest[T any](ctx context.Context, client *ChessComClient, url string) (*T, error) {
	attempts := client.maxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(client.retryBase))

	var result T
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		body, status, err := client.get(ctx, url)
		if err != nil {
			return retry.RetryableError(err)
		}
		if status != fasthttp.StatusOK {
			statusErr := &StatusError{Status: status, URL: url}
			if statusErr.retryable() {
				return retry.RetryableError(statusErr)
			}
			return statusErr
		}
		return json.Unmarshal(body, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *ChessComClient) get(ctx context.Context, url string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > c.timeout {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, err
	}

	// resp is released on return
	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}

type ArchivesResponse struct {
	Archives []string `json:"archives"`
}

type GamesResponse struct {
	Games []Game `json:"games"`
}

type Game struct {
	URL       string `json:"url"`
	TimeClass string `json:"time_class"`
	Rated     bool   `json:"rated"`
	EndTime   int64  `json:"end_time"`
	White     Player `json:"white"`
	Black     Player `json:"black"`
}

type Player struct {
	Username string `json:"username"`
	Rating   Rating `json:"rating"`
	Result   string `json:"result"`
}

// StatsResponse is keyed by rating category (chess_rapid, chess_blitz, ...).
// Some keys hold plain numbers, so categories are decoded lazily.
type StatsResponse map[string]json.RawMessage

type StatsCategory struct {
	Last struct {
		Rating Rating `json:"rating"`
		Date   int64  `json:"date"`
	} `json:"last"`
}
