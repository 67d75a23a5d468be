package domain

import (
	"strings"
	"time"
)

// Account is the chess.com handle a run is computed for, queried under one
// time class (rapid, blitz, bullet, daily).
type Account struct {
	Handle string
	Mode   string
}

// RatingKey is the stats endpoint field holding ratings for the account's mode.
func (a Account) RatingKey() string {
	return "chess_" + a.Mode
}

// Namespace scopes cached ratings so accounts and modes never collide.
func (a Account) Namespace() string {
	return strings.ToLower(a.Handle) + "/" + a.Mode
}

func (a Account) Is(handle string) bool {
	return strings.EqualFold(a.Handle, handle)
}

type RatedFilter int

const (
	RatedAny RatedFilter = iota
	RatedOnly
	UnratedOnly
)

func (f RatedFilter) Allows(rated bool) bool {
	switch f {
	case RatedOnly:
		return rated
	case UnratedOnly:
		return !rated
	default:
		return true
	}
}

func (f RatedFilter) String() string {
	switch f {
	case RatedOnly:
		return "rated"
	case UnratedOnly:
		return "unrated"
	default:
		return "any"
	}
}

// DateWindow bounds are inclusive; a nil bound never excludes.
type DateWindow struct {
	Start *time.Time
	End   *time.Time
}

func (w DateWindow) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

// Query is the immutable input of one pipeline run.
type Query struct {
	Account Account
	Rated   RatedFilter
	Window  DateWindow
}

type Color string

const (
	ColorWhite Color = "w"
	ColorBlack Color = "b"
	ColorNone  Color = "-"
)

type Result string

const (
	ResultWin     Result = "W"
	ResultLoss    Result = "L"
	ResultDraw    Result = "D"
	ResultUnknown Result = "?"
	ResultNone    Result = "-"
)

type GameRecord struct {
	Score                 float64   `json:"score"`
	PlayedAt              time.Time `json:"played_at"`
	Opponent              string    `json:"opponent"`
	OpponentRatingAtPlay  int       `json:"opponent_rating_at_play"`
	UserRatingAtPlay      int       `json:"user_rating_at_play"`
	Delta                 int       `json:"delta"`
	OpponentCurrentRating *int      `json:"opponent_current_rating"`
	Color                 Color     `json:"color"`
	Result                Result    `json:"result"`
}

type RatingSample struct {
	PlayedAt time.Time `json:"played_at"`
	Rating   int       `json:"rating"`
}

// Report is everything a run hands to the presentation layer.
type Report struct {
	RunID           string          `json:"run_id"`
	Records         []GameRecord    `json:"records"`
	OpponentRatings map[string]*int `json:"opponent_ratings"`
	History         []RatingSample  `json:"history"`
}

func NewReport(runID string) *Report {
	return &Report{
		RunID:           runID,
		Records:         []GameRecord{},
		OpponentRatings: map[string]*int{},
		History:         []RatingSample{},
	}
}

// RankedRating is one bar of the current-rating ranking.
type RankedRating struct {
	Handle string `json:"handle"`
	Rating int    `json:"rating"`
	IsUser bool   `json:"is_user"`
}

// RankedProgression is one bar of the rating-gain ranking: how far an
// opponent moved since the game against them.
type RankedProgression struct {
	Opponent string    `json:"opponent"`
	PlayedAt time.Time `json:"played_at"`
	Delta    int       `json:"delta"`
	IsUser   bool      `json:"is_user"`
}
