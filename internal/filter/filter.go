// Package filter decides which archived games belong to a run and reads
// them from the queried account's point of view.
package filter

import (
	"strings"
	"time"

	"chess-progression/internal/api"
	"chess-progression/internal/domain"
)

// Classified is an in-scope game before its opponent's current rating is
// known.
type Classified struct {
	PlayedAt             time.Time
	Opponent             string
	OpponentRatingAtPlay int
	UserRatingAtPlay     int
	Color                domain.Color
	Result               domain.Result
}

// OpponentKey is the normalized handle used for caching and dedup.
func (c Classified) OpponentKey() string {
	return strings.ToLower(c.Opponent)
}

var (
	lossResults = map[string]bool{
		"checkmated": true,
		"timeout":    true,
		"resigned":   true,
		"lose":       true,
	}
	drawResults = map[string]bool{
		"stalemate":          true,
		"agreed":             true,
		"repetition":         true,
		"timevsinsufficient": true,
		"insufficient":       true,
		"50move":             true,
		"draw":               true,
	}
)

func ResultSymbol(result string) domain.Result {
	switch {
	case result == "win":
		return domain.ResultWin
	case lossResults[result]:
		return domain.ResultLoss
	case drawResults[result]:
		return domain.ResultDraw
	default:
		return domain.ResultUnknown
	}
}

// Classify applies, in order: time class, rated filter, date window, then
// side resolution. The first failing check skips the game. Games whose
// at-play ratings are not numeric are skipped as well.
func Classify(g api.Game, q domain.Query, loc *time.Location) (Classified, bool) {
	if g.TimeClass != q.Account.Mode {
		return Classified{}, false
	}
	if !q.Rated.Allows(g.Rated) {
		return Classified{}, false
	}

	if loc == nil {
		loc = time.Local
	}
	playedAt := time.Unix(g.EndTime, 0).In(loc)
	if !q.Window.Contains(playedAt) {
		return Classified{}, false
	}

	var user, opponent api.Player
	var color domain.Color
	switch {
	case q.Account.Is(g.White.Username):
		user, opponent, color = g.White, g.Black, domain.ColorWhite
	case q.Account.Is(g.Black.Username):
		user, opponent, color = g.Black, g.White, domain.ColorBlack
	default:
		return Classified{}, false
	}
	if q.Account.Is(opponent.Username) {
		return Classified{}, false
	}
	if !opponent.Rating.Valid || !user.Rating.Valid {
		return Classified{}, false
	}

	return Classified{
		PlayedAt:             playedAt,
		Opponent:             opponent.Username,
		OpponentRatingAtPlay: opponent.Rating.Value,
		UserRatingAtPlay:     user.Rating.Value,
		Color:                color,
		Result:               ResultSymbol(user.Result),
	}, true
}
