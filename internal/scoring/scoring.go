// Package scoring computes the progression score: how much an opponent's
// rating moved since a game was played, scaled for a yearly horizon and for
// how few games back the observation.
package scoring

import (
	"math"

	"chess-progression/internal/domain"

	"github.com/shopspring/decimal"
)

const monthsPerYear = 12

// Score returns the signed rating delta (current - initial) and the
// progression score
//
//	log2(current/initial) * (12/months) * (1 + 1/games)
//
// rounded to two decimals. A nil current means the rating is unknown and
// falls back to initial, so both delta and score are 0. Ratings that are
// zero or negative yield a score of 0 since the log ratio is undefined.
// games and months below 1 are treated as 1.
func Score(initial int, current *int, games, months int) (int, float64) {
	final := initial
	if current != nil {
		final = *current
	}
	delta := final - initial

	if initial <= 0 || final <= 0 {
		return delta, 0
	}
	if games < 1 {
		games = 1
	}
	if months < 1 {
		months = 1
	}

	raw := math.Log2(float64(final)/float64(initial)) *
		(float64(monthsPerYear) / float64(months)) *
		(1 + 1/float64(games))

	return delta, round2(raw)
}

// GameScore scores a single game: one game over a one-month window.
func GameScore(initial int, current *int) (int, float64) {
	return Score(initial, current, 1, 1)
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// SelfProgression builds the synthetic "user as opponent" row: the user's
// lowest rating in history is the baseline, current is the final rating and
// the whole in-scope game count is the divisor. The opponent-side "then"
// rating carries the current rating and the user-side one the baseline. It
// reports false when there
// is no history or the current rating is unknown.
func SelfProgression(handle string, history []domain.RatingSample, current *int, games int) (domain.GameRecord, bool) {
	if len(history) == 0 || current == nil {
		return domain.GameRecord{}, false
	}

	lowest := history[0]
	for _, s := range history[1:] {
		if s.Rating < lowest.Rating {
			lowest = s
		}
	}

	delta, score := Score(lowest.Rating, current, games, 1)
	final := *current

	return domain.GameRecord{
		Score:                 score,
		PlayedAt:              lowest.PlayedAt,
		Opponent:              handle,
		OpponentRatingAtPlay:  final,
		UserRatingAtPlay:      lowest.Rating,
		Delta:                 delta,
		OpponentCurrentRating: &final,
		Color:                 domain.ColorNone,
		Result:                domain.ResultNone,
	}, true
}
