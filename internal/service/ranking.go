package service

import (
	"sort"
	"strings"

	"chess-progression/internal/domain"
)

// RankOpponents orders opponents with a known current rating from lowest to
// highest. When user is non-nil the account is placed before the first
// opponent rated at or above it.
func RankOpponents(ratings map[string]*int, handle string, user *int) []domain.RankedRating {
	ranked := make([]domain.RankedRating, 0, len(ratings)+1)
	for h, r := range ratings {
		if r == nil {
			continue
		}
		ranked = append(ranked, domain.RankedRating{Handle: h, Rating: *r})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating < ranked[j].Rating
		}
		return ranked[i].Handle < ranked[j].Handle
	})

	if user == nil {
		return ranked
	}

	self := domain.RankedRating{Handle: strings.ToLower(handle), Rating: *user, IsUser: true}
	pos := sort.Search(len(ranked), func(i int) bool { return ranked[i].Rating >= *user })
	ranked = append(ranked, domain.RankedRating{})
	copy(ranked[pos+1:], ranked[pos:])
	ranked[pos] = self
	return ranked
}

// RankProgressions orders games by the opponent's rating change since the
// game, smallest first, keeping record order among equal deltas. Games whose
// opponent has no known current rating are left out. When self is non-nil
// the user's own change is placed before the first game with an equal or
// larger delta.
func RankProgressions(records []domain.GameRecord, self *domain.GameRecord) []domain.RankedProgression {
	ranked := make([]domain.RankedProgression, 0, len(records)+1)
	for _, r := range records {
		if r.OpponentCurrentRating == nil {
			continue
		}
		ranked = append(ranked, domain.RankedProgression{
			Opponent: r.Opponent,
			PlayedAt: r.PlayedAt,
			Delta:    r.Delta,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Delta < ranked[j].Delta
	})

	if self == nil {
		return ranked
	}

	user := domain.RankedProgression{Opponent: self.Opponent, PlayedAt: self.PlayedAt, Delta: self.Delta, IsUser: true}
	pos := sort.Search(len(ranked), func(i int) bool { return ranked[i].Delta >= self.Delta })
	ranked = append(ranked, domain.RankedProgression{})
	copy(ranked[pos+1:], ranked[pos:])
	ranked[pos] = user
	return ranked
}
