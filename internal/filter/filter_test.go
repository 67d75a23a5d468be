package filter

import (
	"testing"
	"time"

	"chess-progression/internal/api"
	"chess-progression/internal/domain"
)

func rating(v int) api.Rating { return api.Rating{Value: v, Valid: true} }

func baseGame() api.Game {
	return api.Game{
		TimeClass: "rapid",
		Rated:     true,
		EndTime:   time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC).Unix(),
		White:     api.Player{Username: "Alice", Rating: rating(1200), Result: "win"},
		Black:     api.Player{Username: "bob", Rating: rating(1300), Result: "checkmated"},
	}
}

func baseQuery() domain.Query {
	return domain.Query{
		Account: domain.Account{Handle: "alice", Mode: "rapid"},
		Rated:   domain.RatedOnly,
	}
}

func TestResultSymbol(t *testing.T) {
	tests := []struct {
		result string
		want   domain.Result
	}{
		{"win", domain.ResultWin},
		{"checkmated", domain.ResultLoss},
		{"timeout", domain.ResultLoss},
		{"resigned", domain.ResultLoss},
		{"lose", domain.ResultLoss},
		{"stalemate", domain.ResultDraw},
		{"agreed", domain.ResultDraw},
		{"repetition", domain.ResultDraw},
		{"timevsinsufficient", domain.ResultDraw},
		{"insufficient", domain.ResultDraw},
		{"50move", domain.ResultDraw},
		{"draw", domain.ResultDraw},
		{"abandoned", domain.ResultUnknown},
		{"", domain.ResultUnknown},
		{"WIN", domain.ResultUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.result, func(t *testing.T) {
			if got := ResultSymbol(tt.result); got != tt.want {
				t.Errorf("ResultSymbol(%q) = %q, want %q", tt.result, got, tt.want)
			}
		})
	}
}

func TestClassifyWhite(t *testing.T) {
	c, ok := Classify(baseGame(), baseQuery(), time.UTC)
	if !ok {
		t.Fatal("Classify() skipped an in-scope game")
	}
	if c.Color != domain.ColorWhite || c.Result != domain.ResultWin {
		t.Errorf("color/result = %q/%q", c.Color, c.Result)
	}
	if c.Opponent != "bob" || c.OpponentRatingAtPlay != 1300 || c.UserRatingAtPlay != 1200 {
		t.Errorf("classified = %+v", c)
	}
	if c.OpponentKey() != "bob" {
		t.Errorf("OpponentKey() = %q", c.OpponentKey())
	}
}

func TestClassifyBlack(t *testing.T) {
	g := baseGame()
	g.White = api.Player{Username: "Carol", Rating: rating(1500), Result: "agreed"}
	g.Black = api.Player{Username: "ALICE", Rating: rating(1210), Result: "agreed"}

	c, ok := Classify(g, baseQuery(), time.UTC)
	if !ok {
		t.Fatal("Classify() skipped an in-scope game")
	}
	if c.Color != domain.ColorBlack || c.Result != domain.ResultDraw {
		t.Errorf("color/result = %q/%q", c.Color, c.Result)
	}
	if c.Opponent != "Carol" || c.OpponentKey() != "carol" {
		t.Errorf("opponent = %q", c.Opponent)
	}
}

func TestClassifySkips(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*api.Game, *domain.Query)
	}{
		{"other time class", func(g *api.Game, q *domain.Query) { g.TimeClass = "blitz" }},
		{"other time class even if unrated allowed", func(g *api.Game, q *domain.Query) {
			g.TimeClass = "bullet"
			q.Rated = domain.RatedAny
		}},
		{"unrated when rated required", func(g *api.Game, q *domain.Query) { g.Rated = false }},
		{"rated when unrated required", func(g *api.Game, q *domain.Query) { q.Rated = domain.UnratedOnly }},
		{"account not playing", func(g *api.Game, q *domain.Query) { q.Account.Handle = "dave" }},
		{"playing self", func(g *api.Game, q *domain.Query) { g.Black.Username = "alice" }},
		{"non-numeric opponent rating", func(g *api.Game, q *domain.Query) { g.Black.Rating = api.Rating{} }},
		{"non-numeric user rating", func(g *api.Game, q *domain.Query) { g.White.Rating = api.Rating{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, q := baseGame(), baseQuery()
			tt.mutate(&g, &q)
			if _, ok := Classify(g, q, time.UTC); ok {
				t.Error("Classify() kept a game that should be skipped")
			}
		})
	}
}

func TestClassifyAnyRatedFilter(t *testing.T) {
	q := baseQuery()
	q.Rated = domain.RatedAny
	for _, rated := range []bool{true, false} {
		g := baseGame()
		g.Rated = rated
		if _, ok := Classify(g, q, time.UTC); !ok {
			t.Errorf("rated=%v skipped with RatedAny", rated)
		}
	}
}

func TestClassifyDateWindow(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	q := baseQuery()
	q.Window = domain.DateWindow{Start: &start, End: &end}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"one second before start", start.Add(-time.Second), false},
		{"exactly start", start, true},
		{"exactly end", end, true},
		{"one second after end", end.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := baseGame()
			g.EndTime = tt.at.Unix()
			if _, ok := Classify(g, q, time.UTC); ok != tt.want {
				t.Errorf("Classify() kept = %v, want %v", ok, tt.want)
			}
		})
	}
}
