package scoring

import (
	"math"
	"strconv"
	"testing"
	"time"

	"chess-progression/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestGameScore(t *testing.T) {
	tests := []struct {
		name      string
		initial   int
		current   *int
		wantDelta int
		wantScore float64
	}{
		{"improved", 1300, intPtr(1400), 100, 2.57},
		{"declined", 1500, intPtr(1200), -300, -7.73},
		{"doubled", 1000, intPtr(2000), 1000, 24},
		{"unchanged", 1500, intPtr(1500), 0, 0},
		{"unknown current", 1500, nil, 0, 0},
		{"zero initial", 0, intPtr(1500), 1500, 0},
		{"zero current", 1500, intPtr(0), -1500, 0},
		{"negative initial", -10, intPtr(1500), 1510, 0},
		{"negative current", 1500, intPtr(-3), -1503, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, score := GameScore(tt.initial, tt.current)
			if delta != tt.wantDelta {
				t.Errorf("delta = %d, want %d", delta, tt.wantDelta)
			}
			if score != tt.wantScore {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
		})
	}
}

func TestGameScoreMatchesFormula(t *testing.T) {
	for a := 400; a <= 3000; a += 137 {
		for c := 350; c <= 3100; c += 211 {
			_, got := GameScore(a, intPtr(c))
			want, _ := strconv.ParseFloat(strconv.FormatFloat(math.Log2(float64(c)/float64(a))*24, 'f', 2, 64), 64)
			if got != want {
				t.Fatalf("GameScore(%d, %d) = %v, want %v", a, c, got, want)
			}
		}
	}
}

func TestScoreClampsWindow(t *testing.T) {
	_, clamped := Score(1000, intPtr(1400), 0, 0)
	_, one := Score(1000, intPtr(1400), 1, 1)
	if clamped != one {
		t.Errorf("Score with zero games/months = %v, want %v", clamped, one)
	}

	_, three := Score(1000, intPtr(1400), 3, 1)
	if three != 7.77 {
		t.Errorf("Score over 3 games = %v, want 7.77", three)
	}

	_, twoMonths := Score(1000, intPtr(2000), 1, 2)
	if twoMonths != 12 {
		t.Errorf("Score over 2 months = %v, want 12", twoMonths)
	}
}

func TestSelfProgression(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 5, d, 12, 0, 0, 0, time.UTC) }
	history := []domain.RatingSample{
		{PlayedAt: day(1), Rating: 1100},
		{PlayedAt: day(2), Rating: 1000},
		{PlayedAt: day(3), Rating: 1000},
		{PlayedAt: day(4), Rating: 1200},
	}

	rec, ok := SelfProgression("me", history, intPtr(1400), 3)
	if !ok {
		t.Fatal("SelfProgression() ok = false")
	}
	if rec.UserRatingAtPlay != 1000 {
		t.Errorf("UserRatingAtPlay = %d, want lowest rating 1000", rec.UserRatingAtPlay)
	}
	if rec.OpponentRatingAtPlay != 1400 {
		t.Errorf("OpponentRatingAtPlay = %d, want current rating 1400", rec.OpponentRatingAtPlay)
	}
	if !rec.PlayedAt.Equal(day(2)) {
		t.Errorf("PlayedAt = %v, want earliest lowest sample %v", rec.PlayedAt, day(2))
	}
	if rec.Delta != 400 {
		t.Errorf("Delta = %d, want 400", rec.Delta)
	}
	if rec.Score != 7.77 {
		t.Errorf("Score = %v, want 7.77", rec.Score)
	}
	if rec.Color != domain.ColorNone || rec.Result != domain.ResultNone {
		t.Errorf("symbols = %q/%q, want not-applicable", rec.Color, rec.Result)
	}
	if rec.OpponentCurrentRating == nil || *rec.OpponentCurrentRating != 1400 {
		t.Errorf("OpponentCurrentRating = %v, want 1400", rec.OpponentCurrentRating)
	}
}

func TestSelfProgressionMissingData(t *testing.T) {
	if _, ok := SelfProgression("me", nil, intPtr(1400), 0); ok {
		t.Error("expected no entry without history")
	}
	history := []domain.RatingSample{{PlayedAt: time.Now(), Rating: 1000}}
	if _, ok := SelfProgression("me", history, nil, 1); ok {
		t.Error("expected no entry without current rating")
	}
}
