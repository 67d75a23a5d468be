package export

import (
	"path/filepath"
	"testing"
	"time"

	"chess-progression/internal/domain"

	"github.com/xuri/excelize/v2"
)

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{100, "+100"},
		{0, "0"},
		{-42, "-42"},
	}
	for _, tt := range tests {
		if got := FormatDelta(tt.in); got != tt.want {
			t.Errorf("FormatDelta(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteXLSX(t *testing.T) {
	current := 1400
	played := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	records := []domain.GameRecord{
		{Score: 2.57, PlayedAt: played, Opponent: "bob", OpponentRatingAtPlay: 1300, UserRatingAtPlay: 1200,
			Delta: 100, OpponentCurrentRating: &current, Color: domain.ColorWhite, Result: domain.ResultWin},
		{PlayedAt: played, Opponent: "ghost", OpponentRatingAtPlay: 1250, UserRatingAtPlay: 1210,
			Color: domain.ColorBlack, Result: domain.ResultLoss},
	}
	self := domain.GameRecord{Score: 7.77, PlayedAt: played, Opponent: "alice", Delta: 400,
		OpponentCurrentRating: &current, Color: domain.ColorNone, Result: domain.ResultNone}
	ranking := []domain.RankedRating{{Handle: "alice", Rating: 1400, IsUser: true}, {Handle: "bob", Rating: 1400}}
	gains := []domain.RankedProgression{
		{Opponent: "bob", PlayedAt: played, Delta: 100},
		{Opponent: "alice", PlayedAt: played, Delta: 400, IsUser: true},
	}

	path := filepath.Join(t.TempDir(), "progression.xlsx")
	if err := WriteXLSX(path, Workbook{Records: records, Self: &self, Ranking: ranking, Progressions: gains}); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetProgression)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3", len(rows))
	}
	if rows[0][0] != "Score" {
		t.Errorf("header = %v", rows[0])
	}
	if got := rows[1]; got[2] != "bob" || got[5] != "+100" || got[6] != "1400" || got[7] != "w" || got[8] != "W" {
		t.Errorf("bob row = %v", got)
	}
	if got := rows[2]; got[6] != "unknown" || got[5] != "0" {
		t.Errorf("ghost row = %v", got)
	}
	if got := rows[3]; got[2] != "alice" || got[7] != "-" || got[8] != "-" {
		t.Errorf("self row = %v", got)
	}

	ranked, err := f.GetRows(SheetRanking)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked) != 3 || ranked[1][0] != "alice (you)" {
		t.Errorf("ranking rows = %v", ranked)
	}

	gainRows, err := f.GetRows(SheetGains)
	if err != nil {
		t.Fatal(err)
	}
	if len(gainRows) != 3 {
		t.Fatalf("gains rows = %v", gainRows)
	}
	if got := gainRows[1]; got[0] != "bob" || got[2] != "+100" {
		t.Errorf("bob gain row = %v", got)
	}
	if got := gainRows[2]; got[0] != "alice (you)" || got[2] != "+400" {
		t.Errorf("self gain row = %v", got)
	}
}
