// Package export writes a finished report as a spreadsheet.
package export

import (
	"fmt"
	"strconv"

	"chess-progression/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	SheetProgression = "Progression"
	SheetRanking     = "Ranking"
	SheetGains       = "Rating gains"

	timeLayout = "2006-01-02 15:04"
	unknown    = "unknown"
)

var progressionHeader = []any{
	"Score", "Played at", "Opponent", "Opponent rating then",
	"Your rating then", "Delta", "Opponent rating now", "Color", "Result",
}

// Workbook is what gets exported: the records table (with the optional self
// row appended) and both rankings.
type Workbook struct {
	Records      []domain.GameRecord
	Self         *domain.GameRecord
	Ranking      []domain.RankedRating
	Progressions []domain.RankedProgression
}

func WriteXLSX(path string, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetProgression); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetProgression, "A1", &progressionHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rows := wb.Records
	if wb.Self != nil {
		rows = append(append([]domain.GameRecord{}, wb.Records...), *wb.Self)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := recordRow(r)
		if err := f.SetSheetRow(SheetProgression, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(SheetRanking); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetRanking, "A1", &[]any{"Player", "Rating"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range wb.Ranking {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		handle := r.Handle
		if r.IsUser {
			handle += " (you)"
		}
		if err := f.SetSheetRow(SheetRanking, cell, &[]any{handle, r.Rating}); err != nil {
			return fmt.Errorf("failed to write ranking row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(SheetGains); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetGains, "A1", &[]any{"Opponent", "Played at", "Delta"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, p := range wb.Progressions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		opponent := p.Opponent
		if p.IsUser {
			opponent += " (you)"
		}
		row := []any{opponent, p.PlayedAt.Format(timeLayout), FormatDelta(p.Delta)}
		if err := f.SetSheetRow(SheetGains, cell, &row); err != nil {
			return fmt.Errorf("failed to write gains row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func recordRow(r domain.GameRecord) []any {
	current := unknown
	if r.OpponentCurrentRating != nil {
		current = strconv.Itoa(*r.OpponentCurrentRating)
	}
	return []any{
		r.Score,
		r.PlayedAt.Format(timeLayout),
		r.Opponent,
		r.OpponentRatingAtPlay,
		r.UserRatingAtPlay,
		FormatDelta(r.Delta),
		current,
		string(r.Color),
		string(r.Result),
	}
}

// FormatDelta renders a rating change with an explicit sign for gains.
func FormatDelta(d int) string {
	if d > 0 {
		return "+" + strconv.Itoa(d)
	}
	return strconv.Itoa(d)
}
