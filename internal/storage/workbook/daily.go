package workbook

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/storage"
	"github.com/julianstephens/komaplan/internal/utils"
	xlsx "github.com/julianstephens/komaplan/internal/workbook"
)

func (s *Store) ensureDailyHeader() (bool, error) {
	v, err := s.f.GetCellValue(constants.DailyPlanSheetName, "A1")
	if err != nil {
		return false, err
	}
	if v != "" {
		return false, nil
	}
	header := toRow(constants.DailyPlanHeader)
	if err := s.f.SetSheetRow(constants.DailyPlanSheetName, "A1", &header); err != nil {
		return false, fmt.Errorf("failed to write daily plan header: %w", err)
	}
	return true, nil
}

// ReplaceDailyPlan rewrites the daily sheet, keeping rows of other fiscal years.
func (s *Store) ReplaceDailyPlan(fiscalYear int, entries []models.DailyPlanEntry) error {
	if s.f == nil {
		return fmt.Errorf("storage not loaded")
	}
	sheet := constants.DailyPlanSheetName
	rows, err := s.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", sheet, err)
	}

	var kept [][]interface{}
	for i, row := range rows {
		if i == 0 || isBlankRow(row) {
			continue
		}
		fy := storage.ParseStoredNumber(cell(row, 1))
		if !math.IsNaN(fy) && int(fy) == fiscalYear {
			continue
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		kept = append(kept, values)
	}

	if err := s.f.DeleteSheet(sheet); err != nil {
		return fmt.Errorf("failed to clear %s: %w", sheet, err)
	}
	if _, err := s.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to recreate %s: %w", sheet, err)
	}
	if _, err := s.ensureDailyHeader(); err != nil {
		return err
	}

	r := 2
	for _, values := range kept {
		if err := s.f.SetSheetRow(sheet, cellName(1, r), &values); err != nil {
			return err
		}
		r++
	}
	for _, e := range entries {
		elapsed := 0
		if e.Elapsed {
			elapsed = 1
		}
		values := []interface{}{utils.FormatDate(e.Date), fiscalYear, utils.FormatDate(e.WeekKey), int(e.Grade), e.Sessions, elapsed}
		if err := s.f.SetSheetRow(sheet, cellName(1, r), &values); err != nil {
			return fmt.Errorf("failed to write plan row %s g%d: %w", utils.FormatDate(e.Date), e.Grade, err)
		}
		r++
	}
	return s.flush()
}

func (s *Store) GetDailyPlan(fiscalYear int) ([]models.DailyPlanEntry, error) {
	if s.f == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	rows, err := s.f.GetRows(constants.DailyPlanSheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", constants.DailyPlanSheetName, err)
	}

	var out []models.DailyPlanEntry
	for i, row := range rows {
		if i == 0 || isBlankRow(row) {
			continue
		}
		fy := storage.ParseStoredNumber(cell(row, 1))
		if math.IsNaN(fy) || int(fy) != fiscalYear {
			continue
		}
		out = append(out, models.DailyPlanEntry{
			Date:       xlsx.ParseCellDate(cell(row, 0)),
			FiscalYear: fiscalYear,
			WeekKey:    xlsx.ParseCellDate(cell(row, 2)),
			Grade:      models.Grade(int(zeroIfNaN(storage.ParseStoredNumber(cell(row, 3))))),
			Sessions:   int(zeroIfNaN(storage.ParseStoredNumber(cell(row, 4)))),
			Elapsed:    zeroIfNaN(storage.ParseStoredNumber(cell(row, 5))) != 0,
		})
	}
	return out, nil
}
