package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/storage"
	xlsx "github.com/julianstephens/komaplan/internal/workbook"
)

// AddException appends a row below the last exception. The date is written as
// text so spreadsheet locale settings cannot reinterpret it.
func (s *Store) AddException(ex models.Exception) error {
	if s.f == nil {
		return fmt.Errorf("storage not loaded")
	}
	l, err := s.currentLayout()
	if err != nil {
		return err
	}
	row := l.exLast + 1
	values := []interface{}{storage.FormatStoredDate(ex.Date), int(ex.Grade), ex.DeltaSessions, ex.Reason, ex.Note, ex.ID}
	if err := s.f.SetSheetRow(constants.PlanSheetName, cellName(1, row), &values); err != nil {
		return fmt.Errorf("failed to write exception: %w", err)
	}
	l.exLast = row
	return s.flush()
}

// GetAllExceptions returns every non-blank row of the exceptions section in sheet
// order. Malformed cells are kept as zero dates or NaN deltas.
func (s *Store) GetAllExceptions() ([]models.Exception, error) {
	if s.f == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	l, err := s.currentLayout()
	if err != nil {
		return nil, err
	}
	rows, err := s.f.GetRows(constants.PlanSheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", constants.PlanSheetName, err)
	}

	var out []models.Exception
	for r := l.exFirstData(); r <= len(rows); r++ {
		row := rowAt(rows, r)
		if isBlankRow(row) {
			continue
		}
		// Unparseable or fractional grades stay 0 so the ledger skips the row.
		grade, err := models.ParseGrade(cell(row, 1))
		if err != nil {
			grade = 0
		}
		out = append(out, models.Exception{
			Date:          xlsx.ParseCellDate(cell(row, 0)),
			Grade:         grade,
			DeltaSessions: storage.ParseStoredNumber(cell(row, 2)),
			Reason:        cell(row, 3),
			Note:          cell(row, 4),
			ID:            cell(row, 5),
			Row:           r,
		})
	}
	return out, nil
}
