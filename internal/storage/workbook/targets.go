package workbook

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/storage"
)

// targetRow is a parsed PLAN_TABLE row with its sheet row number. problem is set
// when the row was edited into something the planner cannot use.
type targetRow struct {
	row     int
	target  models.AnnualTarget
	problem error
}

func (s *Store) readTargetRows(fiscalYear int) ([]targetRow, error) {
	l, err := s.currentLayout()
	if err != nil {
		return nil, err
	}
	rows, err := s.f.GetRows(constants.PlanSheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", constants.PlanSheetName, err)
	}

	var out []targetRow
	seen := map[models.Grade]bool{}
	for r := l.planFirstData(); r <= l.planLast; r++ {
		row := rowAt(rows, r)
		if isBlankRow(row) {
			continue
		}
		fy := storage.ParseStoredNumber(cell(row, 0))
		if math.IsNaN(fy) || int(fy) != fiscalYear {
			continue
		}
		grade := storage.ParseStoredNumber(cell(row, 1))
		g := models.Grade(0)
		if !math.IsNaN(grade) {
			g = models.Grade(int(grade))
		}
		if !g.Valid() {
			logger.Warn("Skipping plan row with invalid grade", "row", r, "grade", cell(row, 1))
			continue
		}
		if seen[g] {
			logger.Warn("Skipping duplicate plan row", "row", r, "fiscal_year", fiscalYear, "grade", int(g))
			continue
		}
		seen[g] = true

		var monthly models.MonthlyUnits
		for i := range monthly {
			monthly[i] = zeroIfNaN(storage.ParseStoredNumber(cell(row, 4+i)))
		}
		annual := zeroIfNaN(storage.ParseStoredNumber(cell(row, 3)))
		t := storage.TargetFromValues(fiscalYear, int(g), cell(row, 2), annual, monthly, cell(row, constants.PlanTableColumns-1))
		out = append(out, targetRow{row: r, target: t, problem: t.Validate()})
	}
	return out, nil
}

func (s *Store) GetTargets(fiscalYear int) (models.TargetSet, bool, error) {
	if s.f == nil {
		return models.TargetSet{}, false, fmt.Errorf("storage not loaded")
	}
	rows, err := s.readTargetRows(fiscalYear)
	if err != nil {
		return models.TargetSet{}, false, err
	}
	if len(rows) == 0 {
		return models.TargetSet{}, false, nil
	}
	stored := make([]models.AnnualTarget, 0, len(rows))
	for _, r := range rows {
		if r.problem != nil {
			logger.Warn("Skipping invalid plan row", "row", r.row, "fiscal_year", fiscalYear, "grade", int(r.target.Grade), "reason", r.problem)
			continue
		}
		stored = append(stored, r.target)
	}
	return storage.CompleteTargetSet(fiscalYear, stored), true, nil
}

// InvalidTargetRows returns the sheet rows of fiscalYear that GetTargets skips.
func (s *Store) InvalidTargetRows(fiscalYear int) ([]int, error) {
	if s.f == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	rows, err := s.readTargetRows(fiscalYear)
	if err != nil {
		return nil, err
	}
	var bad []int
	for _, r := range rows {
		if r.problem != nil {
			bad = append(bad, r.row)
		}
	}
	return bad, nil
}

// SaveTargets overwrites the fiscal year's rows in place, invalid ones included.
// Grades without a row get one inserted at the end of the plan section, which
// shifts the exceptions section.
func (s *Store) SaveTargets(set models.TargetSet) error {
	if s.f == nil {
		return fmt.Errorf("storage not loaded")
	}
	if err := set.Validate(); err != nil {
		return err
	}

	existing, err := s.readTargetRows(set.FiscalYear)
	if err != nil {
		return err
	}
	rowOf := map[models.Grade]int{}
	for _, r := range existing {
		rowOf[r.target.Grade] = r.row
	}

	sheet := constants.PlanSheetName
	for _, g := range models.AllGrades() {
		values := storage.TargetValues(set.Targets.Get(g))
		row, ok := rowOf[g]
		if !ok {
			l, err := s.currentLayout()
			if err != nil {
				return err
			}
			row = l.planLast + 1
			if err := s.f.InsertRows(sheet, row, 1); err != nil {
				return fmt.Errorf("failed to insert plan row: %w", err)
			}
			s.InvalidateLayout()
		}
		if err := s.f.SetSheetRow(sheet, cellName(1, row), &values); err != nil {
			return fmt.Errorf("failed to save target for grade %d: %w", g, err)
		}
	}
	return s.flush()
}

func zeroIfNaN(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}
