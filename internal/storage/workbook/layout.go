package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/logger"
)

// layout holds 1-based row numbers of the two sections of the plan sheet.
type layout struct {
	planMarker int
	planLast   int // last non-blank row of the plan section, the header row when empty
	exMarker   int
	exLast     int // last non-blank row of the exceptions section
}

func (l layout) planFirstData() int { return l.planMarker + 2 }
func (l layout) exFirstData() int   { return l.exMarker + 2 }

// InvalidateLayout drops the memoized section offsets. Anything that inserts or
// removes rows on the plan sheet must call it.
func (s *Store) InvalidateLayout() {
	s.layout = nil
}

func (s *Store) currentLayout() (*layout, error) {
	if s.layout != nil {
		return s.layout, nil
	}
	rows, err := s.f.GetRows(constants.PlanSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", constants.PlanSheetName, err)
	}
	l, reason := scanLayout(rows)
	if reason != "" {
		return nil, fmt.Errorf("%s layout is broken (%s), run 'komaplan migrate'", constants.PlanSheetName, reason)
	}
	s.layout = &l
	return s.layout, nil
}

// ensureLayout validates the plan sheet. A blank sheet gets the default layout; a
// damaged one is renamed aside and replaced. It reports whether anything was written.
func (s *Store) ensureLayout() (bool, error) {
	s.InvalidateLayout()
	rows, err := s.f.GetRows(constants.PlanSheetName)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", constants.PlanSheetName, err)
	}

	if isBlankSheet(rows) {
		return true, s.writeDefaultLayout()
	}

	l, reason := scanLayout(rows)
	if reason == "" {
		s.layout = &l
		return false, nil
	}

	aside, err := s.brokenSheetName()
	if err != nil {
		return false, err
	}
	logger.Warn("Plan sheet layout is broken, moving it aside", "reason", reason, "renamed_to", aside)
	if err := s.f.SetSheetName(constants.PlanSheetName, aside); err != nil {
		return false, fmt.Errorf("failed to rename broken plan sheet: %w", err)
	}
	if _, err := s.f.NewSheet(constants.PlanSheetName); err != nil {
		return false, fmt.Errorf("failed to recreate plan sheet: %w", err)
	}
	return true, s.writeDefaultLayout()
}

func (s *Store) brokenSheetName() (string, error) {
	base := constants.PlanSheetName + constants.BrokenSheetSuffix
	name := base
	for i := 2; ; i++ {
		idx, err := s.f.GetSheetIndex(name)
		if err != nil {
			return "", err
		}
		if idx < 0 {
			return name, nil
		}
		name = fmt.Sprintf("%s%d", base, i)
	}
}

func (s *Store) writeDefaultLayout() error {
	sheet := constants.PlanSheetName
	planMarker := constants.DefaultPlanMarkRow
	exMarker := planMarker + 2 + constants.SectionGapRows

	cells := []struct {
		row    int
		values []interface{}
	}{
		{planMarker, []interface{}{constants.PlanTableMarker}},
		{planMarker + 1, toRow(constants.PlanHeader)},
		{exMarker, []interface{}{constants.ExceptionsMarker}},
		{exMarker + 1, toRow(constants.ExceptionHeader)},
	}
	for _, c := range cells {
		if err := s.f.SetSheetRow(sheet, cellName(1, c.row), &c.values); err != nil {
			return fmt.Errorf("failed to write plan layout: %w", err)
		}
	}
	s.styleHeaders(sheet, planMarker+1, len(constants.PlanHeader), exMarker+1, len(constants.ExceptionHeader))

	s.layout = &layout{planMarker: planMarker, planLast: planMarker + 1, exMarker: exMarker, exLast: exMarker + 1}
	return nil
}

// styleHeaders bolds the header rows. Failures are cosmetic and only logged.
func (s *Store) styleHeaders(sheet string, planHeader, planCols, exHeader, exCols int) {
	style, err := s.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		logger.Warn("Could not create header style", "error", err)
		return
	}
	if err := s.f.SetCellStyle(sheet, cellName(1, planHeader), cellName(planCols, planHeader), style); err != nil {
		logger.Warn("Could not style plan header", "error", err)
	}
	if err := s.f.SetCellStyle(sheet, cellName(1, exHeader), cellName(exCols, exHeader), style); err != nil {
		logger.Warn("Could not style exceptions header", "error", err)
	}
}

// scanLayout finds both markers in column A and checks the headers under them.
// The returned reason is empty when the layout is usable.
func scanLayout(rows [][]string) (layout, string) {
	var l layout
	for i, row := range rows {
		switch cell(row, 0) {
		case constants.PlanTableMarker:
			if l.planMarker != 0 {
				return l, "duplicate " + constants.PlanTableMarker + " marker"
			}
			l.planMarker = i + 1
		case constants.ExceptionsMarker:
			if l.exMarker != 0 {
				return l, "duplicate " + constants.ExceptionsMarker + " marker"
			}
			l.exMarker = i + 1
		}
	}

	switch {
	case l.planMarker == 0:
		return l, "missing " + constants.PlanTableMarker + " marker"
	case l.exMarker == 0:
		return l, "missing " + constants.ExceptionsMarker + " marker"
	case l.exMarker < l.planMarker+2:
		return l, constants.ExceptionsMarker + " marker is not below the plan table"
	}
	if !headerMatches(rowAt(rows, l.planMarker+1), constants.PlanHeader) {
		return l, "plan header does not match"
	}
	if !headerMatches(rowAt(rows, l.exMarker+1), constants.ExceptionHeader) {
		return l, "exceptions header does not match"
	}

	l.planLast = l.planMarker + 1
	for r := l.exMarker - 1; r > l.planMarker+1; r-- {
		if !isBlankRow(rowAt(rows, r)) {
			l.planLast = r
			break
		}
	}
	l.exLast = l.exMarker + 1
	for r := len(rows); r > l.exMarker+1; r-- {
		if !isBlankRow(rowAt(rows, r)) {
			l.exLast = r
			break
		}
	}
	return l, ""
}

func headerMatches(row []string, header []string) bool {
	for i, h := range header {
		if !strings.EqualFold(cell(row, i), h) {
			return false
		}
	}
	return true
}

// rowAt returns the 1-based row r, nil past the end.
func rowAt(rows [][]string, r int) []string {
	if r < 1 || r > len(rows) {
		return nil
	}
	return rows[r-1]
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func isBlankSheet(rows [][]string) bool {
	for _, row := range rows {
		if !isBlankRow(row) {
			return false
		}
	}
	return true
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func toRow(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
