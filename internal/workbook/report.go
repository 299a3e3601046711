package workbook

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/komaplan/internal/config"
	errs "github.com/julianstephens/komaplan/internal/errors"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/rollup"
	"github.com/julianstephens/komaplan/internal/utils"
)

// Report is everything one recompute writes to the report workbook.
type Report struct {
	Plan   models.DailyPlan
	Totals models.PerGrade[models.GradeTotals]
}

// ReportWriter writes the cumulative report region and recreates the day-by-day
// schedule sheet.
type ReportWriter struct {
	cfg *config.Config
}

func NewReportWriter(cfg *config.Config) *ReportWriter {
	return &ReportWriter{cfg: cfg}
}

// Path is the report workbook, which defaults to the schedule workbook.
func (w *ReportWriter) Path() (string, error) {
	path := w.cfg.Report.Path
	if path == "" {
		path = w.cfg.Schedule.Path
	}
	if path == "" {
		return "", errs.Unavailable("no report workbook configured (report.path)")
	}
	return utils.ExpandPath(path)
}

// Write opens the report workbook, writes both outputs and saves it.
func (w *ReportWriter) Write(r Report) error {
	path, err := w.Path()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return errs.Unavailable("report workbook %s not found", path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open report workbook: %w", err)
	}
	defer f.Close()

	if err := w.WriteTo(f, r); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save report workbook: %w", err)
	}
	logger.Info("Report written", "path", path, "fiscal_year", r.Plan.FiscalYear)
	return nil
}

// WriteTo writes both outputs into an open workbook without saving it.
func (w *ReportWriter) WriteTo(f *excelize.File, r Report) error {
	if err := w.writeCumulative(f, r.Totals); err != nil {
		return err
	}
	return w.writeSchedule(f, r.Plan)
}

// writeCumulative fills one row per grade: planned, actual and diff in units in
// three hidden columns, then the display text.
func (w *ReportWriter) writeCumulative(f *excelize.File, totals models.PerGrade[models.GradeTotals]) error {
	sheet := w.cfg.Report.CumulativeSheet
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	if idx < 0 {
		return errs.Unavailable("cumulative sheet %q not found", sheet)
	}

	firstRow, firstCol := w.cfg.Report.FirstRow, w.cfg.Report.FirstColumn
	lastRow := firstRow + len(totals) - 1
	displayCol := firstCol + 3

	if err := f.UnmergeCell(sheet, cellName(firstCol, firstRow), cellName(displayCol, lastRow)); err != nil {
		logger.Warn("Could not unmerge cumulative region", "sheet", sheet, "error", err)
	}

	for i, t := range totals {
		values := []interface{}{
			rollup.SessionsToUnits(t.ElapsedPlanned),
			rollup.SessionsToUnits(t.Actual),
			rollup.SessionsToUnits(t.Diff),
			rollup.Display(t),
		}
		if err := f.SetSheetRow(sheet, cellName(firstCol, firstRow+i), &values); err != nil {
			return fmt.Errorf("failed to write cumulative row for grade %d: %w", t.Grade, err)
		}
	}

	hidden := columnName(firstCol) + ":" + columnName(firstCol+2)
	if err := f.SetColVisible(sheet, hidden, false); err != nil {
		logger.Warn("Could not hide cumulative value columns", "columns", hidden, "error", err)
	}
	return nil
}

// writeSchedule recreates the schedule sheet with one row per planned date.
func (w *ReportWriter) writeSchedule(f *excelize.File, plan models.DailyPlan) error {
	sheet := w.cfg.Report.ScheduleSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil {
		return err
	} else if idx >= 0 {
		if err := f.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("failed to clear schedule sheet: %w", err)
		}
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create schedule sheet: %w", err)
	}

	header := []interface{}{"date", "weekday", "cycle"}
	for _, g := range models.AllGrades() {
		header = append(header, g.String())
	}
	header = append(header, "status")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	w.styleHeader(f, sheet, len(header))

	for i, line := range w.scheduleLines(plan) {
		if err := f.SetSheetRow(sheet, cellName(1, i+2), &line); err != nil {
			return fmt.Errorf("failed to write schedule row: %w", err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 12); err != nil {
		logger.Warn("Could not size schedule date column", "error", err)
	}
	return nil
}

func (w *ReportWriter) scheduleLines(plan models.DailyPlan) [][]interface{} {
	byDate := map[time.Time]*models.PerGrade[int]{}
	var dates []time.Time
	for _, e := range plan.Entries {
		row, ok := byDate[e.Date]
		if !ok {
			row = &models.PerGrade[int]{}
			byDate[e.Date] = row
			dates = append(dates, e.Date)
		}
		if e.Grade.Valid() {
			row.Set(e.Grade, row.Get(e.Grade)+e.Sessions)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	thisWeek := utils.WeekKey(plan.BaseDate)
	cycles := map[time.Time]int{}
	lines := make([][]interface{}, 0, len(dates))
	for _, d := range dates {
		wk := utils.WeekKey(d)
		if _, ok := cycles[wk]; !ok {
			cycles[wk] = len(cycles) + 1
		}
		line := []interface{}{
			utils.FormatDate(d),
			w.cfg.WeekdayLabel(int(d.Weekday())),
			fmt.Sprintf("W%d", cycles[wk]),
		}
		for _, n := range *byDate[d] {
			line = append(line, n)
		}
		line = append(line, w.status(d, thisWeek, plan.BaseDate))
		lines = append(lines, line)
	}
	return lines
}

func (w *ReportWriter) status(d, thisWeek, base time.Time) string {
	switch {
	case base.IsZero():
		return ""
	case utils.InWeek(d, thisWeek):
		return w.cfg.Labels.ThisWeek
	case !d.After(base):
		return w.cfg.Labels.Done
	default:
		return ""
	}
}

func (w *ReportWriter) styleHeader(f *excelize.File, sheet string, cols int) {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		logger.Warn("Could not create schedule header style", "error", err)
		return
	}
	if err := f.SetCellStyle(sheet, "A1", cellName(cols, 1), style); err != nil {
		logger.Warn("Could not style schedule header", "error", err)
	}
}
