package planner

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/ledger"
	"github.com/julianstephens/komaplan/internal/utils"
	"github.com/julianstephens/komaplan/internal/workbook"
)

type CheckStatus string

const (
	CheckOK      CheckStatus = "ok"
	CheckWarn    CheckStatus = "warning"
	CheckFail    CheckStatus = "fail"
	CheckSkipped CheckStatus = "skipped"
)

type Check struct {
	Name   string
	Status CheckStatus
	Detail string
}

// schemaReporter is implemented by the SQL stores.
type schemaReporter interface {
	SchemaStatus() (current, latest int, err error)
}

// targetAuditor is implemented by stores whose target rows can be hand-edited.
type targetAuditor interface {
	InvalidTargetRows(fiscalYear int) ([]int, error)
}

// Doctor runs the health checks. Checks that need the store are skipped when it
// cannot be loaded.
func (s *Session) Doctor() []Check {
	var checks []Check
	add := func(name string, status CheckStatus, format string, args ...interface{}) {
		checks = append(checks, Check{Name: name, Status: status, Detail: fmt.Sprintf(format, args...)})
	}

	if err := s.Store.Load(); err != nil {
		add("Store reachable", CheckFail, "%v", err)
		for _, name := range []string{"Schema version", "Settings", "Exceptions"} {
			add(name, CheckSkipped, "store not reachable")
		}
	} else {
		add("Store reachable", CheckOK, "%s", s.Store.GetConfigPath())
		s.checkSchema(add)
		s.checkSettings(add)
		s.checkExceptions(add)
		if a, ok := s.Store.(targetAuditor); ok {
			s.checkTargets(a, add)
		}
	}

	s.checkSchedule(add)
	s.checkReport(add)
	return checks
}

type addFunc func(name string, status CheckStatus, format string, args ...interface{})

func (s *Session) checkSchema(add addFunc) {
	if r, ok := s.Store.(schemaReporter); ok {
		current, latest, err := r.SchemaStatus()
		switch {
		case err != nil:
			add("Schema version", CheckFail, "%v", err)
		case current < latest:
			add("Schema version", CheckFail, "at %d, latest is %d; run 'komaplan migrate'", current, latest)
		case current > latest:
			add("Schema version", CheckFail, "at %d, newer than this binary (%d)", current, latest)
		default:
			add("Schema version", CheckOK, "%d", current)
		}
		return
	}
	settings, err := s.Settings()
	if err != nil {
		add("Schema version", CheckFail, "%v", err)
		return
	}
	if settings.SchemaVersion != constants.SchemaVersion {
		add("Schema version", CheckWarn, "settings record %q, expected %q", settings.SchemaVersion, constants.SchemaVersion)
		return
	}
	add("Schema version", CheckOK, "%s", settings.SchemaVersion)
}

func (s *Session) checkSettings(add addFunc) {
	settings, err := s.Settings()
	if err != nil {
		add("Settings", CheckFail, "%v", err)
		return
	}
	start, end := settings.PlanStart, settings.PlanEnd
	if start != "" {
		if _, err := utils.ParseDate(start); err != nil {
			add("Settings", CheckFail, "plan start %q is not a date", start)
			return
		}
	}
	if end != "" {
		if _, err := utils.ParseDate(end); err != nil {
			add("Settings", CheckFail, "plan end %q is not a date", end)
			return
		}
	}
	if start != "" && end != "" && end < start {
		add("Settings", CheckFail, "plan end %s is before plan start %s", end, start)
		return
	}
	if settings.Weekdays.IsEmpty() {
		add("Settings", CheckWarn, "no weekdays selected, Mon/Wed/Fri will be used")
		return
	}
	add("Settings", CheckOK, "weekdays %s", settings.Weekdays.String())
}

func (s *Session) checkExceptions(add addFunc) {
	rows, err := s.Store.GetAllExceptions()
	if err != nil {
		add("Exceptions", CheckFail, "%v", err)
		return
	}
	invalid := 0
	for _, row := range rows {
		if ledger.Invalid(row) != "" {
			invalid++
		}
	}
	if invalid > 0 {
		add("Exceptions", CheckWarn, "%d of %d rows are invalid and will be skipped", invalid, len(rows))
		return
	}
	add("Exceptions", CheckOK, "%d rows", len(rows))
}

func (s *Session) checkTargets(a targetAuditor, add addFunc) {
	fy := utils.FiscalYearOf(utils.CurrentOrNextSaturday(s.now()))
	bad, err := a.InvalidTargetRows(fy)
	if err != nil {
		add("Targets", CheckFail, "%v", err)
		return
	}
	if len(bad) > 0 {
		add("Targets", CheckWarn, "fiscal year %d rows %v are invalid and treated as zero targets", fy, bad)
		return
	}
	add("Targets", CheckOK, "fiscal year %d", fy)
}

func (s *Session) checkSchedule(add addFunc) {
	src, release, err := s.source()
	if err != nil {
		add("Schedule workbook", CheckFail, "%v", err)
		return
	}
	defer release()

	fy := utils.FiscalYearOf(s.now())
	start, end := utils.FiscalYearRange(fy)
	rows, err := src.ScheduleRows(start, end)
	if err != nil {
		add("Schedule workbook", CheckFail, "%v", err)
		return
	}
	if len(rows) == 0 {
		add("Schedule workbook", CheckWarn, "no rows for fiscal year %d", fy)
		return
	}
	add("Schedule workbook", CheckOK, "%d rows for fiscal year %d", len(rows), fy)
}

func (s *Session) checkReport(add addFunc) {
	w, ok := s.Reports.(*workbook.ReportWriter)
	if !ok {
		add("Report workbook", CheckSkipped, "custom report sink")
		return
	}
	path, err := w.Path()
	if err != nil {
		add("Report workbook", CheckWarn, "%v", err)
		return
	}
	if _, err := os.Stat(path); err != nil {
		add("Report workbook", CheckWarn, "%s not found", path)
		return
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		add("Report workbook", CheckFail, "%v", err)
		return
	}
	defer f.Close()
	if idx, _ := f.GetSheetIndex(s.Config.Report.CumulativeSheet); idx < 0 {
		add("Report workbook", CheckWarn, "cumulative sheet %q missing", s.Config.Report.CumulativeSheet)
		return
	}
	add("Report workbook", CheckOK, "%s", path)
}
