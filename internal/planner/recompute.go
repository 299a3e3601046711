package planner

import (
	"fmt"
	"time"

	"github.com/julianstephens/komaplan/internal/calendar"
	"github.com/julianstephens/komaplan/internal/constants"
	errs "github.com/julianstephens/komaplan/internal/errors"
	"github.com/julianstephens/komaplan/internal/ledger"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/rollup"
	"github.com/julianstephens/komaplan/internal/scheduler"
	"github.com/julianstephens/komaplan/internal/utils"
	"github.com/julianstephens/komaplan/internal/validation"
	"github.com/julianstephens/komaplan/internal/workbook"
)

// Options select the period of a recompute. Empty fields fall back to settings,
// then to the whole fiscal year and the current or next Saturday.
type Options struct {
	FiscalYear int
	BaseDate   time.Time
	// WeekStart is a Monday (YYYY-MM-DD); the base date becomes that week's Saturday.
	WeekStart  string
	Start      string
	End        string
	Weekdays   string
	SkipReport bool
}

// Outcome is what one recompute produced.
type Outcome struct {
	FiscalYear  int
	BaseDate    time.Time
	Start       time.Time
	End         time.Time
	Weekdays    models.WeekdaySet
	State       constants.PlanState
	Plan        models.DailyPlan
	Totals      models.PerGrade[models.GradeTotals]
	Diagnostics models.PerGrade[scheduler.GradeDiagnostics]
	Exceptions  ledger.Totals
}

type period struct {
	fiscalYear int
	base       time.Time
	start      time.Time
	end        time.Time
	weekdays   models.WeekdaySet
}

// Recompute regenerates the fiscal year's daily plan and reports. Every input is
// validated before anything is written. Targets and exceptions are never modified
// beyond creating default targets on first access.
func (s *Session) Recompute(opts Options) (out Outcome, err error) {
	defer func() {
		if err != nil {
			logger.Error("Recompute failed", "fiscal_year", out.FiscalYear, "error", err)
		}
	}()

	p, err := s.resolve(opts)
	if err != nil {
		return out, err
	}
	out.FiscalYear, out.BaseDate, out.Start, out.End, out.Weekdays = p.fiscalYear, p.base, p.start, p.end, p.weekdays

	targets, err := s.EnsureTargets(p.fiscalYear)
	if err != nil {
		return out, err
	}

	src, release, err := s.source()
	if err != nil {
		return out, err
	}
	days, err := calendar.ExtractSchoolDays(src, p.start, p.end, p.weekdays)
	release()
	if err != nil {
		return out, fmt.Errorf("failed to read school days: %w", err)
	}
	logger.Debug("Extracted school days", "count", len(days), "start", utils.FormatDate(p.start), "end", utils.FormatDate(p.end))

	result, err := s.Scheduler.GeneratePlan(scheduler.PlanInput{
		FiscalYear: p.fiscalYear,
		Start:      p.start,
		End:        p.end,
		BaseDate:   p.base,
		Days:       days,
		Targets:    targets,
	})
	if err != nil {
		return out, err
	}
	out.Plan, out.Diagnostics = result.Plan, result.Diagnostics

	if err := s.Store.ReplaceDailyPlan(p.fiscalYear, result.Plan.Entries); err != nil {
		return out, fmt.Errorf("failed to save daily plan: %w", err)
	}

	rows, err := s.Store.GetAllExceptions()
	if err != nil {
		return out, fmt.Errorf("failed to get exceptions: %w", err)
	}
	out.Exceptions = ledger.ReduceExceptions(rows, p.fiscalYear, p.base)
	out.Totals = rollup.BuildGradeTotals(rollup.SummarizePlan(result.Plan.Entries, p.base), out.Exceptions)

	if !opts.SkipReport {
		if err := s.Reports.Write(workbook.Report{Plan: result.Plan, Totals: out.Totals}); err != nil {
			return out, fmt.Errorf("failed to write reports: %w", err)
		}
	}

	settings, err := s.Settings()
	if err != nil {
		return out, err
	}
	out.State = nextState(settings.PlanState(p.fiscalYear))
	settings.SetPlanState(p.fiscalYear, out.State)
	settings.LastGeneratedAt = s.now().UTC().Format(constants.TimestampFormat)
	settings.LastPlanCount = len(result.Plan.Entries)
	if err := s.SaveSettings(settings); err != nil {
		return out, err
	}

	logger.Info("Plan recomputed", "fiscal_year", p.fiscalYear, "base_date", utils.FormatDate(p.base),
		"entries", len(result.Plan.Entries), "state", out.State)
	return out, nil
}

func nextState(current constants.PlanState) constants.PlanState {
	switch current {
	case constants.PlanStatePlanned, constants.PlanStateRecomputed:
		return constants.PlanStateRecomputed
	default:
		return constants.PlanStatePlanned
	}
}

// resolve validates opts and fills the period from settings and defaults.
func (s *Session) resolve(opts Options) (period, error) {
	if err := validation.Range(validation.PlanRange{
		Start:     opts.Start,
		End:       opts.End,
		WeekStart: opts.WeekStart,
		Weekdays:  opts.Weekdays,
	}); err != nil {
		return period{}, err
	}

	var p period
	switch {
	case opts.WeekStart != "":
		monday, _ := utils.ParseDate(opts.WeekStart)
		p.base = monday.AddDate(0, 0, int(time.Saturday-time.Monday))
	case !opts.BaseDate.IsZero():
		p.base = utils.Day(opts.BaseDate)
	default:
		p.base = utils.CurrentOrNextSaturday(s.now())
	}

	p.fiscalYear = opts.FiscalYear
	if p.fiscalYear == 0 {
		p.fiscalYear = utils.FiscalYearOf(p.base)
	}

	settings, err := s.Settings()
	if err != nil {
		return period{}, err
	}

	if opts.Weekdays != "" {
		if p.weekdays, err = validation.Weekdays(opts.Weekdays); err != nil {
			return period{}, err
		}
	} else {
		p.weekdays = settings.Weekdays.OrDefault()
	}

	fyStart, fyEnd := utils.FiscalYearRange(p.fiscalYear)
	p.start, err = pickDate(opts.Start, settings.PlanStart, fyStart)
	if err != nil {
		return period{}, err
	}
	p.end, err = pickDate(opts.End, settings.PlanEnd, fyEnd)
	if err != nil {
		return period{}, err
	}
	if p.start.Before(fyStart) {
		p.start = fyStart
	}
	if p.end.After(fyEnd) {
		p.end = fyEnd
	}
	if p.end.Before(p.start) {
		return period{}, errs.Validation("plan period %s..%s does not overlap fiscal year %d",
			utils.FormatDate(p.start), utils.FormatDate(p.end), p.fiscalYear)
	}
	return p, nil
}

// pickDate returns the first non-empty of flag and stored, else fallback.
func pickDate(flag, stored string, fallback time.Time) (time.Time, error) {
	for _, v := range []string{flag, stored} {
		if v == "" {
			continue
		}
		d, err := utils.ParseDate(v)
		if err != nil {
			return time.Time{}, errs.Validation("invalid date %q, expected YYYY-MM-DD", v)
		}
		return d, nil
	}
	return fallback, nil
}
