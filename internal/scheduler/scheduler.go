// Package scheduler decides which candidate school days receive a module session.
package scheduler

import (
	"sort"
	"time"

	"github.com/julianstephens/komaplan/internal/calendar"
	"github.com/julianstephens/komaplan/internal/constants"
	errs "github.com/julianstephens/komaplan/internal/errors"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/utils"
)

// PlanInput is everything GeneratePlan needs for one fiscal year.
type PlanInput struct {
	FiscalYear int
	Start      time.Time
	End        time.Time
	BaseDate   time.Time
	Days       []models.SchoolDay
	Targets    models.TargetSet
}

// GradeDiagnostics summarizes how a grade's target fared against the calendar.
type GradeDiagnostics struct {
	Grade       models.Grade
	Mode        constants.PlanMode
	Candidates  int
	Requested   int
	Assignable  int
	Dropped     int
	Assigned    int
	UnmetMonths []utils.MonthKey
}

// Result is a generated plan plus per-grade diagnostics.
type Result struct {
	Plan        models.DailyPlan
	Diagnostics models.PerGrade[GradeDiagnostics]
}

type Scheduler struct{}

func New() *Scheduler {
	return &Scheduler{}
}

// GeneratePlan allocates sessions for every grade and returns one entry per
// candidate (date, grade), sorted by date then grade.
func (s *Scheduler) GeneratePlan(in PlanInput) (Result, error) {
	start, end, base := utils.Day(in.Start), utils.Day(in.End), utils.Day(in.BaseDate)
	if end.Before(start) {
		return Result{}, errs.Validation("plan start %s is after plan end %s", utils.FormatDate(start), utils.FormatDate(end))
	}

	res := Result{Plan: models.DailyPlan{
		FiscalYear: in.FiscalYear,
		Start:      start,
		End:        end,
		BaseDate:   base,
	}}

	for _, grade := range models.AllGrades() {
		var dates []time.Time
		for _, d := range calendar.DaysForGrade(in.Days, grade) {
			if d.Before(start) || d.After(end) {
				continue
			}
			dates = append(dates, d)
		}

		target := in.Targets.Targets.Get(grade)
		diag := GradeDiagnostics{Grade: grade, Mode: target.Mode, Candidates: len(dates)}

		var assigned map[time.Time]int
		if target.Mode == constants.PlanModeMonthly && target.MonthlyUnits != nil {
			assigned = s.allocateMonthly(in.FiscalYear, grade, *target.MonthlyUnits, dates, &diag)
		} else {
			alloc := Allocate(target.AnnualUnits*constants.SessionsPerUnit, calendar.GroupByWeek(dates))
			diag.Requested, diag.Assignable, diag.Dropped = alloc.Requested, alloc.Assignable, alloc.Dropped
			assigned = alloc.Sessions
		}
		diag.Assigned = len(assigned)
		res.Diagnostics.Set(grade, diag)

		for _, d := range dates {
			res.Plan.Entries = append(res.Plan.Entries, models.DailyPlanEntry{
				Date:       d,
				FiscalYear: in.FiscalYear,
				WeekKey:    utils.WeekKey(d),
				Grade:      grade,
				Sessions:   assigned[d],
				Elapsed:    !d.After(base),
			})
		}
	}

	sort.SliceStable(res.Plan.Entries, func(i, j int) bool {
		a, b := res.Plan.Entries[i], res.Plan.Entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Grade < b.Grade
	})

	logger.Debug("Plan generated", "fiscal_year", in.FiscalYear, "entries", len(res.Plan.Entries))
	return res, nil
}

// allocateMonthly runs Allocate per calendar month. A month with a target but
// no candidate days is left unmet; its sessions never move to another month.
func (s *Scheduler) allocateMonthly(fiscalYear int, grade models.Grade, units models.MonthlyUnits, dates []time.Time, diag *GradeDiagnostics) map[time.Time]int {
	byMonth := make(map[utils.MonthKey][]time.Time)
	for _, d := range dates {
		byMonth[utils.MonthOf(d)] = append(byMonth[utils.MonthOf(d)], d)
	}

	merged := make(map[time.Time]int)
	for _, m := range models.FiscalMonths() {
		year := fiscalYear
		if m < constants.FiscalYearStartMonth {
			year++
		}
		key := utils.MonthKey{Year: year, Month: m}
		sessions := units.Get(m) * constants.SessionsPerUnit
		if sessions <= 0 {
			continue
		}
		monthDates := byMonth[key]
		if len(monthDates) == 0 {
			logger.Warn("Monthly target has no candidate days, skipping",
				"grade", int(grade), "month", key.String(), "units", units.Get(m))
			diag.UnmetMonths = append(diag.UnmetMonths, key)
			continue
		}

		alloc := Allocate(sessions, calendar.GroupByWeek(monthDates))
		diag.Requested += alloc.Requested
		diag.Assignable += alloc.Assignable
		diag.Dropped += alloc.Dropped
		for d, n := range alloc.Sessions {
			merged[d] += n
		}
	}
	return merged
}
