// Package rollup aggregates the daily plan and exception totals into per-grade
// figures, plus weekly and monthly views.
package rollup

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/komaplan/internal/ledger"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/utils"
)

// DailyTotals are the plan sums for one grade.
type DailyTotals struct {
	Planned         int
	ElapsedPlanned  int
	ThisWeekPlanned int
}

// SummarizePlan sums planned sessions per grade. The current week is the
// Monday-start week containing baseDate.
func SummarizePlan(entries []models.DailyPlanEntry, baseDate time.Time) models.PerGrade[DailyTotals] {
	var out models.PerGrade[DailyTotals]
	weekStart := utils.WeekKey(baseDate)
	for _, e := range entries {
		if !e.Grade.Valid() {
			continue
		}
		t := &out[e.Grade.Index()]
		t.Planned += e.Sessions
		if e.Elapsed {
			t.ElapsedPlanned += e.Sessions
		}
		if utils.InWeek(e.Date, weekStart) {
			t.ThisWeekPlanned += e.Sessions
		}
	}
	return out
}

// BuildGradeTotals combines plan sums with exception deltas. Actual time never
// goes below zero; a grade behind its elapsed plan is logged as a deficit.
func BuildGradeTotals(daily models.PerGrade[DailyTotals], exceptions ledger.Totals) models.PerGrade[models.GradeTotals] {
	var out models.PerGrade[models.GradeTotals]
	for _, g := range models.AllGrades() {
		d := daily.Get(g)
		delta := exceptions.ByGrade.Get(g)

		actual := d.ElapsedPlanned + delta
		if actual < 0 {
			actual = 0
		}
		thisWeek := d.ThisWeekPlanned + exceptions.ThisWeekByGrade.Get(g)
		if thisWeek < 0 {
			thisWeek = 0
		}

		totals := models.GradeTotals{
			Grade:          g,
			Planned:        d.Planned,
			ElapsedPlanned: d.ElapsedPlanned,
			Delta:          delta,
			Actual:         actual,
			Diff:           actual - d.ElapsedPlanned,
			ThisWeek:       thisWeek,
		}
		if totals.Status() == models.StatusDeficit {
			logger.Warn("Grade is behind its plan",
				"grade", int(g), "actual", FormatUnits(actual), "diff", FormatSignedUnits(totals.Diff))
		}
		out.Set(g, totals)
	}
	return out
}

// Display renders the cumulative cell text, e.g. "12 1/3 (+2/3)".
func Display(t models.GradeTotals) string {
	return fmt.Sprintf("%s (%s)", FormatUnits(t.Actual), FormatSignedUnits(t.Diff))
}

// PeriodTotals are planned sessions per grade for one week or month.
type PeriodTotals struct {
	Label    string
	Start    time.Time
	Sessions models.PerGrade[int]
	Elapsed  models.PerGrade[int]
}

// Total sums all grades.
func (p PeriodTotals) Total() int {
	total := 0
	for _, n := range p.Sessions {
		total += n
	}
	return total
}

// ByWeek groups plan entries by Monday-start week.
func ByWeek(entries []models.DailyPlanEntry) []PeriodTotals {
	return group(entries, func(e models.DailyPlanEntry) (string, time.Time) {
		key := utils.WeekKey(e.Date)
		return utils.FormatDate(key), key
	})
}

// ByMonth groups plan entries by calendar month.
func ByMonth(entries []models.DailyPlanEntry) []PeriodTotals {
	return group(entries, func(e models.DailyPlanEntry) (string, time.Time) {
		m := utils.MonthOf(e.Date)
		return m.String(), time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	})
}

// ByDay groups plan entries by date.
func ByDay(entries []models.DailyPlanEntry) []PeriodTotals {
	return group(entries, func(e models.DailyPlanEntry) (string, time.Time) {
		d := utils.Day(e.Date)
		return utils.FormatDate(d), d
	})
}

func group(entries []models.DailyPlanEntry, keyOf func(models.DailyPlanEntry) (string, time.Time)) []PeriodTotals {
	byLabel := map[string]*PeriodTotals{}
	for _, e := range entries {
		if !e.Grade.Valid() {
			continue
		}
		label, start := keyOf(e)
		p, ok := byLabel[label]
		if !ok {
			p = &PeriodTotals{Label: label, Start: start}
			byLabel[label] = p
		}
		p.Sessions[e.Grade.Index()] += e.Sessions
		if e.Elapsed {
			p.Elapsed[e.Grade.Index()] += e.Sessions
		}
	}

	out := make([]PeriodTotals, 0, len(byLabel))
	for _, p := range byLabel {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
