package scheduler

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/utils"
)

func schoolDays(grade models.Grade, dates []time.Time) []models.SchoolDay {
	days := make([]models.SchoolDay, 0, len(dates))
	for _, d := range dates {
		days = append(days, models.SchoolDay{Date: d, Grade: grade})
	}
	return days
}

func TestGeneratePlanAnnual(t *testing.T) {
	scheduler := New()
	targets := models.DefaultTargetSet(2025, 0)
	targets.Targets.Set(1, models.AnnualTarget{Grade: 1, Mode: constants.PlanModeAnnual, AnnualUnits: 6})

	dates := mwfWeeks(6)
	days := append(schoolDays(1, dates), schoolDays(2, dates)...)
	base := mondays(6)[2].AddDate(0, 0, 5) // Saturday of week 3

	res, err := scheduler.GeneratePlan(PlanInput{
		FiscalYear: 2025,
		Start:      time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		BaseDate:   base,
		Days:       days,
		Targets:    targets,
	})
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}

	if len(res.Plan.Entries) != 36 {
		t.Fatalf("expected one entry per (date, grade) = 36, got %d", len(res.Plan.Entries))
	}

	sessions := map[models.Grade]int{}
	elapsed := 0
	for i, e := range res.Plan.Entries {
		sessions[e.Grade] += e.Sessions
		if e.Sessions > 1 || e.Sessions < 0 {
			t.Errorf("entry %d has %d sessions", i, e.Sessions)
		}
		if !e.WeekKey.Equal(utils.WeekKey(e.Date)) {
			t.Errorf("entry %d week key mismatch", i)
		}
		if e.Grade == 1 && e.Elapsed {
			elapsed += e.Sessions
		}
		if i > 0 {
			prev := res.Plan.Entries[i-1]
			if e.Date.Before(prev.Date) || (e.Date.Equal(prev.Date) && e.Grade <= prev.Grade) {
				t.Errorf("entries not sorted at %d", i)
			}
		}
	}
	if sessions[1] != 18 || sessions[2] != 0 {
		t.Errorf("sessions by grade = %v, want g1=18 g2=0", sessions)
	}
	if elapsed != 9 {
		t.Errorf("elapsed planned sessions = %d, want 9", elapsed)
	}
	if d := res.Diagnostics.Get(1); d.Requested != 18 || d.Assigned != 18 || d.Candidates != 18 {
		t.Errorf("unexpected diagnostics %+v", d)
	}
}

func TestGeneratePlanMonthlySkipsEmptyMonth(t *testing.T) {
	var buf bytes.Buffer
	logger.UseWriter(&buf, log.InfoLevel)
	defer func() { logger.Logger = nil }()

	monthly := models.MonthlyUnits{}
	monthly.Set(time.July, 0)
	monthly.Set(time.August, 2) // 6 sessions

	targets := models.DefaultTargetSet(2025, 0)
	targets.Targets.Set(3, models.AnnualTarget{Grade: 3, Mode: constants.PlanModeMonthly, MonthlyUnits: &monthly})

	// Candidate days only in July.
	july := []time.Time{
		time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
	}

	res, err := New().GeneratePlan(PlanInput{
		FiscalYear: 2025,
		Start:      time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		BaseDate:   time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC),
		Days:       schoolDays(3, july),
		Targets:    targets,
	})
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}

	for _, e := range res.Plan.Entries {
		if e.Sessions != 0 {
			t.Errorf("August target leaked into July on %s", utils.FormatDate(e.Date))
		}
	}
	diag := res.Diagnostics.Get(3)
	if len(diag.UnmetMonths) != 1 || diag.UnmetMonths[0].String() != "2025-08" {
		t.Errorf("expected August to be unmet, got %v", diag.UnmetMonths)
	}
	if !strings.Contains(buf.String(), "2025-08") {
		t.Errorf("expected a warning naming the skipped month, got %q", buf.String())
	}
}

func TestGeneratePlanMonthlyKeepsMonthsSeparate(t *testing.T) {
	monthly := models.MonthlyUnits{}
	monthly.Set(time.April, 1)
	monthly.Set(time.May, 2)

	targets := models.DefaultTargetSet(2025, 0)
	targets.Targets.Set(2, models.AnnualTarget{Grade: 2, Mode: constants.PlanModeMonthly, MonthlyUnits: &monthly})

	var dates []time.Time
	for d := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC); d.Month() <= time.May; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Monday || wd == time.Wednesday || wd == time.Friday {
			dates = append(dates, d)
		}
	}

	res, err := New().GeneratePlan(PlanInput{
		FiscalYear: 2025,
		Start:      time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		BaseDate:   time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
		Days:       schoolDays(2, dates),
		Targets:    targets,
	})
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}

	perMonth := map[time.Month]int{}
	for _, e := range res.Plan.Entries {
		perMonth[e.Date.Month()] += e.Sessions
	}
	if perMonth[time.April] != 3 || perMonth[time.May] != 6 {
		t.Errorf("per month sessions = %v, want Apr=3 May=6", perMonth)
	}
}

func TestGeneratePlanRespectsRange(t *testing.T) {
	targets := models.DefaultTargetSet(2025, 10)
	dates := mwfWeeks(4)
	res, err := New().GeneratePlan(PlanInput{
		FiscalYear: 2025,
		Start:      mondays(4)[1],
		End:        mondays(4)[2].AddDate(0, 0, 6),
		BaseDate:   mondays(4)[0],
		Days:       schoolDays(1, dates),
		Targets:    targets,
	})
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if len(res.Plan.Entries) != 6 {
		t.Errorf("expected 6 in-range entries, got %d", len(res.Plan.Entries))
	}
	for _, e := range res.Plan.Entries {
		if e.Elapsed {
			t.Errorf("nothing should be elapsed before the range, got %s", utils.FormatDate(e.Date))
		}
	}

	if _, err := New().GeneratePlan(PlanInput{Start: mondays(2)[1], End: mondays(2)[0]}); err == nil {
		t.Errorf("expected error for reversed range")
	}
}

func TestGeneratePlanDeterministic(t *testing.T) {
	targets := models.DefaultTargetSet(2025, 7)
	dates := mwfWeeks(9)
	var days []models.SchoolDay
	for _, g := range models.AllGrades() {
		days = append(days, schoolDays(g, dates)...)
	}
	in := PlanInput{
		FiscalYear: 2025,
		Start:      time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		BaseDate:   mondays(9)[4],
		Days:       days,
		Targets:    targets,
	}
	first, _ := New().GeneratePlan(in)
	second, _ := New().GeneratePlan(in)
	if len(first.Plan.Entries) != len(second.Plan.Entries) {
		t.Fatalf("entry counts differ")
	}
	for i := range first.Plan.Entries {
		if first.Plan.Entries[i] != second.Plan.Entries[i] {
			t.Fatalf("entry %d differs between runs", i)
		}
	}
}
