package rollup

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/komaplan/internal/ledger"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/models"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSessionsToUnitsRoundTrip(t *testing.T) {
	for thirds := -30; thirds <= 300; thirds++ {
		u := float64(thirds) / 3
		got := SessionsToUnits(UnitsToSessions(u))
		if math.Abs(got-u) > 1e-6 {
			t.Errorf("round trip of %v gave %v", u, got)
		}
	}
	if SessionsToUnits(1) != 0.333333 {
		t.Errorf("SessionsToUnits(1) = %v, want 0.333333", SessionsToUnits(1))
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		sessions int
		want     string
	}{
		{0, "0"},
		{1, "1/3"},
		{3, "1"},
		{37, "12 1/3"},
		{-2, "-2/3"},
		{-4, "-1 1/3"},
		{-6, "-2"},
	}
	for _, tt := range tests {
		if got := FormatUnits(tt.sessions); got != tt.want {
			t.Errorf("FormatUnits(%d) = %q, want %q", tt.sessions, got, tt.want)
		}
	}
	if got := FormatSignedUnits(2); got != "+2/3" {
		t.Errorf("FormatSignedUnits(2) = %q", got)
	}
}

func TestBuildGradeTotalsFloorsAtZero(t *testing.T) {
	var buf bytes.Buffer
	logger.UseWriter(&buf, log.InfoLevel)
	defer func() { logger.Logger = nil }()

	var daily models.PerGrade[DailyTotals]
	daily.Set(2, DailyTotals{Planned: 20, ElapsedPlanned: 3, ThisWeekPlanned: 1})
	var ex ledger.Totals
	ex.ByGrade.Set(2, -5)
	ex.ThisWeekByGrade.Set(2, -5)

	totals := BuildGradeTotals(daily, ex)
	g2 := totals.Get(2)
	if g2.Actual != 0 {
		t.Errorf("actual = %d, want 0", g2.Actual)
	}
	if g2.Diff != -3 {
		t.Errorf("diff = %d, want -3", g2.Diff)
	}
	if g2.Status() != models.StatusDeficit {
		t.Errorf("status = %s, want deficit", g2.Status())
	}
	if g2.ThisWeek != 0 {
		t.Errorf("this week = %d, want 0", g2.ThisWeek)
	}
	if !strings.Contains(buf.String(), "behind") {
		t.Errorf("expected deficit warning, got %q", buf.String())
	}
	if Display(g2) != "0 (-1)" {
		t.Errorf("Display = %q", Display(g2))
	}
}

func TestBuildGradeTotalsReserve(t *testing.T) {
	var daily models.PerGrade[DailyTotals]
	daily.Set(1, DailyTotals{Planned: 30, ElapsedPlanned: 10})
	var ex ledger.Totals
	ex.ByGrade.Set(1, 2)

	g1 := BuildGradeTotals(daily, ex).Get(1)
	if g1.Actual != 12 || g1.Diff != 2 || g1.Status() != models.StatusReserve {
		t.Errorf("unexpected totals %+v", g1)
	}
	if Display(g1) != "4 (+2/3)" {
		t.Errorf("Display = %q", Display(g1))
	}
}

func TestSummarizeAndViews(t *testing.T) {
	entries := []models.DailyPlanEntry{
		{Date: day(4, 28), Grade: 1, Sessions: 1, Elapsed: true},
		{Date: day(4, 30), Grade: 1, Sessions: 1, Elapsed: true},
		{Date: day(5, 2), Grade: 1, Sessions: 1, Elapsed: true},
		{Date: day(5, 2), Grade: 2, Sessions: 0, Elapsed: true},
		{Date: day(5, 5), Grade: 2, Sessions: 1},
	}
	base := day(5, 3)

	sums := SummarizePlan(entries, base)
	if got := sums.Get(1); got.Planned != 3 || got.ElapsedPlanned != 3 || got.ThisWeekPlanned != 3 {
		t.Errorf("grade 1 sums = %+v", got)
	}
	if got := sums.Get(2); got.Planned != 1 || got.ElapsedPlanned != 0 || got.ThisWeekPlanned != 0 {
		t.Errorf("grade 2 sums = %+v", got)
	}

	months := ByMonth(entries)
	if len(months) != 2 || months[0].Label != "2025-04" || months[0].Total() != 2 || months[1].Total() != 2 {
		t.Errorf("unexpected monthly view %+v", months)
	}
	weeks := ByWeek(entries)
	if len(weeks) != 2 || weeks[0].Label != "2025-04-28" || weeks[0].Sessions.Get(1) != 3 {
		t.Errorf("unexpected weekly view %+v", weeks)
	}
	if days := ByDay(entries); len(days) != 4 {
		t.Errorf("expected 4 days, got %d", len(days))
	}
}
