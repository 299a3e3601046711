package utils

import (
	"path/filepath"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{name: "monday maps to itself", date: "2025-04-07", want: "2025-04-07"},
		{name: "wednesday", date: "2025-04-09", want: "2025-04-07"},
		{name: "saturday", date: "2025-04-12", want: "2025-04-07"},
		{name: "sunday belongs to previous monday", date: "2025-04-13", want: "2025-04-07"},
		{name: "across month boundary", date: "2025-05-01", want: "2025-04-28"},
		{name: "across year boundary", date: "2026-01-01", want: "2025-12-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDate(WeekKey(mustDate(t, tt.date)))
			if got != tt.want {
				t.Errorf("WeekKey(%s) = %s, want %s", tt.date, got, tt.want)
			}
		})
	}
}

func TestInWeek(t *testing.T) {
	monday := mustDate(t, "2025-06-02")
	if !InWeek(mustDate(t, "2025-06-08"), monday) {
		t.Errorf("Sunday should be inside the week")
	}
	if InWeek(mustDate(t, "2025-06-09"), monday) {
		t.Errorf("next Monday should be outside the week")
	}
	if InWeek(mustDate(t, "2025-06-01"), monday) {
		t.Errorf("previous Sunday should be outside the week")
	}
}

func TestFiscalYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2025-04-01", 2025},
		{"2025-12-31", 2025},
		{"2026-03-31", 2025},
		{"2026-04-01", 2026},
	}
	for _, tt := range tests {
		if got := FiscalYearOf(mustDate(t, tt.date)); got != tt.want {
			t.Errorf("FiscalYearOf(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}

	start, end := FiscalYearRange(2025)
	if FormatDate(start) != "2025-04-01" || FormatDate(end) != "2026-03-31" {
		t.Errorf("FiscalYearRange(2025) = %s..%s", FormatDate(start), FormatDate(end))
	}
}

func TestCurrentOrNextSaturday(t *testing.T) {
	tests := []struct {
		now  string
		want string
	}{
		{"2025-06-07", "2025-06-07"}, // Saturday
		{"2025-06-08", "2025-06-14"}, // Sunday
		{"2025-06-02", "2025-06-07"}, // Monday
		{"2025-06-06", "2025-06-07"}, // Friday
	}
	for _, tt := range tests {
		now := mustDate(t, tt.now).Add(15 * time.Hour)
		if got := FormatDate(CurrentOrNextSaturday(now)); got != tt.want {
			t.Errorf("CurrentOrNextSaturday(%s) = %s, want %s", tt.now, got, tt.want)
		}
	}
}

func TestParseDateLenient(t *testing.T) {
	for _, in := range []string{"2025-04-07", "2025/04/07", "2025/4/7", " 2025-4-7 "} {
		got, err := ParseDateLenient(in)
		if err != nil {
			t.Errorf("ParseDateLenient(%q) error: %v", in, err)
			continue
		}
		if FormatDate(got) != "2025-04-07" {
			t.Errorf("ParseDateLenient(%q) = %s", in, FormatDate(got))
		}
	}
	if _, err := ParseDateLenient("April 7"); err == nil {
		t.Errorf("expected error for unsupported format")
	}
}

func TestMonthKey(t *testing.T) {
	a := MonthOf(mustDate(t, "2025-12-15"))
	b := MonthOf(mustDate(t, "2026-01-02"))
	if !a.Before(b) || b.Before(a) {
		t.Errorf("month ordering wrong: %v %v", a, b)
	}
	if a.String() != "2025-12" {
		t.Errorf("MonthKey.String() = %s", a.String())
	}
}

func TestExpandPath(t *testing.T) {
	got, err := ExpandPath("~/x/komaplan.db")
	if err != nil {
		t.Fatalf("ExpandPath error: %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "komaplan.db" {
		t.Errorf("ExpandPath returned %q", got)
	}
	if p, _ := ExpandPath("relative/path.db"); p != "relative/path.db" {
		t.Errorf("relative paths must be unchanged, got %q", p)
	}
}
