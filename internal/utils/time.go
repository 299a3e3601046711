package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/komaplan/internal/constants"
)

// ParseDate parses a YYYY-MM-DD string into a UTC midnight date.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// ParseDateLenient accepts YYYY-MM-DD, YYYY/MM/DD and YYYY/M/D.
func ParseDateLenient(dateStr string) (time.Time, error) {
	s := strings.TrimSpace(dateStr)
	for _, layout := range []string{constants.DateFormat, "2006/01/02", "2006/1/2", "2006-1-2", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", dateStr)
}

// Day truncates t to a UTC civil date, keeping its calendar fields.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// WeekKey returns the Monday on or before t. Sunday belongs to the week that started
// the previous Monday.
func WeekKey(t time.Time) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// InWeek reports whether t falls inside the Monday-start week beginning at monday.
func InWeek(t, monday time.Time) bool {
	d := Day(t)
	return !d.Before(monday) && d.Before(monday.AddDate(0, 0, 7))
}

// FiscalYearOf returns the fiscal year (named by its starting calendar year) containing t.
func FiscalYearOf(t time.Time) int {
	if t.Month() < constants.FiscalYearStartMonth {
		return t.Year() - 1
	}
	return t.Year()
}

// FiscalYearRange returns Apr 1 and Mar 31 of the given fiscal year.
func FiscalYearRange(fiscalYear int) (time.Time, time.Time) {
	start := time.Date(fiscalYear, constants.FiscalYearStartMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, -1)
	return start, end
}

// CurrentOrNextSaturday returns now's date when it is a Saturday, else the next Saturday.
func CurrentOrNextSaturday(now time.Time) time.Time {
	d := Day(now)
	offset := (int(time.Saturday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

func (m MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Before orders month keys chronologically.
func (m MonthKey) Before(o MonthKey) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
