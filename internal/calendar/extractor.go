// Package calendar turns the annual school schedule into candidate module days.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/utils"
)

// ScheduleRow is one row of the annual schedule: a date, a grade and the
// attendance markers found in the row's data columns.
type ScheduleRow struct {
	Date    time.Time
	Grade   models.Grade
	Markers []string
}

// HasMarker reports whether any marker cell is non-empty.
func (r ScheduleRow) HasMarker() bool {
	for _, m := range r.Markers {
		if strings.TrimSpace(m) != "" {
			return true
		}
	}
	return false
}

// Source is the annual schedule collaborator. ScheduleRows must be a single bulk
// read of every row whose date falls inside [start, end].
type Source interface {
	ScheduleRows(start, end time.Time) ([]ScheduleRow, error)
}

// ExtractSchoolDays returns the candidate days in [start, end] sorted by date then
// grade. An empty weekday set means Mon/Wed/Fri. Source errors are returned as is.
func ExtractSchoolDays(src Source, start, end time.Time, weekdays models.WeekdaySet) ([]models.SchoolDay, error) {
	start, end = utils.Day(start), utils.Day(end)
	if end.Before(start) {
		return nil, fmt.Errorf("invalid date range: %s is after %s", utils.FormatDate(start), utils.FormatDate(end))
	}
	enabled := weekdays.OrDefault()

	rows, err := src.ScheduleRows(start, end)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rows))
	days := make([]models.SchoolDay, 0, len(rows))
	for _, row := range rows {
		d := utils.Day(row.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		if !enabled.Contains(d.Weekday()) {
			continue
		}
		if !row.Grade.Valid() {
			continue
		}
		if !row.HasMarker() {
			continue
		}
		key := fmt.Sprintf("%s/%d", utils.FormatDate(d), row.Grade)
		if seen[key] {
			continue
		}
		seen[key] = true
		days = append(days, models.SchoolDay{Date: d, Grade: row.Grade})
	}

	sort.Slice(days, func(i, j int) bool {
		if !days[i].Date.Equal(days[j].Date) {
			return days[i].Date.Before(days[j].Date)
		}
		return days[i].Grade < days[j].Grade
	})
	return days, nil
}

// DaysForGrade filters days down to one grade, keeping order.
func DaysForGrade(days []models.SchoolDay, grade models.Grade) []time.Time {
	var out []time.Time
	for _, d := range days {
		if d.Grade == grade {
			out = append(out, d.Date)
		}
	}
	return out
}
