package models

import "time"

// SchoolDay is a date that qualifies as an instructional day for a grade.
type SchoolDay struct {
	Date  time.Time
	Grade Grade
}

// DailyPlanEntry is the generated plan for one (date, grade).
type DailyPlanEntry struct {
	Date       time.Time `json:"date"`
	FiscalYear int       `json:"fiscal_year"`
	WeekKey    time.Time `json:"week_key"`
	Grade      Grade     `json:"grade"`
	Sessions   int       `json:"sessions"` // 0 or 1
	Elapsed    bool      `json:"elapsed"`
}

// DailyPlan is the full generated schedule of one fiscal year.
type DailyPlan struct {
	FiscalYear int
	Start      time.Time
	End        time.Time
	BaseDate   time.Time
	Entries    []DailyPlanEntry
}

// TotalsStatus classifies a grade's actual time against its elapsed plan.
type TotalsStatus string

const (
	StatusReserve TotalsStatus = "reserve"
	StatusOnTrack TotalsStatus = "on_track"
	StatusDeficit TotalsStatus = "deficit"
)

// GradeTotals are the per-grade sums of one recompute, all in sessions.
type GradeTotals struct {
	Grade          Grade `json:"grade"`
	Planned        int   `json:"planned_sessions"`
	ElapsedPlanned int   `json:"elapsed_planned_sessions"`
	Delta          int   `json:"delta_sessions"`
	Actual         int   `json:"actual_sessions"`
	Diff           int   `json:"diff_sessions"`
	ThisWeek       int   `json:"this_week_sessions"`
}

// Status is reserve when ahead of plan, deficit when behind.
func (t GradeTotals) Status() TotalsStatus {
	switch {
	case t.Diff > 0:
		return StatusReserve
	case t.Diff < 0:
		return StatusDeficit
	default:
		return StatusOnTrack
	}
}
