package models

import "github.com/julianstephens/komaplan/internal/constants"

// Settings are the MODULE_-namespaced values kept in the shared key-value store.
type Settings struct {
	PlanStart       string     `json:"plan_start"`        // YYYY-MM-DD, empty means start of fiscal year
	PlanEnd         string     `json:"plan_end"`          // YYYY-MM-DD, empty means end of fiscal year
	Weekdays        WeekdaySet `json:"weekdays"`          // enabled instructional weekdays
	LastGeneratedAt string     `json:"last_generated_at"` // RFC3339 timestamp of the last recompute
	LastPlanCount   int        `json:"last_plan_count"`   // number of daily plan rows written last time
	SchemaVersion   string     `json:"schema_version"`
	// PlanStates holds the lifecycle state per fiscal year.
	PlanStates map[int]constants.PlanState `json:"plan_states,omitempty"`
}

// PlanState returns the lifecycle state of a fiscal year, Uninitialized when unknown.
func (s Settings) PlanState(fiscalYear int) constants.PlanState {
	if st, ok := s.PlanStates[fiscalYear]; ok && st != "" {
		return st
	}
	return constants.PlanStateUninitialized
}

// SetPlanState records the lifecycle state of a fiscal year.
func (s *Settings) SetPlanState(fiscalYear int, state constants.PlanState) {
	if s.PlanStates == nil {
		s.PlanStates = map[int]constants.PlanState{}
	}
	s.PlanStates[fiscalYear] = state
}
