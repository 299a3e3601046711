package storage

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/utils"
)

// TargetValues flattens a target into PLAN_TABLE / annual_targets column order.
func TargetValues(t models.AnnualTarget) []interface{} {
	values := make([]interface{}, 0, constants.PlanTableColumns)
	values = append(values, t.FiscalYear, int(t.Grade), string(t.Mode), t.AnnualUnits)
	var monthly models.MonthlyUnits
	if t.MonthlyUnits != nil {
		monthly = *t.MonthlyUnits
	}
	for _, u := range monthly {
		values = append(values, u)
	}
	return append(values, t.Note)
}

// TargetFromValues rebuilds a target from its stored columns. Monthly units are
// only attached in monthly mode.
func TargetFromValues(fiscalYear, grade int, mode string, annualUnits float64, monthly models.MonthlyUnits, note string) models.AnnualTarget {
	t := models.AnnualTarget{
		FiscalYear:  fiscalYear,
		Grade:       models.Grade(grade),
		Mode:        constants.PlanMode(strings.ToLower(strings.TrimSpace(mode))),
		AnnualUnits: annualUnits,
		Note:        note,
	}
	if t.Mode == constants.PlanModeMonthly {
		m := monthly
		t.MonthlyUnits = &m
	}
	t.Normalize()
	return t
}

// CompleteTargetSet places stored targets into a set, giving missing grades a
// zero annual target.
func CompleteTargetSet(fiscalYear int, stored []models.AnnualTarget) models.TargetSet {
	set := models.DefaultTargetSet(fiscalYear, 0)
	for _, g := range models.AllGrades() {
		t := set.Targets.Get(g)
		t.Note = ""
		set.Targets.Set(g, t)
	}
	for _, t := range stored {
		if t.Grade.Valid() {
			set.Targets.Set(t.Grade, t)
		}
	}
	return set
}

// ParseStoredDate parses a stored date; malformed values become the zero time so
// the ledger can skip the row with a warning.
func ParseStoredDate(s string) time.Time {
	if strings.TrimSpace(s) == "" {
		return time.Time{}
	}
	d, err := utils.ParseDateLenient(s)
	if err != nil {
		return time.Time{}
	}
	return d
}

// ParseStoredNumber parses a stored numeric cell, NaN when it is not a number.
func ParseStoredNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// FormatStoredDate renders a date for storage, empty for the zero time.
func FormatStoredDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return utils.FormatDate(t)
}
