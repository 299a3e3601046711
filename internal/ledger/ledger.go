// Package ledger reduces the append-only exception log into per-grade session deltas.
package ledger

import (
	"math"
	"time"

	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/utils"
)

// Totals are the summed exception deltas as of a base date.
type Totals struct {
	ByGrade         models.PerGrade[int]
	ThisWeekByGrade models.PerGrade[int]
	Applied         int
	Skipped         int
}

// ReduceExceptions sums deltas for rows dated on or before baseDate inside fiscalYear.
// Malformed rows are skipped with a warning.
func ReduceExceptions(rows []models.Exception, fiscalYear int, baseDate time.Time) Totals {
	var totals Totals
	base := utils.Day(baseDate)
	weekStart := utils.WeekKey(base)

	for _, row := range rows {
		if reason := invalidReason(row); reason != "" {
			logger.Warn("Skipping invalid exception row", "row", row.Row, "id", row.ID, "reason", reason)
			totals.Skipped++
			continue
		}
		d := utils.Day(row.Date)
		if d.After(base) || utils.FiscalYearOf(d) != fiscalYear {
			continue
		}

		delta := int(row.DeltaSessions)
		totals.ByGrade[row.Grade.Index()] += delta
		if utils.InWeek(d, weekStart) {
			totals.ThisWeekByGrade[row.Grade.Index()] += delta
		}
		totals.Applied++
	}
	return totals
}

// Invalid reports why a row cannot be applied, or "" when it is usable.
func Invalid(row models.Exception) string {
	return invalidReason(row)
}

func invalidReason(row models.Exception) string {
	switch {
	case row.Date.IsZero():
		return "missing date"
	case !row.Grade.Valid():
		return "grade out of range"
	case math.IsNaN(row.DeltaSessions) || math.IsInf(row.DeltaSessions, 0):
		return "delta is not a number"
	case row.DeltaSessions != math.Trunc(row.DeltaSessions):
		return "delta is not a whole number of sessions"
	case row.DeltaSessions == 0:
		return "delta is zero"
	}
	return ""
}
