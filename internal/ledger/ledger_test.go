package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/julianstephens/komaplan/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReduceExceptions(t *testing.T) {
	base := day(2025, 6, 14) // Saturday; week starts Mon 2025-06-09
	rows := []models.Exception{
		{ID: "a", Date: day(2025, 5, 1), Grade: 1, DeltaSessions: 2},
		{ID: "b", Date: day(2025, 6, 10), Grade: 1, DeltaSessions: -1},
		// on the base date, included
		{ID: "c", Date: day(2025, 6, 14), Grade: 2, DeltaSessions: 3},
		// after the base date
		{ID: "d", Date: day(2025, 6, 15), Grade: 2, DeltaSessions: 5},
		// previous fiscal year
		{ID: "e", Date: day(2025, 3, 31), Grade: 1, DeltaSessions: 4},
		// missing date
		{ID: "f", Grade: 3, DeltaSessions: 1, Row: 7},
		// bad grade
		{ID: "g", Date: day(2025, 5, 2), Grade: 9, DeltaSessions: 1},
		{ID: "h", Date: day(2025, 5, 2), Grade: 4, DeltaSessions: math.NaN()},
		// fractional and zero deltas
		{ID: "i", Date: day(2025, 5, 2), Grade: 4, DeltaSessions: 1.6},
		{ID: "j", Date: day(2025, 5, 2), Grade: 3, DeltaSessions: 0.4},
		{ID: "k", Date: day(2025, 5, 2), Grade: 3, DeltaSessions: 0},
	}

	totals := ReduceExceptions(rows, 2025, base)

	want := models.PerGrade[int]{1, 3, 0, 0, 0, 0}
	if totals.ByGrade != want {
		t.Errorf("ByGrade = %v, want %v", totals.ByGrade, want)
	}
	wantWeek := models.PerGrade[int]{-1, 3, 0, 0, 0, 0}
	if totals.ThisWeekByGrade != wantWeek {
		t.Errorf("ThisWeekByGrade = %v, want %v", totals.ThisWeekByGrade, wantWeek)
	}
	if totals.Skipped != 6 {
		t.Errorf("Skipped = %d, want 6", totals.Skipped)
	}
	if totals.Applied != 3 {
		t.Errorf("Applied = %d, want 3", totals.Applied)
	}
}

func TestReduceExceptionsFutureRowsContributeNothing(t *testing.T) {
	base := day(2025, 9, 6)
	var rows []models.Exception
	for i := 1; i <= 30; i++ {
		rows = append(rows, models.Exception{Date: base.AddDate(0, 0, i), Grade: 5, DeltaSessions: 1})
	}
	totals := ReduceExceptions(rows, 2025, base)
	if totals.ByGrade.Get(5) != 0 || totals.Applied != 0 {
		t.Errorf("rows after the base date must not count: %+v", totals)
	}
}

func TestInvalid(t *testing.T) {
	if Invalid(models.Exception{Date: day(2025, 4, 1), Grade: 1, DeltaSessions: 1}) != "" {
		t.Errorf("valid row reported invalid")
	}
	if Invalid(models.Exception{Date: day(2025, 4, 1), Grade: 0, DeltaSessions: 1}) == "" {
		t.Errorf("grade 0 should be invalid")
	}
	if Invalid(models.Exception{Date: day(2025, 4, 1), Grade: 1, DeltaSessions: math.Inf(1)}) == "" {
		t.Errorf("infinite delta should be invalid")
	}
	tests := []struct {
		delta float64
		want  string
	}{
		{0.4, "delta is not a whole number of sessions"},
		{-2.5, "delta is not a whole number of sessions"},
		{0, "delta is zero"},
		{-3, ""},
	}
	for _, tt := range tests {
		if got := Invalid(models.Exception{Date: day(2025, 4, 1), Grade: 2, DeltaSessions: tt.delta}); got != tt.want {
			t.Errorf("Invalid(delta %v) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}
