package models

import (
	"math"
	"time"

	"github.com/julianstephens/komaplan/internal/constants"
	errs "github.com/julianstephens/komaplan/internal/errors"
)

// MonthlyUnits holds per-month unit targets in fiscal order (Apr .. Mar).
type MonthlyUnits [12]float64

// FiscalMonths lists calendar months in fiscal-year order.
func FiscalMonths() []time.Month {
	months := make([]time.Month, 0, 12)
	for i := 0; i < 12; i++ {
		months = append(months, time.Month((int(constants.FiscalYearStartMonth)-1+i)%12+1))
	}
	return months
}

// FiscalMonthIndex maps April to 0 and March to 11.
func FiscalMonthIndex(m time.Month) int {
	return (int(m) - int(constants.FiscalYearStartMonth) + 12) % 12
}

// Get returns the units for calendar month m.
func (m MonthlyUnits) Get(month time.Month) float64 {
	return m[FiscalMonthIndex(month)]
}

// Set stores units for calendar month m.
func (m *MonthlyUnits) Set(month time.Month, units float64) {
	m[FiscalMonthIndex(month)] = units
}

// Sum adds all twelve months.
func (m MonthlyUnits) Sum() float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	return total
}

// AnnualTarget is the module-learning target for one grade in one fiscal year.
type AnnualTarget struct {
	FiscalYear   int                `json:"fiscal_year" yaml:"fiscal_year"`
	Grade        Grade              `json:"grade" yaml:"grade"`
	Mode         constants.PlanMode `json:"mode" yaml:"mode"`
	AnnualUnits  float64            `json:"annual_units" yaml:"annual_units"`
	MonthlyUnits *MonthlyUnits      `json:"monthly_units,omitempty" yaml:"monthly_units,omitempty"`
	Note         string             `json:"note,omitempty" yaml:"note,omitempty"`
}

// EffectiveUnits is annualUnits in annual mode and the monthly sum in monthly mode.
func (t AnnualTarget) EffectiveUnits() float64 {
	if t.Mode == constants.PlanModeMonthly && t.MonthlyUnits != nil {
		return t.MonthlyUnits.Sum()
	}
	return t.AnnualUnits
}

// Normalize derives AnnualUnits from the monthly table in monthly mode.
func (t *AnnualTarget) Normalize() {
	if t.Mode == "" {
		t.Mode = constants.PlanModeAnnual
	}
	if t.Mode == constants.PlanModeMonthly && t.MonthlyUnits != nil {
		t.AnnualUnits = t.MonthlyUnits.Sum()
	}
	if t.Mode == constants.PlanModeAnnual {
		t.MonthlyUnits = nil
	}
}

// Validate checks the target invariants.
func (t AnnualTarget) Validate() error {
	if !t.Grade.Valid() {
		return errs.Validation("grade must be between %d and %d, got %d", constants.MinGrade, constants.MaxGrade, t.Grade)
	}
	switch t.Mode {
	case constants.PlanModeAnnual:
		if math.IsNaN(t.AnnualUnits) || math.IsInf(t.AnnualUnits, 0) || t.AnnualUnits < 0 {
			return errs.Validation("grade %d: annual units must be a non-negative number", t.Grade)
		}
	case constants.PlanModeMonthly:
		if t.MonthlyUnits == nil {
			return errs.Validation("grade %d: monthly mode requires monthly units", t.Grade)
		}
		for i, v := range t.MonthlyUnits {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return errs.Validation("grade %d: units for %s must be a non-negative number", t.Grade, FiscalMonths()[i])
			}
		}
		if t.MonthlyUnits.Sum() <= 0 {
			return errs.Validation("grade %d: monthly units must sum to more than zero", t.Grade)
		}
	default:
		return errs.Validation("grade %d: unknown mode %q", t.Grade, t.Mode)
	}
	return nil
}

// TargetSet is the full set of six grade targets for a fiscal year. It is always saved whole.
type TargetSet struct {
	FiscalYear int                    `json:"fiscal_year" yaml:"fiscal_year"`
	Targets    PerGrade[AnnualTarget] `json:"targets" yaml:"targets"`
}

// DefaultTargetSet creates annual-mode targets with the given units for every grade.
func DefaultTargetSet(fiscalYear int, units float64) TargetSet {
	set := TargetSet{FiscalYear: fiscalYear}
	for _, g := range AllGrades() {
		set.Targets.Set(g, AnnualTarget{
			FiscalYear:  fiscalYear,
			Grade:       g,
			Mode:        constants.PlanModeAnnual,
			AnnualUnits: units,
			Note:        "default",
		})
	}
	return set
}

// Validate normalizes and checks every grade in the set.
func (s *TargetSet) Validate() error {
	for i := range s.Targets {
		t := &s.Targets[i]
		if t.Grade == 0 {
			t.Grade = Grade(i + constants.MinGrade)
		}
		if t.Grade.Index() != i {
			return errs.Validation("target for grade %d stored in slot for grade %d", t.Grade, i+constants.MinGrade)
		}
		t.FiscalYear = s.FiscalYear
		t.Normalize()
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}
