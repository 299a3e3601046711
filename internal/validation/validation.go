// Package validation checks user input before anything is written.
package validation

import (
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"

	"github.com/julianstephens/komaplan/internal/constants"
	errs "github.com/julianstephens/komaplan/internal/errors"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/utils"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags
	wholeTag       = "whole"
	mondayTag      = "monday"
	weekdaysTag    = "weekdays"
	startBeforeTag = "start_before_end"
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names in messages; they match the CLI flag names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(wholeTag, wholeValidation)
	_ = Validate.RegisterValidation(mondayTag, mondayValidation)
	_ = Validate.RegisterValidation(weekdaysTag, weekdaysValidation)
	Validate.RegisterStructValidation(planRangeStructValidation, PlanRange{})

	registerCustomTranslations(wholeTag, mondayTag, weekdaysTag, startBeforeTag)
}

func registerCustomTranslations(tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = Validate.RegisterTranslation(tag, Translator, registerFn, translateCustomErrs)
	}
}

func translateCustomErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case wholeTag:
		return fe.Field() + " must be a whole number"
	case mondayTag:
		return fe.Field() + " must be a Monday"
	case weekdaysTag:
		return fe.Field() + " must select at least one of 1-5 (Mon-Fri)"
	case startBeforeTag:
		return "start must not be after end"
	default:
		return ""
	}
}

func wholeValidation(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0) && math.Trunc(f) == f
}

func mondayValidation(fl validator.FieldLevel) bool {
	d, err := utils.ParseDate(fl.Field().String())
	return err == nil && d.Weekday() == time.Monday
}

func weekdaysValidation(fl validator.FieldLevel) bool {
	set, err := models.ParseWeekdays(fl.Field().String())
	return err == nil && !set.IsEmpty()
}

func planRangeStructValidation(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(PlanRange)
	if !ok || r.Start == "" || r.End == "" {
		return
	}
	start, err1 := utils.ParseDate(r.Start)
	end, err2 := utils.ParseDate(r.End)
	if err1 == nil && err2 == nil && end.Before(start) {
		sl.ReportError(r.End, "end", "End", startBeforeTag, "")
	}
}

// Struct validates v and converts failures into a single validation error.
func Struct(v interface{}) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errs.Validation("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(Translator))
	}
	return errs.Validation("%s", strings.Join(msgs, "; "))
}

// TargetInput is one grade's target as entered on the command line or in a form.
type TargetInput struct {
	FiscalYear  int             `json:"fiscal_year" validate:"gte=2000,lte=2100"`
	Grade       int             `json:"grade" validate:"gte=1,lte=6"`
	Mode        string          `json:"mode" validate:"omitempty,oneof=annual monthly"`
	AnnualUnits float64         `json:"units" validate:"gte=0"`
	Monthly     map[int]float64 `json:"monthly" validate:"omitempty,dive,keys,gte=1,lte=12,endkeys,gte=0"`
	Note        string          `json:"note" validate:"max=200"`
}

// Target validates in and builds a normalized AnnualTarget.
func Target(in TargetInput) (models.AnnualTarget, error) {
	if err := Struct(in); err != nil {
		return models.AnnualTarget{}, err
	}
	t := models.AnnualTarget{
		FiscalYear:  in.FiscalYear,
		Grade:       models.Grade(in.Grade),
		Mode:        constants.PlanMode(in.Mode),
		AnnualUnits: in.AnnualUnits,
		Note:        in.Note,
	}
	if t.Mode == "" && len(in.Monthly) > 0 {
		t.Mode = constants.PlanModeMonthly
	}
	if len(in.Monthly) > 0 {
		monthly := models.MonthlyUnits{}
		for m, u := range in.Monthly {
			monthly.Set(time.Month(m), u)
		}
		t.MonthlyUnits = &monthly
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return models.AnnualTarget{}, err
	}
	return t, nil
}

// ExceptionInput is a manual session correction as entered by the user.
type ExceptionInput struct {
	Date   string  `json:"date" validate:"required,datetime=2006-01-02"`
	Grade  int     `json:"grade" validate:"gte=1,lte=6"`
	Delta  float64 `json:"delta" validate:"ne=0,whole"`
	Reason string  `json:"reason" validate:"max=200"`
	Note   string  `json:"note" validate:"max=500"`
}

// Exception validates in and builds a new exception row with a fresh id.
func Exception(in ExceptionInput, now time.Time) (models.Exception, error) {
	if err := Struct(in); err != nil {
		return models.Exception{}, err
	}
	d, err := utils.ParseDate(in.Date)
	if err != nil {
		return models.Exception{}, errs.Validation("date must be YYYY-MM-DD")
	}
	return models.Exception{
		ID:            uuid.New().String(),
		Date:          d,
		Grade:         models.Grade(in.Grade),
		DeltaSessions: in.Delta,
		Reason:        strings.TrimSpace(in.Reason),
		Note:          strings.TrimSpace(in.Note),
		CreatedAt:     now.UTC().Format(constants.TimestampFormat),
	}, nil
}

// PlanRange is the optional period and weekday selection of a plan run.
type PlanRange struct {
	Start     string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End       string `json:"end" validate:"omitempty,datetime=2006-01-02"`
	WeekStart string `json:"week-start" validate:"omitempty,datetime=2006-01-02,monday"`
	Weekdays  string `json:"weekdays" validate:"omitempty,weekdays"`
}

// Range validates r. Empty fields stay zero.
func Range(r PlanRange) error {
	return Struct(r)
}

// Weekdays parses an explicit weekday selection; an empty selection is an error.
func Weekdays(s string) (models.WeekdaySet, error) {
	set, err := models.ParseWeekdays(s)
	if err != nil {
		return 0, errs.Validation("%v", err)
	}
	if set.IsEmpty() {
		return 0, errs.Validation("at least one weekday must be selected")
	}
	return set, nil
}
