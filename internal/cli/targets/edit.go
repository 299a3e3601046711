package targets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/komaplan/internal/cli"
	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/validation"
)

// EditCmd edits the annual units of all six grades in one form.
type EditCmd struct {
	FY         int  `help:"Fiscal year (defaults to the current one)." name:"fy"`
	Accessible bool `help:"Use plain prompts instead of the interactive form."`
}

// gradeFields holds the form values of one grade.
type gradeFields struct {
	Units string
	Note  string
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	fy := ctx.FiscalYear(c.FY)
	set, err := ctx.Session.EnsureTargets(fy)
	if err != nil {
		return err
	}

	fields := fieldsFromSet(set)
	if err := newTargetForm(set, &fields).WithAccessible(c.Accessible).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			ctx.Println("Edit cancelled.")
			return nil
		}
		return err
	}

	if err := applyFields(&set, fields); err != nil {
		return err
	}
	if err := ctx.Store.SaveTargets(set); err != nil {
		return err
	}
	ctx.Printf("Targets for fiscal year %d saved.\n", fy)
	ctx.Println(cli.RenderTargets(set))
	return nil
}

func fieldsFromSet(set models.TargetSet) models.PerGrade[gradeFields] {
	var fields models.PerGrade[gradeFields]
	for _, t := range set.Targets {
		fields.Set(t.Grade, gradeFields{
			Units: strconv.FormatFloat(t.EffectiveUnits(), 'f', -1, 64),
			Note:  t.Note,
		})
	}
	return fields
}

// newTargetForm builds one group per grade. Monthly-mode grades only get a note field.
func newTargetForm(set models.TargetSet, fields *models.PerGrade[gradeFields]) *huh.Form {
	var groups []*huh.Group
	for i := range fields {
		t := set.Targets[i]
		f := &fields[i]
		var inputs []huh.Field
		if t.Mode == constants.PlanModeMonthly {
			inputs = append(inputs, huh.NewNote().
				Title(fmt.Sprintf("%s (monthly mode)", t.Grade)).
				Description(fmt.Sprintf("%s units; change months with 'komaplan target set --monthly'", f.Units)))
		} else {
			inputs = append(inputs, huh.NewInput().
				Title(fmt.Sprintf("%s annual units", t.Grade)).
				Value(&f.Units).
				Validate(ValidateUnits))
		}
		inputs = append(inputs, huh.NewInput().
			Title(fmt.Sprintf("%s note", t.Grade)).
			Value(&f.Note).
			CharLimit(200))
		groups = append(groups, huh.NewGroup(inputs...))
	}
	return huh.NewForm(groups...)
}

// ValidateUnits accepts a non-negative number of units.
func ValidateUnits(s string) error {
	u, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("enter a number of units")
	}
	if u < 0 {
		return fmt.Errorf("units must not be negative")
	}
	return nil
}

func applyFields(set *models.TargetSet, fields models.PerGrade[gradeFields]) error {
	for i, f := range fields {
		t := set.Targets[i]
		in := validation.TargetInput{
			FiscalYear: set.FiscalYear,
			Grade:      int(t.Grade),
			Mode:       string(t.Mode),
			Note:       strings.TrimSpace(f.Note),
		}
		if t.Mode == constants.PlanModeMonthly && t.MonthlyUnits != nil {
			in.Monthly = map[int]float64{}
			for _, m := range models.FiscalMonths() {
				in.Monthly[int(m)] = t.MonthlyUnits.Get(m)
			}
		} else {
			u, err := strconv.ParseFloat(strings.TrimSpace(f.Units), 64)
			if err != nil {
				return fmt.Errorf("%s: %w", t.Grade, ValidateUnits(f.Units))
			}
			in.AnnualUnits = u
		}
		target, err := validation.Target(in)
		if err != nil {
			return err
		}
		set.Targets[i] = target
	}
	return nil
}
