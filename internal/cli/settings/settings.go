package settings

import (
	"sort"

	"github.com/julianstephens/komaplan/internal/cli"
	"github.com/julianstephens/komaplan/internal/validation"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Start    *string `help:"Plan period start (YYYY-MM-DD); empty clears it."`
	End      *string `help:"Plan period end (YYYY-MM-DD); empty clears it."`
	Weekdays *string `help:"Instructional weekdays, e.g. 1,3,5 or mon,wed,fri."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Session.Settings()
	if err != nil {
		return err
	}

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  Plan Start:        %s\n", orDash(settings.PlanStart))
		ctx.Printf("  Plan End:          %s\n", orDash(settings.PlanEnd))
		ctx.Printf("  Weekdays:          %s\n", settings.Weekdays.OrDefault().String())
		ctx.Printf("  Last Generated:    %s\n", orDash(settings.LastGeneratedAt))
		ctx.Printf("  Last Plan Rows:    %d\n", settings.LastPlanCount)
		ctx.Printf("  Schema Version:    %s\n", settings.SchemaVersion)
		if len(settings.PlanStates) > 0 {
			ctx.Println("\nPlan States:")
			fys := make([]int, 0, len(settings.PlanStates))
			for fy := range settings.PlanStates {
				fys = append(fys, fy)
			}
			sort.Ints(fys)
			for _, fy := range fys {
				ctx.Printf("  %d: %s\n", fy, settings.PlanStates[fy])
			}
		}
		return nil
	}

	rangeInput := validation.PlanRange{Start: settings.PlanStart, End: settings.PlanEnd}
	if c.Start != nil {
		rangeInput.Start = *c.Start
	}
	if c.End != nil {
		rangeInput.End = *c.End
	}
	if c.Weekdays != nil {
		rangeInput.Weekdays = *c.Weekdays
	}
	if err := validation.Range(rangeInput); err != nil {
		return err
	}

	updated := false
	if c.Start != nil {
		settings.PlanStart = *c.Start
		updated = true
	}
	if c.End != nil {
		settings.PlanEnd = *c.End
		updated = true
	}
	if c.Weekdays != nil {
		set, err := validation.Weekdays(*c.Weekdays)
		if err != nil {
			return err
		}
		settings.Weekdays = set
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := ctx.Session.SaveSettings(settings); err != nil {
		return err
	}
	ctx.Println("Settings updated successfully.")
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
