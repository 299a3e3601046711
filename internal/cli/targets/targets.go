package targets

import (
	"strconv"
	"strings"

	"github.com/julianstephens/komaplan/internal/cli"
	"github.com/julianstephens/komaplan/internal/constants"
	errs "github.com/julianstephens/komaplan/internal/errors"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/validation"
)

type ShowCmd struct {
	FY int `help:"Fiscal year (defaults to the current one)." name:"fy"`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	fy := ctx.FiscalYear(c.FY)
	set, err := ctx.Session.EnsureTargets(fy)
	if err != nil {
		return err
	}
	ctx.Printf("Targets for fiscal year %d (units of %d sessions):\n", fy, constants.SessionsPerUnit)
	ctx.Println(cli.RenderTargets(set))
	return nil
}

type SetCmd struct {
	FY      int      `help:"Fiscal year (defaults to the current one)." name:"fy"`
	Grade   int      `help:"Grade (1-6)." required:""`
	Units   *float64 `help:"Annual units (45-minute units)." xor:"amount"`
	Monthly string   `help:"Monthly units, e.g. 4=3,5=3,6=2." xor:"amount"`
	Note    *string  `help:"Free-form note."`
}

func (c *SetCmd) Run(ctx *cli.Context) error {
	if c.Units == nil && c.Monthly == "" {
		return errs.Validation("one of --units or --monthly is required")
	}
	fy := ctx.FiscalYear(c.FY)

	in := validation.TargetInput{FiscalYear: fy, Grade: c.Grade}
	if c.Units != nil {
		in.Mode = string(constants.PlanModeAnnual)
		in.AnnualUnits = *c.Units
	} else {
		monthly, err := ParseMonthly(c.Monthly)
		if err != nil {
			return err
		}
		in.Mode = string(constants.PlanModeMonthly)
		in.Monthly = monthly
	}

	set, err := ctx.Session.EnsureTargets(fy)
	if err != nil {
		return err
	}
	if c.Note != nil {
		in.Note = *c.Note
	} else if models.Grade(c.Grade).Valid() {
		in.Note = set.Targets.Get(models.Grade(c.Grade)).Note
	}

	target, err := validation.Target(in)
	if err != nil {
		return err
	}
	set.Targets.Set(target.Grade, target)
	if err := ctx.Store.SaveTargets(set); err != nil {
		return err
	}
	ctx.Printf("Grade %d target for fiscal year %d set to %s units.\n", c.Grade, fy, strconv.FormatFloat(target.EffectiveUnits(), 'f', -1, 64))
	ctx.Println("Run 'komaplan plan' to recompute the schedule.")
	return nil
}

// ParseMonthly parses "4=3,5=2.5" into month -> units.
func ParseMonthly(s string) (map[int]float64, error) {
	out := map[int]float64{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		month, units, ok := strings.Cut(part, "=")
		if !ok {
			return nil, errs.Validation("monthly entry %q must look like MONTH=UNITS", part)
		}
		m, err := strconv.Atoi(strings.TrimSpace(month))
		if err != nil || m < 1 || m > 12 {
			return nil, errs.Validation("invalid month %q", month)
		}
		u, err := strconv.ParseFloat(strings.TrimSpace(units), 64)
		if err != nil {
			return nil, errs.Validation("invalid units %q for month %d", units, m)
		}
		out[m] = u
	}
	if len(out) == 0 {
		return nil, errs.Validation("no monthly units given")
	}
	return out, nil
}
