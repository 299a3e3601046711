package plans

import (
	"time"

	"github.com/julianstephens/komaplan/internal/cli"
	errs "github.com/julianstephens/komaplan/internal/errors"
	"github.com/julianstephens/komaplan/internal/planner"
	"github.com/julianstephens/komaplan/internal/rollup"
	"github.com/julianstephens/komaplan/internal/utils"
)

// RunCmd regenerates a fiscal year's daily plan, totals and reports.
type RunCmd struct {
	Base      string `help:"Base date (YYYY-MM-DD); defaults to the current or next Saturday."`
	WeekStart string `help:"Monday of the week to report; the base date becomes that week's Saturday." name:"week-start"`
	FY        int    `help:"Fiscal year (defaults to the fiscal year of the base date)." name:"fy"`
	Start     string `help:"Override the plan period start (YYYY-MM-DD)."`
	End       string `help:"Override the plan period end (YYYY-MM-DD)."`
	Weekdays  string `help:"Override instructional weekdays, e.g. 1,3,5."`
	NoReport  bool   `help:"Skip writing the report workbook." name:"no-report"`
}

func (c *RunCmd) Run(ctx *cli.Context) error {
	var base time.Time
	if c.Base != "" {
		d, err := utils.ParseDate(c.Base)
		if err != nil {
			return errs.Validation("base date must be YYYY-MM-DD")
		}
		base = d
	}
	if c.Base != "" && c.WeekStart != "" {
		return errs.Validation("--base and --week-start cannot be combined")
	}

	out, err := ctx.Session.Recompute(planner.Options{
		FiscalYear: c.FY,
		BaseDate:   base,
		WeekStart:  c.WeekStart,
		Start:      c.Start,
		End:        c.End,
		Weekdays:   c.Weekdays,
		SkipReport: c.NoReport,
	})
	if err != nil {
		return err
	}

	ctx.Printf("Fiscal year %d, %s to %s, base date %s (%s)\n",
		out.FiscalYear, utils.FormatDate(out.Start), utils.FormatDate(out.End), utils.FormatDate(out.BaseDate), out.Weekdays)
	ctx.Println(cli.RenderTotals(out.Totals))
	ctx.Println(cli.RenderDiagnostics(out.Diagnostics))
	ctx.Printf("%d plan rows, %d exceptions applied", len(out.Plan.Entries), out.Exceptions.Applied)
	if out.Exceptions.Skipped > 0 {
		ctx.Printf(", %d skipped", out.Exceptions.Skipped)
	}
	ctx.Printf(". State: %s\n", out.State)
	if c.NoReport {
		ctx.Println("Report workbook not written (--no-report).")
	}
	return nil
}

// ShowCmd prints the stored plan without recomputing it.
type ShowCmd struct {
	FY int    `help:"Fiscal year (defaults to the current one)." name:"fy"`
	By string `help:"Group by day, week or month." enum:"day,week,month" default:"week"`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	fy := ctx.FiscalYear(c.FY)
	entries, err := ctx.Store.GetDailyPlan(fy)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ctx.Printf("No plan stored for fiscal year %d. Run 'komaplan plan' first.\n", fy)
		return nil
	}

	var periods []rollup.PeriodTotals
	switch c.By {
	case "day":
		periods = rollup.ByDay(entries)
	case "month":
		periods = rollup.ByMonth(entries)
	default:
		periods = rollup.ByWeek(entries)
	}
	ctx.Printf("Plan for fiscal year %d by %s:\n", fy, c.By)
	ctx.Println(cli.RenderPeriods(periods))
	return nil
}
