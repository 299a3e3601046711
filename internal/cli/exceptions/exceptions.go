package exceptions

import (
	"sort"

	"github.com/julianstephens/komaplan/internal/cli"
	"github.com/julianstephens/komaplan/internal/ledger"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/rollup"
	"github.com/julianstephens/komaplan/internal/utils"
	"github.com/julianstephens/komaplan/internal/validation"
)

// AddCmd appends a manual correction. Exceptions are never edited in place; add
// an opposite delta to undo one.
type AddCmd struct {
	Date   string  `help:"Date of the correction (YYYY-MM-DD)." required:""`
	Grade  int     `help:"Grade (1-6)." required:""`
	Delta  float64 `help:"Signed sessions to add or remove, e.g. -1." required:""`
	Reason string  `help:"Why the sessions changed."`
	Note   string  `help:"Free-form note."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	ex, err := validation.Exception(validation.ExceptionInput{
		Date:   c.Date,
		Grade:  c.Grade,
		Delta:  c.Delta,
		Reason: c.Reason,
		Note:   c.Note,
	}, ctx.Session.Now())
	if err != nil {
		return err
	}
	if err := ctx.Store.AddException(ex); err != nil {
		return err
	}
	ctx.Printf("Recorded %+d sessions (%s units) for %s on %s.\n",
		int(ex.DeltaSessions), rollup.FormatSignedUnits(int(ex.DeltaSessions)), ex.Grade, utils.FormatDate(ex.Date))
	ctx.Println("Run 'komaplan plan' to refresh the totals.")
	return nil
}

type ListCmd struct {
	FY  int  `help:"Fiscal year (defaults to the current one)." name:"fy"`
	All bool `help:"List every fiscal year, including rows that cannot be applied."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	rows, err := ctx.Store.GetAllExceptions()
	if err != nil {
		return err
	}

	fy := ctx.FiscalYear(c.FY)
	var shown []models.Exception
	for _, ex := range rows {
		if c.All || (!ex.Date.IsZero() && utils.FiscalYearOf(ex.Date) == fy) {
			shown = append(shown, ex)
		}
	}
	sort.SliceStable(shown, func(i, j int) bool { return shown[i].Date.Before(shown[j].Date) })

	if len(shown) == 0 {
		ctx.Println("No exceptions recorded.")
		return nil
	}
	if c.All {
		ctx.Printf("All exceptions (%d):\n", len(shown))
	} else {
		ctx.Printf("Exceptions for fiscal year %d (%d):\n", fy, len(shown))
	}
	ctx.Println(cli.RenderExceptions(shown))

	invalid := 0
	for _, ex := range shown {
		if ledger.Invalid(ex) != "" {
			invalid++
		}
	}
	if invalid > 0 {
		ctx.Printf("%d row(s) cannot be applied and are skipped when totals are computed.\n", invalid)
	}
	return nil
}
