package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/ledger"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/rollup"
	"github.com/julianstephens/komaplan/internal/scheduler"
	"github.com/julianstephens/komaplan/internal/utils"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	reserveStyle = cellStyle.Foreground(lipgloss.Color("10"))
	deficitStyle = cellStyle.Foreground(lipgloss.Color("9"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// RenderTotals renders the per-grade totals of a recompute, coloring reserve and deficit rows.
func RenderTotals(totals models.PerGrade[models.GradeTotals]) string {
	t := newTable("Grade", "Planned", "Elapsed", "Delta", "Actual", "Diff", "This week", "Status")
	status := make([]models.TotalsStatus, 0, len(totals))
	for _, g := range totals {
		t.Row(
			g.Grade.String(),
			rollup.FormatUnits(g.Planned),
			rollup.FormatUnits(g.ElapsedPlanned),
			rollup.FormatSignedUnits(g.Delta),
			rollup.FormatUnits(g.Actual),
			rollup.FormatSignedUnits(g.Diff),
			rollup.FormatUnits(g.ThisWeek),
			string(g.Status()),
		)
		status = append(status, g.Status())
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case row >= 0 && row < len(status) && status[row] == models.StatusDeficit:
			return deficitStyle
		case row >= 0 && row < len(status) && status[row] == models.StatusReserve:
			return reserveStyle
		default:
			return cellStyle
		}
	})
	return t.String()
}

// RenderDiagnostics renders the allocation diagnostics per grade.
func RenderDiagnostics(diags models.PerGrade[scheduler.GradeDiagnostics]) string {
	t := newTable("Grade", "Mode", "Days", "Requested", "Assignable", "Dropped", "Assigned", "Unmet months")
	for _, d := range diags {
		unmet := ""
		for i, m := range d.UnmetMonths {
			if i > 0 {
				unmet += ", "
			}
			unmet += m.String()
		}
		t.Row(
			d.Grade.String(),
			string(d.Mode),
			strconv.Itoa(d.Candidates),
			strconv.Itoa(d.Requested),
			strconv.Itoa(d.Assignable),
			strconv.Itoa(d.Dropped),
			strconv.Itoa(d.Assigned),
			unmet,
		)
	}
	return t.String()
}

// RenderTargets renders a fiscal year's targets with monthly columns for monthly-mode grades.
func RenderTargets(set models.TargetSet) string {
	headers := []string{"Grade", "Mode", "Units"}
	for _, m := range models.FiscalMonths() {
		headers = append(headers, fmt.Sprintf("%d月", int(m)))
	}
	headers = append(headers, "Note")

	t := newTable(headers...)
	for _, target := range set.Targets {
		row := []string{target.Grade.String(), string(target.Mode), formatFloat(target.EffectiveUnits())}
		for _, m := range models.FiscalMonths() {
			if target.Mode == constants.PlanModeMonthly && target.MonthlyUnits != nil {
				row = append(row, formatFloat(target.MonthlyUnits.Get(m)))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, target.Note)
		t.Row(row...)
	}
	return t.String()
}

// RenderExceptions renders exception rows; invalid rows show why they are skipped.
func RenderExceptions(rows []models.Exception) string {
	t := newTable("Date", "Grade", "Delta", "Reason", "Note", "Problem")
	for _, ex := range rows {
		date := "?"
		if !ex.Date.IsZero() {
			date = utils.FormatDate(ex.Date)
		}
		t.Row(date, strconv.Itoa(int(ex.Grade)), formatFloat(ex.DeltaSessions), ex.Reason, ex.Note, ledger.Invalid(ex))
	}
	return t.String()
}

// RenderPeriods renders planned sessions per grade for each period in units.
func RenderPeriods(periods []rollup.PeriodTotals) string {
	headers := []string{"Period"}
	for _, g := range models.AllGrades() {
		headers = append(headers, g.String())
	}
	headers = append(headers, "Total")

	t := newTable(headers...)
	for _, p := range periods {
		row := []string{p.Label}
		for _, n := range p.Sessions {
			row = append(row, rollup.FormatUnits(n))
		}
		row = append(row, rollup.FormatUnits(p.Total()))
		t.Row(row...)
	}
	return t.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
