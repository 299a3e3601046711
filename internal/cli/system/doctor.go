package system

import (
	"fmt"

	"github.com/julianstephens/komaplan/internal/cli"
	"github.com/julianstephens/komaplan/internal/planner"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	for _, check := range ctx.Session.Doctor() {
		switch check.Status {
		case planner.CheckOK:
			ctx.Printf("✓ %s: OK (%s)\n", check.Name, check.Detail)
		case planner.CheckWarn:
			ctx.Printf("⚠ %s: WARNING\n   %s\n", check.Name, check.Detail)
		case planner.CheckSkipped:
			ctx.Printf("⊘ %s: SKIPPED (%s)\n", check.Name, check.Detail)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %s\n", check.Name, check.Detail)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}
