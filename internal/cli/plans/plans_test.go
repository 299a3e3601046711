package plans

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/komaplan/internal/calendar"
	"github.com/julianstephens/komaplan/internal/cli"
	"github.com/julianstephens/komaplan/internal/config"
	"github.com/julianstephens/komaplan/internal/constants"
	errs "github.com/julianstephens/komaplan/internal/errors"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/storage/sqlite"
)

type staticSource []calendar.ScheduleRow

func (s staticSource) ScheduleRows(start, end time.Time) ([]calendar.ScheduleRow, error) {
	return s, nil
}

// Mon/Wed/Fri of the four weeks starting 2025-04-07 for every grade.
func fourWeeks() staticSource {
	var rows staticSource
	monday := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	for w := 0; w < 4; w++ {
		for _, off := range []int{0, 2, 4} {
			for _, g := range models.AllGrades() {
				rows = append(rows, calendar.ScheduleRow{Date: monday.AddDate(0, 0, 7*w+off), Grade: g, Markers: []string{"o"}})
			}
		}
	}
	return rows
}

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer, func()) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	cfg := config.Default()
	cfg.DefaultAnnualUnits = 4

	ctx := cli.NewContext(store, cfg)
	ctx.Session.Source = fourWeeks()
	ctx.Session.Now = func() time.Time { return time.Date(2025, 4, 16, 9, 0, 0, 0, time.UTC) }
	var out bytes.Buffer
	ctx.Out = &out
	return ctx, &out, func() { store.Close() }
}

func TestRunCmd(t *testing.T) {
	ctx, out, cleanup := setupTestContext(t)
	defer cleanup()

	cmd := &RunCmd{Start: "2025-04-07", End: "2025-05-02", NoReport: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("RunCmd.Run() error = %v", err)
	}
	for _, want := range []string{"Fiscal year 2025", "base date 2025-04-19", "72 plan rows", "State: " + string(constants.PlanStatePlanned), "not written"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := cmd.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "State: "+string(constants.PlanStateRecomputed)) {
		t.Errorf("second run output = %q", out.String())
	}
}

func TestRunCmdValidation(t *testing.T) {
	tests := []struct {
		name string
		cmd  RunCmd
	}{
		{"bad base", RunCmd{Base: "04/19/2025"}},
		{"base with week start", RunCmd{Base: "2025-04-19", WeekStart: "2025-04-14"}},
		{"week start not monday", RunCmd{WeekStart: "2025-04-15"}},
		{"bad weekdays", RunCmd{Weekdays: "1,9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, cleanup := setupTestContext(t)
			defer cleanup()

			if err := tt.cmd.Run(ctx); !errs.IsValidation(err) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if entries, _ := ctx.Store.GetDailyPlan(2025); len(entries) != 0 {
				t.Error("plan written despite validation error")
			}
		})
	}
}

func TestShowCmd(t *testing.T) {
	ctx, out, cleanup := setupTestContext(t)
	defer cleanup()

	if err := (&ShowCmd{FY: 2025, By: "week"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No plan stored") {
		t.Errorf("empty output = %q", out.String())
	}

	if err := (&RunCmd{Start: "2025-04-07", End: "2025-05-02", NoReport: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		by   string
		want []string
	}{
		{"week", []string{"2025-04-07", "2025-04-14", "2025-04-21", "2025-04-28"}},
		{"month", []string{"2025-04", "2025-05"}},
		{"day", []string{"2025-04-07", "2025-05-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.by, func(t *testing.T) {
			out.Reset()
			if err := (&ShowCmd{FY: 2025, By: tt.by}).Run(ctx); err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("by %s output missing %s:\n%s", tt.by, want, out.String())
				}
			}
		})
	}
}
