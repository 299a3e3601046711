package exceptions

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/komaplan/internal/cli"
	"github.com/julianstephens/komaplan/internal/config"
	errs "github.com/julianstephens/komaplan/internal/errors"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/storage/sqlite"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer, func()) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	ctx := cli.NewContext(store, config.Default())
	ctx.Session.Now = func() time.Time { return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) }
	var out bytes.Buffer
	ctx.Out = &out
	return ctx, &out, func() { store.Close() }
}

func TestAddCmd(t *testing.T) {
	ctx, out, cleanup := setupTestContext(t)
	defer cleanup()

	cmd := &AddCmd{Date: "2025-05-12", Grade: 3, Delta: -2, Reason: "sports day"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("AddCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "-2 sessions (-2/3 units)") {
		t.Errorf("output = %q", out.String())
	}

	rows, err := ctx.Store.GetAllExceptions()
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows = %v, err %v", rows, err)
	}
	ex := rows[0]
	if ex.ID == "" || ex.Grade != 3 || ex.DeltaSessions != -2 || ex.Reason != "sports day" {
		t.Errorf("stored exception = %+v", ex)
	}
	if ex.CreatedAt != "2025-06-02T08:00:00Z" {
		t.Errorf("created at = %q", ex.CreatedAt)
	}
}

func TestAddCmdValidation(t *testing.T) {
	tests := []struct {
		name string
		cmd  AddCmd
	}{
		{"zero delta", AddCmd{Date: "2025-05-12", Grade: 1, Delta: 0}},
		{"fractional delta", AddCmd{Date: "2025-05-12", Grade: 1, Delta: 0.5}},
		{"grade out of range", AddCmd{Date: "2025-05-12", Grade: 0, Delta: 1}},
		{"bad date", AddCmd{Date: "12/05/2025", Grade: 1, Delta: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, cleanup := setupTestContext(t)
			defer cleanup()

			if err := tt.cmd.Run(ctx); !errs.IsValidation(err) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if rows, _ := ctx.Store.GetAllExceptions(); len(rows) != 0 {
				t.Error("exception written despite validation error")
			}
		})
	}
}

func TestListCmdFiltersFiscalYear(t *testing.T) {
	ctx, out, cleanup := setupTestContext(t)
	defer cleanup()

	rows := []models.Exception{
		{ID: "a", Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), Grade: 1, DeltaSessions: 1, Reason: "in-year"},
		{ID: "b", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Grade: 1, DeltaSessions: 1, Reason: "last-year"},
		{ID: "c", Date: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), Grade: 9, DeltaSessions: 1, Reason: "broken"},
	}
	for _, ex := range rows {
		if err := ctx.Store.AddException(ex); err != nil {
			t.Fatal(err)
		}
	}

	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "in-year") || strings.Contains(out.String(), "last-year") {
		t.Errorf("fiscal year filter output = %q", out.String())
	}

	out.Reset()
	if err := (&ListCmd{All: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "last-year") || !strings.Contains(out.String(), "1 row(s) cannot be applied") {
		t.Errorf("--all output = %q", out.String())
	}
}
