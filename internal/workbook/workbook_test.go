package workbook

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/komaplan/internal/config"
	errs "github.com/julianstephens/komaplan/internal/errors"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newScheduleFile(t *testing.T, sheet string, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		r := row
		if err := f.SetSheetRow(sheet, cellName(1, i+1), &r); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func TestParseCellDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-04-10", day(2025, 4, 10)},
		{"2025/4/10", day(2025, 4, 10)},
		{"45757", day(2025, 4, 10)},
		{"45757.5", day(2025, 4, 10)},
		{"", time.Time{}},
		{"soon", time.Time{}},
		{"-3", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseCellDate(tt.in); !got.Equal(tt.want) {
				t.Errorf("ParseCellDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestScheduleRows(t *testing.T) {
	cfg := config.Default().Schedule
	f := newScheduleFile(t, cfg.Sheet, [][]interface{}{
		{"date", "grade", "p1", "p2"},
		{"2025-04-07", 1, "x"},
		{45755, "2年", "", "o"},
		{"2025-04-09", "3年生"},
		{"bad date", 1, "x"},
		{"2025-04-10", "seventh", "x"},
		{},
		{"2025-05-01", 1, "x"},
	})
	defer f.Close()

	rows, err := NewScheduleReader(f, cfg).ScheduleRows(day(2025, 4, 1), day(2025, 4, 30))
	if err != nil {
		t.Fatalf("ScheduleRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %+v, want 3", rows)
	}
	if !rows[1].Date.Equal(day(2025, 4, 8)) || rows[1].Grade != 2 || !rows[1].HasMarker() {
		t.Errorf("serial row = %+v", rows[1])
	}
	if rows[2].Grade != 3 || rows[2].HasMarker() {
		t.Errorf("row without markers = %+v", rows[2])
	}
}

func TestScheduleRowsMissingSheet(t *testing.T) {
	cfg := config.Default().Schedule
	f := newScheduleFile(t, "OTHER", nil)
	defer f.Close()

	_, err := NewScheduleReader(f, cfg).ScheduleRows(day(2025, 4, 1), day(2025, 4, 30))
	if !errs.IsUnavailable(err) {
		t.Errorf("err = %v, want unavailable", err)
	}
}

func TestOpenScheduleMissingFile(t *testing.T) {
	cfg := config.Default().Schedule
	cfg.Path = filepath.Join(t.TempDir(), "nope.xlsx")
	if _, err := OpenSchedule(cfg); !errs.IsUnavailable(err) {
		t.Errorf("err = %v, want unavailable", err)
	}
}

func sampleReport() Report {
	var totals models.PerGrade[models.GradeTotals]
	for _, g := range models.AllGrades() {
		totals.Set(g, models.GradeTotals{Grade: g, ElapsedPlanned: 6, Actual: 4, Diff: -2})
	}
	base := day(2025, 4, 12)
	plan := models.DailyPlan{FiscalYear: 2025, BaseDate: base}
	for _, d := range []time.Time{day(2025, 4, 7), day(2025, 4, 9), day(2025, 4, 14), day(2025, 4, 2)} {
		for _, g := range models.AllGrades() {
			sessions := 0
			if g == 1 {
				sessions = 1
			}
			plan.Entries = append(plan.Entries, models.DailyPlanEntry{Date: d, Grade: g, Sessions: sessions, Elapsed: !d.After(base)})
		}
	}
	return Report{Plan: plan, Totals: totals}
}

func TestWriteToCumulativeAndSchedule(t *testing.T) {
	cfg := config.Default()
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet(cfg.Report.CumulativeSheet); err != nil {
		t.Fatal(err)
	}
	if _, err := f.NewSheet(cfg.Report.ScheduleSheet); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue(cfg.Report.ScheduleSheet, "Z99", "stale"); err != nil {
		t.Fatal(err)
	}

	w := NewReportWriter(cfg)
	if err := w.WriteTo(f, sampleReport()); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	cum := cfg.Report.CumulativeSheet
	if v, _ := f.GetCellValue(cum, "B2"); v != "2" {
		t.Errorf("planned units = %q, want 2", v)
	}
	if v, _ := f.GetCellValue(cum, "E7"); v != "1 1/3 (-2/3)" {
		t.Errorf("grade 6 display = %q", v)
	}
	if visible, _ := f.GetColVisible(cum, "C"); visible {
		t.Error("value columns should be hidden")
	}
	if visible, _ := f.GetColVisible(cum, "E"); !visible {
		t.Error("display column should stay visible")
	}

	sched := cfg.Report.ScheduleSheet
	if v, _ := f.GetCellValue(sched, "Z99"); v != "" {
		t.Errorf("schedule sheet not recreated, Z99 = %q", v)
	}
	rows, err := f.GetRows(sched)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Fatalf("schedule rows = %d, want header + 4", len(rows))
	}
	// 2025-04-02 sorts first and is in the first cycle.
	want := [][]string{
		{"2025-04-02", "水", "W1", "1", "0", "0", "0", "0", "0", "済"},
		{"2025-04-07", "月", "W2", "1", "0", "0", "0", "0", "0", "今週"},
		{"2025-04-09", "水", "W2", "1", "0", "0", "0", "0", "0", "今週"},
		{"2025-04-14", "月", "W3", "1", "0", "0", "0", "0", "0"},
	}
	for i, w := range want {
		got := rows[i+1]
		for j := range w {
			if j >= len(got) || got[j] != w[j] {
				t.Errorf("row %d = %v, want %v", i+2, got, w)
				break
			}
		}
	}
}

func TestWriteToMissingCumulativeSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	err := NewReportWriter(config.Default()).WriteTo(f, sampleReport())
	if !errs.IsUnavailable(err) {
		t.Errorf("err = %v, want unavailable", err)
	}
}

func TestWriteSavesWorkbook(t *testing.T) {
	cfg := config.Default()
	path := filepath.Join(t.TempDir(), "report.xlsx")
	cfg.Report.Path = path

	if err := NewReportWriter(cfg).Write(sampleReport()); !errs.IsUnavailable(err) {
		t.Fatalf("missing workbook err = %v, want unavailable", err)
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet(cfg.Report.CumulativeSheet); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := NewReportWriter(cfg).Write(sampleReport()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	saved, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer saved.Close()
	if idx, _ := saved.GetSheetIndex(cfg.Report.ScheduleSheet); idx < 0 {
		t.Error("schedule sheet not saved")
	}
}

func TestStyleHeaderFailureIsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger.UseWriter(&buf, log.InfoLevel)
	defer func() { logger.Logger = nil }()

	f := excelize.NewFile()
	defer f.Close()
	w := NewReportWriter(config.Default())
	w.styleHeader(f, "NoSuchSheet", 3)

	out := buf.String()
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "Could not style schedule header") {
		t.Errorf("expected schedule header warning, got %q", out)
	}
}
