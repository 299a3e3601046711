package workbook

import (
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/komaplan/internal/calendar"
	"github.com/julianstephens/komaplan/internal/config"
	errs "github.com/julianstephens/komaplan/internal/errors"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/utils"
)

// ScheduleReader is a calendar.Source over one sheet of the annual schedule
// workbook: a date column, a grade column and marker columns to the right.
type ScheduleReader struct {
	f     *excelize.File
	cfg   config.ScheduleConfig
	owned bool
}

var _ calendar.Source = (*ScheduleReader)(nil)

// OpenSchedule opens the workbook named in cfg. A missing file is reported as
// an unavailable collaborator.
func OpenSchedule(cfg config.ScheduleConfig) (*ScheduleReader, error) {
	if cfg.Path == "" {
		return nil, errs.Unavailable("no schedule workbook configured (schedule.path)")
	}
	path, err := utils.ExpandPath(cfg.Path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errs.Unavailable("schedule workbook %s not found", path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule workbook: %w", err)
	}
	return &ScheduleReader{f: f, cfg: cfg, owned: true}, nil
}

// NewScheduleReader reads from an already open workbook, which the caller keeps ownership of.
func NewScheduleReader(f *excelize.File, cfg config.ScheduleConfig) *ScheduleReader {
	return &ScheduleReader{f: f, cfg: cfg}
}

func (r *ScheduleReader) Close() error {
	if r.owned && r.f != nil {
		err := r.f.Close()
		r.f = nil
		return err
	}
	return nil
}

// ScheduleRows reads the whole sheet once and returns the rows dated in [start, end].
// Rows with an unreadable date or grade are skipped.
func (r *ScheduleReader) ScheduleRows(start, end time.Time) ([]calendar.ScheduleRow, error) {
	idx, err := r.f.GetSheetIndex(r.cfg.Sheet)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, errs.Unavailable("schedule sheet %q not found", r.cfg.Sheet)
	}
	rows, err := r.f.GetRows(r.cfg.Sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule sheet: %w", err)
	}

	start, end = utils.Day(start), utils.Day(end)
	var out []calendar.ScheduleRow
	skipped := 0
	for i := r.cfg.HeaderRows; i < len(rows); i++ {
		row := rows[i]
		rawDate := cellAt(row, r.cfg.DateColumn)
		if rawDate == "" {
			continue
		}
		d := ParseCellDate(rawDate)
		if d.IsZero() {
			skipped++
			logger.Debug("Skipping schedule row with unreadable date", "row", i+1, "value", rawDate)
			continue
		}
		if d.Before(start) || d.After(end) {
			continue
		}
		g, err := models.ParseGrade(cellAt(row, r.cfg.GradeColumn))
		if err != nil {
			skipped++
			logger.Debug("Skipping schedule row with unreadable grade", "row", i+1, "error", err)
			continue
		}
		var markers []string
		if r.cfg.MarkerStartColumn >= 1 && len(row) >= r.cfg.MarkerStartColumn {
			markers = append(markers, row[r.cfg.MarkerStartColumn-1:]...)
		}
		out = append(out, calendar.ScheduleRow{Date: d, Grade: g, Markers: markers})
	}
	if skipped > 0 {
		logger.Warn("Skipped unreadable schedule rows", "sheet", r.cfg.Sheet, "count", skipped)
	}
	return out, nil
}
