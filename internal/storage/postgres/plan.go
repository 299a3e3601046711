package postgres

import (
	"fmt"

	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/storage"
	"github.com/julianstephens/komaplan/internal/utils"
)

func (s *Store) ReplaceDailyPlan(fiscalYear int, entries []models.DailyPlanEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM daily_plan WHERE fiscal_year = $1", fiscalYear); err != nil {
		return fmt.Errorf("failed to clear daily plan: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO daily_plan (fiscal_year, date, grade, week_key, sessions, elapsed)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(fiscalYear, utils.FormatDate(e.Date), int(e.Grade), utils.FormatDate(e.WeekKey), e.Sessions, e.Elapsed); err != nil {
			return fmt.Errorf("failed to write plan row %s g%d: %w", utils.FormatDate(e.Date), e.Grade, err)
		}
	}
	return tx.Commit()
}

func (s *Store) GetDailyPlan(fiscalYear int) ([]models.DailyPlanEntry, error) {
	rows, err := s.db.Query(`
		SELECT date, grade, week_key, sessions, elapsed
		FROM daily_plan WHERE fiscal_year = $1 ORDER BY date, grade`, fiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DailyPlanEntry
	for rows.Next() {
		var (
			date, week      string
			grade, sessions int
			elapsed         bool
		)
		if err := rows.Scan(&date, &grade, &week, &sessions, &elapsed); err != nil {
			return nil, err
		}
		out = append(out, models.DailyPlanEntry{
			Date:       storage.ParseStoredDate(date),
			FiscalYear: fiscalYear,
			WeekKey:    storage.ParseStoredDate(week),
			Grade:      models.Grade(grade),
			Sessions:   sessions,
			Elapsed:    elapsed,
		})
	}
	return out, rows.Err()
}
