package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/storage"
)

var targetColumns = strings.Join(constants.PlanHeader, ", ")

func (s *Store) GetTargets(fiscalYear int) (models.TargetSet, bool, error) {
	rows, err := s.db.Query("SELECT "+targetColumns+" FROM annual_targets WHERE fiscal_year = ? ORDER BY grade", fiscalYear)
	if err != nil {
		return models.TargetSet{}, false, err
	}
	defer rows.Close()

	var stored []models.AnnualTarget
	for rows.Next() {
		var (
			fy, grade  int
			mode, note string
			annual     float64
			monthly    models.MonthlyUnits
		)
		dest := []interface{}{&fy, &grade, &mode, &annual}
		for i := range monthly {
			dest = append(dest, &monthly[i])
		}
		dest = append(dest, &note)
		if err := rows.Scan(dest...); err != nil {
			return models.TargetSet{}, false, err
		}
		stored = append(stored, storage.TargetFromValues(fy, grade, mode, annual, monthly, note))
	}
	if err := rows.Err(); err != nil {
		return models.TargetSet{}, false, err
	}
	if len(stored) == 0 {
		return models.TargetSet{}, false, nil
	}
	return storage.CompleteTargetSet(fiscalYear, stored), true, nil
}

// SaveTargets replaces all six grade rows of the set's fiscal year in one transaction.
func (s *Store) SaveTargets(set models.TargetSet) error {
	if err := set.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM annual_targets WHERE fiscal_year = ?", set.FiscalYear); err != nil {
		return fmt.Errorf("failed to clear targets: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", constants.PlanTableColumns+1), ", ")
	stmt, err := tx.Prepare("INSERT INTO annual_targets (" + targetColumns + ", updated_at) VALUES (" + placeholders + ")")
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(constants.TimestampFormat)
	for _, t := range set.Targets {
		args := append(storage.TargetValues(t), now)
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to save target for grade %d: %w", t.Grade, err)
		}
	}
	return tx.Commit()
}
