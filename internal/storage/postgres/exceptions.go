package postgres

import (
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/storage"
)

func (s *Store) AddException(ex models.Exception) error {
	_, err := s.db.Exec(`
		INSERT INTO exceptions (id, date, grade, delta_sessions, reason, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ex.ID, storage.FormatStoredDate(ex.Date), int(ex.Grade), ex.DeltaSessions, ex.Reason, ex.Note, ex.CreatedAt,
	)
	return err
}

func (s *Store) GetAllExceptions() ([]models.Exception, error) {
	rows, err := s.db.Query("SELECT id, date, grade, delta_sessions, reason, note, created_at FROM exceptions ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Exception
	for rows.Next() {
		var (
			ex    models.Exception
			date  string
			grade int
		)
		if err := rows.Scan(&ex.ID, &date, &grade, &ex.DeltaSessions, &ex.Reason, &ex.Note, &ex.CreatedAt); err != nil {
			return nil, err
		}
		ex.Date = storage.ParseStoredDate(date)
		ex.Grade = models.Grade(grade)
		out = append(out, ex)
	}
	return out, rows.Err()
}
