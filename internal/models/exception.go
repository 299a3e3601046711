package models

import "time"

// Exception is a signed manual correction to the sessions of one date and grade.
// Rows read back from a store may be malformed: a zero Date means the date was
// missing or unparseable and a NaN delta means the cell was not numeric.
type Exception struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	Grade         Grade     `json:"grade"`
	DeltaSessions float64   `json:"delta_sessions"`
	Reason        string    `json:"reason,omitempty"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     string    `json:"created_at,omitempty"`
	// Row is the source row number for stores that have one (workbook), else 0.
	Row int `json:"-"`
}
