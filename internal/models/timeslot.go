package models

import "time"

// Timeslot is a named, platform-wide time window customers book against.
// Start and end times are HH:MM strings.
type Timeslot struct {
	ID           string    `db:"id" json:"id"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	DisplayLabel string    `db:"display_label" json:"display_label"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
