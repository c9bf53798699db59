package models

import "time"

// WeeklyAvailabilityRule is a technician's recurring work window for one weekday.
// At most one rule exists per (technician, day_of_week); day_of_week follows
// time.Weekday numbering, Sunday = 0.
type WeeklyAvailabilityRule struct {
	ID           string    `db:"id" json:"id"`
	TechnicianID string    `db:"technician_id" json:"technician_id"`
	DayOfWeek    int       `db:"day_of_week" json:"day_of_week"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	IsAvailable  bool      `db:"is_available" json:"is_available"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
