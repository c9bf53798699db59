package models

import "time"

// Technician represents a field technician record.
type Technician struct {
	ID            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	FullName      string    `db:"full_name" json:"full_name"`
	Phone         *string   `db:"phone" json:"phone,omitempty"`
	Skills        *string   `db:"skills" json:"skills,omitempty"`
	IsAvailable   bool      `db:"is_available" json:"is_available"`
	RatingAverage float64   `db:"rating_average" json:"rating_average"`
	TotalJobs     int       `db:"total_jobs" json:"total_jobs"`
	CurrentJobs   int       `db:"current_jobs" json:"current_jobs"`
	MaxDailyJobs  int       `db:"max_daily_jobs" json:"max_daily_jobs"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// TechnicianFilter captures filtering options for listing technicians.
type TechnicianFilter struct {
	Search    string
	Available *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
