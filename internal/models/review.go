package models

import "time"

// ReviewStatus enumerates moderation states for customer reviews.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// Review is a customer rating of a completed booking. Ratings are on a 1-5 scale.
type Review struct {
	ID           string       `db:"id" json:"id"`
	BookingID    string       `db:"booking_id" json:"booking_id"`
	TechnicianID string       `db:"technician_id" json:"technician_id"`
	CustomerID   string       `db:"customer_id" json:"customer_id"`
	Rating       int          `db:"rating" json:"rating"`
	Comment      *string      `db:"comment" json:"comment,omitempty"`
	Status       ReviewStatus `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}
