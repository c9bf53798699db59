package models

import "time"

// BookingStatus enumerates the lifecycle states of a booking.
type BookingStatus string

const (
	BookingStatusPending         BookingStatus = "pending"
	BookingStatusConfirmed       BookingStatus = "confirmed"
	BookingStatusInProgress      BookingStatus = "in_progress"
	BookingStatusCompleted       BookingStatus = "completed"
	BookingStatusCancelled       BookingStatus = "cancelled"
	BookingStatusCancelRequested BookingStatus = "cancel_requested"
)

// Booking is the read model for an existing job. The scheduling core never
// mutates bookings; it only consumes them to derive availability.
type Booking struct {
	ID               string        `db:"id" json:"id"`
	CustomerID       string        `db:"customer_id" json:"customer_id"`
	TechnicianID     string        `db:"technician_id" json:"technician_id"`
	ServiceID        string        `db:"service_id" json:"service_id"`
	TimeslotID       string        `db:"timeslot_id" json:"timeslot_id"`
	ScheduledDate    time.Time     `db:"scheduled_date" json:"scheduled_date"`
	ScheduledEndDate *time.Time    `db:"scheduled_end_date" json:"scheduled_end_date,omitempty"`
	Status           BookingStatus `db:"status" json:"status"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// Blocks reports whether the booking still occupies its technician's slot.
func (b *Booking) Blocks() bool {
	return b.Status != BookingStatusCancelled && b.Status != BookingStatusCompleted
}

// CountsTowardDailyLoad reports whether the booking consumes daily capacity.
func (b *Booking) CountsTowardDailyLoad() bool {
	return b.Status != BookingStatusCancelled
}
