package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fieldserve/booking-api/internal/models"
)

// BookingRepository provides the read-only booking queries the scheduling core
// depends on. Booking creation lives in the booking workflow, not here.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ListBlocking returns ids of technicians occupied on the date. A booking
// blocks for every calendar day in [scheduled_date, scheduled_end_date]
// (single day when the end date is null) unless it is cancelled or completed.
// When timeslotID is non-empty only bookings in that timeslot block.
func (r *BookingRepository) ListBlocking(ctx context.Context, date time.Time, timeslotID string) ([]string, error) {
	query := `SELECT DISTINCT technician_id FROM bookings
		WHERE status NOT IN ('cancelled', 'completed')
		AND $1::date BETWEEN scheduled_date AND COALESCE(scheduled_end_date, scheduled_date)`
	args := []interface{}{date.Format("2006-01-02")}
	if timeslotID != "" {
		query += " AND timeslot_id = $2"
		args = append(args, timeslotID)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list blocking bookings: %w", err)
	}
	return ids, nil
}

// DailyJobCounts returns the number of non-cancelled bookings per technician
// whose scheduled_date is the given date.
func (r *BookingRepository) DailyJobCounts(ctx context.Context, date time.Time) (map[string]int, error) {
	const query = `SELECT technician_id, COUNT(*) AS job_count FROM bookings
		WHERE status <> 'cancelled' AND scheduled_date = $1::date
		GROUP BY technician_id`

	rows := []struct {
		TechnicianID string `db:"technician_id"`
		JobCount     int    `db:"job_count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, date.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("daily job counts: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.TechnicianID] = row.JobCount
	}
	return counts, nil
}

// ListByTechnicianSpan returns a technician's blocking bookings that touch the
// inclusive date span, ordered by start date.
func (r *BookingRepository) ListByTechnicianSpan(ctx context.Context, technicianID string, start, end time.Time) ([]models.Booking, error) {
	const query = `SELECT id, customer_id, technician_id, service_id, timeslot_id, scheduled_date, scheduled_end_date, status, created_at, updated_at
		FROM bookings
		WHERE technician_id = $1
		AND status NOT IN ('cancelled', 'completed')
		AND scheduled_date <= $3::date
		AND COALESCE(scheduled_end_date, scheduled_date) >= $2::date
		ORDER BY scheduled_date ASC`

	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, technicianID, start.Format("2006-01-02"), end.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list bookings for technician span: %w", err)
	}
	return bookings, nil
}
