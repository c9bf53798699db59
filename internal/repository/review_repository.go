package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ReviewRepository aggregates approved review statistics per technician and
// service. Only approved reviews feed the ranking signal.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs a ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ServiceAverageRating returns the technician's mean approved rating for jobs
// of the given service. Returns 0 when the technician has no approved reviews
// for that service.
func (r *ReviewRepository) ServiceAverageRating(ctx context.Context, technicianID, serviceID string) (float64, error) {
	const query = `SELECT COALESCE(AVG(r.rating), 0) FROM reviews r
		JOIN bookings b ON b.id = r.booking_id
		WHERE r.technician_id = $1 AND r.status = 'approved' AND b.service_id = $2`

	var avg float64
	if err := r.db.GetContext(ctx, &avg, query, technicianID, serviceID); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("service average rating: %w", err)
	}
	return avg, nil
}

// ServiceReviewCount returns how many approved reviews back the technician's
// average for the given service.
func (r *ReviewRepository) ServiceReviewCount(ctx context.Context, technicianID, serviceID string) (int, error) {
	const query = `SELECT COUNT(*) FROM reviews r
		JOIN bookings b ON b.id = r.booking_id
		WHERE r.technician_id = $1 AND r.status = 'approved' AND b.service_id = $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, technicianID, serviceID); err != nil {
		return 0, fmt.Errorf("service review count: %w", err)
	}
	return count, nil
}
