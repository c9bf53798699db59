package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fieldserve/booking-api/internal/models"
)

// TimeslotRepository manages persistence for timeslots.
type TimeslotRepository struct {
	db *sqlx.DB
}

// NewTimeslotRepository constructs a TimeslotRepository.
func NewTimeslotRepository(db *sqlx.DB) *TimeslotRepository {
	return &TimeslotRepository{db: db}
}

const timeslotColumns = "id, start_time, end_time, display_label, created_at, updated_at"

// ListOrdered returns all timeslots ordered by start time.
func (r *TimeslotRepository) ListOrdered(ctx context.Context) ([]models.Timeslot, error) {
	query := fmt.Sprintf("SELECT %s FROM timeslots ORDER BY start_time ASC", timeslotColumns)
	var slots []models.Timeslot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list timeslots: %w", err)
	}
	return slots, nil
}

// FindByID fetches a timeslot by ID.
func (r *TimeslotRepository) FindByID(ctx context.Context, id string) (*models.Timeslot, error) {
	query := fmt.Sprintf("SELECT %s FROM timeslots WHERE id = $1", timeslotColumns)
	var slot models.Timeslot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create inserts a new timeslot.
func (r *TimeslotRepository) Create(ctx context.Context, slot *models.Timeslot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO timeslots (id, start_time, end_time, display_label, created_at, updated_at)
		VALUES (:id, :start_time, :end_time, :display_label, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create timeslot: %w", err)
	}
	return nil
}

// Update modifies an existing timeslot.
func (r *TimeslotRepository) Update(ctx context.Context, slot *models.Timeslot) error {
	slot.UpdatedAt = time.Now().UTC()

	const query = `UPDATE timeslots
		SET start_time = :start_time, end_time = :end_time, display_label = :display_label, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update timeslot: %w", err)
	}
	return nil
}
