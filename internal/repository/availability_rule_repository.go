package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fieldserve/booking-api/internal/models"
)

// AvailabilityRuleRepository manages weekly availability rules.
type AvailabilityRuleRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRuleRepository constructs an AvailabilityRuleRepository.
func NewAvailabilityRuleRepository(db *sqlx.DB) *AvailabilityRuleRepository {
	return &AvailabilityRuleRepository{db: db}
}

const ruleColumns = "id, technician_id, day_of_week, start_time, end_time, is_available, created_at, updated_at"

// GetByTechnicianDay fetches the single rule for a (technician, weekday) pair.
func (r *AvailabilityRuleRepository) GetByTechnicianDay(ctx context.Context, technicianID string, dayOfWeek int) (*models.WeeklyAvailabilityRule, error) {
	query := fmt.Sprintf("SELECT %s FROM weekly_availability_rules WHERE technician_id = $1 AND day_of_week = $2", ruleColumns)
	var rule models.WeeklyAvailabilityRule
	if err := r.db.GetContext(ctx, &rule, query, technicianID, dayOfWeek); err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListByTechnician returns all rules for a technician ordered by weekday.
func (r *AvailabilityRuleRepository) ListByTechnician(ctx context.Context, technicianID string) ([]models.WeeklyAvailabilityRule, error) {
	query := fmt.Sprintf("SELECT %s FROM weekly_availability_rules WHERE technician_id = $1 ORDER BY day_of_week ASC", ruleColumns)
	var rules []models.WeeklyAvailabilityRule
	if err := r.db.SelectContext(ctx, &rules, query, technicianID); err != nil {
		return nil, fmt.Errorf("list weekly rules: %w", err)
	}
	return rules, nil
}

// Upsert creates or replaces the rule for the (technician, day_of_week) pair.
// The unique constraint keeps at most one rule per pair.
func (r *AvailabilityRuleRepository) Upsert(ctx context.Context, rule *models.WeeklyAvailabilityRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	const query = `INSERT INTO weekly_availability_rules (id, technician_id, day_of_week, start_time, end_time, is_available, created_at, updated_at)
		VALUES (:id, :technician_id, :day_of_week, :start_time, :end_time, :is_available, :created_at, :updated_at)
		ON CONFLICT (technician_id, day_of_week) DO UPDATE
		SET start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			is_available = EXCLUDED.is_available,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("upsert weekly rule: %w", err)
	}
	return nil
}
