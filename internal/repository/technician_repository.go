package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fieldserve/booking-api/internal/models"
)

// TechnicianRepository manages persistence for technicians.
type TechnicianRepository struct {
	db *sqlx.DB
}

// NewTechnicianRepository constructs a TechnicianRepository.
func NewTechnicianRepository(db *sqlx.DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

const technicianColumns = "id, email, full_name, phone, skills, is_available, rating_average, total_jobs, current_jobs, max_daily_jobs, created_at, updated_at"

// List returns technicians matching filters along with total count.
func (r *TechnicianRepository) List(ctx context.Context, filter models.TechnicianFilter) ([]models.Technician, int, error) {
	base := "FROM technicians WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Available != nil {
		conditions = append(conditions, fmt.Sprintf("is_available = $%d", len(args)+1))
		args = append(args, *filter.Available)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d OR LOWER(COALESCE(skills, '')) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]string{
		"full_name":      "full_name",
		"email":          "email",
		"rating_average": "rating_average",
		"created_at":     "created_at",
		"updated_at":     "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", technicianColumns, base, column, order, size, offset)
	var technicians []models.Technician
	if err := r.db.SelectContext(ctx, &technicians, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list technicians: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count technicians: %w", err)
	}

	return technicians, total, nil
}

// ListAvailable returns technicians whose global availability switch is on,
// ordered by id for deterministic downstream filtering.
func (r *TechnicianRepository) ListAvailable(ctx context.Context) ([]models.Technician, error) {
	query := fmt.Sprintf("SELECT %s FROM technicians WHERE is_available = TRUE ORDER BY id ASC", technicianColumns)
	var technicians []models.Technician
	if err := r.db.SelectContext(ctx, &technicians, query); err != nil {
		return nil, fmt.Errorf("list available technicians: %w", err)
	}
	return technicians, nil
}

// FindByID fetches a technician by ID.
func (r *TechnicianRepository) FindByID(ctx context.Context, id string) (*models.Technician, error) {
	query := fmt.Sprintf("SELECT %s FROM technicians WHERE id = $1", technicianColumns)
	var technician models.Technician
	if err := r.db.GetContext(ctx, &technician, query, id); err != nil {
		return nil, err
	}
	return &technician, nil
}

// ExistsByEmail checks if another technician uses the same email.
func (r *TechnicianRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM technicians WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check technician email: %w", err)
	}
	return true, nil
}

// Create inserts a new technician record.
func (r *TechnicianRepository) Create(ctx context.Context, technician *models.Technician) error {
	if technician.ID == "" {
		technician.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if technician.CreatedAt.IsZero() {
		technician.CreatedAt = now
	}
	technician.UpdatedAt = now

	const query = `INSERT INTO technicians (id, email, full_name, phone, skills, is_available, rating_average, total_jobs, current_jobs, max_daily_jobs, created_at, updated_at)
		VALUES (:id, :email, :full_name, :phone, :skills, :is_available, :rating_average, :total_jobs, :current_jobs, :max_daily_jobs, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, technician); err != nil {
		return fmt.Errorf("create technician: %w", err)
	}
	return nil
}

// Update modifies an existing technician record.
func (r *TechnicianRepository) Update(ctx context.Context, technician *models.Technician) error {
	technician.UpdatedAt = time.Now().UTC()

	const query = `UPDATE technicians
		SET email = :email, full_name = :full_name, phone = :phone, skills = :skills,
			is_available = :is_available, max_daily_jobs = :max_daily_jobs, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, technician); err != nil {
		return fmt.Errorf("update technician: %w", err)
	}
	return nil
}

// SetAvailability flips the global availability switch.
func (r *TechnicianRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	const query = `UPDATE technicians SET is_available = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, available, time.Now().UTC()); err != nil {
		return fmt.Errorf("set technician availability: %w", err)
	}
	return nil
}
