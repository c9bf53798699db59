package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fieldserve/booking-api/internal/models"
)

const serviceColumns = "id, name, description, active, created_at, updated_at"

// ServiceRepository reads the service catalog.
type ServiceRepository struct {
	db *sqlx.DB
}

// NewServiceRepository constructs a ServiceRepository.
func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// FindByID returns the service with the given id. Returns sql.ErrNoRows when
// the id is unknown.
func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*models.Service, error) {
	query := fmt.Sprintf("SELECT %s FROM services WHERE id = $1", serviceColumns)

	var svc models.Service
	if err := r.db.GetContext(ctx, &svc, query, id); err != nil {
		return nil, err
	}
	return &svc, nil
}

// List returns active services ordered by name.
func (r *ServiceRepository) List(ctx context.Context) ([]models.Service, error) {
	query := fmt.Sprintf("SELECT %s FROM services WHERE active = TRUE ORDER BY name ASC", serviceColumns)

	var services []models.Service
	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}
