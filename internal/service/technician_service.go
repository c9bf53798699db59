package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fieldserve/booking-api/internal/dto"
	"github.com/fieldserve/booking-api/internal/models"
	appErrors "github.com/fieldserve/booking-api/pkg/errors"
)

type technicianRepository interface {
	List(ctx context.Context, filter models.TechnicianFilter) ([]models.Technician, int, error)
	FindByID(ctx context.Context, id string) (*models.Technician, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, technician *models.Technician) error
	Update(ctx context.Context, technician *models.Technician) error
	SetAvailability(ctx context.Context, id string, available bool) error
}

type availabilityRuleRepository interface {
	ListByTechnician(ctx context.Context, technicianID string) ([]models.WeeklyAvailabilityRule, error)
	Upsert(ctx context.Context, rule *models.WeeklyAvailabilityRule) error
}

// TechnicianService manages technician records and their weekly availability
// rules. Booking-driven counters (current_jobs, total_jobs) are owned by the
// booking workflow and only read here.
type TechnicianService struct {
	repo      technicianRepository
	rules     availabilityRuleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTechnicianService constructs the service.
func NewTechnicianService(repo technicianRepository, rules availabilityRuleRepository, validate *validator.Validate, logger *zap.Logger) *TechnicianService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TechnicianService{repo: repo, rules: rules, validator: validate, logger: logger}
}

// CreateTechnicianRequest describes the create payload.
type CreateTechnicianRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	FullName     string  `json:"fullName" validate:"required"`
	Phone        *string `json:"phone"`
	Skills       *string `json:"skills"`
	MaxDailyJobs int     `json:"maxDailyJobs" validate:"required,min=1"`
}

// UpdateTechnicianRequest describes the update payload.
type UpdateTechnicianRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	FullName     string  `json:"fullName" validate:"required"`
	Phone        *string `json:"phone"`
	Skills       *string `json:"skills"`
	MaxDailyJobs int     `json:"maxDailyJobs" validate:"required,min=1"`
	IsAvailable  *bool   `json:"isAvailable"`
}

// List returns technicians matching the filter.
func (s *TechnicianService) List(ctx context.Context, filter models.TechnicianFilter) ([]models.Technician, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	technicians, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list technicians")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return technicians, pagination, nil
}

// Get returns a technician by id.
func (s *TechnicianService) Get(ctx context.Context, id string) (*models.Technician, error) {
	technician, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "technician not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get technician")
	}
	return technician, nil
}

// Create registers a new technician, available by default.
func (s *TechnicianService) Create(ctx context.Context, req CreateTechnicianRequest) (*models.Technician, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid technician payload")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check technician email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
	}
	technician := &models.Technician{
		Email:        req.Email,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Skills:       req.Skills,
		IsAvailable:  true,
		MaxDailyJobs: req.MaxDailyJobs,
	}
	if err := s.repo.Create(ctx, technician); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create technician")
	}
	return technician, nil
}

// Update modifies a technician record.
func (s *TechnicianService) Update(ctx context.Context, id string, req UpdateTechnicianRequest) (*models.Technician, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid technician payload")
	}
	technician, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check technician email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
	}
	technician.Email = req.Email
	technician.FullName = req.FullName
	technician.Phone = req.Phone
	technician.Skills = req.Skills
	technician.MaxDailyJobs = req.MaxDailyJobs
	if req.IsAvailable != nil {
		technician.IsAvailable = *req.IsAvailable
	}
	if err := s.repo.Update(ctx, technician); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update technician")
	}
	return technician, nil
}

// SetAvailability flips the technician's global on/off switch.
func (s *TechnicianService) SetAvailability(ctx context.Context, id string, available bool) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetAvailability(ctx, id, available); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set availability")
	}
	return nil
}

// WeeklyRules lists the technician's recurring availability windows.
func (s *TechnicianService) WeeklyRules(ctx context.Context, technicianID string) ([]models.WeeklyAvailabilityRule, error) {
	if _, err := s.Get(ctx, technicianID); err != nil {
		return nil, err
	}
	rules, err := s.rules.ListByTechnician(ctx, technicianID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weekly rules")
	}
	return rules, nil
}

// UpsertWeeklyRule creates or replaces the technician's rule for one weekday.
// At most one rule exists per (technician, day_of_week).
func (s *TechnicianService) UpsertWeeklyRule(ctx context.Context, technicianID string, req dto.UpsertWeeklyRuleRequest) (*models.WeeklyAvailabilityRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weekly rule payload")
	}
	if err := validateTimeWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, technicianID); err != nil {
		return nil, err
	}
	rule := &models.WeeklyAvailabilityRule{
		TechnicianID: technicianID,
		DayOfWeek:    req.DayOfWeek,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		IsAvailable:  req.IsAvailable,
	}
	if err := s.rules.Upsert(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert weekly rule")
	}
	return rule, nil
}
