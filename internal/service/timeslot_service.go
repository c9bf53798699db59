package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fieldserve/booking-api/internal/models"
	appErrors "github.com/fieldserve/booking-api/pkg/errors"
)

const timeslotCacheKey = "timeslots:ordered"

type timeslotRepository interface {
	ListOrdered(ctx context.Context) ([]models.Timeslot, error)
	FindByID(ctx context.Context, id string) (*models.Timeslot, error)
	Create(ctx context.Context, slot *models.Timeslot) error
	Update(ctx context.Context, slot *models.Timeslot) error
}

// TimeslotService manages the platform-wide bookable time windows. The ordered
// list is reference data and is served through the cache when enabled.
type TimeslotService struct {
	repo      timeslotRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeslotService constructs the service.
func NewTimeslotService(repo timeslotRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *TimeslotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeslotService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// CreateTimeslotRequest describes the create payload.
type CreateTimeslotRequest struct {
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
	DisplayLabel string `json:"displayLabel" validate:"required"`
}

// List returns all timeslots ordered by start time.
func (s *TimeslotService) List(ctx context.Context) ([]models.Timeslot, error) {
	var cached []models.Timeslot
	if hit, _ := s.cache.Get(ctx, timeslotCacheKey, &cached); hit {
		return cached, nil
	}

	slots, err := s.repo.ListOrdered(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timeslots")
	}
	if err := s.cache.Set(ctx, timeslotCacheKey, slots, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache timeslots", zap.Error(err))
	}
	return slots, nil
}

// Get returns a timeslot by id.
func (s *TimeslotService) Get(ctx context.Context, id string) (*models.Timeslot, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timeslot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get timeslot")
	}
	return slot, nil
}

// Create registers a new timeslot and invalidates the cached list.
func (s *TimeslotService) Create(ctx context.Context, req CreateTimeslotRequest) (*models.Timeslot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timeslot payload")
	}
	if err := validateTimeWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	slot := &models.Timeslot{
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		DisplayLabel: req.DisplayLabel,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timeslot")
	}
	_ = s.cache.Invalidate(ctx, timeslotCacheKey)
	return slot, nil
}

// Update modifies a timeslot and invalidates the cached list.
func (s *TimeslotService) Update(ctx context.Context, id string, req CreateTimeslotRequest) (*models.Timeslot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timeslot payload")
	}
	if err := validateTimeWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	slot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	slot.StartTime = req.StartTime
	slot.EndTime = req.EndTime
	slot.DisplayLabel = req.DisplayLabel
	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timeslot")
	}
	_ = s.cache.Invalidate(ctx, timeslotCacheKey)
	return slot, nil
}

func validateTimeWindow(start, end string) error {
	if minuteOfDay(start) >= minuteOfDay(end) {
		return appErrors.Clone(appErrors.ErrValidation, "startTime must be before endTime")
	}
	return nil
}
