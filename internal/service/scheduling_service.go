package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fieldserve/booking-api/internal/dto"
	"github.com/fieldserve/booking-api/internal/models"
	appErrors "github.com/fieldserve/booking-api/pkg/errors"
)

type availabilityIndex interface {
	AvailableTechnicians(ctx context.Context, date time.Time, timeslotID string) ([]models.Technician, error)
	Matrix(ctx context.Context, startDate time.Time, days int) (*dto.AvailabilityMatrix, error)
	IsAvailableForMultiDay(ctx context.Context, technicianID string, startDate, endDate time.Time, timeslotID string) (*dto.MultiDayCheckResult, error)
	NextAvailableDate(ctx context.Context, today time.Time, requiredCount int, timeslotID string, maxDaysToCheck int) (*dto.NextAvailableDateResult, error)
	PeakTimeslot(ctx context.Context, date time.Time) (*models.Timeslot, int, error)
}

type technicianRanker interface {
	Rank(ctx context.Context, serviceID string, candidates []models.Technician) ([]dto.RankedTechnician, error)
	Best(ctx context.Context, serviceID string, candidates []models.Technician) (*dto.RankedTechnician, error)
}

type schedulingTechnicianReader interface {
	FindByID(ctx context.Context, id string) (*models.Technician, error)
}

// SchedulingService orchestrates the availability index and the ranking engine
// for the booking-form and booking-creation call patterns.
type SchedulingService struct {
	availability availabilityIndex
	ranking      technicianRanker
	technicians  schedulingTechnicianReader
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewSchedulingService wires the facade.
func NewSchedulingService(
	availability availabilityIndex,
	ranking technicianRanker,
	technicians schedulingTechnicianReader,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *SchedulingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulingService{
		availability: availability,
		ranking:      ranking,
		technicians:  technicians,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
	}
}

// FormAvailability returns per-timeslot availability counts for one candidate
// date, for the booking form's "(N technicians available)" labels.
func (s *SchedulingService) FormAvailability(ctx context.Context, date time.Time) ([]dto.TimeslotAvailability, error) {
	matrix, err := s.availability.Matrix(ctx, date, 1)
	if err != nil {
		return nil, err
	}
	if len(matrix.Days) == 0 {
		return []dto.TimeslotAvailability{}, nil
	}
	return matrix.Days[0].Timeslots, nil
}

// Matrix exposes the calendar-grid view.
func (s *SchedulingService) Matrix(ctx context.Context, startDate time.Time, days int) (*dto.AvailabilityMatrix, error) {
	return s.availability.Matrix(ctx, startDate, days)
}

// RankedPicklist returns the full ranked technician list for a chosen
// (service, date, timeslot) so a dispatcher can pick manually.
func (s *SchedulingService) RankedPicklist(ctx context.Context, serviceID string, date time.Time, timeslotID string) ([]dto.RankedTechnician, error) {
	candidates, err := s.availability.AvailableTechnicians(ctx, date, timeslotID)
	if err != nil {
		return nil, err
	}
	ranked, err := s.ranking.Rank(ctx, serviceID, candidates)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordRankRequest(len(ranked))
	}
	return ranked, nil
}

// AutoAssign returns the single best technician for automatic assignment. A
// nil suggestion.Technician means nobody is free, which callers must handle as
// an expected outcome.
func (s *SchedulingService) AutoAssign(ctx context.Context, serviceID string, date time.Time, timeslotID string) (*dto.AssignmentSuggestion, error) {
	candidates, err := s.availability.AvailableTechnicians(ctx, date, timeslotID)
	if err != nil {
		return nil, err
	}
	best, err := s.ranking.Best(ctx, serviceID, candidates)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordAutoAssign(best != nil)
	}
	return &dto.AssignmentSuggestion{Technician: best, Candidates: len(candidates)}, nil
}

// NextAvailableDate proxies the forward availability scan.
func (s *SchedulingService) NextAvailableDate(ctx context.Context, today time.Time, requiredCount int, timeslotID string, maxDaysToCheck int) (*dto.NextAvailableDateResult, error) {
	return s.availability.NextAvailableDate(ctx, today, requiredCount, timeslotID, maxDaysToCheck)
}

// MultiDayCheck proxies the span availability predicate.
func (s *SchedulingService) MultiDayCheck(ctx context.Context, technicianID string, startDate, endDate time.Time, timeslotID string) (*dto.MultiDayCheckResult, error) {
	return s.availability.IsAvailableForMultiDay(ctx, technicianID, startDate, endDate, timeslotID)
}

// PeakTimeslot reports the busiest-capacity timeslot for a date.
func (s *SchedulingService) PeakTimeslot(ctx context.Context, date time.Time) (*models.Timeslot, int, error) {
	return s.availability.PeakTimeslot(ctx, date)
}

// ValidateAssignment re-evaluates the availability predicate for a single
// technician over the requested span. Booking creation must call this inside
// its transaction: availability shown to users is advisory, and two concurrent
// requests can both have observed the same technician as free.
func (s *SchedulingService) ValidateAssignment(ctx context.Context, req dto.ValidateAssignmentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if _, err := s.technicians.FindByID(ctx, req.TechnicianID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnknownReference, "unknown technician")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load technician")
	}

	endDate := req.Date
	if req.EndDate != nil {
		endDate = *req.EndDate
	}
	check, err := s.availability.IsAvailableForMultiDay(ctx, req.TechnicianID, req.Date, endDate, req.TimeslotID)
	if err != nil {
		return err
	}
	if !check.Available {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("technician is no longer available on %s", check.FailedDate))
	}
	return nil
}
