package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fieldserve/booking-api/internal/dto"
	"github.com/fieldserve/booking-api/internal/models"
	appErrors "github.com/fieldserve/booking-api/pkg/errors"
)

type technicianDirectory interface {
	ListAvailable(ctx context.Context) ([]models.Technician, error)
	FindByID(ctx context.Context, id string) (*models.Technician, error)
}

type weeklyRuleReader interface {
	GetByTechnicianDay(ctx context.Context, technicianID string, dayOfWeek int) (*models.WeeklyAvailabilityRule, error)
}

type timeslotReader interface {
	FindByID(ctx context.Context, id string) (*models.Timeslot, error)
	ListOrdered(ctx context.Context) ([]models.Timeslot, error)
}

type bookingReader interface {
	ListBlocking(ctx context.Context, date time.Time, timeslotID string) ([]string, error)
	DailyJobCounts(ctx context.Context, date time.Time) (map[string]int, error)
}

// AvailabilityService computes which technicians are free for a date/timeslot.
// It is a pure read-and-compute path: every call re-derives its answer from the
// injected read-ports, so results are advisory and must be re-validated by the
// booking-creation transaction (see SchedulingService.ValidateAssignment).
type AvailabilityService struct {
	technicians    technicianDirectory
	rules          weeklyRuleReader
	timeslots      timeslotReader
	bookings       bookingReader
	logger         *zap.Logger
	maxDaysToCheck int
}

// NewAvailabilityService wires the availability read-ports.
func NewAvailabilityService(
	technicians technicianDirectory,
	rules weeklyRuleReader,
	timeslots timeslotReader,
	bookings bookingReader,
	logger *zap.Logger,
	maxDaysToCheck int,
) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxDaysToCheck <= 0 {
		maxDaysToCheck = 30
	}
	return &AvailabilityService{
		technicians:    technicians,
		rules:          rules,
		timeslots:      timeslots,
		bookings:       bookings,
		logger:         logger,
		maxDaysToCheck: maxDaysToCheck,
	}
}

// AvailableTechnicians returns the technicians free on the date, ordered by id.
// An empty timeslotID skips the timeslot overlap and conflict narrowing; an
// unknown timeslotID yields an empty result rather than an error.
func (s *AvailabilityService) AvailableTechnicians(ctx context.Context, date time.Time, timeslotID string) ([]models.Technician, error) {
	var slot *models.Timeslot
	if timeslotID != "" {
		found, err := s.timeslots.FindByID(ctx, timeslotID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return []models.Technician{}, nil
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeslot")
		}
		slot = found
	}

	technicians, err := s.technicians.ListAvailable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list technicians")
	}
	if len(technicians) == 0 {
		return []models.Technician{}, nil
	}

	blockedIDs, err := s.bookings.ListBlocking(ctx, date, timeslotID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blocking bookings")
	}
	blocked := make(map[string]struct{}, len(blockedIDs))
	for _, id := range blockedIDs {
		blocked[id] = struct{}{}
	}

	dailyCounts, err := s.bookings.DailyJobCounts(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load daily job counts")
	}

	day := DayOfWeek(date)
	available := make([]models.Technician, 0, len(technicians))
	for _, tech := range technicians {
		rule, err := s.rules.GetByTechnicianDay(ctx, tech.ID, day)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly rule")
		}
		if rule == nil || !rule.IsAvailable {
			continue
		}
		if slot != nil && !TimeRangesOverlap(rule.StartTime, rule.EndTime, slot.StartTime, slot.EndTime) {
			continue
		}
		if _, isBlocked := blocked[tech.ID]; isBlocked {
			continue
		}
		if dailyCounts[tech.ID] >= tech.MaxDailyJobs {
			continue
		}
		available = append(available, tech)
	}

	sort.Slice(available, func(i, j int) bool { return available[i].ID < available[j].ID })
	return available, nil
}

// Count returns how many technicians are free for the date/timeslot.
func (s *AvailabilityService) Count(ctx context.Context, date time.Time, timeslotID string) (int, error) {
	available, err := s.AvailableTechnicians(ctx, date, timeslotID)
	if err != nil {
		return 0, err
	}
	return len(available), nil
}

// Matrix builds the calendar-grid view: availability counts for each timeslot
// over a run of consecutive dates starting at startDate.
func (s *AvailabilityService) Matrix(ctx context.Context, startDate time.Time, days int) (*dto.AvailabilityMatrix, error) {
	if days < 1 {
		days = 1
	}
	slots, err := s.timeslots.ListOrdered(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timeslots")
	}

	matrix := &dto.AvailabilityMatrix{
		StartDate: startDate.Format(dateLayout),
		Days:      make([]dto.DayAvailability, 0, days),
	}
	for i := 0; i < days; i++ {
		date := startDate.AddDate(0, 0, i)
		row := dto.DayAvailability{
			Date:      date.Format(dateLayout),
			DayOfWeek: DayOfWeek(date),
			Timeslots: make([]dto.TimeslotAvailability, 0, len(slots)),
		}
		for _, slot := range slots {
			count, err := s.Count(ctx, date, slot.ID)
			if err != nil {
				return nil, err
			}
			row.Timeslots = append(row.Timeslots, dto.TimeslotAvailability{
				TimeslotID:     slot.ID,
				Label:          slot.DisplayLabel,
				StartTime:      slot.StartTime,
				EndTime:        slot.EndTime,
				AvailableCount: count,
				IsAvailable:    count > 0,
			})
		}
		matrix.Days = append(matrix.Days, row)
	}
	return matrix, nil
}

// IsAvailableForMultiDay reports whether the technician is free on every day of
// the inclusive span, short-circuiting on the first failing day.
func (s *AvailabilityService) IsAvailableForMultiDay(ctx context.Context, technicianID string, startDate, endDate time.Time, timeslotID string) (*dto.MultiDayCheckResult, error) {
	result := &dto.MultiDayCheckResult{TechnicianID: technicianID}
	for _, date := range DateRange(startDate, &endDate) {
		available, err := s.AvailableTechnicians(ctx, date, timeslotID)
		if err != nil {
			return nil, err
		}
		if !containsTechnician(available, technicianID) {
			result.Available = false
			result.FailedDate = date.Format(dateLayout)
			return result, nil
		}
	}
	result.Available = true
	return result, nil
}

// NextAvailableDate scans forward from today (inclusive), day by day, for the
// first date with at least requiredCount free technicians.
func (s *AvailabilityService) NextAvailableDate(ctx context.Context, today time.Time, requiredCount int, timeslotID string, maxDaysToCheck int) (*dto.NextAvailableDateResult, error) {
	if requiredCount < 1 {
		requiredCount = 1
	}
	if maxDaysToCheck <= 0 {
		maxDaysToCheck = s.maxDaysToCheck
	}
	for i := 0; i < maxDaysToCheck; i++ {
		date := today.AddDate(0, 0, i)
		count, err := s.Count(ctx, date, timeslotID)
		if err != nil {
			return nil, err
		}
		if count >= requiredCount {
			return &dto.NextAvailableDateResult{
				Found:          true,
				Date:           date.Format(dateLayout),
				AvailableCount: count,
				DaysChecked:    i + 1,
			}, nil
		}
	}
	return &dto.NextAvailableDateResult{Found: false, DaysChecked: maxDaysToCheck}, nil
}

// PeakTimeslot returns the timeslot with the highest availability count on the
// date. Ties resolve to the earliest start time; both return values are zero
// when no timeslots are defined.
func (s *AvailabilityService) PeakTimeslot(ctx context.Context, date time.Time) (*models.Timeslot, int, error) {
	slots, err := s.timeslots.ListOrdered(ctx)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timeslots")
	}

	var peak *models.Timeslot
	peakCount := -1
	for i := range slots {
		count, err := s.Count(ctx, date, slots[i].ID)
		if err != nil {
			return nil, 0, err
		}
		if count > peakCount {
			peak = &slots[i]
			peakCount = count
		}
	}
	if peak == nil {
		return nil, 0, nil
	}
	return peak, peakCount, nil
}

const dateLayout = "2006-01-02"

func containsTechnician(technicians []models.Technician, id string) bool {
	for _, tech := range technicians {
		if tech.ID == id {
			return true
		}
	}
	return false
}
