package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/booking-api/internal/dto"
	"github.com/fieldserve/booking-api/internal/models"
	"github.com/fieldserve/booking-api/internal/service"
	appErrors "github.com/fieldserve/booking-api/pkg/errors"
	"github.com/fieldserve/booking-api/pkg/response"
)

const dateLayout = "2006-01-02"

type schedulingCore interface {
	FormAvailability(ctx context.Context, date time.Time) ([]dto.TimeslotAvailability, error)
	Matrix(ctx context.Context, startDate time.Time, days int) (*dto.AvailabilityMatrix, error)
	RankedPicklist(ctx context.Context, serviceID string, date time.Time, timeslotID string) ([]dto.RankedTechnician, error)
	AutoAssign(ctx context.Context, serviceID string, date time.Time, timeslotID string) (*dto.AssignmentSuggestion, error)
	NextAvailableDate(ctx context.Context, today time.Time, requiredCount int, timeslotID string, maxDaysToCheck int) (*dto.NextAvailableDateResult, error)
	MultiDayCheck(ctx context.Context, technicianID string, startDate, endDate time.Time, timeslotID string) (*dto.MultiDayCheckResult, error)
	PeakTimeslot(ctx context.Context, date time.Time) (*models.Timeslot, int, error)
	ValidateAssignment(ctx context.Context, req dto.ValidateAssignmentRequest) error
}

// SchedulingHandler exposes the availability and ranking endpoints.
type SchedulingHandler struct {
	service        schedulingCore
	maxDaysToCheck int
	maxMatrixDays  int
}

// NewSchedulingHandler constructs the handler.
func NewSchedulingHandler(svc *service.SchedulingService, maxDaysToCheck, maxMatrixDays int) *SchedulingHandler {
	if maxDaysToCheck <= 0 {
		maxDaysToCheck = 30
	}
	if maxMatrixDays <= 0 {
		maxMatrixDays = 31
	}
	return &SchedulingHandler{service: svc, maxDaysToCheck: maxDaysToCheck, maxMatrixDays: maxMatrixDays}
}

// FormAvailability returns per-timeslot availability counts for one date.
func (h *SchedulingHandler) FormAvailability(c *gin.Context) {
	date, err := parseDateParam(c.Query("date"), "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.FormAvailability(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Matrix returns the calendar-grid availability for a run of dates.
func (h *SchedulingHandler) Matrix(c *gin.Context) {
	start, err := parseDateParam(c.Query("start"), "start")
	if err != nil {
		response.Error(c, err)
		return
	}
	days := h.maxMatrixDays
	if raw := c.Query("days"); raw != "" {
		parsed, convErr := strconv.Atoi(raw)
		if convErr != nil || parsed < 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "days must be a positive integer"))
			return
		}
		days = parsed
	}
	if days > h.maxMatrixDays {
		days = h.maxMatrixDays
	}
	result, err := h.service.Matrix(c.Request.Context(), start, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Rank returns the ranked technician picklist for a service on a date and timeslot.
func (h *SchedulingHandler) Rank(c *gin.Context) {
	serviceID := c.Query("serviceId")
	if serviceID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "serviceId is required"))
		return
	}
	date, err := parseDateParam(c.Query("date"), "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.RankedPicklist(c.Request.Context(), serviceID, date, c.Query("timeslotId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

type autoAssignRequest struct {
	ServiceID  string `json:"serviceId" binding:"required"`
	Date       string `json:"date" binding:"required"`
	TimeslotID string `json:"timeslotId"`
}

// AutoAssign picks the best-ranked available technician. A null technician in
// the payload means nobody is free, not an error.
func (h *SchedulingHandler) AutoAssign(c *gin.Context) {
	var req autoAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid auto-assign payload"))
		return
	}
	date, err := parseDateParam(req.Date, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.AutoAssign(c.Request.Context(), req.ServiceID, date, req.TimeslotID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// NextAvailableDate scans forward from today for the first date with enough
// free technicians.
func (h *SchedulingHandler) NextAvailableDate(c *gin.Context) {
	requiredCount := 1
	if raw := c.Query("requiredCount"); raw != "" {
		parsed, convErr := strconv.Atoi(raw)
		if convErr != nil || parsed < 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "requiredCount must be a positive integer"))
			return
		}
		requiredCount = parsed
	}
	result, err := h.service.NextAvailableDate(c.Request.Context(), time.Now(), requiredCount, c.Query("timeslotId"), h.maxDaysToCheck)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// MultiDayCheck verifies one technician across an inclusive date span.
func (h *SchedulingHandler) MultiDayCheck(c *gin.Context) {
	technicianID := c.Query("technicianId")
	if technicianID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "technicianId is required"))
		return
	}
	start, err := parseDateParam(c.Query("start"), "start")
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseDateParam(c.Query("end"), "end")
	if err != nil {
		response.Error(c, err)
		return
	}
	if end.Before(start) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "end must not precede start"))
		return
	}
	result, err := h.service.MultiDayCheck(c.Request.Context(), technicianID, start, end, c.Query("timeslotId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// PeakTimeslot reports the timeslot with the most free technicians on a date.
func (h *SchedulingHandler) PeakTimeslot(c *gin.Context) {
	date, err := parseDateParam(c.Query("date"), "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	slot, count, err := h.service.PeakTimeslot(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"timeslot": slot, "availableCount": count}, nil)
}

type validateAssignmentRequest struct {
	TechnicianID string `json:"technicianId" binding:"required"`
	ServiceID    string `json:"serviceId" binding:"required"`
	TimeslotID   string `json:"timeslotId" binding:"required"`
	Date         string `json:"date" binding:"required"`
	EndDate      string `json:"endDate"`
}

// ValidateAssignment re-checks a proposed assignment. Booking creation calls
// this inside its transaction so a picklist gone stale fails before commit.
func (h *SchedulingHandler) ValidateAssignment(c *gin.Context) {
	var req validateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	date, err := parseDateParam(req.Date, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	payload := dto.ValidateAssignmentRequest{
		TechnicianID: req.TechnicianID,
		ServiceID:    req.ServiceID,
		TimeslotID:   req.TimeslotID,
		Date:         date,
	}
	if req.EndDate != "" {
		end, endErr := parseDateParam(req.EndDate, "endDate")
		if endErr != nil {
			response.Error(c, endErr)
			return
		}
		payload.EndDate = &end
	}
	if err := h.service.ValidateAssignment(c.Request.Context(), payload); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"valid": true}, nil)
}

func parseDateParam(raw, field string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, field+" is required")
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, field+" must use YYYY-MM-DD")
	}
	return parsed, nil
}
