package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/booking-api/internal/dto"
	"github.com/fieldserve/booking-api/internal/models"
	"github.com/fieldserve/booking-api/internal/service"
	appErrors "github.com/fieldserve/booking-api/pkg/errors"
	"github.com/fieldserve/booking-api/pkg/response"
)

type technicianManager interface {
	List(ctx context.Context, filter models.TechnicianFilter) ([]models.Technician, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Technician, error)
	Create(ctx context.Context, req service.CreateTechnicianRequest) (*models.Technician, error)
	Update(ctx context.Context, id string, req service.UpdateTechnicianRequest) (*models.Technician, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	WeeklyRules(ctx context.Context, technicianID string) ([]models.WeeklyAvailabilityRule, error)
	UpsertWeeklyRule(ctx context.Context, technicianID string, req dto.UpsertWeeklyRuleRequest) (*models.WeeklyAvailabilityRule, error)
}

// TechnicianHandler exposes technician management endpoints.
type TechnicianHandler struct {
	service technicianManager
}

// NewTechnicianHandler constructs the handler.
func NewTechnicianHandler(svc *service.TechnicianService) *TechnicianHandler {
	return &TechnicianHandler{service: svc}
}

// List returns technicians matching the query filters.
func (h *TechnicianHandler) List(c *gin.Context) {
	filter := models.TechnicianFilter{
		Search:    c.Query("search"),
		Page:      parseIntQuery(c, "page", 1),
		PageSize:  parseIntQuery(c, "pageSize", 20),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if raw := c.Query("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "available must be a boolean"))
			return
		}
		filter.Available = &available
	}

	technicians, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, technicians, pagination)
}

// Get returns a single technician.
func (h *TechnicianHandler) Get(c *gin.Context) {
	technician, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, technician, nil)
}

// Create registers a new technician.
func (h *TechnicianHandler) Create(c *gin.Context) {
	var req service.CreateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid technician payload"))
		return
	}
	technician, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, technician)
}

// Update modifies technician profile fields.
func (h *TechnicianHandler) Update(c *gin.Context) {
	var req service.UpdateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid technician payload"))
		return
	}
	technician, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, technician, nil)
}

type setAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// SetAvailability flips the technician's global availability switch.
func (h *TechnicianHandler) SetAvailability(c *gin.Context) {
	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAvailable == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "is_available is required"))
		return
	}
	if err := h.service.SetAvailability(c.Request.Context(), c.Param("id"), *req.IsAvailable); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// WeeklyRules lists the technician's recurring weekly windows.
func (h *TechnicianHandler) WeeklyRules(c *gin.Context) {
	rules, err := h.service.WeeklyRules(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}

// UpsertWeeklyRule creates or replaces the technician's window for one weekday.
func (h *TechnicianHandler) UpsertWeeklyRule(c *gin.Context) {
	var req dto.UpsertWeeklyRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid weekly rule payload"))
		return
	}
	rule, err := h.service.UpsertWeeklyRule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
