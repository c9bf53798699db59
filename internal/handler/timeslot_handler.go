package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/booking-api/internal/models"
	"github.com/fieldserve/booking-api/internal/service"
	appErrors "github.com/fieldserve/booking-api/pkg/errors"
	"github.com/fieldserve/booking-api/pkg/response"
)

type timeslotManager interface {
	List(ctx context.Context) ([]models.Timeslot, error)
	Get(ctx context.Context, id string) (*models.Timeslot, error)
	Create(ctx context.Context, req service.CreateTimeslotRequest) (*models.Timeslot, error)
	Update(ctx context.Context, id string, req service.CreateTimeslotRequest) (*models.Timeslot, error)
}

// TimeslotHandler exposes the timeslot catalog endpoints.
type TimeslotHandler struct {
	service timeslotManager
}

// NewTimeslotHandler constructs the handler.
func NewTimeslotHandler(svc *service.TimeslotService) *TimeslotHandler {
	return &TimeslotHandler{service: svc}
}

// List returns all timeslots ordered by start time.
func (h *TimeslotHandler) List(c *gin.Context) {
	timeslots, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timeslots, nil)
}

// Get returns a single timeslot.
func (h *TimeslotHandler) Get(c *gin.Context) {
	timeslot, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timeslot, nil)
}

// Create adds a timeslot to the catalog.
func (h *TimeslotHandler) Create(c *gin.Context) {
	var req service.CreateTimeslotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timeslot payload"))
		return
	}
	timeslot, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, timeslot)
}

// Update replaces a timeslot's window and label.
func (h *TimeslotHandler) Update(c *gin.Context) {
	var req service.CreateTimeslotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timeslot payload"))
		return
	}
	timeslot, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timeslot, nil)
}
