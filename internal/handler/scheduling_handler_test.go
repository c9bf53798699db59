package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/booking-api/internal/dto"
	"github.com/fieldserve/booking-api/internal/models"
)

type schedulingCoreMock struct {
	capturedDate       time.Time
	capturedTimeslotID string
	capturedDays       int
	suggestion         *dto.AssignmentSuggestion
	validateErr        error
}

func (m *schedulingCoreMock) FormAvailability(ctx context.Context, date time.Time) ([]dto.TimeslotAvailability, error) {
	m.capturedDate = date
	return []dto.TimeslotAvailability{{TimeslotID: "slot-am", AvailableCount: 2, IsAvailable: true}}, nil
}

func (m *schedulingCoreMock) Matrix(ctx context.Context, startDate time.Time, days int) (*dto.AvailabilityMatrix, error) {
	m.capturedDate = startDate
	m.capturedDays = days
	return &dto.AvailabilityMatrix{StartDate: startDate.Format(dateLayout)}, nil
}

func (m *schedulingCoreMock) RankedPicklist(ctx context.Context, serviceID string, date time.Time, timeslotID string) ([]dto.RankedTechnician, error) {
	m.capturedDate = date
	m.capturedTimeslotID = timeslotID
	return []dto.RankedTechnician{}, nil
}

func (m *schedulingCoreMock) AutoAssign(ctx context.Context, serviceID string, date time.Time, timeslotID string) (*dto.AssignmentSuggestion, error) {
	if m.suggestion != nil {
		return m.suggestion, nil
	}
	return &dto.AssignmentSuggestion{}, nil
}

func (m *schedulingCoreMock) NextAvailableDate(ctx context.Context, today time.Time, requiredCount int, timeslotID string, maxDaysToCheck int) (*dto.NextAvailableDateResult, error) {
	m.capturedDays = maxDaysToCheck
	return &dto.NextAvailableDateResult{Found: false, DaysChecked: maxDaysToCheck}, nil
}

func (m *schedulingCoreMock) MultiDayCheck(ctx context.Context, technicianID string, startDate, endDate time.Time, timeslotID string) (*dto.MultiDayCheckResult, error) {
	return &dto.MultiDayCheckResult{TechnicianID: technicianID, Available: true}, nil
}

func (m *schedulingCoreMock) PeakTimeslot(ctx context.Context, date time.Time) (*models.Timeslot, int, error) {
	return nil, 0, nil
}

func (m *schedulingCoreMock) ValidateAssignment(ctx context.Context, req dto.ValidateAssignmentRequest) error {
	return m.validateErr
}

func newSchedulingTestContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestFormAvailabilityParsesDate(t *testing.T) {
	mockSvc := &schedulingCoreMock{}
	handler := &SchedulingHandler{service: mockSvc, maxDaysToCheck: 30, maxMatrixDays: 31}
	c, w := newSchedulingTestContext(t, http.MethodGet, "/scheduling/form-availability?date=2026-04-10", nil)

	handler.FormAvailability(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2026-04-10", mockSvc.capturedDate.Format(dateLayout))
}

func TestFormAvailabilityRejectsMissingDate(t *testing.T) {
	handler := &SchedulingHandler{service: &schedulingCoreMock{}, maxDaysToCheck: 30, maxMatrixDays: 31}
	c, w := newSchedulingTestContext(t, http.MethodGet, "/scheduling/form-availability", nil)

	handler.FormAvailability(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFormAvailabilityRejectsBadDate(t *testing.T) {
	handler := &SchedulingHandler{service: &schedulingCoreMock{}, maxDaysToCheck: 30, maxMatrixDays: 31}
	c, w := newSchedulingTestContext(t, http.MethodGet, "/scheduling/form-availability?date=04%2F10%2F2026", nil)

	handler.FormAvailability(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatrixClampsDaysToConfiguredMax(t *testing.T) {
	mockSvc := &schedulingCoreMock{}
	handler := &SchedulingHandler{service: mockSvc, maxDaysToCheck: 30, maxMatrixDays: 31}
	c, w := newSchedulingTestContext(t, http.MethodGet, "/scheduling/matrix?start=2026-04-01&days=90", nil)

	handler.Matrix(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 31, mockSvc.capturedDays)
}

func TestRankRequiresServiceID(t *testing.T) {
	handler := &SchedulingHandler{service: &schedulingCoreMock{}, maxDaysToCheck: 30, maxMatrixDays: 31}
	c, w := newSchedulingTestContext(t, http.MethodGet, "/scheduling/rank?date=2026-04-10", nil)

	handler.Rank(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAutoAssignNullTechnicianIsOK(t *testing.T) {
	mockSvc := &schedulingCoreMock{suggestion: &dto.AssignmentSuggestion{Technician: nil, Candidates: 0}}
	handler := &SchedulingHandler{service: mockSvc, maxDaysToCheck: 30, maxMatrixDays: 31}
	body := []byte(`{"serviceId":"svc-1","date":"2026-04-10","timeslotId":"slot-am"}`)
	c, w := newSchedulingTestContext(t, http.MethodPost, "/scheduling/auto-assign", body)

	handler.AutoAssign(c)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.AssignmentSuggestion `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Nil(t, envelope.Data.Technician)
}

func TestValidateAssignmentParsesSpan(t *testing.T) {
	mockSvc := &schedulingCoreMock{}
	handler := &SchedulingHandler{service: mockSvc, maxDaysToCheck: 30, maxMatrixDays: 31}
	body := []byte(`{"technicianId":"tech-1","serviceId":"svc-1","timeslotId":"slot-am","date":"2026-04-10","endDate":"2026-04-12"}`)
	c, w := newSchedulingTestContext(t, http.MethodPost, "/scheduling/validate-assignment", body)

	handler.ValidateAssignment(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestValidateAssignmentRejectsIncompletePayload(t *testing.T) {
	handler := &SchedulingHandler{service: &schedulingCoreMock{}, maxDaysToCheck: 30, maxMatrixDays: 31}
	body := []byte(`{"technicianId":"tech-1"}`)
	c, w := newSchedulingTestContext(t, http.MethodPost, "/scheduling/validate-assignment", body)

	handler.ValidateAssignment(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNextAvailableDateRejectsNonPositiveCount(t *testing.T) {
	handler := &SchedulingHandler{service: &schedulingCoreMock{}, maxDaysToCheck: 30, maxMatrixDays: 31}
	c, w := newSchedulingTestContext(t, http.MethodGet, "/scheduling/next-available?requiredCount=0", nil)

	handler.NextAvailableDate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
