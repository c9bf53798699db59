package dto

import (
	"time"

	"github.com/fieldserve/booking-api/internal/models"
)

// Ranking factors surfaced in score explanations.
const (
	FactorServiceRating = "SERVICE_RATING"
	FactorAvailability  = "AVAILABILITY"
)

// TimeslotAvailability reports how many technicians are free for one timeslot.
type TimeslotAvailability struct {
	TimeslotID     string `json:"timeslotId"`
	Label          string `json:"label"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	AvailableCount int    `json:"availableCount"`
	IsAvailable    bool   `json:"isAvailable"`
}

// DayAvailability is one row of the calendar-grid matrix.
type DayAvailability struct {
	Date      string                 `json:"date"`
	DayOfWeek int                    `json:"dayOfWeek"`
	Timeslots []TimeslotAvailability `json:"timeslots"`
}

// AvailabilityMatrix covers a run of consecutive dates for the booking calendar.
type AvailabilityMatrix struct {
	StartDate string            `json:"startDate"`
	Days      []DayAvailability `json:"days"`
}

// ScoreBreakdown exposes the weighted components behind a greedy score.
type ScoreBreakdown struct {
	ServiceRatingScore   float64 `json:"serviceRatingScore"`
	AvailabilityScore    float64 `json:"availabilityScore"`
	WeightedRatingScore  float64 `json:"weightedRatingScore"`
	WeightedAvailability float64 `json:"weightedAvailabilityScore"`
	DominantFactor       string  `json:"dominantFactor"`
	ServiceRating        float64 `json:"serviceRating"`
	ServiceReviewCount   int     `json:"serviceReviewCount"`
}

// RankedTechnician is one entry of the ranked picklist.
type RankedTechnician struct {
	Rank       int               `json:"rank"`
	Technician models.Technician `json:"technician"`
	Score      float64           `json:"score"`
	Breakdown  ScoreBreakdown    `json:"breakdown"`
}

// AssignmentSuggestion is the auto-assign result; Technician is nil when no
// technician is free, which callers must treat as a normal outcome.
type AssignmentSuggestion struct {
	Technician *RankedTechnician `json:"technician"`
	Candidates int               `json:"candidates"`
}

// NextAvailableDateResult reports the first date satisfying the required headcount.
// Found is false when the search horizon was exhausted.
type NextAvailableDateResult struct {
	Found          bool   `json:"found"`
	Date           string `json:"date,omitempty"`
	AvailableCount int    `json:"availableCount,omitempty"`
	DaysChecked    int    `json:"daysChecked"`
}

// MultiDayCheckResult reports per-day availability of one technician over a span.
type MultiDayCheckResult struct {
	TechnicianID string `json:"technicianId"`
	Available    bool   `json:"available"`
	FailedDate   string `json:"failedDate,omitempty"`
}

// ValidateAssignmentRequest is the re-check payload booking creation runs
// inside its transaction before committing an assignment.
type ValidateAssignmentRequest struct {
	TechnicianID string     `json:"technicianId" validate:"required"`
	ServiceID    string     `json:"serviceId" validate:"required"`
	TimeslotID   string     `json:"timeslotId" validate:"required"`
	Date         time.Time  `json:"date" validate:"required"`
	EndDate      *time.Time `json:"endDate"`
}

// UpsertWeeklyRuleRequest sets a technician's recurring window for one weekday.
type UpsertWeeklyRuleRequest struct {
	DayOfWeek   int    `json:"dayOfWeek" validate:"min=0,max=6"`
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime" validate:"required"`
	IsAvailable bool   `json:"isAvailable"`
}
