package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/fieldserve/booking-api/internal/dto"
	"github.com/fieldserve/booking-api/internal/models"
	appErrors "github.com/fieldserve/booking-api/pkg/errors"
)

// Scoring weights. They must sum to 1.0 exactly.
const (
	serviceRatingWeight = 0.70
	availabilityWeight  = 0.30
)

// Confidence adjustment: thin review data gets penalised, deep data boosted.
const (
	lowConfidenceReviews  = 3
	highConfidenceReviews = 10
	lowConfidencePenalty  = 0.10
	highConfidenceBoost   = 0.05
)

type reviewStatsReader interface {
	ServiceAverageRating(ctx context.Context, technicianID, serviceID string) (float64, error)
	ServiceReviewCount(ctx context.Context, technicianID, serviceID string) (int, error)
}

type serviceCatalogReader interface {
	FindByID(ctx context.Context, id string) (*models.Service, error)
}

// RankingService orders available technicians by a weighted greedy score:
// service-specific rating (0.70) and remaining daily capacity (0.30).
type RankingService struct {
	reviews  reviewStatsReader
	services serviceCatalogReader
	logger   *zap.Logger
}

// NewRankingService wires the ranking read-ports.
func NewRankingService(reviews reviewStatsReader, services serviceCatalogReader, logger *zap.Logger) *RankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{reviews: reviews, services: services, logger: logger}
}

// Rank scores the candidate set for the service and returns it sorted
// best-first. The result is always a permutation of the input: no technician
// is added or dropped. Equal scores break by technician id ascending.
func (s *RankingService) Rank(ctx context.Context, serviceID string, candidates []models.Technician) ([]dto.RankedTechnician, error) {
	if s.services != nil {
		if _, err := s.services.FindByID(ctx, serviceID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrUnknownReference, "unknown service")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
		}
	}

	ranked := make([]dto.RankedTechnician, 0, len(candidates))
	for _, tech := range candidates {
		rating, err := s.reviews.ServiceAverageRating(ctx, tech.ID, serviceID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service rating")
		}
		reviewCount, err := s.reviews.ServiceReviewCount(ctx, tech.ID, serviceID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review count")
		}

		breakdown := scoreTechnician(tech, rating, reviewCount)
		ranked = append(ranked, dto.RankedTechnician{
			Technician: tech,
			Score:      breakdown.WeightedRatingScore + breakdown.WeightedAvailability,
			Breakdown:  breakdown,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score == ranked[j].Score {
			return ranked[i].Technician.ID < ranked[j].Technician.ID
		}
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// Best returns the top-ranked technician, or nil when the candidate set is
// empty. An empty set is a normal outcome, not an error.
func (s *RankingService) Best(ctx context.Context, serviceID string, candidates []models.Technician) (*dto.RankedTechnician, error) {
	ranked, err := s.Rank(ctx, serviceID, candidates)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, nil
	}
	return &ranked[0], nil
}

// scoreTechnician computes the two sub-scores and their weighted combination.
// A rating of 0 means "no service-specific reviews yet"; it normalises to a
// negative raw value and is clamped to 0, so callers must use the review count
// to distinguish "no data" from "worst".
func scoreTechnician(tech models.Technician, rating float64, reviewCount int) dto.ScoreBreakdown {
	ratingScore := clamp01((rating - 1) / 4)
	switch {
	case reviewCount < lowConfidenceReviews:
		ratingScore = clamp01(ratingScore - lowConfidencePenalty)
	case reviewCount >= highConfidenceReviews:
		ratingScore = clamp01(ratingScore + highConfidenceBoost)
	}

	availabilityScore := 0.0
	if tech.MaxDailyJobs > 0 {
		availabilityScore = float64(tech.MaxDailyJobs-tech.CurrentJobs) / float64(tech.MaxDailyJobs)
		if availabilityScore < 0 {
			availabilityScore = 0
		}
	}

	weightedRating := ratingScore * serviceRatingWeight
	weightedAvailability := availabilityScore * availabilityWeight
	dominant := dto.FactorServiceRating
	if weightedAvailability > weightedRating {
		dominant = dto.FactorAvailability
	}

	return dto.ScoreBreakdown{
		ServiceRatingScore:   ratingScore,
		AvailabilityScore:    availabilityScore,
		WeightedRatingScore:  weightedRating,
		WeightedAvailability: weightedAvailability,
		DominantFactor:       dominant,
		ServiceRating:        rating,
		ServiceReviewCount:   reviewCount,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
