package usecase

import (
	"context"
	"fmt"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/core/port"
)

const mostVisitedLimit = 5

// AnalyticsService aggregates attraction traffic for administrators.
type AnalyticsService struct {
	attractions port.AttractionRepository
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(attractions port.AttractionRepository) *AnalyticsService {
	return &AnalyticsService{attractions: attractions}
}

// Traffic returns the total click count and the names of the busiest attractions.
// Attractions that were never visited are not ranked.
func (s *AnalyticsService) Traffic(ctx context.Context) (domain.TrafficAnalytics, error) {
	total, err := s.attractions.TotalTraffic(ctx)
	if err != nil {
		return domain.TrafficAnalytics{}, fmt.Errorf("total traffic: %w", err)
	}

	top, err := s.attractions.TopByTraffic(ctx, mostVisitedLimit)
	if err != nil {
		return domain.TrafficAnalytics{}, fmt.Errorf("top attractions: %w", err)
	}

	names := make([]string, 0, len(top))
	for _, attraction := range top {
		if attraction.TrafficCount <= 0 {
			continue
		}
		names = append(names, attraction.Name)
	}

	return domain.TrafficAnalytics{
		TotalClicks:            total,
		MostVisitedAttractions: names,
	}, nil
}
