package service

import (
	"context"
	"fmt"

	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/alexivanou/weather-dashboard/internal/repository"
)

const (
	defaultPopularLimit = 10
	maxPopularLimit     = 50
)

// AnalyticsService aggregates the weather query log
type AnalyticsService struct {
	repo repository.QueryLogRepository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo repository.QueryLogRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// Summary returns query statistics with the most popular cities
func (s *AnalyticsService) Summary(ctx context.Context) (*model.AnalyticsResponse, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get query stats: %w", err)
	}

	popular, err := s.PopularCities(ctx, defaultPopularLimit)
	if err != nil {
		return nil, err
	}

	return &model.AnalyticsResponse{Stats: *stats, PopularCities: popular}, nil
}

// PopularCities returns the most queried cities. Non-positive limits select
// the default, larger ones are capped.
func (s *AnalyticsService) PopularCities(ctx context.Context, limit int) ([]model.PopularCity, error) {
	if limit <= 0 {
		limit = defaultPopularLimit
	}
	if limit > maxPopularLimit {
		limit = maxPopularLimit
	}

	cities, err := s.repo.PopularCities(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get popular cities: %w", err)
	}
	return cities, nil
}
