package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/alexivanou/weather-dashboard/internal/cache"
	"github.com/alexivanou/weather-dashboard/internal/config"
	"github.com/alexivanou/weather-dashboard/internal/geo"
	"github.com/alexivanou/weather-dashboard/internal/metrics"
	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/alexivanou/weather-dashboard/internal/owm"
	"github.com/alexivanou/weather-dashboard/internal/suggest"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	suggestCacheMaxEntries = 500
	defaultUpstreamLimit   = 25

	metricsComponent = "server"
)

// SuggestService answers autocomplete queries for all clients of the backend.
// It ranks with suggest.Ranker and does not throttle.
type SuggestService struct {
	geocoder      Geocoder
	ranker        *suggest.Ranker
	cache         *cache.Cache[[]model.Suggestion]
	ttl           time.Duration
	upstreamLimit int
	group         singleflight.Group
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

// NewSuggestService creates a new suggestion service
func NewSuggestService(geocoder Geocoder, cfg config.SuggestConfig, logger *zap.Logger, m *metrics.Metrics) *SuggestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = suggest.DefaultCacheTTL
	}
	limit := cfg.UpstreamLimit
	if limit <= 0 {
		limit = defaultUpstreamLimit
	}

	return &SuggestService{
		geocoder:      geocoder,
		ranker:        suggest.NewRanker(cfg.HomeCountry, cfg.MaxPerCountry, cfg.MaxResults, suggest.WithUniqueNamePerCountry()),
		cache:         cache.New[[]model.Suggestion](suggestCacheMaxEntries),
		ttl:           ttl,
		upstreamLimit: limit,
		logger:        logger,
		metrics:       m,
	}
}

// Suggest returns ranked suggestions for the query. Short queries and
// upstream failures yield an empty list.
func (s *SuggestService) Suggest(ctx context.Context, query string) []model.Suggestion {
	key := suggest.NormalizeQuery(query)
	if utf8.RuneCountInString(key) < suggest.MinQueryLength {
		s.metrics.SuggestLookup(metricsComponent, "short")
		return []model.Suggestion{}
	}

	if cached, ok := s.cache.Get(key); ok {
		s.metrics.SuggestLookup(metricsComponent, "hit")
		return cached
	}
	s.metrics.SuggestLookup(metricsComponent, "miss")

	ch := s.group.DoChan(key, func() (interface{}, error) {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}

		raw, err := s.geocoder.Direct(context.WithoutCancel(ctx), key, s.upstreamLimit)
		if err != nil {
			s.metrics.SuggestLookup(metricsComponent, "failed")
			return nil, err
		}

		ranked := s.ranker.FilterAndDeduplicate(raw, key)
		s.cache.Set(key, ranked, s.ttl)
		return ranked, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			s.logger.Warn("City suggestions failed", zap.String("query", key), zap.Error(res.Err))
			return []model.Suggestion{}
		}
		return res.Val.([]model.Suggestion)
	case <-ctx.Done():
		return []model.Suggestion{}
	}
}

// Reverse resolves coordinates to a place
func (s *SuggestService) Reverse(ctx context.Context, lat, lon float64) (*model.Place, error) {
	place, err := s.geocoder.Reverse(ctx, lat, lon)
	if errors.Is(err, owm.ErrNotFound) || errors.Is(err, geo.ErrNotFound) {
		return nil, ErrPlaceNotFound
	}
	if err != nil {
		return nil, err
	}
	return place, nil
}

// CacheLen returns the number of cached entries
func (s *SuggestService) CacheLen() int {
	return s.cache.Len()
}

// ClearExpired drops stale suggestion lists and returns how many were removed
func (s *SuggestService) ClearExpired() int {
	return s.cache.ClearExpired()
}
