package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/TomiHiltunen/geohash-golang"
	"github.com/alexivanou/weather-dashboard/internal/cache"
	"github.com/alexivanou/weather-dashboard/internal/config"
	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/alexivanou/weather-dashboard/internal/repository"
	"github.com/alexivanou/weather-dashboard/internal/validate"
	"go.uber.org/zap"
)

const (
	weatherCacheMaxEntries = 1000
	// precision 6 cells are about 1.2km x 0.6km
	geohashPrecision = 6

	endpointWeather  = "weather"
	endpointCoords   = "coords"
	endpointForecast = "forecast"

	defaultCountry = "NO"
	unknownPlace   = "Unknown"
)

// WeatherService serves current weather and forecasts with caching and
// query analytics
type WeatherService struct {
	provider WeatherProvider
	queryLog repository.QueryLogRepository
	cache    *cache.Cache[json.RawMessage]
	cfg      config.WeatherConfig
	now      func() time.Time
	logger   *zap.Logger
}

// NewWeatherService creates a new weather service
func NewWeatherService(
	provider WeatherProvider,
	queryLog repository.QueryLogRepository,
	cfg config.WeatherConfig,
	logger *zap.Logger,
) *WeatherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultUnit == "" {
		cfg.DefaultUnit = "metric"
	}

	s := &WeatherService{
		provider: provider,
		queryLog: queryLog,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
	s.cache = cache.New[json.RawMessage](weatherCacheMaxEntries, cache.WithClock(func() time.Time { return s.now() }))
	return s
}

// CurrentByCity returns current weather for a city, default country NO
func (s *WeatherService) CurrentByCity(ctx context.Context, req model.WeatherRequest, clientIP string) (*model.WeatherResponse, error) {
	city, country, unit, err := s.cityParams(req)
	if err != nil {
		return nil, err
	}

	key := s.cityKey(endpointWeather, city, country, unit)
	if payload, ok := s.cache.Get(key); ok {
		return &model.WeatherResponse{Data: payload, FromCache: true}, nil
	}

	start := s.now()
	payload, err := s.provider.CurrentByCity(ctx, city, country, unit)
	s.logQuery(ctx, city, country, clientIP, endpointWeather, start)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, payload, s.cfg.CurrentTTL)
	return &model.WeatherResponse{Data: payload}, nil
}

// CurrentByCoords returns current weather for a coordinate pair. Nearby
// coordinates share a cache entry through their geohash.
func (s *WeatherService) CurrentByCoords(ctx context.Context, req model.WeatherRequest, clientIP string) (*model.WeatherResponse, error) {
	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
		return nil, &validate.Error{Field: "coordinates", Message: "Coordinates are out of range"}
	}
	unit := validate.Unit(req.Unit, s.cfg.DefaultUnit)

	key := fmt.Sprintf("%s:coords:%s:%s:%s",
		endpointWeather, geohash.EncodeWithPrecision(req.Lat, req.Lon, geohashPrecision), unit, s.hourBucket())
	if payload, ok := s.cache.Get(key); ok {
		return &model.WeatherResponse{Data: payload, FromCache: true}, nil
	}

	start := s.now()
	payload, err := s.provider.CurrentByCoords(ctx, req.Lat, req.Lon, unit)

	city, country := placeFromPayload(payload)
	s.logQuery(ctx, city, country, clientIP, endpointCoords, start)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, payload, s.cfg.CurrentTTL)
	return &model.WeatherResponse{Data: payload}, nil
}

// Forecast returns the 5 day forecast for a city
func (s *WeatherService) Forecast(ctx context.Context, req model.WeatherRequest, clientIP string) (*model.WeatherResponse, error) {
	city, country, unit, err := s.cityParams(req)
	if err != nil {
		return nil, err
	}

	key := s.cityKey(endpointForecast, city, country, unit)
	if payload, ok := s.cache.Get(key); ok {
		return &model.WeatherResponse{Data: payload, FromCache: true}, nil
	}

	start := s.now()
	payload, err := s.provider.Forecast(ctx, city, country, unit)
	s.logQuery(ctx, city, country, clientIP, endpointForecast, start)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, payload, s.cfg.ForecastTTL)
	return &model.WeatherResponse{Data: payload}, nil
}

// CacheLen returns the number of cached entries
func (s *WeatherService) CacheLen() int {
	return s.cache.Len()
}

// ClearExpired drops stale payloads and returns how many were removed
func (s *WeatherService) ClearExpired() int {
	return s.cache.ClearExpired()
}

func (s *WeatherService) cityParams(req model.WeatherRequest) (city, country, unit string, err error) {
	city, err = validate.CityName(req.City)
	if err != nil {
		return "", "", "", err
	}
	country, err = validate.CountryCode(req.Country)
	if err != nil {
		return "", "", "", err
	}
	if country == "" {
		country = defaultCountry
	}
	return city, country, validate.Unit(req.Unit, s.cfg.DefaultUnit), nil
}

func (s *WeatherService) cityKey(endpoint, city, country, unit string) string {
	return fmt.Sprintf("%s:city:%s:%s:%s:%s",
		endpoint, strings.ToLower(city), strings.ToLower(country), unit, s.hourBucket())
}

func (s *WeatherService) hourBucket() string {
	return s.now().UTC().Format("2006010215")
}

func (s *WeatherService) logQuery(ctx context.Context, city, country, clientIP, endpoint string, start time.Time) {
	if s.queryLog == nil {
		return
	}

	entry := &model.QueryLog{
		City:           city,
		Country:        country,
		ClientIP:       clientIP,
		ResponseTimeMs: float64(s.now().Sub(start).Microseconds()) / 1000,
		Endpoint:       endpoint,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.queryLog.Log(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("Failed to log weather query", zap.String("endpoint", endpoint), zap.Error(err))
	}
}

// placeFromPayload reads the city name and country from a current weather payload
func placeFromPayload(payload json.RawMessage) (string, string) {
	var body struct {
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
	}
	city, country := unknownPlace, unknownPlace
	if len(payload) == 0 || json.Unmarshal(payload, &body) != nil {
		return city, country
	}
	if body.Name != "" {
		city = body.Name
	}
	if body.Sys.Country != "" {
		country = body.Sys.Country
	}
	return city, country
}
