package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/alexivanou/weather-dashboard/internal/model"
)

var (
	// ErrFavoriteExists is returned when the owner already saved the city
	ErrFavoriteExists = errors.New("favorite already exists")
	// ErrFavoriteNotFound is returned when removing a city that is not saved
	ErrFavoriteNotFound = errors.New("favorite not found")
	// ErrPlaceNotFound is returned when reverse geocoding yields nothing
	ErrPlaceNotFound = errors.New("could not find a place name for the coordinates")
)

// Geocoder resolves place names to candidates and coordinates to places.
// Both the OpenWeatherMap client and the local GeoNames index satisfy it.
type Geocoder interface {
	Direct(ctx context.Context, query string, limit int) ([]model.Suggestion, error)
	Reverse(ctx context.Context, lat, lon float64) (*model.Place, error)
}

// WeatherProvider returns raw weather payloads
type WeatherProvider interface {
	CurrentByCity(ctx context.Context, city, country, unit string) (json.RawMessage, error)
	CurrentByCoords(ctx context.Context, lat, lon float64, unit string) (json.RawMessage, error)
	Forecast(ctx context.Context, city, country, unit string) (json.RawMessage, error)
}

// Service provides business logic for the API
type Service struct {
	weather   *WeatherService
	suggest   *SuggestService
	favorites *FavoritesService
	analytics *AnalyticsService
}

// NewService creates a new service instance
func NewService(
	weather *WeatherService,
	suggest *SuggestService,
	favorites *FavoritesService,
	analytics *AnalyticsService,
) *Service {
	return &Service{
		weather:   weather,
		suggest:   suggest,
		favorites: favorites,
		analytics: analytics,
	}
}

func (s *Service) Suggest(ctx context.Context, query string) []model.Suggestion {
	return s.suggest.Suggest(ctx, query)
}

func (s *Service) ReverseGeocode(ctx context.Context, lat, lon float64) (*model.Place, error) {
	return s.suggest.Reverse(ctx, lat, lon)
}

func (s *Service) CurrentByCity(ctx context.Context, req model.WeatherRequest, clientIP string) (*model.WeatherResponse, error) {
	return s.weather.CurrentByCity(ctx, req, clientIP)
}

func (s *Service) CurrentByCoords(ctx context.Context, req model.WeatherRequest, clientIP string) (*model.WeatherResponse, error) {
	return s.weather.CurrentByCoords(ctx, req, clientIP)
}

func (s *Service) Forecast(ctx context.Context, req model.WeatherRequest, clientIP string) (*model.WeatherResponse, error) {
	return s.weather.Forecast(ctx, req, clientIP)
}

func (s *Service) ListFavorites(ctx context.Context, owner string) ([]model.Favorite, error) {
	return s.favorites.List(ctx, owner)
}

func (s *Service) AddFavorite(ctx context.Context, owner string, req model.FavoriteRequest) (*model.Favorite, error) {
	return s.favorites.Add(ctx, owner, req)
}

func (s *Service) RemoveFavorite(ctx context.Context, owner string, req model.FavoriteRequest) error {
	return s.favorites.Remove(ctx, owner, req)
}

func (s *Service) Analytics(ctx context.Context) (*model.AnalyticsResponse, error) {
	return s.analytics.Summary(ctx)
}

func (s *Service) PopularCities(ctx context.Context, limit int) ([]model.PopularCity, error) {
	return s.analytics.PopularCities(ctx, limit)
}
