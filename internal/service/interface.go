package service

import (
	"context"

	"github.com/alexivanou/weather-dashboard/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	Suggest(ctx context.Context, query string) []model.Suggestion
	ReverseGeocode(ctx context.Context, lat, lon float64) (*model.Place, error)
	CurrentByCity(ctx context.Context, req model.WeatherRequest, clientIP string) (*model.WeatherResponse, error)
	CurrentByCoords(ctx context.Context, req model.WeatherRequest, clientIP string) (*model.WeatherResponse, error)
	Forecast(ctx context.Context, req model.WeatherRequest, clientIP string) (*model.WeatherResponse, error)
	ListFavorites(ctx context.Context, owner string) ([]model.Favorite, error)
	AddFavorite(ctx context.Context, owner string, req model.FavoriteRequest) (*model.Favorite, error)
	RemoveFavorite(ctx context.Context, owner string, req model.FavoriteRequest) error
	Analytics(ctx context.Context) (*model.AnalyticsResponse, error)
	PopularCities(ctx context.Context, limit int) ([]model.PopularCity, error)
}

var _ ServiceInterface = (*Service)(nil)
