package service

import (
	"context"
	"encoding/json"

	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockGeocoder implements Geocoder
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Direct(ctx context.Context, query string, limit int) ([]model.Suggestion, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Suggestion), args.Error(1)
}

func (m *MockGeocoder) Reverse(ctx context.Context, lat, lon float64) (*model.Place, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Place), args.Error(1)
}

// MockWeatherProvider implements WeatherProvider
type MockWeatherProvider struct {
	mock.Mock
}

func (m *MockWeatherProvider) CurrentByCity(ctx context.Context, city, country, unit string) (json.RawMessage, error) {
	args := m.Called(ctx, city, country, unit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockWeatherProvider) CurrentByCoords(ctx context.Context, lat, lon float64, unit string) (json.RawMessage, error) {
	args := m.Called(ctx, lat, lon, unit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockWeatherProvider) Forecast(ctx context.Context, city, country, unit string) (json.RawMessage, error) {
	args := m.Called(ctx, city, country, unit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// MockQueryLogRepository implements repository.QueryLogRepository
type MockQueryLogRepository struct {
	mock.Mock
}

func (m *MockQueryLogRepository) Log(ctx context.Context, entry *model.QueryLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockQueryLogRepository) Stats(ctx context.Context) (*model.QueryStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QueryStats), args.Error(1)
}

func (m *MockQueryLogRepository) PopularCities(ctx context.Context, limit int) ([]model.PopularCity, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PopularCity), args.Error(1)
}

// MockFavoriteRepository implements repository.FavoriteRepository
type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) List(ctx context.Context, owner string) ([]model.Favorite, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Favorite), args.Error(1)
}

func (m *MockFavoriteRepository) Add(ctx context.Context, fav *model.Favorite) error {
	args := m.Called(ctx, fav)
	return args.Error(0)
}

func (m *MockFavoriteRepository) Remove(ctx context.Context, owner, cityKey string) error {
	args := m.Called(ctx, owner, cityKey)
	return args.Error(0)
}

func (m *MockFavoriteRepository) Contains(ctx context.Context, owner, cityKey string) (bool, error) {
	args := m.Called(ctx, owner, cityKey)
	return args.Bool(0), args.Error(1)
}
