package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/alexivanou/weather-dashboard/internal/owm"
	"github.com/alexivanou/weather-dashboard/internal/service"
	"github.com/alexivanou/weather-dashboard/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockService is a mock implementation of ServiceInterface
type MockService struct {
	mock.Mock
}

func (m *MockService) Suggest(ctx context.Context, query string) []model.Suggestion {
	args := m.Called(ctx, query)
	return args.Get(0).([]model.Suggestion)
}

func (m *MockService) ReverseGeocode(ctx context.Context, lat, lon float64) (*model.Place, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Place), args.Error(1)
}

func (m *MockService) CurrentByCity(ctx context.Context, req model.WeatherRequest, clientIP string) (*model.WeatherResponse, error) {
	args := m.Called(ctx, req, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WeatherResponse), args.Error(1)
}

func (m *MockService) CurrentByCoords(ctx context.Context, req model.WeatherRequest, clientIP string) (*model.WeatherResponse, error) {
	args := m.Called(ctx, req, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WeatherResponse), args.Error(1)
}

func (m *MockService) Forecast(ctx context.Context, req model.WeatherRequest, clientIP string) (*model.WeatherResponse, error) {
	args := m.Called(ctx, req, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WeatherResponse), args.Error(1)
}

func (m *MockService) ListFavorites(ctx context.Context, owner string) ([]model.Favorite, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Favorite), args.Error(1)
}

func (m *MockService) AddFavorite(ctx context.Context, owner string, req model.FavoriteRequest) (*model.Favorite, error) {
	args := m.Called(ctx, owner, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Favorite), args.Error(1)
}

func (m *MockService) RemoveFavorite(ctx context.Context, owner string, req model.FavoriteRequest) error {
	args := m.Called(ctx, owner, req)
	return args.Error(0)
}

func (m *MockService) Analytics(ctx context.Context) (*model.AnalyticsResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalyticsResponse), args.Error(1)
}

func (m *MockService) PopularCities(ctx context.Context, limit int) ([]model.PopularCity, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PopularCity), args.Error(1)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestHandler_CitySuggestions(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)

	lat, lon := 59.91, 10.75
	mockService.On("Suggest", mock.Anything, "Osl").Return([]model.Suggestion{
		{Name: "Oslo", Country: "NO", Lat: &lat, Lon: &lon},
	})
	mockService.On("Suggest", mock.Anything, "").Return([]model.Suggestion{})

	t.Run("returns ranked suggestions", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/city_suggestions?q=Osl", nil)
		rr := httptest.NewRecorder()
		handler.CitySuggestions(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got []model.Suggestion
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Oslo", got[0].Name)
	})

	t.Run("missing query yields empty list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/city_suggestions", nil)
		rr := httptest.NewRecorder()
		handler.CitySuggestions(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})
}

func TestHandler_Weather(t *testing.T) {
	payload := json.RawMessage(`{"name":"Oslo","sys":{"country":"NO"}}`)
	_, cityErr := validate.CityName("Oslo123")

	tests := []struct {
		name           string
		query          string
		mockSetup      func(*MockService)
		expectedStatus int
		expectedError  string
	}{
		{
			name:  "successful request",
			query: "city=Oslo&country=NO&unit=metric",
			mockSetup: func(ms *MockService) {
				ms.On("CurrentByCity", mock.Anything,
					model.WeatherRequest{City: "Oslo", Country: "NO", Unit: "metric"}, "192.0.2.1").
					Return(&model.WeatherResponse{Data: payload}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing city",
			query:          "country=NO",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "parameter 'city' is required",
		},
		{
			name:  "invalid city name",
			query: "city=Oslo123",
			mockSetup: func(ms *MockService) {
				ms.On("CurrentByCity", mock.Anything, mock.Anything, mock.Anything).Return(nil, cityErr)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  cityErr.(*validate.Error).Message,
		},
		{
			name:  "upstream error",
			query: "city=Atlantis",
			mockSetup: func(ms *MockService) {
				ms.On("CurrentByCity", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, &owm.APIError{Status: http.StatusNotFound, Message: "City not found"})
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "City not found",
		},
		{
			name:  "internal error",
			query: "city=Oslo",
			mockSetup: func(ms *MockService) {
				ms.On("CurrentByCity", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}
			handler := NewHandler(mockService, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/weather?"+tt.query, nil)
			rr := httptest.NewRecorder()
			handler.Weather(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeError(t, rr))
			} else {
				var resp model.WeatherResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.JSONEq(t, string(payload), string(resp.Data))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_Forecast(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)

	mockService.On("Forecast", mock.Anything,
		model.WeatherRequest{City: "Bergen"}, "203.0.113.7").
		Return(&model.WeatherResponse{Data: json.RawMessage(`{"list":[]}`), FromCache: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast?city=Bergen", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rr := httptest.NewRecorder()
	handler.Forecast(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp model.WeatherResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.FromCache)
	mockService.AssertExpectations(t)
}

func TestHandler_Coordinates(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		call           func(*Handler, http.ResponseWriter, *http.Request)
		mockSetup      func(*MockService)
		expectedStatus int
		expectedError  string
	}{
		{
			name:   "weather by coords",
			target: "/api/v1/weather_by_coords?lat=59.91&lon=10.75&unit=imperial",
			call:   (*Handler).WeatherByCoords,
			mockSetup: func(ms *MockService) {
				ms.On("CurrentByCoords", mock.Anything,
					model.WeatherRequest{Lat: 59.91, Lon: 10.75, Unit: "imperial"}, "192.0.2.1").
					Return(&model.WeatherResponse{Data: json.RawMessage(`{}`)}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing lon",
			target:         "/api/v1/weather_by_coords?lat=59.91",
			call:           (*Handler).WeatherByCoords,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "parameters 'lat' and 'lon' are required",
		},
		{
			name:           "latitude out of range",
			target:         "/api/v1/reverse_geocode?lat=91&lon=10",
			call:           (*Handler).ReverseGeocode,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Latitude must be between -90 and 90",
		},
		{
			name:   "reverse geocode",
			target: "/api/v1/reverse_geocode?lat=60.39&lon=5.32",
			call:   (*Handler).ReverseGeocode,
			mockSetup: func(ms *MockService) {
				ms.On("ReverseGeocode", mock.Anything, 60.39, 5.32).
					Return(&model.Place{City: "Bergen", Country: "NO"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "reverse geocode finds nothing",
			target: "/api/v1/reverse_geocode?lat=0&lon=-160",
			call:   (*Handler).ReverseGeocode,
			mockSetup: func(ms *MockService) {
				ms.On("ReverseGeocode", mock.Anything, 0.0, -160.0).
					Return(nil, service.ErrPlaceNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  owm.UserMessage(owm.ErrNotFound),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}
			handler := NewHandler(mockService, nil)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rr := httptest.NewRecorder()
			tt.call(handler, rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeError(t, rr))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_Favorites(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		body           string
		mockSetup      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "add favorite",
			method: http.MethodPost,
			body:   `{"city":"Tromsø","country":"NO"}`,
			mockSetup: func(ms *MockService) {
				ms.On("AddFavorite", mock.Anything, "192.0.2.1", model.FavoriteRequest{City: "Tromsø", Country: "NO"}).
					Return(&model.Favorite{City: "Tromsø", Country: "NO"}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"message":"Favorite added"}`,
		},
		{
			name:   "add duplicate",
			method: http.MethodPost,
			body:   `{"city":"Oslo"}`,
			mockSetup: func(ms *MockService) {
				ms.On("AddFavorite", mock.Anything, mock.Anything, mock.Anything).Return(nil, service.ErrFavoriteExists)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"Favorite already exists"}`,
		},
		{
			name:           "malformed body",
			method:         http.MethodPost,
			body:           `{"city":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request body"}`,
		},
		{
			name:           "missing city",
			method:         http.MethodDelete,
			body:           `{"country":"NO"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"field 'city' is required"}`,
		},
		{
			name:   "remove favorite",
			method: http.MethodDelete,
			body:   `{"city":"Oslo","country":"NO"}`,
			mockSetup: func(ms *MockService) {
				ms.On("RemoveFavorite", mock.Anything, "192.0.2.1", model.FavoriteRequest{City: "Oslo", Country: "NO"}).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"Favorite removed"}`,
		},
		{
			name:   "remove missing favorite",
			method: http.MethodDelete,
			body:   `{"city":"Oslo"}`,
			mockSetup: func(ms *MockService) {
				ms.On("RemoveFavorite", mock.Anything, mock.Anything, mock.Anything).Return(service.ErrFavoriteNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Favorite not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}
			handler := NewHandler(mockService, nil)

			req := httptest.NewRequest(tt.method, "/api/v1/favorites", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			if tt.method == http.MethodPost {
				handler.AddFavorite(rr, req)
			} else {
				handler.RemoveFavorite(rr, req)
			}

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_ListFavorites(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)

	mockService.On("ListFavorites", mock.Anything, "192.0.2.1").
		Return([]model.Favorite{{City: "Oslo", Country: "NO"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/favorites", nil)
	rr := httptest.NewRecorder()
	handler.ListFavorites(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var favs []model.Favorite
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &favs))
	require.Len(t, favs, 1)
	assert.Equal(t, "Oslo", favs[0].City)
}

func TestHandler_PopularCities(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		mockSetup      func(*MockService)
		expectedStatus int
	}{
		{
			name: "default limit",
			mockSetup: func(ms *MockService) {
				ms.On("PopularCities", mock.Anything, 0).Return([]model.PopularCity{{City: "Oslo, NO", Count: 3}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "explicit limit",
			query: "?limit=5",
			mockSetup: func(ms *MockService) {
				ms.On("PopularCities", mock.Anything, 5).Return([]model.PopularCity{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid limit",
			query:          "?limit=abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative limit",
			query:          "?limit=-1",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}
			handler := NewHandler(mockService, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/popular_cities"+tt.query, nil)
			rr := httptest.NewRecorder()
			handler.PopularCities(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_Analytics(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)

	mockService.On("Analytics", mock.Anything).Return(&model.AnalyticsResponse{
		Stats: model.QueryStats{
			TotalQueries:    4,
			AvgResponseTime: 120.5,
			Endpoints:       map[string]int64{"weather": 3, "forecast": 1},
		},
		PopularCities: []model.PopularCity{{City: "Oslo, NO", Count: 3}},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil)
	rr := httptest.NewRecorder()
	handler.Analytics(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp model.AnalyticsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp.Stats.TotalQueries)
	assert.Equal(t, int64(3), resp.Stats.Endpoints["weather"])
}

func TestRouter_RequestID(t *testing.T) {
	mockService := new(MockService)
	router := NewRouter(mockService, nil, nil, nil)

	t.Run("assigns an id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, rr.Header().Get(RequestIDHeader), 36)
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
	})

	t.Run("stats route absent without collector", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", " 198.51.100.4 , 10.0.0.1")
	assert.Equal(t, "198.51.100.4", clientIP(req))

	req.Header.Del("X-Forwarded-For")
	req.RemoteAddr = "unix-socket"
	assert.Equal(t, "unix-socket", clientIP(req))
}
