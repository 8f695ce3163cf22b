package api

import (
	"net/http"

	"github.com/alexivanou/weather-dashboard/internal/metrics"
	"github.com/alexivanou/weather-dashboard/internal/service"
	"github.com/alexivanou/weather-dashboard/internal/stats"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, m *metrics.Metrics, logger *zap.Logger) *mux.Router {
	handler := NewHandler(service, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()
	router.Use(RequestID, Instrument(logger, m))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)
	if m != nil {
		router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/city_suggestions", handler.CitySuggestions).Methods(http.MethodGet)
	v1.HandleFunc("/reverse_geocode", handler.ReverseGeocode).Methods(http.MethodGet)
	v1.HandleFunc("/weather", handler.Weather).Methods(http.MethodGet)
	v1.HandleFunc("/weather_by_coords", handler.WeatherByCoords).Methods(http.MethodGet)
	v1.HandleFunc("/forecast", handler.Forecast).Methods(http.MethodGet)
	v1.HandleFunc("/favorites", handler.ListFavorites).Methods(http.MethodGet)
	v1.HandleFunc("/favorites", handler.AddFavorite).Methods(http.MethodPost)
	v1.HandleFunc("/favorites", handler.RemoveFavorite).Methods(http.MethodDelete)
	v1.HandleFunc("/analytics", handler.Analytics).Methods(http.MethodGet)
	v1.HandleFunc("/popular_cities", handler.PopularCities).Methods(http.MethodGet)
	if statsCollector != nil {
		v1.HandleFunc("/stats", statsHandler.GetStats).Methods(http.MethodGet)
	}

	return router
}
