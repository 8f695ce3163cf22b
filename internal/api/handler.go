package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/alexivanou/weather-dashboard/internal/owm"
	"github.com/alexivanou/weather-dashboard/internal/service"
	"github.com/alexivanou/weather-dashboard/internal/validate"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// CitySuggestions handles GET /api/v1/city_suggestions
func (h *Handler) CitySuggestions(w http.ResponseWriter, r *http.Request) {
	// Short or missing queries are answered with an empty list by the service
	suggestions := h.service.Suggest(r.Context(), r.URL.Query().Get("q"))
	h.writeJSON(w, http.StatusOK, suggestions)
}

// ReverseGeocode handles GET /api/v1/reverse_geocode
func (h *Handler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := h.coordinates(w, r)
	if !ok {
		return
	}

	place, err := h.service.ReverseGeocode(r.Context(), lat, lon)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, place)
}

// Weather handles GET /api/v1/weather
func (h *Handler) Weather(w http.ResponseWriter, r *http.Request) {
	req, ok := h.cityRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.service.CurrentByCity(r.Context(), req, clientIP(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// WeatherByCoords handles GET /api/v1/weather_by_coords
func (h *Handler) WeatherByCoords(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := h.coordinates(w, r)
	if !ok {
		return
	}

	req := model.WeatherRequest{Lat: lat, Lon: lon, Unit: r.URL.Query().Get("unit")}
	resp, err := h.service.CurrentByCoords(r.Context(), req, clientIP(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Forecast handles GET /api/v1/forecast
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	req, ok := h.cityRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Forecast(r.Context(), req, clientIP(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ListFavorites handles GET /api/v1/favorites
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.service.ListFavorites(r.Context(), clientIP(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, favs)
}

// AddFavorite handles POST /api/v1/favorites
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	req, ok := h.favoriteRequest(w, r)
	if !ok {
		return
	}

	if _, err := h.service.AddFavorite(r.Context(), clientIP(r), req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, model.MessageResponse{Message: "Favorite added"})
}

// RemoveFavorite handles DELETE /api/v1/favorites
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	req, ok := h.favoriteRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveFavorite(r.Context(), clientIP(r), req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Favorite removed"})
}

// Analytics handles GET /api/v1/analytics
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Analytics(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// PopularCities handles GET /api/v1/popular_cities
func (h *Handler) PopularCities(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
	}

	cities, err := h.service.PopularCities(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cities)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) cityRequest(w http.ResponseWriter, r *http.Request) (model.WeatherRequest, bool) {
	q := r.URL.Query()
	if strings.TrimSpace(q.Get("city")) == "" {
		h.writeError(w, http.StatusBadRequest, "parameter 'city' is required")
		return model.WeatherRequest{}, false
	}
	return model.WeatherRequest{
		City:    q.Get("city"),
		Country: q.Get("country"),
		Unit:    q.Get("unit"),
	}, true
}

func (h *Handler) coordinates(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")
	if strings.TrimSpace(latStr) == "" || strings.TrimSpace(lonStr) == "" {
		h.writeError(w, http.StatusBadRequest, "parameters 'lat' and 'lon' are required")
		return 0, 0, false
	}

	lat, lon, err := validate.Coordinates(latStr, lonStr)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return lat, lon, true
}

func (h *Handler) favoriteRequest(w http.ResponseWriter, r *http.Request) (model.FavoriteRequest, bool) {
	var req model.FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if strings.TrimSpace(req.City) == "" {
		h.writeError(w, http.StatusBadRequest, "field 'city' is required")
		return req, false
	}
	return req, true
}

// writeServiceError maps service and upstream errors onto HTTP responses
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *validate.Error
		apiErr *owm.APIError
	)

	switch {
	case errors.As(err, &verr):
		h.writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrFavoriteExists):
		h.writeError(w, http.StatusConflict, "Favorite already exists")
	case errors.Is(err, service.ErrFavoriteNotFound):
		h.writeError(w, http.StatusNotFound, "Favorite not found")
	case errors.Is(err, service.ErrPlaceNotFound):
		h.writeError(w, http.StatusNotFound, owm.UserMessage(owm.ErrNotFound))
	case errors.As(err, &apiErr):
		h.logger.Warn("Upstream request failed",
			zap.String("path", r.URL.Path),
			zap.Int("upstream_status", apiErr.Status),
			zap.Error(err),
		)
		h.writeError(w, http.StatusBadRequest, apiErr.Message)
	default:
		h.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, model.ErrorResponse{Error: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}

// clientIP returns the first X-Forwarded-For hop or the remote address
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
