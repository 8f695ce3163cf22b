// Package client calls the weather backend's HTTP API on behalf of the dashboard.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexivanou/weather-dashboard/internal/config"
	"github.com/alexivanou/weather-dashboard/internal/model"
	"go.uber.org/zap"
)

// ErrRequest wraps transport failures and unreadable responses
var ErrRequest = errors.New("backend request failed")

// StatusError is a non-2xx response without an error message in its body
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// Result is a weather or forecast response. Error is set when the backend
// reported an application-level failure instead of data.
type Result struct {
	Data      json.RawMessage
	FromCache bool
	Error     string
}

// Client talks to the backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client from the dashboard configuration
func New(cfg config.DashboardConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BackendURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchSuggestions returns the backend's suggestions for query
func (c *Client) FetchSuggestions(ctx context.Context, query string) ([]model.Suggestion, error) {
	params := url.Values{}
	params.Set("q", query)

	status, body, err := c.get(ctx, "/api/v1/city_suggestions", params)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &StatusError{Status: status}
	}

	var suggestions []model.Suggestion
	if err := json.Unmarshal(body, &suggestions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	return suggestions, nil
}

// Weather returns current weather for a city
func (c *Client) Weather(ctx context.Context, city, country, unit string) (*Result, error) {
	return c.result(ctx, "/api/v1/weather", cityParams(city, country, unit))
}

// WeatherByCoords returns current weather for a coordinate pair
func (c *Client) WeatherByCoords(ctx context.Context, lat, lon float64, unit string) (*Result, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	if unit != "" {
		params.Set("unit", unit)
	}
	return c.result(ctx, "/api/v1/weather_by_coords", params)
}

// Forecast returns the forecast for a city
func (c *Client) Forecast(ctx context.Context, city, country, unit string) (*Result, error) {
	return c.result(ctx, "/api/v1/forecast", cityParams(city, country, unit))
}

// ReverseGeocode resolves coordinates to a place name
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*model.Place, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	status, body, err := c.get(ctx, "/api/v1/reverse_geocode", params)
	if err != nil {
		return nil, err
	}
	if msg := errorMessage(body); msg != "" {
		return nil, fmt.Errorf("%w: %s", &StatusError{Status: status}, msg)
	}
	if status < 200 || status >= 300 {
		return nil, &StatusError{Status: status}
	}

	var place model.Place
	if err := json.Unmarshal(body, &place); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	return &place, nil
}

func cityParams(city, country, unit string) url.Values {
	params := url.Values{}
	params.Set("city", city)
	if country != "" {
		params.Set("country", country)
	}
	if unit != "" {
		params.Set("unit", unit)
	}
	return params
}

func (c *Client) result(ctx context.Context, path string, params url.Values) (*Result, error) {
	status, body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	// The backend reports validation and upstream failures as {"error": ...}
	if msg := errorMessage(body); msg != "" {
		return &Result{Error: msg}, nil
	}
	if status < 200 || status >= 300 {
		return nil, &StatusError{Status: status}
	}

	var resp model.WeatherResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	return &Result{Data: resp.Data, FromCache: resp.FromCache}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed", zap.String("path", path), zap.Error(err))
		return 0, nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	return resp.StatusCode, body, nil
}

func errorMessage(body []byte) string {
	var e model.ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Error
}
