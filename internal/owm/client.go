// Package owm is a client for the OpenWeatherMap weather and geocoding APIs.
package owm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alexivanou/weather-dashboard/internal/config"
	"github.com/alexivanou/weather-dashboard/internal/metrics"
	"github.com/alexivanou/weather-dashboard/internal/model"
	"go.uber.org/zap"
)

// Client talks to OpenWeatherMap
type Client struct {
	apiKey     string
	baseURL    string
	geoURL     string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a new client from upstream configuration
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, m *metrics.Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		geoURL:     strings.TrimRight(cfg.GeoURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		metrics:    m,
	}
}

type geoLocation struct {
	Name       string   `json:"name"`
	Country    string   `json:"country"`
	State      string   `json:"state"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
	Population int      `json:"population"`
}

// Direct geocodes a free-text query into candidate cities
func (c *Client) Direct(ctx context.Context, query string, limit int) ([]model.Suggestion, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "direct", c.geoURL+"/direct", params)
	if err != nil {
		return nil, err
	}

	var locations []geoLocation
	if err := json.Unmarshal(body, &locations); err != nil {
		return nil, invalidResponse(err)
	}

	suggestions := make([]model.Suggestion, 0, len(locations))
	for _, loc := range locations {
		suggestions = append(suggestions, model.Suggestion{
			Name:       loc.Name,
			Country:    loc.Country,
			State:      loc.State,
			Population: loc.Population,
			Lat:        loc.Lat,
			Lon:        loc.Lon,
		})
	}
	return suggestions, nil
}

// Reverse resolves coordinates to the closest named place
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*model.Place, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("limit", "1")

	body, err := c.get(ctx, "reverse", c.geoURL+"/reverse", params)
	if err != nil {
		return nil, err
	}

	var locations []geoLocation
	if err := json.Unmarshal(body, &locations); err != nil {
		return nil, invalidResponse(err)
	}
	if len(locations) == 0 {
		return nil, ErrNotFound
	}

	loc := locations[0]
	place := &model.Place{City: loc.Name, Country: loc.Country, State: loc.State}
	if place.City == "" {
		place.City = "Unknown"
	}
	if place.Country == "" {
		place.Country = "Unknown"
	}
	return place, nil
}

// CurrentByCity returns the raw current weather payload for a city
func (c *Client) CurrentByCity(ctx context.Context, city, country, unit string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("q", city+","+country)
	params.Set("units", unit)
	return c.getPayload(ctx, "weather", params)
}

// CurrentByCoords returns the raw current weather payload for coordinates
func (c *Client) CurrentByCoords(ctx context.Context, lat, lon float64, unit string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("units", unit)
	return c.getPayload(ctx, "weather", params)
}

// Forecast returns the raw five day forecast payload for a city
func (c *Client) Forecast(ctx context.Context, city, country, unit string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("q", city+","+country)
	params.Set("units", unit)
	return c.getPayload(ctx, "forecast", params)
}

func (c *Client) getPayload(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	body, err := c.get(ctx, endpoint, c.baseURL+"/"+endpoint, params)
	if err != nil {
		return nil, err
	}
	if err := checkCode(body); err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string, params url.Values) ([]byte, error) {
	params.Set("appid", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequest(endpoint, "error")
		c.logger.Error("Upstream request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.UpstreamRequest(endpoint, "error")
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.UpstreamRequest(endpoint, "error")
		c.logger.Error("Upstream returned error status",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return nil, statusError(resp.StatusCode)
	}

	c.metrics.UpstreamRequest(endpoint, "ok")
	return body, nil
}

// checkCode rejects payloads whose "cod" field (string or number) is not 200
func checkCode(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return invalidResponse(errors.New("payload is not an object"))
	}

	var envelope struct {
		Cod     json.RawMessage `json:"cod"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return invalidResponse(err)
	}
	if len(envelope.Cod) == 0 {
		return nil
	}

	code, err := strconv.Atoi(strings.Trim(string(envelope.Cod), `"`))
	if err == nil && code == http.StatusOK {
		return nil
	}

	msg := envelope.Message
	if msg == "" {
		msg = "Unknown error from weather API"
	}
	status := code
	if err != nil {
		status = 0
	}
	return &APIError{Status: status, Message: msg}
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &APIError{
			Status:  http.StatusGatewayTimeout,
			Message: "The request took too long. Please try again later.",
			Err:     fmt.Errorf("%w: %v", ErrUnavailable, err),
		}
	}
	return &APIError{
		Status:  http.StatusBadGateway,
		Message: "Could not connect to the weather service. Check your internet connection.",
		Err:     fmt.Errorf("%w: %v", ErrUnavailable, err),
	}
}

func invalidResponse(err error) error {
	return &APIError{
		Status:  http.StatusBadGateway,
		Message: "Invalid response from the weather service",
		Err:     err,
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
