package model

import "encoding/json"

// WeatherRequest represents the parameters of a weather or forecast lookup
type WeatherRequest struct {
	City    string
	Country string
	Lat     float64
	Lon     float64
	Unit    string
}

// WeatherResponse wraps an upstream payload
type WeatherResponse struct {
	Data      json.RawMessage `json:"data"`
	FromCache bool            `json:"from_cache"`
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of a successful mutation
type MessageResponse struct {
	Message string `json:"message"`
}

// AnalyticsResponse represents the response for the analytics dashboard
type AnalyticsResponse struct {
	Stats         QueryStats    `json:"stats"`
	PopularCities []PopularCity `json:"popular_cities"`
}
