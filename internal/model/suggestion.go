package model

import "fmt"

// Suggestion is one candidate city offered while the user types
type Suggestion struct {
	Name         string   `json:"name"`
	Country      string   `json:"country"`
	State        string   `json:"state,omitempty"`
	Population   int      `json:"population,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lon          *float64 `json:"lon,omitempty"`
	IsExactMatch bool     `json:"is_exact_match,omitempty"`
	DisplayName  string   `json:"display_name,omitempty"`
}

// Label returns the display name, deriving it from name, state and country when unset
func (s Suggestion) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	if s.State != "" && s.State != s.Name {
		return fmt.Sprintf("%s, %s, %s", s.Name, s.State, s.Country)
	}
	return fmt.Sprintf("%s, %s", s.Name, s.Country)
}

// Place is the result of reverse geocoding a coordinate pair
type Place struct {
	City    string `json:"city"`
	Country string `json:"country"`
	State   string `json:"state"`
}
