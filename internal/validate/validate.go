// Package validate checks user input before any upstream call is made.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	minCityLength = 2
	maxCityLength = 100
)

var (
	cityNamePattern    = regexp.MustCompile(`^[\p{L}\s\-'.,]+$`)
	countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)
)

// Error is a validation failure with a message safe to show to users
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// CityName checks a city name and returns it trimmed
func CityName(city string) (string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", invalid("city", "City name cannot be empty")
	}

	n := utf8.RuneCountInString(city)
	if n < minCityLength {
		return "", invalid("city", "City name must be at least %d characters", minCityLength)
	}
	if n > maxCityLength {
		return "", invalid("city", "City name is too long")
	}
	if !cityNamePattern.MatchString(city) {
		return "", invalid("city", "City name contains invalid characters")
	}
	return city, nil
}

// CountryCode checks an optional ISO 3166-1 alpha-2 code and returns it upper-cased
func CountryCode(country string) (string, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return "", nil
	}
	if utf8.RuneCountInString(country) != 2 {
		return "", invalid("country", "Country code must be 2 characters (ISO 3166-1 alpha-2)")
	}
	if !countryCodePattern.MatchString(country) {
		return "", invalid("country", "Country code may only contain letters")
	}
	return country, nil
}

// Coordinates parses and range-checks a latitude/longitude pair
func Coordinates(lat, lon string) (float64, float64, error) {
	latF, errLat := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	lonF, errLon := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if errLat != nil || errLon != nil || math.IsNaN(latF) || math.IsNaN(lonF) {
		return 0, 0, invalid("coordinates", "Coordinates must be valid numbers")
	}
	if latF < -90 || latF > 90 {
		return 0, 0, invalid("lat", "Latitude must be between -90 and 90")
	}
	if lonF < -180 || lonF > 180 {
		return 0, 0, invalid("lon", "Longitude must be between -180 and 180")
	}
	return latF, lonF, nil
}

// Unit returns the unit system, falling back to def for unknown values
func Unit(unit, def string) string {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "metric":
		return "metric"
	case "imperial":
		return "imperial"
	case "standard":
		return "standard"
	}
	return def
}
