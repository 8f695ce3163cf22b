package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCityName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  string
	}{
		{name: "Simple", input: "Oslo", expected: "Oslo"},
		{name: "Trimmed", input: "  Bergen ", expected: "Bergen"},
		{name: "Nordic letters", input: "Tromsø", expected: "Tromsø"},
		{name: "Punctuation", input: "St. John's", expected: "St. John's"},
		{name: "Hyphen and comma", input: "Stratford-upon-Avon, GB", expected: "Stratford-upon-Avon, GB"},
		{name: "Empty", input: "   ", wantErr: "City name cannot be empty"},
		{name: "Too short", input: "Å", wantErr: "City name must be at least 2 characters"},
		{name: "Too long", input: strings.Repeat("a", 101), wantErr: "City name is too long"},
		{name: "Digits", input: "Oslo1", wantErr: "City name contains invalid characters"},
		{name: "Markup", input: "<script>", wantErr: "City name contains invalid characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CityName(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				var verr *Error
				assert.True(t, errors.As(err, &verr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCountryCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{input: "", expected: ""},
		{input: "no", expected: "NO"},
		{input: " se ", expected: "SE"},
		{input: "NOR", wantErr: true},
		{input: "N1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := CountryCode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCoordinates(t *testing.T) {
	lat, lon, err := Coordinates("59.91", " 10.75")
	require.NoError(t, err)
	assert.Equal(t, 59.91, lat)
	assert.Equal(t, 10.75, lon)

	_, _, err = Coordinates("abc", "10")
	assert.EqualError(t, err, "Coordinates must be valid numbers")

	_, _, err = Coordinates("", "")
	assert.Error(t, err)

	_, _, err = Coordinates("91", "10")
	assert.EqualError(t, err, "Latitude must be between -90 and 90")

	_, _, err = Coordinates("10", "-181")
	assert.EqualError(t, err, "Longitude must be between -180 and 180")

	_, _, err = Coordinates("NaN", "10")
	assert.Error(t, err)
}

func TestUnit(t *testing.T) {
	assert.Equal(t, "metric", Unit("", "metric"))
	assert.Equal(t, "imperial", Unit("Imperial", "metric"))
	assert.Equal(t, "standard", Unit("standard", "metric"))
	assert.Equal(t, "metric", Unit("kelvin", "metric"))
}
