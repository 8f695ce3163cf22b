package suggest

import (
	"testing"

	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(list []model.Suggestion) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.Name+"/"+s.Country)
	}
	return out
}

func TestRanker_FilterAndDeduplicate(t *testing.T) {
	ranker := NewRanker("NO", 2, 8)

	tests := []struct {
		name     string
		raw      []model.Suggestion
		query    string
		expected []string
	}{
		{
			name:     "empty input",
			raw:      nil,
			query:    "oslo",
			expected: []string{},
		},
		{
			name: "duplicate with empty state collapses",
			raw: []model.Suggestion{
				{Name: "Oslo", Country: "NO", Population: 1000000},
				{Name: "Oslo", Country: "NO", Population: 1000000, State: ""},
			},
			query:    "oslo",
			expected: []string{"Oslo/NO"},
		},
		{
			name: "dedup key ignores name case",
			raw: []model.Suggestion{
				{Name: "Oslo", Country: "NO"},
				{Name: "OSLO", Country: "NO"},
			},
			query:    "oslo",
			expected: []string{"Oslo/NO"},
		},
		{
			name: "different states are distinct",
			raw: []model.Suggestion{
				{Name: "Springfield", Country: "US", State: "Illinois", Population: 114000},
				{Name: "Springfield", Country: "US", State: "Missouri", Population: 169000},
			},
			query:    "spring",
			expected: []string{"Springfield/US", "Springfield/US"},
		},
		{
			name: "per country cap keeps the two most populous",
			raw: []model.Suggestion{
				{Name: "Portland", Country: "US", State: "Maine", Population: 68000},
				{Name: "Portland", Country: "US", State: "Oregon", Population: 650000},
				{Name: "Portland", Country: "US", State: "Texas", Population: 15000},
			},
			query:    "portland",
			expected: []string{"Portland/US", "Portland/US"},
		},
		{
			name: "prefix match ranks first",
			raw: []model.Suggestion{
				{Name: "Stavanger", Country: "GB", Population: 100},
				{Name: "Berg", Country: "GB", Population: 100},
			},
			query:    "berg",
			expected: []string{"Berg/GB", "Stavanger/GB"},
		},
		{
			name: "home country beats population among prefix ties",
			raw: []model.Suggestion{
				{Name: "Bergen", Country: "DE", Population: 500000},
				{Name: "Bergen", Country: "NO", Population: 285000},
			},
			query:    "berg",
			expected: []string{"Bergen/NO", "Bergen/DE"},
		},
		{
			name: "prefix match beats home country",
			raw: []model.Suggestion{
				{Name: "Nordoslo", Country: "NO", Population: 900000},
				{Name: "Oslob", Country: "PH", Population: 27000},
			},
			query:    "oslo",
			expected: []string{"Oslob/PH", "Nordoslo/NO"},
		},
		{
			name: "shorter name breaks population tie",
			raw: []model.Suggestion{
				{Name: "Molde Sentrum", Country: "SE"},
				{Name: "Molde", Country: "SE"},
			},
			query:    "mol",
			expected: []string{"Molde/SE", "Molde Sentrum/SE"},
		},
		{
			name: "missing name or country is skipped",
			raw: []model.Suggestion{
				{Name: "", Country: "NO"},
				{Name: "Tromsø", Country: ""},
				{Name: "Tromsø", Country: "NO"},
			},
			query:    "tr",
			expected: []string{"Tromsø/NO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ranker.FilterAndDeduplicate(tt.raw, tt.query)
			require.NotNil(t, result)
			assert.Equal(t, tt.expected, names(result))
		})
	}
}

func TestRanker_PerCountryCapPrefersPopulation(t *testing.T) {
	ranker := NewRanker("NO", 2, 8)
	raw := []model.Suggestion{
		{Name: "Austin", Country: "US", State: "Minnesota", Population: 25000},
		{Name: "Austin", Country: "US", State: "Texas", Population: 960000},
		{Name: "Austin", Country: "US", State: "Indiana", Population: 4000},
	}

	result := ranker.FilterAndDeduplicate(raw, "austin")
	require.Len(t, result, 2)
	assert.Equal(t, "Texas", result[0].State)
	assert.Equal(t, "Minnesota", result[1].State)
}

func TestRanker_TotalCap(t *testing.T) {
	ranker := NewRanker("NO", 2, 8)
	countries := []string{"NO", "SE", "DK", "FI", "IS", "DE", "GB", "FR", "ES", "IT"}
	var raw []model.Suggestion
	for _, c := range countries {
		raw = append(raw,
			model.Suggestion{Name: "Lund", Country: c, State: "a"},
			model.Suggestion{Name: "Lund", Country: c, State: "b"},
		)
	}

	result := ranker.FilterAndDeduplicate(raw, "lund")
	assert.Len(t, result, 8)
}

func TestRanker_DoesNotReorderInput(t *testing.T) {
	ranker := NewRanker("NO", 2, 8)
	raw := []model.Suggestion{
		{Name: "Small", Country: "SE", Population: 1},
		{Name: "Smaland", Country: "SE", Population: 100},
	}
	ranker.FilterAndDeduplicate(raw, "sma")
	assert.Equal(t, "Small", raw[0].Name)
}

func TestRanker_FillsDisplayFields(t *testing.T) {
	ranker := NewRanker("NO", 2, 8)
	raw := []model.Suggestion{
		{Name: "Bergen", Country: "NO", State: "Vestland"},
		{Name: "Voss", Country: "NO", DisplayName: "Voss kommune"},
	}

	result := ranker.FilterAndDeduplicate(raw, "berg")
	require.Len(t, result, 2)
	assert.True(t, result[0].IsExactMatch)
	assert.Equal(t, "Bergen, Vestland, NO", result[0].DisplayName)
	assert.False(t, result[1].IsExactMatch)
	assert.Equal(t, "Voss kommune", result[1].DisplayName)
}

func TestRanker_KeepsSuppliedExactMatch(t *testing.T) {
	ranker := NewRanker("NO", 2, 8)
	raw := []model.Suggestion{
		{Name: "Kristiansand", Country: "NO", IsExactMatch: true},
	}

	result := ranker.FilterAndDeduplicate(raw, "kristi")
	require.Len(t, result, 1)
	assert.True(t, result[0].IsExactMatch)

	result = ranker.FilterAndDeduplicate(raw, "sand")
	require.Len(t, result, 1)
	assert.True(t, result[0].IsExactMatch)
}

func TestRanker_UniqueNamePerCountry(t *testing.T) {
	raw := []model.Suggestion{
		{Name: "Springfield", Country: "US", State: "Missouri", Population: 169000},
		{Name: "Springfield", Country: "US", State: "Illinois", Population: 114000},
		{Name: "springfield", Country: "AU", State: "Queensland", Population: 20000},
		{Name: "Springdale", Country: "US", State: "Arkansas", Population: 87000},
	}

	tests := []struct {
		name     string
		ranker   *Ranker
		expected []string
	}{
		{
			name:     "states are distinct by default",
			ranker:   NewRanker("NO", 2, 8),
			expected: []string{"Springfield/US", "Springfield/US", "springfield/AU"},
		},
		{
			name:   "one name per country",
			ranker: NewRanker("NO", 2, 8, WithUniqueNamePerCountry()),
			// the skipped Illinois row leaves room for Springdale
			expected: []string{"Springfield/US", "Springdale/US", "springfield/AU"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.ranker.FilterAndDeduplicate(raw, "spring")
			assert.Equal(t, tt.expected, names(result))
			assert.Equal(t, "Missouri", result[0].State)
		})
	}
}

func TestRanker_OsloAreaScenario(t *testing.T) {
	ranker := NewRanker("NO", 2, 8)
	raw := []model.Suggestion{
		{Name: "Oslo", Country: "NO", Population: 709000},
		{Name: "Osøyro", Country: "NO", Population: 13000},
		{Name: "Oslo", Country: "NO", Population: 709000},
		{Name: "Oskarshamn", Country: "SE", Population: 18000},
		{Name: "Osnabrück", Country: "DE", Population: 165000},
	}

	result := ranker.FilterAndDeduplicate(raw, "os")
	assert.LessOrEqual(t, len(result), 8)

	seen := map[string]bool{}
	for _, s := range result {
		key := dedupKey(s)
		assert.False(t, seen[key], "duplicate %s", key)
		seen[key] = true
	}
	assert.Equal(t, []string{"Oslo/NO", "Osøyro/NO", "Osnabrück/DE", "Oskarshamn/SE"}, names(result))
}
