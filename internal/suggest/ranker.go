package suggest

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/alexivanou/weather-dashboard/internal/model"
)

const (
	DefaultHomeCountry   = "NO"
	DefaultMaxPerCountry = 2
	DefaultMaxResults    = 8
)

// Ranker orders raw geocoder candidates by relevance and trims them to a
// short, deduplicated and country-diverse list.
type Ranker struct {
	homeCountry   string
	maxPerCountry int
	maxResults    int
	uniqueNames   bool
}

// RankerOption configures a Ranker
type RankerOption func(*Ranker)

// WithUniqueNamePerCountry keeps a single candidate per case-insensitive
// name within a country, whatever its state
func WithUniqueNamePerCountry() RankerOption {
	return func(r *Ranker) {
		r.uniqueNames = true
	}
}

// NewRanker creates a ranker. Non-positive limits fall back to the defaults.
func NewRanker(homeCountry string, maxPerCountry, maxResults int, opts ...RankerOption) *Ranker {
	if homeCountry == "" {
		homeCountry = DefaultHomeCountry
	}
	if maxPerCountry <= 0 {
		maxPerCountry = DefaultMaxPerCountry
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	r := &Ranker{
		homeCountry:   strings.ToUpper(homeCountry),
		maxPerCountry: maxPerCountry,
		maxResults:    maxResults,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FilterAndDeduplicate sorts candidates by prefix match, home country,
// population and name length, then keeps the first occurrence of each
// name/country/state, at most maxPerCountry per country and maxResults overall.
// IsExactMatch is set on prefix matches; a flag already set by the source is
// kept. The input slice is left untouched.
func (r *Ranker) FilterAndDeduplicate(raw []model.Suggestion, query string) []model.Suggestion {
	if len(raw) == 0 {
		return []model.Suggestion{}
	}

	query = NormalizeQuery(query)
	candidates := make([]model.Suggestion, 0, len(raw))
	for _, s := range raw {
		if s.Name == "" || s.Country == "" {
			continue
		}
		candidates = append(candidates, s)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		aPrefix := strings.HasPrefix(strings.ToLower(a.Name), query)
		bPrefix := strings.HasPrefix(strings.ToLower(b.Name), query)
		if aPrefix != bPrefix {
			return aPrefix
		}

		aHome := a.Country == r.homeCountry
		bHome := b.Country == r.homeCountry
		if aHome != bHome {
			return aHome
		}

		if a.Population != b.Population {
			return a.Population > b.Population
		}

		return utf8.RuneCountInString(a.Name) < utf8.RuneCountInString(b.Name)
	})

	seen := make(map[string]struct{}, len(candidates))
	seenNames := make(map[string]struct{})
	perCountry := make(map[string]int)
	filtered := make([]model.Suggestion, 0, r.maxResults)

	for _, s := range candidates {
		key := dedupKey(s)
		if _, dup := seen[key]; dup {
			continue
		}
		nameKey := strings.ToLower(s.Name) + "_" + s.Country
		if _, dup := seenNames[nameKey]; dup && r.uniqueNames {
			continue
		}
		if perCountry[s.Country] >= r.maxPerCountry {
			continue
		}

		seen[key] = struct{}{}
		seenNames[nameKey] = struct{}{}
		perCountry[s.Country]++

		if strings.HasPrefix(strings.ToLower(s.Name), query) {
			s.IsExactMatch = true
		}
		if s.DisplayName == "" {
			s.DisplayName = s.Label()
		}
		filtered = append(filtered, s)

		if len(filtered) >= r.maxResults {
			break
		}
	}

	return filtered
}

func dedupKey(s model.Suggestion) string {
	return strings.ToLower(s.Name) + "_" + s.Country + "_" + s.State
}

// NormalizeQuery lower-cases and trims user input for use as a cache key
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
