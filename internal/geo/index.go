// Package geo is an offline geocoder over the GeoNames cities table.
//
// Names are served from a patricia trie keyed by the lower-cased city name,
// with a fuzzy pass when no name starts with the query. Reverse lookups use
// an S2 cell index and great-circle distance.
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/alexivanou/weather-dashboard/internal/repository"
	"github.com/golang/geo/s2"
	"github.com/sahilm/fuzzy"
	"github.com/tchap/go-patricia/v2/patricia"
)

// ErrNotFound is returned when no city matches a lookup
var ErrNotFound = errors.New("no matching city")

const (
	// cellLevel 10 cells are roughly 10km across
	cellLevel = 10

	// maxReverseDistance is ~100km in radians on the unit sphere
	maxReverseDistance = 0.0157
)

// Index answers forward and reverse geocoding queries from memory
type Index struct {
	cities []model.City
	trie   *patricia.Trie
	// names holds each distinct lower-cased name once, for fuzzy matching
	names  []string
	byName map[string][]int
	cells  map[s2.CellID][]int
}

// Load reads every city from the repository and builds an index
func Load(ctx context.Context, repo repository.CityRepository) (*Index, error) {
	cities, err := repo.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cities: %w", err)
	}
	return NewIndex(cities), nil
}

// NewIndex builds an index over the given cities
func NewIndex(cities []model.City) *Index {
	idx := &Index{
		cities: cities,
		trie:   patricia.NewTrie(),
		byName: make(map[string][]int),
		cells:  make(map[s2.CellID][]int),
	}

	for i, city := range cities {
		key := strings.ToLower(strings.TrimSpace(city.Name))
		if key == "" {
			continue
		}
		if _, seen := idx.byName[key]; !seen {
			idx.names = append(idx.names, key)
			idx.trie.Insert(patricia.Prefix(key), key)
		}
		idx.byName[key] = append(idx.byName[key], i)

		cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(city.Lat, city.Lon)).Parent(cellLevel)
		idx.cells[cell] = append(idx.cells[cell], i)
	}

	return idx
}

// Len returns the number of indexed cities
func (idx *Index) Len() int {
	return len(idx.cities)
}

// Direct returns up to limit cities whose name starts with query, most
// populous first. A query of the form "name,CC" restricts the country.
func (idx *Index) Direct(ctx context.Context, query string, limit int) ([]model.Suggestion, error) {
	name, country := splitQuery(query)
	if name == "" {
		return []model.Suggestion{}, nil
	}

	matches := idx.prefixMatches(name, country)
	if len(matches) == 0 {
		matches = idx.fuzzyMatches(name, country)
	}

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]model.Suggestion, 0, len(matches))
	for _, i := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, idx.cities[i].Suggestion())
	}
	return out, nil
}

func (idx *Index) prefixMatches(name, country string) []int {
	var matches []int
	_ = idx.trie.VisitSubtree(patricia.Prefix(name), func(_ patricia.Prefix, item patricia.Item) error {
		key, ok := item.(string)
		if !ok {
			return nil
		}
		matches = append(matches, idx.filterCountry(idx.byName[key], country)...)
		return nil
	})

	sort.SliceStable(matches, func(a, b int) bool {
		return idx.cities[matches[a]].Population > idx.cities[matches[b]].Population
	})
	return matches
}

// fuzzyMatches keeps the matcher's score order and lists cities sharing a
// name by population
func (idx *Index) fuzzyMatches(name, country string) []int {
	var matches []int
	for _, m := range fuzzy.Find(name, idx.names) {
		group := idx.filterCountry(idx.byName[idx.names[m.Index]], country)
		sort.SliceStable(group, func(a, b int) bool {
			return idx.cities[group[a]].Population > idx.cities[group[b]].Population
		})
		matches = append(matches, group...)
	}
	return matches
}

func (idx *Index) filterCountry(indices []int, country string) []int {
	if country == "" {
		return append([]int(nil), indices...)
	}
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if strings.EqualFold(idx.cities[i].CountryCode, country) {
			out = append(out, i)
		}
	}
	return out
}

func splitQuery(query string) (name, country string) {
	name, country, _ = strings.Cut(query, ",")
	return strings.ToLower(strings.TrimSpace(name)), strings.TrimSpace(country)
}

type candidate struct {
	index int
	dist  float64
}

// Reverse returns the place closest to the coordinates
func (idx *Index) Reverse(ctx context.Context, lat, lon float64) (*model.Place, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return nil, ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := s2.LatLngFromDegrees(lat, lon)
	cell := s2.CellIDFromLatLng(query).Parent(cellLevel)

	var candidates []candidate
	for _, c := range cellAndNeighbors(cell) {
		for _, i := range idx.cells[c] {
			candidates = append(candidates, idx.candidate(query, i))
		}
	}

	// Sparse areas: fall back to a full scan
	if len(candidates) == 0 {
		for i := range idx.cities {
			candidates = append(candidates, idx.candidate(query, i))
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].dist != candidates[b].dist {
			return candidates[a].dist < candidates[b].dist
		}
		return idx.cities[candidates[a].index].Population > idx.cities[candidates[b].index].Population
	})

	best := candidates[0]
	if best.dist > maxReverseDistance {
		return nil, ErrNotFound
	}

	city := idx.cities[best.index]
	return &model.Place{City: city.Name, Country: city.CountryCode, State: city.State}, nil
}

func (idx *Index) candidate(query s2.LatLng, i int) candidate {
	city := idx.cities[i]
	ll := s2.LatLngFromDegrees(city.Lat, city.Lon)
	return candidate{index: i, dist: float64(query.Distance(ll))}
}

// cellAndNeighbors returns the cell with its edge and corner neighbours
func cellAndNeighbors(cell s2.CellID) []s2.CellID {
	cells := []s2.CellID{cell}
	seen := map[s2.CellID]bool{cell: true}

	edges := cell.EdgeNeighbors()
	for _, e := range edges {
		if !seen[e] {
			cells = append(cells, e)
			seen[e] = true
		}
	}
	for _, e := range edges {
		for _, corner := range e.EdgeNeighbors() {
			if !seen[corner] {
				cells = append(cells, corner)
				seen[corner] = true
			}
		}
	}
	return cells
}
