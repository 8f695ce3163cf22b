package model

// City represents a GeoNames city used by the local geocoder
type City struct {
	ID          int     `db:"id"`
	Name        string  `db:"name"`
	CountryCode string  `db:"country_code"`
	State       string  `db:"state"`
	Population  int     `db:"population"`
	Lat         float64 `db:"lat"`
	Lon         float64 `db:"lon"`
	Timezone    *string `db:"timezone"`
}

// Suggestion converts the city into a suggestion candidate
func (c City) Suggestion() Suggestion {
	lat, lon := c.Lat, c.Lon
	return Suggestion{
		Name:       c.Name,
		Country:    c.CountryCode,
		State:      c.State,
		Population: c.Population,
		Lat:        &lat,
		Lon:        &lon,
	}
}
