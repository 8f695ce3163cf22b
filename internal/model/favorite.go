package model

import "time"

// Favorite is a city saved by a client of the backend
type Favorite struct {
	ID      int64     `json:"-" db:"id"`
	Owner   string    `json:"-" db:"owner"`
	City    string    `json:"city" db:"city"`
	Country string    `json:"country" db:"country"`
	CityKey string    `json:"-" db:"city_key"`
	AddedAt time.Time `json:"added_at" db:"added_at"`
}

// FavoriteRequest is the body accepted by POST and DELETE /favorites
type FavoriteRequest struct {
	City    string `json:"city"`
	Country string `json:"country"`
}
