package model

import "time"

// QueryLog records one upstream weather lookup
type QueryLog struct {
	ID             int64     `db:"id"`
	City           string    `db:"city"`
	Country        string    `db:"country"`
	ClientIP       string    `db:"client_ip"`
	ResponseTimeMs float64   `db:"response_time_ms"`
	Endpoint       string    `db:"endpoint"`
	CreatedAt      time.Time `db:"created_at"`
}

// QueryStats aggregates the query log
type QueryStats struct {
	TotalQueries    int64            `json:"total_queries"`
	AvgResponseTime float64          `json:"avg_response_time"`
	Endpoints       map[string]int64 `json:"endpoints"`
}

// PopularCity is a city with the number of times it was queried
type PopularCity struct {
	City  string `json:"city" db:"city"`
	Count int64  `json:"count" db:"count"`
}
