package repository

import (
	"context"

	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/jmoiron/sqlx"
)

type queryLogRepository struct {
	db *sqlx.DB
}

func (r *queryLogRepository) Log(ctx context.Context, entry *model.QueryLog) error {
	q := r.db.Rebind(`
		INSERT INTO query_log (city, country, client_ip, response_time_ms, endpoint, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		entry.City, entry.Country, entry.ClientIP, entry.ResponseTimeMs, entry.Endpoint, entry.CreatedAt)
	return err
}

func (r *queryLogRepository) Stats(ctx context.Context) (*model.QueryStats, error) {
	var totals struct {
		Total int64   `db:"total"`
		Avg   float64 `db:"avg"`
	}
	q := `SELECT COUNT(*) AS total, COALESCE(AVG(response_time_ms), 0) AS avg FROM query_log`
	if err := r.db.GetContext(ctx, &totals, q); err != nil {
		return nil, err
	}

	var rows []struct {
		Endpoint string `db:"endpoint"`
		Count    int64  `db:"count"`
	}
	q = `SELECT endpoint, COUNT(*) AS count FROM query_log GROUP BY endpoint`
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}

	stats := &model.QueryStats{
		TotalQueries:    totals.Total,
		AvgResponseTime: totals.Avg,
		Endpoints:       make(map[string]int64, len(rows)),
	}
	for _, row := range rows {
		stats.Endpoints[row.Endpoint] = row.Count
	}
	return stats, nil
}

// PopularCities returns the most queried "city, country" labels, busiest first
func (r *queryLogRepository) PopularCities(ctx context.Context, limit int) ([]model.PopularCity, error) {
	q := r.db.Rebind(`
		SELECT
			CASE WHEN l.country = '' THEN l.city ELSE l.city || ', ' || l.country END AS city,
			COUNT(*) AS count
		FROM query_log l
		GROUP BY l.city, l.country
		ORDER BY count DESC, city
		LIMIT ?`)

	cities := []model.PopularCity{}
	if err := r.db.SelectContext(ctx, &cities, q, limit); err != nil {
		return nil, err
	}
	return cities, nil
}
