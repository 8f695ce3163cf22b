package repository

import (
	"context"
	"fmt"

	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/jmoiron/sqlx"
)

type cityRepository struct {
	db      *sqlx.DB
	dialect dialect
}

func (r *cityRepository) ListCities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	q := `SELECT id, name, country_code, state, population, lat, lon, timezone FROM cities ORDER BY id`
	if err := r.db.SelectContext(ctx, &cities, q); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *cityRepository) CountCities(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM cities"); err != nil {
		return 0, err
	}
	return count, nil
}

// BulkInsertCities upserts cities by GeoNames id so the seeder can be re-run
func (r *cityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	q := `
		INSERT INTO cities (id, name, country_code, state, population, lat, lon, timezone)
		VALUES (:id, :name, :country_code, :state, :population, :lat, :lon, :timezone)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			country_code = excluded.country_code,
			state = excluded.state,
			population = excluded.population,
			lat = excluded.lat,
			lon = excluded.lon,
			timezone = excluded.timezone`

	chunkSize := r.dialect.cityChunkSize
	for i := 0; i < len(cities); i += chunkSize {
		end := i + chunkSize
		if end > len(cities) {
			end = len(cities)
		}

		if err := r.insertChunk(ctx, q, cities[i:end]); err != nil {
			return fmt.Errorf("insert cities %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (r *cityRepository) insertChunk(ctx context.Context, q string, batch []model.City) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareNamedContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range batch {
		if _, err := stmt.ExecContext(ctx, batch[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}
