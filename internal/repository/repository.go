package repository

import (
	"context"
	"errors"

	"github.com/alexivanou/weather-dashboard/internal/config"
	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint
	ErrDuplicate = errors.New("record already exists")
)

// CityRepository defines operations for cities
type CityRepository interface {
	ListCities(ctx context.Context) ([]model.City, error)
	CountCities(ctx context.Context) (int64, error)
	BulkInsertCities(ctx context.Context, cities []model.City) error
}

// FavoriteRepository defines operations for favorites saved on the backend
type FavoriteRepository interface {
	List(ctx context.Context, owner string) ([]model.Favorite, error)
	Add(ctx context.Context, fav *model.Favorite) error
	Remove(ctx context.Context, owner, cityKey string) error
	Contains(ctx context.Context, owner, cityKey string) (bool, error)
}

// QueryLogRepository defines operations for weather query analytics
type QueryLogRepository interface {
	Log(ctx context.Context, entry *model.QueryLog) error
	Stats(ctx context.Context) (*model.QueryStats, error)
	PopularCities(ctx context.Context, limit int) ([]model.PopularCity, error)
}

// PrefsRepository is a small key-value store for client preferences
type PrefsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Container holds all repositories
type Container struct {
	City     CityRepository
	Favorite FavoriteRepository
	QueryLog QueryLogRepository
	Prefs    PrefsRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	d := sqliteDialect
	if dbType == config.DBTypePostgreSQL {
		d = postgresDialect
	}

	return &Container{
		City:     &cityRepository{db: db, dialect: d},
		Favorite: &favoriteRepository{db: db, dialect: d},
		QueryLog: &queryLogRepository{db: db},
		Prefs:    &prefsRepository{db: db},
	}
}

// IsDatabaseEmpty reports whether the cities table has no rows (used by main)
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM cities")
	if err != nil {
		// Simplify error handling for non-existent tables
		return true, nil
	}
	return count == 0, nil
}
