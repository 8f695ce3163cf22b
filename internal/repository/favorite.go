package repository

import (
	"context"

	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/jmoiron/sqlx"
)

type favoriteRepository struct {
	db      *sqlx.DB
	dialect dialect
}

func (r *favoriteRepository) List(ctx context.Context, owner string) ([]model.Favorite, error) {
	q := r.db.Rebind(`
		SELECT id, owner, city, country, city_key, added_at
		FROM favorites
		WHERE owner = ?
		ORDER BY added_at, id`)

	favorites := []model.Favorite{}
	if err := r.db.SelectContext(ctx, &favorites, q, owner); err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *favoriteRepository) Add(ctx context.Context, fav *model.Favorite) error {
	q := r.db.Rebind(`
		INSERT INTO favorites (owner, city, country, city_key, added_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, q, fav.Owner, fav.City, fav.Country, fav.CityKey, fav.AddedAt).
		Scan(&fav.ID)
	return r.dialect.translate(err)
}

func (r *favoriteRepository) Remove(ctx context.Context, owner, cityKey string) error {
	q := r.db.Rebind(`DELETE FROM favorites WHERE owner = ? AND city_key = ?`)
	res, err := r.db.ExecContext(ctx, q, owner, cityKey)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *favoriteRepository) Contains(ctx context.Context, owner, cityKey string) (bool, error) {
	q := r.db.Rebind(`SELECT COUNT(*) FROM favorites WHERE owner = ? AND city_key = ?`)
	var count int
	if err := r.db.GetContext(ctx, &count, q, owner, cityKey); err != nil {
		return false, err
	}
	return count > 0, nil
}
