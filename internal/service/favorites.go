package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/alexivanou/weather-dashboard/internal/repository"
	"github.com/alexivanou/weather-dashboard/internal/validate"
)

// FavoritesService manages favorites per owner, where the owner is the
// client address
type FavoritesService struct {
	repo repository.FavoriteRepository
	now  func() time.Time
}

// NewFavoritesService creates a new favorites service
func NewFavoritesService(repo repository.FavoriteRepository) *FavoritesService {
	return &FavoritesService{repo: repo, now: time.Now}
}

func (s *FavoritesService) List(ctx context.Context, owner string) ([]model.Favorite, error) {
	favs, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favs, nil
}

// Add saves a city for the owner. Cities are unique per owner regardless of case.
func (s *FavoritesService) Add(ctx context.Context, owner string, req model.FavoriteRequest) (*model.Favorite, error) {
	city, country, err := favoriteParams(req)
	if err != nil {
		return nil, err
	}

	fav := &model.Favorite{
		Owner:   owner,
		City:    city,
		Country: country,
		CityKey: favoriteKey(city, country),
		AddedAt: s.now().UTC(),
	}
	if err := s.repo.Add(ctx, fav); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrFavoriteExists
		}
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}
	return fav, nil
}

func (s *FavoritesService) Remove(ctx context.Context, owner string, req model.FavoriteRequest) error {
	city, country, err := favoriteParams(req)
	if err != nil {
		return err
	}

	if err := s.repo.Remove(ctx, owner, favoriteKey(city, country)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFavoriteNotFound
		}
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func favoriteParams(req model.FavoriteRequest) (string, string, error) {
	city, err := validate.CityName(req.City)
	if err != nil {
		return "", "", err
	}
	country, err := validate.CountryCode(req.Country)
	if err != nil {
		return "", "", err
	}
	if country == "" {
		country = defaultCountry
	}
	return city, country, nil
}

func favoriteKey(city, country string) string {
	return strings.ToLower(city) + "_" + strings.ToLower(country)
}
