package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/alexivanou/weather-dashboard/internal/repository"
	"github.com/alexivanou/weather-dashboard/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFavoritesService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults country and builds a case-insensitive key", func(t *testing.T) {
		repo := new(MockFavoriteRepository)
		repo.On("Add", ctx, mock.MatchedBy(func(f *model.Favorite) bool {
			return f.Owner == "10.0.0.1" && f.City == "Oslo" && f.Country == "NO" && f.CityKey == "oslo_no" && !f.AddedAt.IsZero()
		})).Return(nil).Once()

		s := NewFavoritesService(repo)
		fav, err := s.Add(ctx, "10.0.0.1", model.FavoriteRequest{City: " Oslo "})
		require.NoError(t, err)
		assert.Equal(t, "Oslo", fav.City)
		repo.AssertExpectations(t)
	})

	t.Run("Duplicate", func(t *testing.T) {
		repo := new(MockFavoriteRepository)
		repo.On("Add", ctx, mock.Anything).Return(repository.ErrDuplicate)

		s := NewFavoritesService(repo)
		_, err := s.Add(ctx, "10.0.0.1", model.FavoriteRequest{City: "OSLO", Country: "no"})
		assert.ErrorIs(t, err, ErrFavoriteExists)
	})

	t.Run("Repository failure is wrapped", func(t *testing.T) {
		repo := new(MockFavoriteRepository)
		dbErr := errors.New("db down")
		repo.On("Add", ctx, mock.Anything).Return(dbErr)

		s := NewFavoritesService(repo)
		_, err := s.Add(ctx, "10.0.0.1", model.FavoriteRequest{City: "Oslo"})
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrFavoriteExists)
	})

	t.Run("Invalid city", func(t *testing.T) {
		repo := new(MockFavoriteRepository)
		s := NewFavoritesService(repo)

		_, err := s.Add(ctx, "10.0.0.1", model.FavoriteRequest{City: ""})
		var verr *validate.Error
		assert.True(t, errors.As(err, &verr))
		repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})
}

func TestFavoritesService_Remove(t *testing.T) {
	ctx := context.Background()

	repo := new(MockFavoriteRepository)
	repo.On("Remove", ctx, "10.0.0.1", "bergen_no").Return(nil).Once()
	repo.On("Remove", ctx, "10.0.0.1", "paris_fr").Return(repository.ErrNotFound).Once()

	s := NewFavoritesService(repo)
	require.NoError(t, s.Remove(ctx, "10.0.0.1", model.FavoriteRequest{City: "Bergen", Country: "NO"}))
	assert.ErrorIs(t, s.Remove(ctx, "10.0.0.1", model.FavoriteRequest{City: "Paris", Country: "FR"}), ErrFavoriteNotFound)
	repo.AssertExpectations(t)
}

func TestFavoritesService_List(t *testing.T) {
	ctx := context.Background()
	favs := []model.Favorite{{City: "Oslo", Country: "NO"}}

	repo := new(MockFavoriteRepository)
	repo.On("List", ctx, "10.0.0.1").Return(favs, nil)
	repo.On("List", ctx, "broken").Return(nil, errors.New("db down"))

	s := NewFavoritesService(repo)
	got, err := s.List(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, favs, got)

	_, err = s.List(ctx, "broken")
	assert.Error(t, err)
}
