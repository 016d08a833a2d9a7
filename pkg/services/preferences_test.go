package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
	"github.com/LugiaKB/cinemind-backend/pkg/models"
)

func TestSetFavoriteGenres_SkipsUnknownIDs(t *testing.T) {
	userID := uuid.New()
	comedy := &models.Genre{ID: uuid.New(), Name: "Comedy"}
	drama := &models.Genre{ID: uuid.New(), Name: "Drama"}
	profiles := newMockProfileRepo(userID)
	genres := &mockGenreRepo{genres: []*models.Genre{comedy, drama}}

	svc := NewPreferenceService(profiles, genres, &mockMoodRepo{}, zap.NewNop())

	stored, err := svc.SetFavoriteGenres(context.Background(), userID, []uuid.UUID{comedy.ID, uuid.New(), drama.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.Equal(t, []string{"Comedy", "Drama"}, genres.favorites[profiles.profile.ID])
}

func TestSetFavoriteGenres_EmptyListClears(t *testing.T) {
	userID := uuid.New()
	profiles := newMockProfileRepo(userID)
	genres := &mockGenreRepo{favorites: map[uuid.UUID][]string{profiles.profile.ID: {"Horror"}}}

	svc := NewPreferenceService(profiles, genres, &mockMoodRepo{}, zap.NewNop())

	stored, err := svc.SetFavoriteGenres(context.Background(), userID, []uuid.UUID{})
	require.NoError(t, err)
	assert.Zero(t, stored)
	assert.Empty(t, genres.favorites[profiles.profile.ID])
}

func TestSetFavoriteGenres_Errors(t *testing.T) {
	userID := uuid.New()

	t.Run("nil ids", func(t *testing.T) {
		genres := &mockGenreRepo{}
		svc := NewPreferenceService(newMockProfileRepo(userID), genres, &mockMoodRepo{}, zap.NewNop())

		_, err := svc.SetFavoriteGenres(context.Background(), userID, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Zero(t, genres.replaceCalls)
	})

	t.Run("storage failure", func(t *testing.T) {
		genres := &mockGenreRepo{replaceErr: errors.New("boom")}
		svc := NewPreferenceService(newMockProfileRepo(userID), genres, &mockMoodRepo{}, zap.NewNop())

		_, err := svc.SetFavoriteGenres(context.Background(), userID, []uuid.UUID{uuid.New()})
		assert.ErrorIs(t, err, apperrors.ErrPersistenceFailed)
	})
}

func TestListMoodsAndGenres(t *testing.T) {
	moods := &mockMoodRepo{moods: []*models.Mood{{ID: uuid.New(), Name: "Alegria"}}}
	genres := &mockGenreRepo{genres: []*models.Genre{{ID: uuid.New(), Name: "Action"}}}
	svc := NewPreferenceService(newMockProfileRepo(uuid.New()), genres, moods, zap.NewNop())

	gotMoods, err := svc.ListMoods(context.Background())
	require.NoError(t, err)
	assert.Len(t, gotMoods, 1)

	gotGenres, err := svc.ListGenres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Action", gotGenres[0].Name)
}
