package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
	"github.com/LugiaKB/cinemind-backend/pkg/models"
	"github.com/LugiaKB/cinemind-backend/pkg/repositories"
)

// PreferenceService manages reference data and the user's favorite genres.
type PreferenceService interface {
	ListGenres(ctx context.Context) ([]*models.Genre, error)
	ListMoods(ctx context.Context) ([]*models.Mood, error)

	// SetFavoriteGenres replaces the user's favorite genres. Unknown ids are
	// skipped; the number actually stored is returned.
	SetFavoriteGenres(ctx context.Context, userID uuid.UUID, genreIDs []uuid.UUID) (int, error)
}

type preferenceService struct {
	profileRepo repositories.ProfileRepository
	genreRepo   repositories.GenreRepository
	moodRepo    repositories.MoodRepository
	logger      *zap.Logger
}

// NewPreferenceService creates a new PreferenceService.
func NewPreferenceService(
	profileRepo repositories.ProfileRepository,
	genreRepo repositories.GenreRepository,
	moodRepo repositories.MoodRepository,
	logger *zap.Logger,
) PreferenceService {
	return &preferenceService{
		profileRepo: profileRepo,
		genreRepo:   genreRepo,
		moodRepo:    moodRepo,
		logger:      logger.Named("preferences"),
	}
}

var _ PreferenceService = (*preferenceService)(nil)

func (s *preferenceService) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	genres, err := s.genreRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

func (s *preferenceService) ListMoods(ctx context.Context) ([]*models.Mood, error) {
	moods, err := s.moodRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list moods: %w", err)
	}
	return moods, nil
}

func (s *preferenceService) SetFavoriteGenres(ctx context.Context, userID uuid.UUID, genreIDs []uuid.UUID) (int, error) {
	if genreIDs == nil {
		return 0, fmt.Errorf("%w: genre_ids is required", apperrors.ErrInvalidInput)
	}

	profile, err := s.profileRepo.EnsureForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to load profile: %w", apperrors.ErrPersistenceFailed, err)
	}

	stored, err := s.genreRepo.ReplaceFavorites(ctx, profile.ID, genreIDs)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to replace favorites: %w", apperrors.ErrPersistenceFailed, err)
	}

	if skipped := len(genreIDs) - stored; skipped > 0 {
		s.logger.Debug("Skipped unknown or duplicate genre ids",
			zap.String("user_id", userID.String()),
			zap.Int("skipped", skipped))
	}
	return stored, nil
}
