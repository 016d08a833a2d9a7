package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
	"github.com/LugiaKB/cinemind-backend/pkg/database"
	"github.com/LugiaKB/cinemind-backend/pkg/models"
	"github.com/LugiaKB/cinemind-backend/pkg/repositories"
	"github.com/LugiaKB/cinemind-backend/pkg/validation"
)

// ScoringService owns the questionnaire and the trait scores derived from it.
type ScoringService interface {
	// ListQuestions returns the static questionnaire.
	ListQuestions(ctx context.Context) ([]*models.Question, error)

	// SubmitAnswers replaces every stored answer of the user's profile and
	// recomputes the five trait scores in the same transaction. Invalid input
	// is rejected before anything is deleted.
	SubmitAnswers(ctx context.Context, userID uuid.UUID, answers []models.AnswerInput) (*models.Profile, error)

	// GetProfile returns the user's profile, creating an all-zero one on first use.
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type scoringService struct {
	tx            database.TxRunner
	profileRepo   repositories.ProfileRepository
	questionnaire repositories.QuestionnaireRepository
	logger        *zap.Logger
}

// NewScoringService creates a new ScoringService.
func NewScoringService(
	tx database.TxRunner,
	profileRepo repositories.ProfileRepository,
	questionnaire repositories.QuestionnaireRepository,
	logger *zap.Logger,
) ScoringService {
	return &scoringService{
		tx:            tx,
		profileRepo:   profileRepo,
		questionnaire: questionnaire,
		logger:        logger.Named("scoring"),
	}
}

var _ ScoringService = (*scoringService)(nil)

func (s *scoringService) ListQuestions(ctx context.Context) ([]*models.Question, error) {
	questions, err := s.questionnaire.ListQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (s *scoringService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profileRepo.EnsureForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

func (s *scoringService) SubmitAnswers(ctx context.Context, userID uuid.UUID, answers []models.AnswerInput) (*models.Profile, error) {
	ids, err := validateAnswers(answers)
	if err != nil {
		return nil, err
	}

	existing, err := s.questionnaire.CountExistingQuestions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to check questions: %w", apperrors.ErrPersistenceFailed, err)
	}
	if existing != len(ids) {
		return nil, fmt.Errorf("%w: %d of %d questions do not exist",
			apperrors.ErrInvalidInput, len(ids)-existing, len(ids))
	}

	profile, err := s.profileRepo.EnsureForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load profile: %w", apperrors.ErrPersistenceFailed, err)
	}

	var scores models.TraitScores
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.questionnaire.DeleteAnswers(ctx, profile.ID); err != nil {
			return fmt.Errorf("failed to delete answers: %w", err)
		}
		if err := s.questionnaire.InsertAnswers(ctx, profile.ID, answers); err != nil {
			return fmt.Errorf("failed to insert answers: %w", err)
		}
		sums, err := s.questionnaire.SumByAttribute(ctx, profile.ID)
		if err != nil {
			return fmt.Errorf("failed to sum answers: %w", err)
		}
		scores = models.ScoresFromSums(sums)
		if err := s.profileRepo.UpdateScores(ctx, profile.ID, scores); err != nil {
			return fmt.Errorf("failed to update scores: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Answer submission rolled back",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrPersistenceFailed, err)
	}

	profile.Scores = scores
	s.logger.Info("Trait scores updated",
		zap.String("user_id", userID.String()),
		zap.Int("answers", len(answers)))
	return profile, nil
}

// validateAnswers checks shape only and returns the distinct question ids.
func validateAnswers(answers []models.AnswerInput) ([]uuid.UUID, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: answer list is empty", apperrors.ErrInvalidInput)
	}

	seen := make(map[uuid.UUID]struct{}, len(answers))
	ids := make([]uuid.UUID, 0, len(answers))
	for i := range answers {
		if err := validation.Struct(&answers[i]); err != nil {
			return nil, fmt.Errorf("%w: answer %d: %w", apperrors.ErrInvalidInput, i, err)
		}
		if _, dup := seen[answers[i].QuestionID]; dup {
			return nil, fmt.Errorf("%w: question %s answered twice",
				apperrors.ErrInvalidInput, answers[i].QuestionID)
		}
		seen[answers[i].QuestionID] = struct{}{}
		ids = append(ids, answers[i].QuestionID)
	}
	return ids, nil
}
