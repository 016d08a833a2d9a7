package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
	"github.com/LugiaKB/cinemind-backend/pkg/catalog"
	"github.com/LugiaKB/cinemind-backend/pkg/database"
	"github.com/LugiaKB/cinemind-backend/pkg/logging"
	"github.com/LugiaKB/cinemind-backend/pkg/metrics"
	"github.com/LugiaKB/cinemind-backend/pkg/models"
	"github.com/LugiaKB/cinemind-backend/pkg/repositories"
)

// GenerateRequest asks for one mood's recommendations. A nil SetID starts a
// new active set; otherwise items are appended to that set.
type GenerateRequest struct {
	UserID uuid.UUID
	SetID  *uuid.UUID
	MoodID uuid.UUID
}

// GenerateResult is the committed outcome of one generation.
type GenerateResult struct {
	Set   *models.RecommendationSet    `json:"recommendation_set"`
	Mood  *models.Mood                 `json:"mood"`
	Items []*models.RecommendationItem `json:"items"`
}

// RecommendationService runs the generation pipeline and serves stored sets.
type RecommendationService interface {
	// Generate translates the profile, queries the catalog and persists up to
	// ResultCount ranked items. Nothing is written unless every stage succeeds.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	// GetActiveSet returns the user's active set with all its items.
	GetActiveSet(ctx context.Context, userID uuid.UUID) (*models.RecommendationSet, error)
}

// RecommendationDeps groups the collaborators of the pipeline.
type RecommendationDeps struct {
	Tx          database.TxRunner
	Profiles    repositories.ProfileRepository
	Genres      repositories.GenreRepository
	Blacklist   repositories.BlacklistRepository
	Moods       repositories.MoodRepository
	Sets        repositories.RecommendationRepository
	Translator  QueryTranslator
	Resolver    CatalogResolver
	Discoverer  CandidateDiscoverer
	Enricher    ThumbnailEnricher
	ResultCount int
}

type recommendationService struct {
	deps   RecommendationDeps
	logger *zap.Logger
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(deps RecommendationDeps, logger *zap.Logger) RecommendationService {
	if deps.ResultCount < 1 {
		deps.ResultCount = 5
	}
	return &recommendationService{deps: deps, logger: logger.Named("recommendations")}
}

var _ RecommendationService = (*recommendationService)(nil)

func (s *recommendationService) GetActiveSet(ctx context.Context, userID uuid.UUID) (*models.RecommendationSet, error) {
	set, err := s.deps.Sets.GetActiveSet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active set: %w", err)
	}
	return set, nil
}

func (s *recommendationService) Generate(ctx context.Context, req GenerateRequest) (result *GenerateResult, err error) {
	start := time.Now()
	logger := s.logger.With(
		zap.String("user_id", req.UserID.String()),
		zap.String("mood_id", req.MoodID.String()))

	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = apperrors.Category(err)
			logger.Warn("Recommendation generation failed",
				zap.String("category", outcome),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("error", logging.SanitizeError(err)))
		} else {
			logger.Info("Recommendations generated",
				zap.String("set_id", result.Set.ID.String()),
				zap.Int("items", len(result.Items)),
				zap.Duration("elapsed", time.Since(start)))
		}
		metrics.RecordPipelineRun(outcome)
	}()

	mood, input, err := s.loadInput(ctx, req)
	if err != nil {
		return nil, err
	}

	stage := time.Now()
	params, err := s.deps.Translator.Translate(ctx, input)
	metrics.ObserveStage(metrics.StageTranslate, stage)
	if err != nil {
		return nil, err
	}

	stage = time.Now()
	genreIDs, keywordIDs := s.resolve(ctx, params)
	metrics.ObserveStage(metrics.StageResolve, stage)
	if len(genreIDs) == 0 && len(keywordIDs) == 0 && (len(params.Genres) > 0 || len(params.Keywords) > 0) {
		logger.Info("Oracle suggested terms but none matched the catalog",
			zap.Strings("genres", params.Genres),
			zap.Strings("keywords", params.Keywords))
	}

	stage = time.Now()
	candidates, err := s.deps.Discoverer.Discover(ctx, genreIDs, keywordIDs)
	metrics.ObserveStage(metrics.StageDiscover, stage)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoSearchCriteria) {
			return nil, err
		}
		logger.Warn("Discovery failed, treating as empty",
			zap.String("error", logging.SanitizeError(err)))
		candidates = nil
	}

	selected, err := SelectCandidates(candidates, input.BlacklistTitles(), s.deps.ResultCount)
	if err != nil {
		return nil, err
	}

	stage = time.Now()
	thumbnails := s.deps.Enricher.Enrich(ctx, selected)
	metrics.ObserveStage(metrics.StageEnrich, stage)

	items := buildItems(mood, selected, thumbnails)

	stage = time.Now()
	set, err := s.persist(ctx, req, input, mood, items)
	metrics.ObserveStage(metrics.StagePersist, stage)
	if err != nil {
		return nil, err
	}

	set.Items = nil
	return &GenerateResult{Set: set, Mood: mood, Items: items}, nil
}

// loadInput gathers the read-only collaborators and checks the target set
// before any external call is made.
func (s *recommendationService) loadInput(ctx context.Context, req GenerateRequest) (*models.Mood, *models.RecommendationInput, error) {
	mood, err := s.deps.Moods.GetByID(ctx, req.MoodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown mood %s", apperrors.ErrInvalidInput, req.MoodID)
		}
		return nil, nil, fmt.Errorf("%w: failed to load mood: %w", apperrors.ErrPersistenceFailed, err)
	}

	if req.SetID != nil {
		if err := s.checkTargetSet(ctx, req.UserID, *req.SetID, mood.ID); err != nil {
			return nil, nil, err
		}
	}

	profile, err := s.deps.Profiles.EnsureForUser(ctx, req.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to load profile: %w", apperrors.ErrPersistenceFailed, err)
	}

	favorites, err := s.deps.Genres.ListFavoriteNames(ctx, profile.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to load favorite genres: %w", apperrors.ErrPersistenceFailed, err)
	}
	if len(favorites) == 0 {
		return nil, nil, fmt.Errorf("%w: set favorite genres first", apperrors.ErrInvalidInput)
	}

	titles, err := s.deps.Blacklist.ListTitles(ctx, req.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to load blacklist: %w", apperrors.ErrPersistenceFailed, err)
	}
	blacklist := make([]models.BlacklistEntry, len(titles))
	for i, t := range titles {
		blacklist[i] = models.BlacklistEntry{Title: t}
	}

	return mood, &models.RecommendationInput{
		Preferences: favorites,
		Score:       profile.Scores.AsMap(),
		Blacklist:   blacklist,
		TargetMood:  mood.Name,
	}, nil
}

// checkTargetSet requires an active set owned by the user with no items for mood yet.
func (s *recommendationService) checkTargetSet(ctx context.Context, userID, setID, moodID uuid.UUID) error {
	set, err := s.deps.Sets.GetSet(ctx, setID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("recommendation set %s: %w", setID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("%w: failed to load set: %w", apperrors.ErrPersistenceFailed, err)
	}
	if set.UserID != userID {
		return fmt.Errorf("recommendation set %s: %w", setID, apperrors.ErrNotFound)
	}
	if !set.IsActive {
		return fmt.Errorf("%w: recommendation set %s has been superseded", apperrors.ErrConflict, setID)
	}

	n, err := s.deps.Sets.CountItems(ctx, setID, moodID)
	if err != nil {
		return fmt.Errorf("%w: failed to count items: %w", apperrors.ErrPersistenceFailed, err)
	}
	if n > 0 {
		return fmt.Errorf("%w: mood already generated for set %s", apperrors.ErrConflict, setID)
	}
	return nil
}

// resolve runs genre and keyword resolution side by side. Neither fails.
func (s *recommendationService) resolve(ctx context.Context, params *models.SearchParams) (genreIDs, keywordIDs []int64) {
	var g errgroup.Group
	g.Go(func() error {
		genreIDs = s.deps.Resolver.ResolveGenres(ctx, params.Genres)
		return nil
	})
	g.Go(func() error {
		keywordIDs = s.deps.Resolver.ResolveKeywords(ctx, params.Keywords)
		return nil
	})
	_ = g.Wait()
	return genreIDs, keywordIDs
}

func (s *recommendationService) persist(
	ctx context.Context,
	req GenerateRequest,
	input *models.RecommendationInput,
	mood *models.Mood,
	items []*models.RecommendationItem,
) (*models.RecommendationSet, error) {
	var set *models.RecommendationSet

	err := s.deps.Tx.InTx(ctx, func(ctx context.Context) error {
		if req.SetID == nil {
			snapshot, err := json.Marshal(input)
			if err != nil {
				return fmt.Errorf("failed to encode input snapshot: %w", err)
			}
			set, err = s.deps.Sets.ActivateNewSet(ctx, req.UserID, snapshot)
			if err != nil {
				return err
			}
		} else {
			// Holding the activation lock keeps the set from being superseded
			// between the check below and the insert.
			if err := s.deps.Sets.LockUserSets(ctx, req.UserID); err != nil {
				return err
			}
			existing, err := s.deps.Sets.GetSet(ctx, *req.SetID)
			if err != nil {
				return err
			}
			if !existing.IsActive {
				return fmt.Errorf("%w: recommendation set %s has been superseded", apperrors.ErrConflict, existing.ID)
			}
			n, err := s.deps.Sets.CountItems(ctx, existing.ID, mood.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: mood already generated for set %s", apperrors.ErrConflict, existing.ID)
			}
			set = existing
		}

		return s.deps.Sets.AppendItems(ctx, set.ID, mood.ID, items)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrPersistenceFailed, err)
	}
	return set, nil
}

func buildItems(mood *models.Mood, movies []catalog.Movie, thumbnails []string) []*models.RecommendationItem {
	items := make([]*models.RecommendationItem, len(movies))
	for i, m := range movies {
		items[i] = &models.RecommendationItem{
			Mood:         *mood,
			ExternalID:   fmt.Sprintf("tmdb:%d", m.ID),
			Title:        m.Title,
			Rank:         i + 1,
			ThumbnailURL: thumbnails[i],
			Metadata: models.MovieMetadata{
				ID:          m.ID,
				Title:       m.Title,
				ReleaseDate: m.ReleaseDate,
				Overview:    m.Overview,
				Popularity:  m.Popularity,
				VoteAverage: m.VoteAverage,
				PosterPath:  m.PosterPath,
				GenreIDs:    m.GenreIDs,
			},
		}
	}
	return items
}
