package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
	"github.com/LugiaKB/cinemind-backend/pkg/catalog"
	"github.com/LugiaKB/cinemind-backend/pkg/logging"
	"github.com/LugiaKB/cinemind-backend/pkg/metrics"
	"github.com/LugiaKB/cinemind-backend/pkg/workerpool"
)

// CandidateDiscoverer queries the catalog for movies matching resolved ids.
type CandidateDiscoverer interface {
	// Discover fails with apperrors.ErrNoSearchCriteria, without calling the
	// catalog, when both id lists are empty.
	Discover(ctx context.Context, genreIDs, keywordIDs []int64) ([]catalog.Movie, error)
}

type candidateDiscoverer struct {
	client catalog.Client
	logger *zap.Logger
}

// NewCandidateDiscoverer creates a new CandidateDiscoverer.
func NewCandidateDiscoverer(client catalog.Client, logger *zap.Logger) CandidateDiscoverer {
	return &candidateDiscoverer{client: client, logger: logger.Named("discoverer")}
}

func (d *candidateDiscoverer) Discover(ctx context.Context, genreIDs, keywordIDs []int64) ([]catalog.Movie, error) {
	if len(genreIDs) == 0 && len(keywordIDs) == 0 {
		return nil, fmt.Errorf("%w: no genre or keyword resolved", apperrors.ErrNoSearchCriteria)
	}

	movies, err := d.client.Discover(ctx, catalog.DiscoverParams{
		GenreIDs:   genreIDs,
		KeywordIDs: keywordIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover movies: %w", err)
	}
	return movies, nil
}

// SelectCandidates drops blacklisted titles (case-insensitive) and keeps the
// first limit survivors in catalog order. Zero survivors fail with
// apperrors.ErrNoCandidates.
func SelectCandidates(candidates []catalog.Movie, blacklist []string, limit int) ([]catalog.Movie, error) {
	banned := make(map[string]struct{}, len(blacklist))
	for _, title := range blacklist {
		banned[strings.ToLower(title)] = struct{}{}
	}

	selected := make([]catalog.Movie, 0, limit)
	for _, m := range candidates {
		if len(selected) == limit {
			break
		}
		if _, skip := banned[strings.ToLower(m.Title)]; skip {
			continue
		}
		selected = append(selected, m)
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: %d candidates, none left after blacklist",
			apperrors.ErrNoCandidates, len(candidates))
	}
	return selected, nil
}

// ThumbnailEnricher resolves a display image for each selected movie.
type ThumbnailEnricher interface {
	// Enrich returns one URL per movie, index-aligned. It never fails; a movie
	// whose lookup fails gets the placeholder.
	Enrich(ctx context.Context, movies []catalog.Movie) []string
}

type thumbnailEnricher struct {
	client      catalog.Client
	placeholder string
	pool        *workerpool.Pool
	logger      *zap.Logger
}

// NewThumbnailEnricher creates a new ThumbnailEnricher.
func NewThumbnailEnricher(client catalog.Client, placeholder string, logger *zap.Logger) ThumbnailEnricher {
	return &thumbnailEnricher{
		client:      client,
		placeholder: placeholder,
		pool:        workerpool.New("thumbnails", 0, logger),
		logger:      logger.Named("enricher"),
	}
}

func (e *thumbnailEnricher) Enrich(ctx context.Context, movies []catalog.Movie) []string {
	items := make([]workerpool.Item[string], len(movies))
	for i, m := range movies {
		items[i] = workerpool.Item[string]{
			ID:      m.Title,
			Execute: func(ctx context.Context) (string, error) { return e.lookup(ctx, m) },
		}
	}

	results := workerpool.Process(ctx, e.pool, items)

	urls := make([]string, len(movies))
	for i, res := range results {
		if res.Err != nil || res.Value == "" {
			if res.Err != nil {
				e.logger.Debug("Thumbnail lookup failed",
					zap.String("title", res.ID),
					zap.String("error", logging.SanitizeError(res.Err)))
			}
			metrics.RecordThumbnailFallback()
			urls[i] = e.placeholder
			continue
		}
		urls[i] = res.Value
	}
	return urls
}

func (e *thumbnailEnricher) lookup(ctx context.Context, m catalog.Movie) (string, error) {
	results, err := e.client.SearchMovie(ctx, m.Title, m.Year())
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	return e.client.PosterURL(results[0].PosterPath), nil
}
