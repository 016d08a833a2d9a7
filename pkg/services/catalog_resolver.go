package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/LugiaKB/cinemind-backend/pkg/cache"
	"github.com/LugiaKB/cinemind-backend/pkg/catalog"
	"github.com/LugiaKB/cinemind-backend/pkg/logging"
	"github.com/LugiaKB/cinemind-backend/pkg/workerpool"
)

// CatalogResolver maps genre and keyword names to catalog ids. Names with no
// match are dropped; lookup failures are logged and never returned.
type CatalogResolver interface {
	ResolveGenres(ctx context.Context, names []string) []int64
	ResolveKeywords(ctx context.Context, keywords []string) []int64
}

type catalogResolver struct {
	client   catalog.Client
	keywords cache.KeywordCache
	pool     *workerpool.Pool
	logger   *zap.Logger

	// Genre name (lowercased) to id, filled once per process.
	mu     sync.RWMutex
	genres map[string]int64
	fill   singleflight.Group
}

// NewCatalogResolver creates a new CatalogResolver.
func NewCatalogResolver(client catalog.Client, keywords cache.KeywordCache, logger *zap.Logger) CatalogResolver {
	return &catalogResolver{
		client:   client,
		keywords: keywords,
		// One task per keyword.
		pool:   workerpool.New("keywords", 0, logger),
		logger: logger.Named("catalog-resolver"),
	}
}

var _ CatalogResolver = (*catalogResolver)(nil)

func (r *catalogResolver) ResolveGenres(ctx context.Context, names []string) []int64 {
	index, err := r.genreIndex(ctx)
	if err != nil {
		r.logger.Warn("Genre list unavailable, dropping all genres",
			zap.String("error", logging.SanitizeError(err)))
		return nil
	}

	ids := make([]int64, 0, len(names))
	seen := make(map[int64]struct{}, len(names))
	for _, name := range names {
		id, ok := index[normalizeName(name)]
		if !ok {
			r.logger.Debug("Dropping unknown genre", zap.String("genre", name))
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// genreIndex returns the cached map, fetching it on first use. Concurrent
// first callers share one fetch; a failed fetch is not cached.
func (r *catalogResolver) genreIndex(ctx context.Context) (map[string]int64, error) {
	r.mu.RLock()
	index := r.genres
	r.mu.RUnlock()
	if index != nil {
		return index, nil
	}

	v, err, _ := r.fill.Do("genres", func() (any, error) {
		r.mu.RLock()
		existing := r.genres
		r.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		// The fetch is shared by every waiting caller, so one caller giving up
		// must not fail the rest. The client bounds it with its own timeout.
		genres, err := r.client.Genres(context.WithoutCancel(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch genre list: %w", err)
		}

		built := make(map[string]int64, len(genres))
		for _, g := range genres {
			built[normalizeName(g.Name)] = g.ID
		}

		r.mu.Lock()
		r.genres = built
		r.mu.Unlock()

		r.logger.Info("Genre index loaded", zap.Int("genres", len(built)))
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]int64), nil
}

func (r *catalogResolver) ResolveKeywords(ctx context.Context, keywords []string) []int64 {
	items := make([]workerpool.Item[int64], len(keywords))
	for i, kw := range keywords {
		items[i] = workerpool.Item[int64]{
			ID:      kw,
			Execute: func(ctx context.Context) (int64, error) { return r.resolveKeyword(ctx, kw) },
		}
	}

	results := workerpool.Process(ctx, r.pool, items)

	ids := make([]int64, 0, len(results))
	seen := make(map[int64]struct{}, len(results))
	for _, res := range results {
		if res.Err != nil {
			r.logger.Warn("Keyword lookup failed",
				zap.String("keyword", res.ID),
				zap.String("error", logging.SanitizeError(res.Err)))
			continue
		}
		if res.Value == 0 {
			continue
		}
		if _, dup := seen[res.Value]; dup {
			continue
		}
		seen[res.Value] = struct{}{}
		ids = append(ids, res.Value)
	}
	return ids
}

// resolveKeyword returns 0 when the catalog has no match.
func (r *catalogResolver) resolveKeyword(ctx context.Context, keyword string) (int64, error) {
	id, found, err := r.keywords.Get(ctx, keyword)
	if err != nil {
		r.logger.Debug("Keyword cache read failed", zap.Error(err))
	} else if found {
		return id, nil
	}

	matches, err := r.client.SearchKeyword(ctx, keyword)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, nil
	}

	if err := r.keywords.Set(ctx, keyword, matches[0].ID); err != nil {
		r.logger.Debug("Keyword cache write failed", zap.Error(err))
	}
	return matches[0].ID, nil
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
