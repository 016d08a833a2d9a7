// Package catalog is the TMDb client. Every call waits on a shared rate
// limiter, runs under its own timeout and goes through a circuit breaker.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/LugiaKB/cinemind-backend/pkg/config"
	"github.com/LugiaKB/cinemind-backend/pkg/logging"
	"github.com/LugiaKB/cinemind-backend/pkg/metrics"
)

// Genre names are matched against English oracle output regardless of the
// language used for titles.
const genreLanguage = "en-US"

const maxErrorBody = 512

// StatusError is a non-2xx TMDb response.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// clientFault reports 4xx responses other than 429; they say nothing about
// TMDb's health.
func clientFault(err error) bool {
	var se *StatusError
	return errors.As(err, &se) &&
		se.StatusCode >= 400 && se.StatusCode < 500 &&
		se.StatusCode != http.StatusTooManyRequests
}

type tmdbClient struct {
	httpClient   *http.Client
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
	timeout      time.Duration
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[[]byte]
	logger       *zap.Logger
}

var _ Client = (*tmdbClient)(nil)

// NewClient creates a TMDb client from configuration.
func NewClient(cfg config.CatalogConfig, logger *zap.Logger) Client {
	logger = logger.Named("catalog")

	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	minRequests := cfg.BreakerMinRequests
	ratio := cfg.BreakerFailureRatio

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Catalog circuit breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || clientFault(err)
		},
	})

	return &tmdbClient{
		httpClient:   &http.Client{},
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimSuffix(cfg.ImageBaseURL, "/"),
		apiKey:       cfg.APIKey,
		language:     cfg.Language,
		timeout:      cfg.Timeout,
		limiter:      rate.NewLimiter(limit, burst),
		breaker:      breaker,
		logger:       logger,
	}
}

func (c *tmdbClient) SearchMovie(ctx context.Context, title string, year int) ([]Movie, error) {
	params := url.Values{}
	params.Set("query", title)
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var out pagedMovies
	if err := c.get(ctx, "search_movie", "/search/movie", params, c.language, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *tmdbClient) Genres(ctx context.Context) ([]Genre, error) {
	var out genreList
	if err := c.get(ctx, "genres", "/genre/movie/list", url.Values{}, genreLanguage, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

func (c *tmdbClient) SearchKeyword(ctx context.Context, query string) ([]Keyword, error) {
	params := url.Values{}
	params.Set("query", query)

	var out pagedKeywords
	if err := c.get(ctx, "search_keyword", "/search/keyword", params, "", &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *tmdbClient) Discover(ctx context.Context, p DiscoverParams) ([]Movie, error) {
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	params.Set("page", "1")
	if len(p.GenreIDs) > 0 {
		params.Set("with_genres", joinOr(p.GenreIDs))
	}
	if len(p.KeywordIDs) > 0 {
		params.Set("with_keywords", joinOr(p.KeywordIDs))
	}

	var out pagedMovies
	if err := c.get(ctx, "discover", "/discover/movie", params, c.language, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *tmdbClient) PosterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return c.imageBaseURL + "/" + strings.TrimPrefix(posterPath, "/")
}

// joinOr joins ids with "|", which TMDb reads as OR.
func joinOr(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, "|")
}

func (c *tmdbClient) get(ctx context.Context, operation, path string, params url.Values, language string, out any) error {
	start := time.Now()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params.Set("api_key", c.apiKey)
	if language != "" {
		params.Set("language", language)
	}
	reqURL := c.baseURL + path + "?" + params.Encode()

	body, err := c.fetch(ctx, operation, reqURL)
	metrics.RecordCatalogRequest(operation, time.Since(start), err)
	if err != nil {
		c.logger.Warn("Catalog request failed",
			zap.String("operation", operation),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error", logging.SanitizeError(err)))
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode tmdb %s response: %w", operation, err)
	}
	return nil
}

func (c *tmdbClient) fetch(ctx context.Context, operation, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("tmdb %s: rate limiter: %w", operation, err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build tmdb request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// *url.Error embeds the full URL, api_key included.
			var urlErr *url.Error
			if errors.As(err, &urlErr) {
				return nil, fmt.Errorf("tmdb %s: %s: %w", operation, logging.SanitizeURL(urlErr.URL), urlErr.Err)
			}
			return nil, fmt.Errorf("tmdb %s: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return nil, &StatusError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(snippet)),
			}
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("tmdb %s: read body: %w", operation, err)
		}
		return data, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("tmdb %s: %w", operation, err)
	}
	return body, err
}
