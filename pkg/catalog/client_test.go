package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/config"
)

func testConfig(baseURL string) config.CatalogConfig {
	return config.CatalogConfig{
		BaseURL:             baseURL,
		ImageBaseURL:        "https://image.tmdb.org/t/p/w500/",
		APIKey:              "secret-key",
		Language:            "pt-BR",
		Timeout:             time.Second,
		RequestsPerSecond:   1000,
		Burst:               100,
		BreakerFailureRatio: 0.5,
		BreakerMinRequests:  2,
		BreakerTimeout:      time.Hour,
	}
}

func TestDiscover_BuildsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "secret-key", q.Get("api_key"))
		assert.Equal(t, "pt-BR", q.Get("language"))
		assert.Equal(t, "popularity.desc", q.Get("sort_by"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "35|18", q.Get("with_genres"))
		assert.Equal(t, "9715", q.Get("with_keywords"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[
			{"id":1,"title":"First","release_date":"2001-05-01","poster_path":"/a.jpg","popularity":99.5,"genre_ids":[35]},
			{"id":2,"title":"Second","release_date":"","poster_path":null}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())
	movies, err := client.Discover(context.Background(), DiscoverParams{
		GenreIDs:   []int64{35, 18},
		KeywordIDs: []int64{9715},
	})
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "First", movies[0].Title)
	assert.Equal(t, 2001, movies[0].Year())
	assert.Equal(t, []int64{35}, movies[0].GenreIDs)
	assert.Equal(t, 0, movies[1].Year())
	assert.Empty(t, movies[1].PosterPath)
}

func TestDiscover_OmitsEmptyCriteria(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("with_genres"))
		assert.Equal(t, "7", q.Get("with_keywords"))
		_, _ = w.Write([]byte(`{"page":1,"results":[]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())
	movies, err := client.Discover(context.Background(), DiscoverParams{KeywordIDs: []int64{7}})
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestGenres_UsesEnglishNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/genre/movie/list", r.URL.Path)
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"},{"id":35,"name":"Comedy"}]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())
	genres, err := client.Genres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Genre{{ID: 28, Name: "Action"}, {ID: 35, Name: "Comedy"}}, genres)
}

func TestSearchMovieAndKeyword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/search/movie":
			assert.Equal(t, "Heat", q.Get("query"))
			assert.Equal(t, "1995", q.Get("year"))
			_, _ = w.Write([]byte(`{"page":1,"results":[{"id":949,"title":"Heat","poster_path":"/heat.jpg"}]}`))
		case "/search/keyword":
			assert.Equal(t, "heist", q.Get("query"))
			assert.False(t, q.Has("language"))
			_, _ = w.Write([]byte(`{"page":1,"results":[{"id":10051,"name":"heist"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())

	movies, err := client.SearchMovie(context.Background(), "Heat", 1995)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/heat.jpg", client.PosterURL(movies[0].PosterPath))

	keywords, err := client.SearchKeyword(context.Background(), "heist")
	require.NoError(t, err)
	assert.Equal(t, []Keyword{{ID: 10051, Name: "heist"}}, keywords)
}

func TestPosterURL_EmptyPath(t *testing.T) {
	client := NewClient(testConfig("http://unused"), zap.NewNop())
	assert.Empty(t, client.PosterURL(""))
}

func TestGet_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key"}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())
	_, err := client.Genres(context.Background())
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Contains(t, se.Body, "Invalid API key")
}

func TestGet_TimeoutIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	client := NewClient(cfg, zap.NewNop())

	_, err := client.SearchKeyword(context.Background(), "slow")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestBreaker_OpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())
	for i := 0; i < 2; i++ {
		_, err := client.Genres(context.Background())
		require.Error(t, err)
	}

	_, err := client.Genres(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState), "got %v", err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop())
	for i := 0; i < 4; i++ {
		_, err := client.SearchKeyword(context.Background(), "x")
		require.Error(t, err)
		assert.False(t, errors.Is(err, gobreaker.ErrOpenState))
	}
	assert.Equal(t, int32(4), hits.Load())
}

func TestJoinOr(t *testing.T) {
	assert.Equal(t, "1", joinOr([]int64{1}))
	assert.Equal(t, "1|2|3", joinOr([]int64{1, 2, 3}))
	assert.True(t, strings.Contains(joinOr([]int64{10, 20}), "|"))
}
