package catalog

import (
	"context"
	"sync"
)

// MockClient is a configurable Client for tests. Nil funcs return empty results.
type MockClient struct {
	SearchMovieFunc   func(ctx context.Context, title string, year int) ([]Movie, error)
	GenresFunc        func(ctx context.Context) ([]Genre, error)
	SearchKeywordFunc func(ctx context.Context, query string) ([]Keyword, error)
	DiscoverFunc      func(ctx context.Context, params DiscoverParams) ([]Movie, error)

	// ImageBaseURL prefixes poster paths. Defaults to "https://img.test".
	ImageBaseURL string

	mu    sync.Mutex
	calls map[string]int
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

// Calls returns how many times op ran ("search_movie", "genres",
// "search_keyword", "discover").
func (m *MockClient) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls returns the number of API calls of any kind.
func (m *MockClient) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *MockClient) SearchMovie(ctx context.Context, title string, year int) ([]Movie, error) {
	m.record("search_movie")
	if m.SearchMovieFunc != nil {
		return m.SearchMovieFunc(ctx, title, year)
	}
	return nil, nil
}

func (m *MockClient) Genres(ctx context.Context) ([]Genre, error) {
	m.record("genres")
	if m.GenresFunc != nil {
		return m.GenresFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) SearchKeyword(ctx context.Context, query string) ([]Keyword, error) {
	m.record("search_keyword")
	if m.SearchKeywordFunc != nil {
		return m.SearchKeywordFunc(ctx, query)
	}
	return nil, nil
}

func (m *MockClient) Discover(ctx context.Context, params DiscoverParams) ([]Movie, error) {
	m.record("discover")
	if m.DiscoverFunc != nil {
		return m.DiscoverFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockClient) PosterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	base := m.ImageBaseURL
	if base == "" {
		base = "https://img.test"
	}
	return base + posterPath
}
