package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/cache"
	"github.com/LugiaKB/cinemind-backend/pkg/catalog"
)

func genreCatalog() *catalog.MockClient {
	return &catalog.MockClient{
		GenresFunc: func(context.Context) ([]catalog.Genre, error) {
			return []catalog.Genre{{ID: 35, Name: "Comedy"}, {ID: 18, Name: "Drama"}, {ID: 878, Name: "Science Fiction"}}, nil
		},
	}
}

func TestResolveGenres_DropsUnknownNames(t *testing.T) {
	r := NewCatalogResolver(genreCatalog(), cache.NoopKeywordCache{}, zap.NewNop())

	ids := r.ResolveGenres(context.Background(), []string{"Comedy", "Telenovela", "science fiction", "Comedy"})
	assert.Equal(t, []int64{35, 878}, ids)
}

func TestResolveGenres_FetchesOnce(t *testing.T) {
	client := genreCatalog()
	r := NewCatalogResolver(client, cache.NoopKeywordCache{}, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.ResolveGenres(context.Background(), []string{"Drama"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, client.Calls("genres"))
}

func TestResolveGenres_FailedFetchIsNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	client := &catalog.MockClient{
		GenresFunc: func(context.Context) ([]catalog.Genre, error) {
			if fail.Load() {
				return nil, errors.New("tmdb genres: status 503")
			}
			return []catalog.Genre{{ID: 35, Name: "Comedy"}}, nil
		},
	}
	r := NewCatalogResolver(client, cache.NoopKeywordCache{}, zap.NewNop())

	assert.Empty(t, r.ResolveGenres(context.Background(), []string{"Comedy"}))

	fail.Store(false)
	assert.Equal(t, []int64{35}, r.ResolveGenres(context.Background(), []string{"Comedy"}))
	assert.Equal(t, 2, client.Calls("genres"))
}

func TestResolveGenres_FillSurvivesCallerCancel(t *testing.T) {
	client := &catalog.MockClient{
		GenresFunc: func(ctx context.Context) ([]catalog.Genre, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return []catalog.Genre{{ID: 35, Name: "Comedy"}}, nil
		},
	}
	r := NewCatalogResolver(client, cache.NoopKeywordCache{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, []int64{35}, r.ResolveGenres(ctx, []string{"Comedy"}))
	assert.Equal(t, []int64{35}, r.ResolveGenres(context.Background(), []string{"comedy"}))
	assert.Equal(t, 1, client.Calls("genres"))
}

func TestResolveKeywords_FirstMatchAndFailuresSwallowed(t *testing.T) {
	client := &catalog.MockClient{
		SearchKeywordFunc: func(ctx context.Context, q string) ([]catalog.Keyword, error) {
			switch q {
			case "slapstick":
				time.Sleep(10 * time.Millisecond)
				return []catalog.Keyword{{ID: 9715, Name: "slapstick comedy"}, {ID: 1, Name: "slapstick"}}, nil
			case "heist":
				return []catalog.Keyword{{ID: 10051, Name: "heist"}}, nil
			case "broken":
				return nil, errors.New("tmdb search_keyword: status 500")
			default:
				return nil, nil
			}
		},
	}
	r := NewCatalogResolver(client, cache.NoopKeywordCache{}, zap.NewNop())

	ids := r.ResolveKeywords(context.Background(), []string{"slapstick", "broken", "nothing-matches", "heist"})
	assert.ElementsMatch(t, []int64{9715, 10051}, ids)
	assert.Equal(t, 4, client.Calls("search_keyword"))
}

func TestResolveKeywords_RunsConcurrently(t *testing.T) {
	var inFlight, peak atomic.Int32
	client := &catalog.MockClient{
		SearchKeywordFunc: func(ctx context.Context, q string) ([]catalog.Keyword, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
			return []catalog.Keyword{{ID: int64(len(q))}}, nil
		},
	}
	r := NewCatalogResolver(client, cache.NoopKeywordCache{}, zap.NewNop())

	r.ResolveKeywords(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	assert.Greater(t, peak.Load(), int32(1))
}

type mapKeywordCache struct {
	mu   sync.Mutex
	data map[string]int64
}

func (c *mapKeywordCache) Get(_ context.Context, k string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.data[k]
	return id, ok, nil
}

func (c *mapKeywordCache) Set(_ context.Context, k string, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[k] = id
	return nil
}

func TestResolveKeywords_UsesCache(t *testing.T) {
	kc := &mapKeywordCache{data: map[string]int64{"heist": 10051}}
	client := &catalog.MockClient{
		SearchKeywordFunc: func(ctx context.Context, q string) ([]catalog.Keyword, error) {
			return []catalog.Keyword{{ID: 42}}, nil
		},
	}
	r := NewCatalogResolver(client, kc, zap.NewNop())

	ids := r.ResolveKeywords(context.Background(), []string{"heist", "space"})
	assert.ElementsMatch(t, []int64{10051, 42}, ids)
	assert.Equal(t, 1, client.Calls("search_keyword"))
	assert.Equal(t, int64(42), kc.data["space"])
}
