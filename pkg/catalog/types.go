package catalog

import (
	"context"
	"strconv"
)

// Movie is a TMDb movie summary as returned by search and discover.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  string  `json:"poster_path"`
	GenreIDs    []int64 `json:"genre_ids"`
}

// Year returns the release year, or 0 when the date is missing or malformed.
func (m Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return y
}

// Genre is a TMDb movie genre.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Keyword is a TMDb keyword.
type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DiscoverParams selects movies matching any genre and any keyword.
type DiscoverParams struct {
	GenreIDs   []int64
	KeywordIDs []int64
}

// Client is the subset of the TMDb v3 API the recommender uses.
type Client interface {
	// SearchMovie looks a title up, optionally narrowed to a release year (0 = any).
	SearchMovie(ctx context.Context, title string, year int) ([]Movie, error)
	// Genres lists the movie genres with English names.
	Genres(ctx context.Context) ([]Genre, error)
	// SearchKeyword returns keywords matching query, most relevant first.
	SearchKeyword(ctx context.Context, query string) ([]Keyword, error)
	// Discover returns the first page of matches ordered by popularity.
	Discover(ctx context.Context, params DiscoverParams) ([]Movie, error)
	// PosterURL turns a poster_path into an absolute image URL.
	PosterURL(posterPath string) string
}

type pagedMovies struct {
	Page    int     `json:"page"`
	Results []Movie `json:"results"`
}

type genreList struct {
	Genres []Genre `json:"genres"`
}

type pagedKeywords struct {
	Page    int       `json:"page"`
	Results []Keyword `json:"results"`
}
