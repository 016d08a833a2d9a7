package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BlacklistEntry is the blacklist shape sent to the oracle.
type BlacklistEntry struct {
	Title string `json:"title"`
}

// RecommendationInput is everything the query translator sees. It is stored
// verbatim as the set's input snapshot and never read back by the pipeline.
type RecommendationInput struct {
	Preferences []string           `json:"preferences"`
	Score       map[string]float64 `json:"score"`
	Blacklist   []BlacklistEntry   `json:"blacklist"`
	TargetMood  string             `json:"target_mood"`
}

// BlacklistTitles returns the raw titles.
func (in *RecommendationInput) BlacklistTitles() []string {
	titles := make([]string, len(in.Blacklist))
	for i, b := range in.Blacklist {
		titles[i] = b.Title
	}
	return titles
}

// SearchParams is the validated oracle output. Both lists must be present and
// hold no blank entries; the oracle is asked for 2-3 genres and 5-10 keywords
// but shorter lists are accepted and longer ones are truncated by the caller.
type SearchParams struct {
	Genres   []string `json:"genres" validate:"required,dive,required"`
	Keywords []string `json:"keywords" validate:"required,dive,required"`
}

// RecommendationSet is one generation event. Only IsActive changes after creation.
type RecommendationSet struct {
	ID            uuid.UUID            `json:"id"`
	UserID        uuid.UUID            `json:"user_id"`
	CreatedAt     time.Time            `json:"created_at"`
	IsActive      bool                 `json:"is_active"`
	InputSnapshot json.RawMessage      `json:"-"`
	Items         []RecommendationItem `json:"items,omitempty"`
}

// MovieMetadata is the catalog summary stored with each item.
type MovieMetadata struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date,omitempty"`
	Overview    string  `json:"overview,omitempty"`
	Popularity  float64 `json:"popularity,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
	PosterPath  string  `json:"poster_path,omitempty"`
	GenreIDs    []int64 `json:"genre_ids,omitempty"`
}

// RecommendationItem is one ranked movie in a set for a mood. Never updated.
type RecommendationItem struct {
	ID                  uuid.UUID     `json:"id"`
	RecommendationSetID uuid.UUID     `json:"recommendation_set_id"`
	Mood                Mood          `json:"mood"`
	ExternalID          string        `json:"external_id"`
	Title               string        `json:"title"`
	Rank                int           `json:"rank"`
	ThumbnailURL        string        `json:"thumbnail_url"`
	Metadata            MovieMetadata `json:"movie_metadata"`
	CreatedAt           time.Time     `json:"created_at"`
}
