package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/LugiaKB/cinemind-backend/pkg/models"
)

// GenreRepository provides data access for genres and profile favorites.
type GenreRepository interface {
	List(ctx context.Context) ([]*models.Genre, error)
	ListFavoriteNames(ctx context.Context, profileID uuid.UUID) ([]string, error)
	// ReplaceFavorites swaps the profile's favorites for the given ids.
	// Ids with no matching genre are skipped. Returns the number stored.
	ReplaceFavorites(ctx context.Context, profileID uuid.UUID, genreIDs []uuid.UUID) (int, error)
}

type genreRepository struct {
	conn Conn
}

// NewGenreRepository creates a new GenreRepository.
func NewGenreRepository(conn Conn) GenreRepository {
	return &genreRepository{conn: conn}
}

var _ GenreRepository = (*genreRepository)(nil)

func (r *genreRepository) List(ctx context.Context) ([]*models.Genre, error) {
	rows, err := r.conn.Querier(ctx).Query(ctx, `SELECT id, name FROM genres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	defer rows.Close()

	var genres []*models.Genre
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating genres: %w", err)
	}
	return genres, nil
}

func (r *genreRepository) ListFavoriteNames(ctx context.Context, profileID uuid.UUID) ([]string, error) {
	rows, err := r.conn.Querier(ctx).Query(ctx, `
		SELECT g.name
		FROM profile_genres pg
		JOIN genres g ON g.id = pg.genre_id
		WHERE pg.profile_id = $1
		ORDER BY g.name`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite genres: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan favorite genre: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite genres: %w", err)
	}
	return names, nil
}

func (r *genreRepository) ReplaceFavorites(ctx context.Context, profileID uuid.UUID, genreIDs []uuid.UUID) (int, error) {
	var stored int
	err := r.conn.InTx(ctx, func(ctx context.Context) error {
		q := r.conn.Querier(ctx)

		if _, err := q.Exec(ctx, `DELETE FROM profile_genres WHERE profile_id = $1`, profileID); err != nil {
			return fmt.Errorf("failed to clear favorite genres: %w", err)
		}
		if len(genreIDs) == 0 {
			return nil
		}

		result, err := q.Exec(ctx, `
			INSERT INTO profile_genres (profile_id, genre_id)
			SELECT $1, id FROM genres WHERE id = ANY($2)
			ON CONFLICT DO NOTHING`, profileID, genreIDs)
		if err != nil {
			return fmt.Errorf("failed to store favorite genres: %w", err)
		}
		stored = int(result.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stored, nil
}
