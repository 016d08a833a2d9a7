package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// BlacklistRepository reads the titles a user has rejected.
// Entries are managed by the accounts service.
type BlacklistRepository interface {
	ListTitles(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type blacklistRepository struct {
	conn Conn
}

// NewBlacklistRepository creates a new BlacklistRepository.
func NewBlacklistRepository(conn Conn) BlacklistRepository {
	return &blacklistRepository{conn: conn}
}

var _ BlacklistRepository = (*blacklistRepository)(nil)

func (r *blacklistRepository) ListTitles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.conn.Querier(ctx).Query(ctx,
		`SELECT title FROM blacklisted_movies WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blacklisted movies: %w", err)
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan blacklisted movie: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blacklisted movies: %w", err)
	}
	return titles, nil
}
