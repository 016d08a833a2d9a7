package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
	"github.com/LugiaKB/cinemind-backend/pkg/models"
)

// MoodRepository provides read access to the seeded moods.
type MoodRepository interface {
	List(ctx context.Context) ([]*models.Mood, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Mood, error)
}

type moodRepository struct {
	conn Conn
}

// NewMoodRepository creates a new MoodRepository.
func NewMoodRepository(conn Conn) MoodRepository {
	return &moodRepository{conn: conn}
}

var _ MoodRepository = (*moodRepository)(nil)

func (r *moodRepository) List(ctx context.Context) ([]*models.Mood, error) {
	rows, err := r.conn.Querier(ctx).Query(ctx, `SELECT id, name, description FROM moods ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list moods: %w", err)
	}
	defer rows.Close()

	var moods []*models.Mood
	for rows.Next() {
		var m models.Mood
		if err := rows.Scan(&m.ID, &m.Name, &m.Description); err != nil {
			return nil, fmt.Errorf("failed to scan mood: %w", err)
		}
		moods = append(moods, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating moods: %w", err)
	}
	return moods, nil
}

func (r *moodRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Mood, error) {
	var m models.Mood
	err := r.conn.Querier(ctx).QueryRow(ctx,
		`SELECT id, name, description FROM moods WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get mood: %w", err)
	}
	return &m, nil
}
