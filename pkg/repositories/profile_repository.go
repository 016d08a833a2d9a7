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

// ProfileRepository provides data access for personality profiles.
type ProfileRepository interface {
	// EnsureForUser returns the user's profile, creating a zero-score one on first use.
	EnsureForUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateScores(ctx context.Context, profileID uuid.UUID, scores models.TraitScores) error
}

type profileRepository struct {
	conn Conn
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn Conn) ProfileRepository {
	return &profileRepository{conn: conn}
}

var _ ProfileRepository = (*profileRepository)(nil)

const profileColumns = `id, user_id, openness, conscientiousness, extraversion,
	agreeableness, neuroticism, created_at, updated_at`

func (r *profileRepository) EnsureForUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `
		INSERT INTO profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + profileColumns

	p, err := scanProfile(r.conn.Querier(ctx).QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}
	return p, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	p, err := scanProfile(r.conn.Querier(ctx).QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (r *profileRepository) UpdateScores(ctx context.Context, profileID uuid.UUID, scores models.TraitScores) error {
	query := `
		UPDATE profiles
		SET openness = $2, conscientiousness = $3, extraversion = $4,
		    agreeableness = $5, neuroticism = $6, updated_at = now()
		WHERE id = $1`

	result, err := r.conn.Querier(ctx).Exec(ctx, query, profileID,
		scores.Openness,
		scores.Conscientiousness,
		scores.Extraversion,
		scores.Agreeableness,
		scores.Neuroticism,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile scores: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.UserID,
		&p.Scores.Openness,
		&p.Scores.Conscientiousness,
		&p.Scores.Extraversion,
		&p.Scores.Agreeableness,
		&p.Scores.Neuroticism,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
