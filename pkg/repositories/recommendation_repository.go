package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
	"github.com/LugiaKB/cinemind-backend/pkg/models"
)

// RecommendationRepository owns recommendation sets and their items.
type RecommendationRepository interface {
	// ActivateNewSet deactivates the user's active set (if any) and creates a
	// new active one in the same transaction.
	ActivateNewSet(ctx context.Context, userID uuid.UUID, snapshot json.RawMessage) (*models.RecommendationSet, error)
	// GetSet returns a set without its items.
	GetSet(ctx context.Context, setID uuid.UUID) (*models.RecommendationSet, error)
	// GetActiveSet returns the user's active set with items ordered by mood and rank.
	GetActiveSet(ctx context.Context, userID uuid.UUID) (*models.RecommendationSet, error)
	// LockUserSets takes the per-user lock that serializes activations.
	// It must run inside InTx; the lock is released when the transaction ends.
	LockUserSets(ctx context.Context, userID uuid.UUID) error
	CountItems(ctx context.Context, setID, moodID uuid.UUID) (int, error)
	// AppendItems bulk-inserts ranked items for one mood. A duplicate
	// (set, mood, rank) fails with apperrors.ErrConflict.
	AppendItems(ctx context.Context, setID, moodID uuid.UUID, items []*models.RecommendationItem) error
}

type recommendationRepository struct {
	conn Conn
}

// NewRecommendationRepository creates a new RecommendationRepository.
func NewRecommendationRepository(conn Conn) RecommendationRepository {
	return &recommendationRepository{conn: conn}
}

var _ RecommendationRepository = (*recommendationRepository)(nil)

func (r *recommendationRepository) ActivateNewSet(ctx context.Context, userID uuid.UUID, snapshot json.RawMessage) (*models.RecommendationSet, error) {
	set := &models.RecommendationSet{
		UserID:        userID,
		IsActive:      true,
		InputSnapshot: snapshot,
	}

	err := r.conn.InTx(ctx, func(ctx context.Context) error {
		if err := r.LockUserSets(ctx, userID); err != nil {
			return err
		}
		q := r.conn.Querier(ctx)

		if _, err := q.Exec(ctx, `
			UPDATE recommendation_sets SET is_active = false
			WHERE user_id = $1 AND is_active`, userID); err != nil {
			return fmt.Errorf("failed to deactivate recommendation set: %w", err)
		}

		err := q.QueryRow(ctx, `
			INSERT INTO recommendation_sets (user_id, is_active, input_snapshot)
			VALUES ($1, true, $2)
			RETURNING id, created_at`, userID, []byte(snapshot),
		).Scan(&set.ID, &set.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create recommendation set: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (r *recommendationRepository) LockUserSets(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.conn.Querier(ctx).Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, userID.String()); err != nil {
		return fmt.Errorf("failed to lock user sets: %w", err)
	}
	return nil
}

func (r *recommendationRepository) GetSet(ctx context.Context, setID uuid.UUID) (*models.RecommendationSet, error) {
	var set models.RecommendationSet
	var snapshot []byte
	err := r.conn.Querier(ctx).QueryRow(ctx, `
		SELECT id, user_id, created_at, is_active, input_snapshot
		FROM recommendation_sets WHERE id = $1`, setID,
	).Scan(&set.ID, &set.UserID, &set.CreatedAt, &set.IsActive, &snapshot)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recommendation set: %w", err)
	}
	set.InputSnapshot = snapshot
	return &set, nil
}

func (r *recommendationRepository) GetActiveSet(ctx context.Context, userID uuid.UUID) (*models.RecommendationSet, error) {
	q := r.conn.Querier(ctx)

	var set models.RecommendationSet
	var snapshot []byte
	err := q.QueryRow(ctx, `
		SELECT id, user_id, created_at, is_active, input_snapshot
		FROM recommendation_sets
		WHERE user_id = $1 AND is_active
		ORDER BY created_at DESC
		LIMIT 1`, userID,
	).Scan(&set.ID, &set.UserID, &set.CreatedAt, &set.IsActive, &snapshot)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get active recommendation set: %w", err)
	}
	set.InputSnapshot = snapshot

	rows, err := q.Query(ctx, `
		SELECT i.id, i.recommendation_set_id, i.external_id, i.title, i.rank,
		       i.thumbnail_url, i.movie_metadata, i.created_at,
		       m.id, m.name, m.description
		FROM recommendation_items i
		JOIN moods m ON m.id = i.mood_id
		WHERE i.recommendation_set_id = $1
		ORDER BY m.name, i.rank`, set.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendation items: %w", err)
	}
	defer rows.Close()

	set.Items = []models.RecommendationItem{}
	for rows.Next() {
		var item models.RecommendationItem
		var metadata []byte
		if err := rows.Scan(
			&item.ID, &item.RecommendationSetID, &item.ExternalID, &item.Title, &item.Rank,
			&item.ThumbnailURL, &metadata, &item.CreatedAt,
			&item.Mood.ID, &item.Mood.Name, &item.Mood.Description,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation item: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &item.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode movie metadata: %w", err)
			}
		}
		set.Items = append(set.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendation items: %w", err)
	}

	return &set, nil
}

func (r *recommendationRepository) CountItems(ctx context.Context, setID, moodID uuid.UUID) (int, error) {
	var n int
	err := r.conn.Querier(ctx).QueryRow(ctx, `
		SELECT count(*) FROM recommendation_items
		WHERE recommendation_set_id = $1 AND mood_id = $2`, setID, moodID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count recommendation items: %w", err)
	}
	return n, nil
}

func (r *recommendationRepository) AppendItems(ctx context.Context, setID, moodID uuid.UUID, items []*models.RecommendationItem) error {
	if len(items) == 0 {
		return nil
	}

	var (
		ids        = make([]uuid.UUID, len(items))
		externals  = make([]string, len(items))
		titles     = make([]string, len(items))
		ranks      = make([]int32, len(items))
		thumbnails = make([]string, len(items))
		metadata   = make([]string, len(items))
	)
	for i, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		meta, err := jsonbValue(item.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode movie metadata: %w", err)
		}
		ids[i] = item.ID
		externals[i] = item.ExternalID
		titles[i] = item.Title
		ranks[i] = int32(item.Rank)
		thumbnails[i] = item.ThumbnailURL
		metadata[i] = string(meta)
	}

	query := `
		INSERT INTO recommendation_items (
			id, recommendation_set_id, mood_id, external_id, title, rank,
			thumbnail_url, movie_metadata
		)
		SELECT u.id, $1, $2, u.external_id, u.title, u.rank, u.thumbnail_url, u.metadata::jsonb
		FROM unnest($3::uuid[], $4::text[], $5::text[], $6::int[], $7::text[], $8::text[])
			AS u(id, external_id, title, rank, thumbnail_url, metadata)
		RETURNING id, created_at`

	rows, err := r.conn.Querier(ctx).Query(ctx, query,
		setID, moodID, ids, externals, titles, ranks, thumbnails, metadata)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("items already exist for this set and mood: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to insert recommendation items: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*models.RecommendationItem, len(items))
	for _, item := range items {
		item.RecommendationSetID = setID
		item.Mood.ID = moodID
		byID[item.ID] = item
	}
	for rows.Next() {
		var id uuid.UUID
		var item models.RecommendationItem
		if err := rows.Scan(&id, &item.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan recommendation item: %w", err)
		}
		if target, ok := byID[id]; ok {
			target.CreatedAt = item.CreatedAt
		}
	}
	if err := rows.Err(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("items already exist for this set and mood: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to insert recommendation items: %w", err)
	}
	return nil
}
