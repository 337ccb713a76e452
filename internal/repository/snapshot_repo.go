package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/HealthQuestBack/internal/models"
)

// SnapshotRepository stores one profile snapshot per user in postgres.
type SnapshotRepository struct {
	db DBTX
}

func NewSnapshotRepository(db DBTX) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Fetch(ctx context.Context, userID string) (*models.Snapshot, error) {
	query := `
		SELECT profile, tasks, food_guide, checkins, points, motivation, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	var row snapshotRow
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&row.Profile,
		&row.Tasks,
		&row.FoodGuide,
		&row.CheckIns,
		&row.Points,
		&row.Motivation,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return row.onboarded()
}

// Save upserts the patch fields; fields left nil keep their stored value.
func (r *SnapshotRepository) Save(ctx context.Context, userID string, patch models.SnapshotPatch) (*models.Snapshot, error) {
	if patch.Empty() {
		return r.Fetch(ctx, userID)
	}
	encoded, err := encodePatch(patch)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO profiles (user_id, profile, tasks, food_guide, checkins, points, motivation, updated_at)
		VALUES (
			$1,
			$2::jsonb,
			COALESCE($3::jsonb, '[]'::jsonb),
			COALESCE($4::jsonb, '[]'::jsonb),
			COALESCE($5::jsonb, '[]'::jsonb),
			COALESCE($6::int, 0),
			COALESCE($7::text, ''),
			NOW()
		)
		ON CONFLICT (user_id) DO UPDATE
		SET profile = COALESCE($2::jsonb, profiles.profile),
			tasks = COALESCE($3::jsonb, profiles.tasks),
			food_guide = COALESCE($4::jsonb, profiles.food_guide),
			checkins = COALESCE($5::jsonb, profiles.checkins),
			points = COALESCE($6::int, profiles.points),
			motivation = COALESCE($7::text, profiles.motivation),
			updated_at = NOW()
		RETURNING profile, tasks, food_guide, checkins, points, motivation, updated_at
	`
	var row snapshotRow
	err = r.db.QueryRow(ctx, query,
		userID,
		encoded.Profile,
		encoded.Tasks,
		encoded.FoodGuide,
		encoded.CheckIns,
		encoded.Points,
		encoded.Motivation,
	).Scan(
		&row.Profile,
		&row.Tasks,
		&row.FoodGuide,
		&row.CheckIns,
		&row.Points,
		&row.Motivation,
		&row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return row.decode()
}
