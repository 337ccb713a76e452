package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/saeid-a/HealthQuestBack/internal/models"
)

const sqliteTimeLayout = "2006-01-02T15:04:05.000Z"

// SQLiteSnapshotRepository is the local development store. The table is
// created by database.OpenSQLite.
type SQLiteSnapshotRepository struct {
	db *sql.DB
}

func NewSQLiteSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db}
}

func (r *SQLiteSnapshotRepository) Fetch(ctx context.Context, userID string) (*models.Snapshot, error) {
	query := `
		SELECT profile, tasks, food_guide, checkins, points, motivation, updated_at
		FROM profiles
		WHERE user_id = ?1
	`
	row, err := scanSQLiteRow(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return row.onboarded()
}

func (r *SQLiteSnapshotRepository) Save(ctx context.Context, userID string, patch models.SnapshotPatch) (*models.Snapshot, error) {
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
			?1,
			?2,
			COALESCE(?3, '[]'),
			COALESCE(?4, '[]'),
			COALESCE(?5, '[]'),
			COALESCE(?6, 0),
			COALESCE(?7, ''),
			strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		)
		ON CONFLICT (user_id) DO UPDATE
		SET profile = COALESCE(?2, profile),
			tasks = COALESCE(?3, tasks),
			food_guide = COALESCE(?4, food_guide),
			checkins = COALESCE(?5, checkins),
			points = COALESCE(?6, points),
			motivation = COALESCE(?7, motivation),
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		RETURNING profile, tasks, food_guide, checkins, points, motivation, updated_at
	`
	var points, motivation any
	if encoded.Points != nil {
		points = *encoded.Points
	}
	if encoded.Motivation != nil {
		motivation = *encoded.Motivation
	}

	row, err := scanSQLiteRow(r.db.QueryRowContext(ctx, query,
		userID,
		nullableText(encoded.Profile),
		nullableText(encoded.Tasks),
		nullableText(encoded.FoodGuide),
		nullableText(encoded.CheckIns),
		points,
		motivation,
	))
	if err != nil {
		return nil, err
	}
	return row.decode()
}

func scanSQLiteRow(scanner *sql.Row) (snapshotRow, error) {
	var (
		row                              snapshotRow
		profile                          sql.NullString
		tasks, foodGuide, checkIns, when string
	)
	if err := scanner.Scan(&profile, &tasks, &foodGuide, &checkIns, &row.Points, &row.Motivation, &when); err != nil {
		return row, err
	}
	if profile.Valid {
		row.Profile = []byte(profile.String)
	}
	row.Tasks = []byte(tasks)
	row.FoodGuide = []byte(foodGuide)
	row.CheckIns = []byte(checkIns)

	updatedAt, err := time.Parse(sqliteTimeLayout, when)
	if err != nil {
		return row, fmt.Errorf("parse updated_at: %w", err)
	}
	row.UpdatedAt = updatedAt
	return row, nil
}
