package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/saeid-a/HealthQuestBack/internal/models"
)

// ErrSnapshotNotFound means the user has not completed onboarding: either no
// row exists or the row has no profile.
var ErrSnapshotNotFound = errors.New("snapshot not found")

type snapshotRow struct {
	Profile    []byte
	Tasks      []byte
	FoodGuide  []byte
	CheckIns   []byte
	Points     int
	Motivation string
	UpdatedAt  time.Time
}

// decode leaves Profile nil when the stored profile is NULL.
func (r snapshotRow) decode() (*models.Snapshot, error) {
	snapshot := &models.Snapshot{
		Tasks:      []models.DailyTask{},
		FoodGuide:  []models.FoodItem{},
		CheckIns:   []models.WeeklyCheckIn{},
		Points:     r.Points,
		Motivation: r.Motivation,
		UpdatedAt:  r.UpdatedAt,
	}
	if !isNullJSON(r.Profile) {
		var profile models.UserProfile
		if err := json.Unmarshal(r.Profile, &profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		snapshot.Profile = &profile
	}

	if err := unmarshalList(r.Tasks, &snapshot.Tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	if err := unmarshalList(r.FoodGuide, &snapshot.FoodGuide); err != nil {
		return nil, fmt.Errorf("decode food guide: %w", err)
	}
	if err := unmarshalList(r.CheckIns, &snapshot.CheckIns); err != nil {
		return nil, fmt.Errorf("decode checkins: %w", err)
	}
	return snapshot, nil
}

// onboarded decodes the row and reports ErrSnapshotNotFound when it has no profile.
func (r snapshotRow) onboarded() (*models.Snapshot, error) {
	snapshot, err := r.decode()
	if err != nil {
		return nil, err
	}
	if snapshot.Profile == nil {
		return nil, ErrSnapshotNotFound
	}
	return snapshot, nil
}

// encodedPatch carries the patch as column values; nil means "keep stored value".
type encodedPatch struct {
	Profile    []byte
	Tasks      []byte
	FoodGuide  []byte
	CheckIns   []byte
	Points     *int
	Motivation *string
}

func encodePatch(patch models.SnapshotPatch) (encodedPatch, error) {
	var out encodedPatch
	var err error

	if patch.Profile != nil {
		if out.Profile, err = json.Marshal(patch.Profile); err != nil {
			return out, fmt.Errorf("encode profile: %w", err)
		}
	}
	if out.Tasks, err = marshalList(patch.Tasks); err != nil {
		return out, fmt.Errorf("encode tasks: %w", err)
	}
	if out.FoodGuide, err = marshalList(patch.FoodGuide); err != nil {
		return out, fmt.Errorf("encode food guide: %w", err)
	}
	if out.CheckIns, err = marshalList(patch.CheckIns); err != nil {
		return out, fmt.Errorf("encode checkins: %w", err)
	}
	if patch.Points != nil {
		if *patch.Points < 0 {
			return out, fmt.Errorf("points must not be negative")
		}
		points := *patch.Points
		out.Points = &points
	}
	if patch.Motivation != nil {
		motivation := *patch.Motivation
		out.Motivation = &motivation
	}
	return out, nil
}

func marshalList[T any](list *[]T) ([]byte, error) {
	if list == nil {
		return nil, nil
	}
	if *list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(*list)
}

func unmarshalList[T any](raw []byte, out *[]T) error {
	if isNullJSON(raw) {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func isNullJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// nullableText turns raw JSON into a value database/sql writes as TEXT or NULL.
func nullableText(raw []byte) any {
	if raw == nil {
		return nil
	}
	return string(raw)
}
