package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saeid-a/HealthQuestBack/internal/models"
)

// SupabaseSnapshotRepository talks to the PostgREST API of a hosted Supabase
// project. Upserts only send the patched columns, so PostgREST merges them
// into the existing row.
type SupabaseSnapshotRepository struct {
	baseURL    string
	table      string
	serviceKey string
	httpClient *http.Client
	now        func() time.Time
}

func NewSupabaseSnapshotRepository(baseURL, table, serviceKey string) *SupabaseSnapshotRepository {
	return &SupabaseSnapshotRepository{
		baseURL:    strings.TrimRight(baseURL, "/"),
		table:      table,
		serviceKey: serviceKey,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
}

const supabaseColumns = "profile,tasks,food_guide,checkins,points,motivation,updated_at"

type supabaseRow struct {
	Profile    json.RawMessage `json:"profile"`
	Tasks      json.RawMessage `json:"tasks"`
	FoodGuide  json.RawMessage `json:"food_guide"`
	CheckIns   json.RawMessage `json:"checkins"`
	Points     *int            `json:"points"`
	Motivation *string         `json:"motivation"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (r supabaseRow) toRow() snapshotRow {
	row := snapshotRow{
		Profile:   r.Profile,
		Tasks:     r.Tasks,
		FoodGuide: r.FoodGuide,
		CheckIns:  r.CheckIns,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Points != nil {
		row.Points = *r.Points
	}
	if r.Motivation != nil {
		row.Motivation = *r.Motivation
	}
	return row
}

func (s *SupabaseSnapshotRepository) Fetch(ctx context.Context, userID string) (*models.Snapshot, error) {
	query := url.Values{}
	query.Set("user_id", "eq."+userID)
	query.Set("select", supabaseColumns)
	fetchURL := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, s.table, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Accept", "application/json")

	rows, err := s.do(req, "fetch snapshot")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrSnapshotNotFound
	}
	return rows[0].toRow().onboarded()
}

func (s *SupabaseSnapshotRepository) Save(ctx context.Context, userID string, patch models.SnapshotPatch) (*models.Snapshot, error) {
	if patch.Empty() {
		return s.Fetch(ctx, userID)
	}
	encoded, err := encodePatch(patch)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"user_id":    userID,
		"updated_at": s.now().UTC().Format(time.RFC3339Nano),
	}
	if encoded.Profile != nil {
		payload["profile"] = json.RawMessage(encoded.Profile)
	}
	if encoded.Tasks != nil {
		payload["tasks"] = json.RawMessage(encoded.Tasks)
	}
	if encoded.FoodGuide != nil {
		payload["food_guide"] = json.RawMessage(encoded.FoodGuide)
	}
	if encoded.CheckIns != nil {
		payload["checkins"] = json.RawMessage(encoded.CheckIns)
	}
	if encoded.Points != nil {
		payload["points"] = *encoded.Points
	}
	if encoded.Motivation != nil {
		payload["motivation"] = *encoded.Motivation
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal upsert payload: %w", err)
	}

	query := url.Values{}
	query.Set("on_conflict", "user_id")
	query.Set("select", supabaseColumns)
	upsertURL := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, s.table, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, upsertURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build upsert request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=representation")

	rows, err := s.do(req, "save snapshot")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("save snapshot: empty representation")
	}
	return rows[0].toRow().decode()
}

func (s *SupabaseSnapshotRepository) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
}

func (s *SupabaseSnapshotRepository) do(req *http.Request, action string) ([]supabaseRow, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%s: status %d: %s", action, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var rows []supabaseRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", action, err)
	}
	return rows, nil
}
