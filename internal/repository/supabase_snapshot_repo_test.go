package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/saeid-a/HealthQuestBack/internal/models"
)

func TestSupabaseSnapshotRepositoryFetchEmptyIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "service-key" {
			t.Errorf("expected apikey header, got %q", r.Header.Get("apikey"))
		}
		if got := r.URL.Query().Get("user_id"); got != "eq.user-1" {
			t.Errorf("expected user filter, got %q", got)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	repo := NewSupabaseSnapshotRepository(server.URL+"/", "profiles", "service-key")
	_, err := repo.Fetch(context.Background(), "user-1")
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSupabaseSnapshotRepositorySaveSendsMergeUpsert(t *testing.T) {
	var payload map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Prefer"); !strings.Contains(got, "resolution=merge-duplicates") {
			t.Errorf("expected merge upsert, got %q", got)
		}
		if got := r.URL.Query().Get("on_conflict"); got != "user_id" {
			t.Errorf("expected on_conflict=user_id, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		_, _ = w.Write([]byte(`[{"profile":{"name":"Ana"},"tasks":[],"food_guide":[],"checkins":[],"points":60,"motivation":"","updated_at":"2030-01-02T03:04:05Z"}]`))
	}))
	defer server.Close()

	repo := NewSupabaseSnapshotRepository(server.URL, "profiles", "service-key")
	repo.now = func() time.Time { return testTime }

	points := 60
	saved, err := repo.Save(context.Background(), "user-1", models.SnapshotPatch{Points: &points})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if saved.Points != 60 {
		t.Fatalf("expected points 60, got %d", saved.Points)
	}
	if _, ok := payload["tasks"]; ok {
		t.Fatal("expected tasks to be omitted from a points-only patch")
	}
	if string(payload["points"]) != "60" {
		t.Fatalf("expected points in payload, got %s", payload["points"])
	}
	if string(payload["updated_at"]) != `"2030-01-02T03:04:05Z"` {
		t.Fatalf("unexpected updated_at: %s", payload["updated_at"])
	}
}

func TestSupabaseSnapshotRepositorySurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))
	defer server.Close()

	repo := NewSupabaseSnapshotRepository(server.URL, "profiles", "service-key")
	_, err := repo.Fetch(context.Background(), "user-1")
	if err == nil || errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 503") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestSupabaseSnapshotRepositoryEmptySaveOnlyReads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected only GET for an empty save, got %s", r.Method)
		}
		_, _ = w.Write([]byte(`[{"profile":{"name":"Ana"},"tasks":[],"food_guide":[],"checkins":[],"points":60,"motivation":"","updated_at":"2030-01-02T03:04:05Z"}]`))
	}))
	defer server.Close()

	repo := NewSupabaseSnapshotRepository(server.URL, "profiles", "service-key")
	snapshot, err := repo.Save(context.Background(), "user-1", models.SnapshotPatch{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if snapshot.Points != 60 {
		t.Fatalf("expected stored points, got %d", snapshot.Points)
	}
}
