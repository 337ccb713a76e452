package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/HealthQuestBack/internal/models"
	"github.com/saeid-a/HealthQuestBack/internal/repository"
	"github.com/saeid-a/HealthQuestBack/internal/services"
	"github.com/saeid-a/HealthQuestBack/internal/session"
	"go.uber.org/zap"
)

type memSnapshotStore struct {
	mu        sync.Mutex
	snapshots map[string]models.Snapshot
	fetchErr  error
	saveErr   error
}

func newMemSnapshotStore() *memSnapshotStore {
	return &memSnapshotStore{snapshots: make(map[string]models.Snapshot)}
}

func (s *memSnapshotStore) Fetch(_ context.Context, userID string) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	snapshot, ok := s.snapshots[userID]
	if !ok || snapshot.Profile == nil {
		return nil, repository.ErrSnapshotNotFound
	}
	return &snapshot, nil
}

func (s *memSnapshotStore) Save(_ context.Context, userID string, patch models.SnapshotPatch) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	next := s.snapshots[userID].Apply(patch)
	s.snapshots[userID] = next
	return &next, nil
}

func (s *memSnapshotStore) failFetches(err error) {
	s.mu.Lock()
	s.fetchErr = err
	s.mu.Unlock()
}

func (s *memSnapshotStore) failSaves(err error) {
	s.mu.Lock()
	s.saveErr = err
	s.mu.Unlock()
}

type stubPlanner struct {
	err error
}

func (p *stubPlanner) GeneratePlan(_ context.Context, _ models.UserProfile) (*models.Plan, error) {
	if p.err != nil {
		return nil, p.err
	}
	plan := &models.Plan{Motivation: "Vamos juntos!"}
	for i := 0; i < services.PlanTaskCount; i++ {
		plan.Tasks = append(plan.Tasks, models.TaskDraft{Title: fmt.Sprintf("Tarefa %d", i), Type: models.TaskExercise})
	}
	for i := 0; i < services.PlanFoodPerCategory; i++ {
		plan.FoodGuide = append(plan.FoodGuide,
			models.FoodItem{Name: fmt.Sprintf("Fruta %d", i), Category: models.FoodPermitted},
			models.FoodItem{Name: fmt.Sprintf("Doce %d", i), Category: models.FoodProhibited},
		)
	}
	return plan, nil
}

type stubAnalyzer struct {
	feedback string
	err      error
}

func (a *stubAnalyzer) AnalyzeCheckIn(_ context.Context, _ models.UserProfile, _ []models.WeeklyCheckIn) (string, error) {
	return a.feedback, a.err
}

type testEnv struct {
	app      *fiber.App
	store    *memSnapshotStore
	planner  *stubPlanner
	analyzer *stubAnalyzer
	manager  *session.Manager
}

var errStoreDown = errors.New("store down")

// newTestEnv mounts the session routes behind a stand-in for the auth
// middleware that signs every request in as user-1/sess-1.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:    newMemSnapshotStore(),
		planner:  &stubPlanner{},
		analyzer: &stubAnalyzer{feedback: "Continue assim!"},
	}
	env.manager = session.NewManager(session.Dependencies{
		Store:    env.store,
		Planner:  env.planner,
		Analyzer: env.analyzer,
	}, "pt")

	logger := zap.NewNop()
	stateHandler := NewStateHandler(env.manager, logger)
	onboardingHandler := NewOnboardingHandler(env.manager, logger)
	taskHandler := NewTaskHandler(env.manager, logger)
	checkInHandler := NewCheckInHandler(env.manager, logger)

	env.app = fiber.New()
	env.app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		c.Locals("session_id", "sess-1")
		c.Locals("email", "ana@example.com")
		return c.Next()
	})
	v1 := env.app.Group("/api/v1")
	v1.Get("/state", stateHandler.GetState)
	v1.Get("/dashboard", stateHandler.GetDashboard)
	v1.Get("/food-guide", stateHandler.GetFoodGuide)
	v1.Put("/preferences", stateHandler.UpdatePreferences)
	v1.Post("/preferences/theme/toggle", stateHandler.ToggleTheme)
	v1.Put("/screen", stateHandler.SelectScreen)
	v1.Post("/onboarding", onboardingHandler.Onboard)
	v1.Get("/tasks", taskHandler.ListTasks)
	v1.Post("/tasks/:id/toggle", taskHandler.ToggleTask)
	v1.Get("/checkins", checkInHandler.ListCheckIns)
	v1.Post("/checkins", checkInHandler.SubmitCheckIn)
	return env
}

const anaOnboarding = `{"name":"Ana","age":25,"height":165,"weight":70,"goal_weight":60}`

func (env *testEnv) onboard(t *testing.T) {
	t.Helper()
	resp := env.do(t, http.MethodPost, "/api/v1/onboarding", anaOnboarding)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("onboarding: expected 201, got %d", resp.StatusCode)
	}
}

func (env *testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	return doRequest(t, env.app, method, path, body, "")
}

func doRequest(t *testing.T, app *fiber.App, method, path, body, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func stateField(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	state, ok := body["state"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected state object in %v", body)
	}
	return state
}
