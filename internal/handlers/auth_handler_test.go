package handlers

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/HealthQuestBack/internal/middleware"
	"github.com/saeid-a/HealthQuestBack/internal/models"
	"github.com/saeid-a/HealthQuestBack/internal/repository"
	"github.com/saeid-a/HealthQuestBack/internal/session"
	"github.com/saeid-a/HealthQuestBack/pkg/utils"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type stubUserStore struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
}

func (s *stubUserStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return repository.ErrEmailTaken
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	s.byEmail[user.Email] = &copied
	return nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func newAuthTestApp(t *testing.T) (*fiber.App, *memSnapshotStore) {
	t.Helper()
	store := newMemSnapshotStore()
	manager := session.NewManager(session.Dependencies{
		Store:    store,
		Planner:  &stubPlanner{},
		Analyzer: &stubAnalyzer{},
	}, "pt")
	logger := zap.NewNop()
	authHandler := NewAuthHandler(&stubUserStore{byEmail: map[string]*models.User{}}, manager, testSecret, time.Hour, logger)
	stateHandler := NewStateHandler(manager, logger)

	app := fiber.New()
	auth := app.Group("/api/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", middleware.AuthRequired(testSecret), authHandler.Logout)
	auth.Get("/me", middleware.AuthRequired(testSecret), authHandler.Me)
	app.Get("/api/v1/state", middleware.AuthRequired(testSecret), stateHandler.GetState)
	return app, store
}

func register(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", `{"email":" Ana@Example.com ","password":"segredo123"}`, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("expected token in %v", body)
	}
	return token
}

func TestRegisterStartsSession(t *testing.T) {
	app, _ := newAuthTestApp(t)
	token := register(t, app)

	claims, err := utils.ValidateToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %s", claims.Email)
	}
	if claims.SessionID == "" {
		t.Fatalf("expected session id claim")
	}

	state := stateField(t, decodeBody(t, doRequest(t, app, http.MethodGet, "/api/v1/state", "", token)))
	if state["phase"] != "authenticated-no-profile" || state["authenticated"] != true {
		t.Fatalf("unexpected state after register: %v", state)
	}
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newAuthTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", `{"email":"not-an-email","password":"segredo123"}`, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad email, got %d", resp.StatusCode)
	}
	resp = doRequest(t, app, http.MethodPost, "/api/auth/register", `{"email":"ana@example.com","password":"curta"}`, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", resp.StatusCode)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, _ := newAuthTestApp(t)
	register(t, app)

	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", `{"email":"ana@example.com","password":"outrasenha"}`, "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	app, _ := newAuthTestApp(t)
	register(t, app)

	resp := doRequest(t, app, http.MethodPost, "/api/auth/login", `{"email":"ana@example.com","password":"errada123"}`, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.StatusCode)
	}
	resp = doRequest(t, app, http.MethodPost, "/api/auth/login", `{"email":"ninguem@example.com","password":"segredo123"}`, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", resp.StatusCode)
	}

	resp = doRequest(t, app, http.MethodPost, "/api/auth/login", `{"email":"ana@example.com","password":"segredo123"}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["token"] == "" || stateField(t, body)["phase"] != "authenticated-no-profile" {
		t.Fatalf("unexpected login response: %v", body)
	}
}

func TestLoginLoadsStoredSnapshot(t *testing.T) {
	app, store := newAuthTestApp(t)
	token := register(t, app)
	claims, _ := utils.ValidateToken(token, testSecret)

	profile := models.UserProfile{Name: "Ana", Age: 25}
	store.snapshots[claims.UserID] = models.Snapshot{Profile: &profile, Points: 330}

	body := decodeBody(t, doRequest(t, app, http.MethodPost, "/api/auth/login", `{"email":"ana@example.com","password":"segredo123"}`, ""))
	state := stateField(t, body)
	if state["phase"] != "authenticated-with-profile" || state["points"] != float64(330) {
		t.Fatalf("expected stored snapshot, got %v", state)
	}
}

func TestMe(t *testing.T) {
	app, _ := newAuthTestApp(t)
	token := register(t, app)

	resp := doRequest(t, app, http.MethodGet, "/api/auth/me", "", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["onboarding_complete"] != false {
		t.Fatalf("expected onboarding_complete false, got %v", body["onboarding_complete"])
	}
}

func TestLogoutEndsSession(t *testing.T) {
	app, _ := newAuthTestApp(t)
	token := register(t, app)

	resp := doRequest(t, app, http.MethodPost, "/api/auth/logout", "", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = doRequest(t, app, http.MethodGet, "/api/v1/state", "", token)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}
