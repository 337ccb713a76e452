package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/saeid-a/HealthQuestBack/internal/models"
	"github.com/saeid-a/HealthQuestBack/internal/repository"
)

var (
	testNow    = time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC)
	testActive = models.ActiveSession{ID: "sess-1", UserID: "user-1", Email: "ana@example.com"}
	errBoom    = errors.New("boom")
)

type memoryStore struct {
	mu       sync.Mutex
	snapshot *models.Snapshot
	fetchErr error
	saveErr  error
	fetches  int
	saves    int
	block    chan struct{}
	entered  chan struct{}
}

func (s *memoryStore) Fetch(ctx context.Context, userID string) (*models.Snapshot, error) {
	if s.entered != nil {
		select {
		case s.entered <- struct{}{}:
		default:
		}
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if s.snapshot == nil || s.snapshot.Profile == nil {
		return nil, repository.ErrSnapshotNotFound
	}
	copied := *s.snapshot
	return &copied, nil
}

func (s *memoryStore) Save(ctx context.Context, userID string, patch models.SnapshotPatch) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	var base models.Snapshot
	if s.snapshot != nil {
		base = *s.snapshot
	}
	next := base.Apply(patch)
	s.snapshot = &next
	return &next, nil
}

func (s *memoryStore) setSaveErr(err error) {
	s.mu.Lock()
	s.saveErr = err
	s.mu.Unlock()
}

type stubPlanner struct {
	err   error
	calls int
}

func (p *stubPlanner) GeneratePlan(ctx context.Context, profile models.UserProfile) (*models.Plan, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return testPlan(), nil
}

type stubAnalyzer struct {
	feedback string
	err      error
	history  []models.WeeklyCheckIn
}

func (a *stubAnalyzer) AnalyzeCheckIn(ctx context.Context, profile models.UserProfile, history []models.WeeklyCheckIn) (string, error) {
	a.history = history
	if a.err != nil {
		return "", a.err
	}
	return a.feedback, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(userID string, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) last() Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

func testPlan() *models.Plan {
	plan := &models.Plan{Motivation: "Cada passo conta!"}
	for i := 0; i < 5; i++ {
		plan.Tasks = append(plan.Tasks, models.TaskDraft{
			Title:       fmt.Sprintf("Tarefa %d", i+1),
			Description: "Descrição",
			Type:        models.TaskHabit,
		})
	}
	for i := 0; i < 5; i++ {
		plan.FoodGuide = append(plan.FoodGuide,
			models.FoodItem{Name: fmt.Sprintf("Bom %d", i), Category: models.FoodPermitted, Reason: "nutritivo"},
			models.FoodItem{Name: fmt.Sprintf("Ruim %d", i), Category: models.FoodProhibited, Reason: "açúcar"},
		)
	}
	return plan
}

func anaInput() OnboardingInput {
	return OnboardingInput{Name: "Ana", Age: 25, HeightCM: 165, WeightKG: 70, GoalWeight: 60}
}

type fixture struct {
	store     *memoryStore
	planner   *stubPlanner
	analyzer  *stubAnalyzer
	publisher *recordingPublisher
}

func newFixture() *fixture {
	return &fixture{
		store:     &memoryStore{},
		planner:   &stubPlanner{},
		analyzer:  &stubAnalyzer{feedback: "Ótimo progresso!"},
		publisher: &recordingPublisher{},
	}
}

func (f *fixture) deps() Dependencies {
	return Dependencies{
		Store:     f.store,
		Planner:   f.planner,
		Analyzer:  f.analyzer,
		Publisher: f.publisher,
		Now:       func() time.Time { return testNow },
	}
}

func (f *fixture) controller() *Controller {
	return NewController(testActive, "pt", f.deps())
}
