package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/saeid-a/HealthQuestBack/internal/models"
	"github.com/saeid-a/HealthQuestBack/internal/repository"
	"go.uber.org/zap"
)

type SnapshotStore interface {
	Fetch(ctx context.Context, userID string) (*models.Snapshot, error)
	Save(ctx context.Context, userID string, patch models.SnapshotPatch) (*models.Snapshot, error)
}

type PlanGenerator interface {
	GeneratePlan(ctx context.Context, profile models.UserProfile) (*models.Plan, error)
}

type CheckInAnalyzer interface {
	AnalyzeCheckIn(ctx context.Context, profile models.UserProfile, history []models.WeeklyCheckIn) (string, error)
}

type OnboardingInput struct {
	Name       string
	Age        int
	HeightCM   float64
	WeightKG   float64
	GoalWeight float64
}

// Controller owns the state of one signed-in session. Actions run one at a
// time; reads never wait for an action's network calls.
type Controller struct {
	actionMu sync.Mutex

	mu        sync.RWMutex
	state     State
	committed State

	store     SnapshotStore
	planner   PlanGenerator
	analyzer  CheckInAnalyzer
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewController(active models.ActiveSession, language string, deps Dependencies) *Controller {
	deps = deps.withDefaults()
	state := SignIn(Initial(language), active)
	return &Controller{
		state:     state,
		committed: state,
		store:     deps.Store,
		planner:   deps.Planner,
		analyzer:  deps.Analyzer,
		publisher: deps.Publisher,
		logger:    deps.Logger.With(zap.String("session_id", active.ID), zap.String("user_id", active.UserID)),
		now:       deps.Now,
	}
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) active() models.ActiveSession {
	active, _ := models.ActiveOf(c.State().Session)
	return active
}

// Hydrate loads the stored snapshot. A missing snapshot is the onboarding
// phase; any other failure leaves the session unsynced and returns FetchError.
func (c *Controller) Hydrate(ctx context.Context) (State, error) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	_, err := c.hydrateLocked(ctx)
	return c.State(), err
}

func (c *Controller) hydrateLocked(ctx context.Context) (bool, error) {
	active, ok := models.ActiveOf(c.State().Session)
	if !ok {
		return false, ErrNotAuthenticated
	}

	c.setLoading(true)
	snapshot, err := c.store.Fetch(ctx, active.UserID)
	switch {
	case err == nil:
		c.commit(Hydrate(c.State(), snapshot))
		return snapshot != nil && snapshot.Profile != nil, nil
	case errors.Is(err, repository.ErrSnapshotNotFound):
		c.commit(Hydrate(c.State(), nil))
		return false, nil
	default:
		c.logger.Error("failed to fetch snapshot", zap.Error(err))
		c.setLoading(false)
		return false, &FetchError{UserID: active.UserID, Err: err}
	}
}

// Onboard generates the plan and stores the first snapshot. A session whose
// earlier fetch failed re-reads the store first so an existing profile is
// never overwritten.
func (c *Controller) Onboard(ctx context.Context, input OnboardingInput) (State, error) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()

	s := c.State()
	active, ok := models.ActiveOf(s.Session)
	if !ok {
		return s, ErrNotAuthenticated
	}
	if s.Phase == PhaseReady {
		return s, ErrAlreadyOnboarded
	}
	if !s.Synced {
		found, err := c.hydrateLocked(ctx)
		if err != nil {
			return c.State(), err
		}
		if found {
			return c.State(), ErrAlreadyOnboarded
		}
		s = c.State()
	}

	profile := models.NewUserProfile(models.ProfileInput{
		Name:       input.Name,
		Age:        input.Age,
		HeightCM:   input.HeightCM,
		WeightKG:   input.WeightKG,
		GoalWeight: input.GoalWeight,
		Language:   s.Language,
	})

	c.setLoading(true)
	plan, err := c.planner.GeneratePlan(ctx, profile)
	if err != nil {
		c.logger.Error("plan generation failed", zap.Error(err))
		c.setLoading(false)
		return c.State(), err
	}

	next, patch, err := CompleteOnboarding(s, profile, *plan, c.now())
	if err != nil {
		c.setLoading(false)
		return c.State(), err
	}
	if _, err := c.store.Save(ctx, active.UserID, patch); err != nil {
		c.logger.Error("failed to save onboarding snapshot", zap.Error(err))
		c.setLoading(false)
		return c.State(), &SaveError{UserID: active.UserID, Err: err}
	}

	c.commit(next)
	c.logger.Info("onboarding completed", zap.String("age_group", string(profile.AgeGroup)))
	return c.State(), nil
}

func (c *Controller) ToggleTask(ctx context.Context, taskID string) (State, error) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()

	next, patch, err := ToggleTask(c.State(), taskID)
	if err != nil {
		return c.State(), err
	}
	return c.persist(ctx, next, patch)
}

// SubmitCheckIn records a new measurement. Analyzer failures leave the
// feedback empty and do not block the entry.
func (c *Controller) SubmitCheckIn(ctx context.Context, weightKG, heightCM float64) (State, error) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()

	s := c.State()
	if s.Phase != PhaseReady {
		return s, ErrProfileRequired
	}
	if weightKG <= 0 || heightCM <= 0 {
		return s, ErrInvalidMeasurement
	}

	entry := models.NewCheckIn(c.now(), weightKG, heightCM)
	history := append(slices.Clone(s.CheckIns), entry)

	c.setLoading(true)
	feedback, err := c.analyzer.AnalyzeCheckIn(ctx, *s.Profile, history)
	if err != nil {
		c.logger.Warn("check-in analysis failed", zap.Error(err))
		feedback = ""
	}
	entry.Feedback = feedback

	next, patch, err := RecordCheckIn(c.State(), entry)
	if err != nil {
		c.setLoading(false)
		return c.State(), err
	}
	return c.persist(ctx, next, patch)
}

func (c *Controller) SelectScreen(screen Screen) (State, error) {
	return c.update(func(s State) (State, error) { return SelectScreen(s, screen) })
}

// SetPreferences changes language and theme. Nil fields are left unchanged.
func (c *Controller) SetPreferences(language *string, theme *Theme) (State, error) {
	return c.update(func(s State) (State, error) {
		next := s
		var err error
		if language != nil {
			if next, err = SetLanguage(next, *language); err != nil {
				return s, err
			}
		}
		if theme != nil {
			if next, err = SetTheme(next, *theme); err != nil {
				return s, err
			}
		}
		return next, nil
	})
}

func (c *Controller) ToggleTheme() State {
	state, _ := c.update(func(s State) (State, error) { return ToggleTheme(s), nil })
	return state
}

// SignOut drops all user data from the controller.
func (c *Controller) SignOut() State {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()

	active := c.active()
	c.mu.Lock()
	signedOut := SignOut(c.state)
	signedOut.Revision = c.state.Revision + 1
	c.state = signedOut
	c.committed = signedOut
	c.mu.Unlock()

	c.publisher.Publish(active.UserID, Event{Type: EventSignedOut, SessionID: active.ID})
	return signedOut
}

// update applies a local change that is not persisted.
func (c *Controller) update(fn func(State) (State, error)) (State, error) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()

	c.mu.Lock()
	next, err := fn(c.state)
	if err != nil {
		current := c.state
		c.mu.Unlock()
		return current, err
	}
	next.Revision = c.state.Revision + 1
	c.state = next
	c.mu.Unlock()

	c.publishState()
	return next, nil
}

// persist shows next immediately, saves the patch and restores the last
// committed data if the save fails.
func (c *Controller) persist(ctx context.Context, next State, patch models.SnapshotPatch) (State, error) {
	active := c.active()

	c.mu.Lock()
	next.Loading = true
	next.Revision = c.state.Revision + 1
	c.state = next
	c.mu.Unlock()
	c.publishState()

	if _, err := c.store.Save(ctx, active.UserID, patch); err != nil {
		c.logger.Error("failed to save snapshot, rolling back", zap.Error(err))
		c.mu.Lock()
		rolled := restorePersisted(c.state, c.committed)
		rolled.Loading = false
		rolled.Revision = c.state.Revision + 1
		c.state = rolled
		c.mu.Unlock()
		c.publishState()
		return rolled, &SaveError{UserID: active.UserID, Err: err}
	}

	c.commit(next)
	return c.State(), nil
}

func (c *Controller) commit(next State) {
	c.mu.Lock()
	next.Loading = false
	next.Revision = c.state.Revision + 1
	c.state = next
	c.committed = next
	c.mu.Unlock()
	c.publishState()
}

func (c *Controller) setLoading(loading bool) {
	c.mu.Lock()
	if c.state.Loading == loading {
		c.mu.Unlock()
		return
	}
	c.state.Loading = loading
	c.state.Revision++
	c.mu.Unlock()
	c.publishState()
}

func (c *Controller) publishState() {
	s := c.State()
	active, ok := models.ActiveOf(s.Session)
	if !ok {
		return
	}
	view := NewView(s)
	c.publisher.Publish(active.UserID, Event{Type: EventState, SessionID: active.ID, State: &view})
}
