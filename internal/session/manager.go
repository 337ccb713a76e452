package session

import (
	"context"
	"sync"
	"time"

	"github.com/saeid-a/HealthQuestBack/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Dependencies struct {
	Store     SnapshotStore
	Planner   PlanGenerator
	Analyzer  CheckInAnalyzer
	Publisher Publisher
	Logger    *zap.Logger
	Now       func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Publisher == nil {
		d.Publisher = nopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// DefaultSessionTTL bounds sessions whose token expiry is unknown.
const DefaultSessionTTL = 72 * time.Hour

type managedSession struct {
	controller *Controller
	expiresAt  time.Time
}

// Manager keeps one Controller per signed-in session id. Signed-out ids stay
// refused until their token would have expired anyway; Sweep forgets both
// kinds of entries once that time has passed.
type Manager struct {
	mu          sync.RWMutex
	controllers map[string]managedSession
	closed      map[string]time.Time
	group       singleflight.Group

	deps            Dependencies
	defaultLanguage string
}

func NewManager(deps Dependencies, defaultLanguage string) *Manager {
	return &Manager{
		controllers:     make(map[string]managedSession),
		closed:          make(map[string]time.Time),
		deps:            deps.withDefaults(),
		defaultLanguage: defaultLanguage,
	}
}

func (m *Manager) Get(sessionID string) (*Controller, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.controllers[sessionID]
	return entry.controller, ok
}

// Open returns the controller for the session, creating and hydrating it on
// first use. Concurrent first calls share one fetch. A FetchError is returned
// alongside a usable controller.
func (m *Manager) Open(ctx context.Context, active models.ActiveSession) (*Controller, error) {
	if !active.ExpiresAt.IsZero() && !active.ExpiresAt.After(m.deps.Now()) {
		return nil, ErrNotAuthenticated
	}
	if c, ok := m.Get(active.ID); ok {
		return c, nil
	}

	v, err, _ := m.group.Do(active.ID, func() (interface{}, error) {
		m.mu.RLock()
		entry, ok := m.controllers[active.ID]
		_, closed := m.closed[active.ID]
		m.mu.RUnlock()
		if closed {
			return nil, ErrSessionClosed
		}
		if ok {
			return entry.controller, nil
		}
		c := NewController(active, m.defaultLanguage, m.deps)
		_, err := c.Hydrate(ctx)

		// Close may have run while the fetch was in flight.
		m.mu.Lock()
		if _, closed := m.closed[active.ID]; closed {
			m.mu.Unlock()
			c.SignOut()
			return nil, ErrSessionClosed
		}
		m.controllers[active.ID] = managedSession{controller: c, expiresAt: m.expiry(active)}
		m.mu.Unlock()
		return c, err
	})
	c, _ := v.(*Controller)
	return c, err
}

// Close signs the session out and refuses its id from now on.
func (m *Manager) Close(active models.ActiveSession) bool {
	m.mu.Lock()
	entry, ok := m.controllers[active.ID]
	delete(m.controllers, active.ID)
	expiresAt := m.expiry(active)
	if ok && entry.expiresAt.After(expiresAt) {
		expiresAt = entry.expiresAt
	}
	m.closed[active.ID] = expiresAt
	m.mu.Unlock()

	if ok {
		entry.controller.SignOut()
	}
	return ok
}

// Sweep drops controllers and signed-out ids whose token expired at or before
// now. Dropped controllers are signed out. It returns the number of
// controllers removed.
func (m *Manager) Sweep(now time.Time) int {
	var expired []*Controller
	m.mu.Lock()
	for id, entry := range m.controllers {
		if !entry.expiresAt.After(now) {
			expired = append(expired, entry.controller)
			delete(m.controllers, id)
		}
	}
	for id, expiresAt := range m.closed {
		if !expiresAt.After(now) {
			delete(m.closed, id)
		}
	}
	m.mu.Unlock()

	for _, c := range expired {
		c.SignOut()
	}
	if len(expired) > 0 {
		m.deps.Logger.Info("expired sessions swept", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(m.deps.Now())
		}
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.controllers)
}

func (m *Manager) expiry(active models.ActiveSession) time.Time {
	if active.ExpiresAt.IsZero() {
		return m.deps.Now().Add(DefaultSessionTTL)
	}
	return active.ExpiresAt
}
