package session

import (
	"slices"
	"time"

	"github.com/saeid-a/HealthQuestBack/internal/models"
)

type Phase string

const (
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseOnboarding      Phase = "authenticated-no-profile"
	PhaseReady           Phase = "authenticated-with-profile"
)

type Screen string

const (
	ScreenDashboard Screen = "dashboard"
	ScreenTasks     Screen = "tasks"
	ScreenFood      Screen = "food"
	ScreenCheckIn   Screen = "checkin"
	ScreenSettings  Screen = "settings"
)

func (s Screen) Valid() bool {
	switch s {
	case ScreenDashboard, ScreenTasks, ScreenFood, ScreenCheckIn, ScreenSettings:
		return true
	}
	return false
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var SupportedLanguages = []string{"pt", "en", "es"}

const (
	OnboardingPoints     = 100
	TaskCompletionPoints = 10
	CheckInPoints        = 50
)

// State is everything one session knows. Reducers below never mutate their
// input; they return the next State and, when something must be persisted,
// the patch to save.
type State struct {
	Session    models.Session
	Phase      Phase
	Profile    *models.UserProfile
	Tasks      []models.DailyTask
	FoodGuide  []models.FoodItem
	CheckIns   []models.WeeklyCheckIn
	Points     int
	Motivation string
	Screen     Screen
	Language   string
	Theme      Theme
	Loading    bool
	// Synced is false until a fetch has succeeded for the current session.
	Synced   bool
	Revision int64
}

func Initial(language string) State {
	if !slices.Contains(SupportedLanguages, language) {
		language = SupportedLanguages[0]
	}
	return State{
		Session:  models.AbsentSession{},
		Phase:    PhaseUnauthenticated,
		Screen:   ScreenDashboard,
		Language: language,
		Theme:    ThemeLight,
	}
}

func SignIn(s State, active models.ActiveSession) State {
	next := clearPersisted(s)
	next.Session = active
	next.Phase = PhaseOnboarding
	next.Synced = false
	return next
}

// Hydrate loads a fetched snapshot. A nil snapshot means no onboarding yet.
func Hydrate(s State, snapshot *models.Snapshot) State {
	next := clearPersisted(s)
	next.Synced = true
	if snapshot == nil || snapshot.Profile == nil {
		next.Phase = PhaseOnboarding
		return next
	}

	profile := *snapshot.Profile
	next.Phase = PhaseReady
	next.Profile = &profile
	next.Tasks = slices.Clone(snapshot.Tasks)
	next.FoodGuide = slices.Clone(snapshot.FoodGuide)
	next.CheckIns = slices.Clone(snapshot.CheckIns)
	next.Points = snapshot.Points
	next.Motivation = snapshot.Motivation
	return next
}

func SignOut(s State) State {
	next := Initial(s.Language)
	next.Theme = s.Theme
	return next
}

func CompleteOnboarding(s State, profile models.UserProfile, plan models.Plan, now time.Time) (State, models.SnapshotPatch, error) {
	if _, ok := models.ActiveOf(s.Session); !ok {
		return s, models.SnapshotPatch{}, ErrNotAuthenticated
	}
	if s.Phase == PhaseReady {
		return s, models.SnapshotPatch{}, ErrAlreadyOnboarded
	}

	tasks := plan.MaterializeTasks(now.UnixMilli())
	foodGuide := slices.Clone(plan.FoodGuide)
	welcome := models.NewCheckIn(now, profile.WeightKG, profile.HeightCM)
	welcome.Feedback = models.WelcomeFeedback
	checkIns := []models.WeeklyCheckIn{welcome}
	points := OnboardingPoints
	motivation := plan.Motivation

	next := s
	next.Phase = PhaseReady
	next.Profile = &profile
	next.Tasks = tasks
	next.FoodGuide = foodGuide
	next.CheckIns = checkIns
	next.Points = points
	next.Motivation = motivation
	next.Screen = ScreenDashboard

	patch := models.SnapshotPatch{
		Profile:    &profile,
		Tasks:      &tasks,
		FoodGuide:  &foodGuide,
		CheckIns:   &checkIns,
		Points:     &points,
		Motivation: &motivation,
	}
	return next, patch, nil
}

// ToggleTask flips one task. Completing awards TaskCompletionPoints; undoing a
// completion does not take them back.
func ToggleTask(s State, taskID string) (State, models.SnapshotPatch, error) {
	if s.Phase != PhaseReady {
		return s, models.SnapshotPatch{}, ErrProfileRequired
	}
	idx := slices.IndexFunc(s.Tasks, func(t models.DailyTask) bool { return t.ID == taskID })
	if idx < 0 {
		return s, models.SnapshotPatch{}, ErrTaskNotFound
	}

	tasks := slices.Clone(s.Tasks)
	tasks[idx].Completed = !tasks[idx].Completed
	points := s.Points
	if tasks[idx].Completed {
		points += TaskCompletionPoints
	}

	next := s
	next.Tasks = tasks
	next.Points = points
	return next, models.SnapshotPatch{Tasks: &tasks, Points: &points}, nil
}

func RecordCheckIn(s State, entry models.WeeklyCheckIn) (State, models.SnapshotPatch, error) {
	if s.Phase != PhaseReady {
		return s, models.SnapshotPatch{}, ErrProfileRequired
	}
	if entry.WeightKG <= 0 || entry.HeightCM <= 0 {
		return s, models.SnapshotPatch{}, ErrInvalidMeasurement
	}

	checkIns := append(slices.Clone(s.CheckIns), entry)
	points := s.Points + CheckInPoints

	next := s
	next.CheckIns = checkIns
	next.Points = points
	next.Screen = ScreenDashboard
	return next, models.SnapshotPatch{CheckIns: &checkIns, Points: &points}, nil
}

func SelectScreen(s State, screen Screen) (State, error) {
	if s.Phase != PhaseReady {
		return s, ErrProfileRequired
	}
	if !screen.Valid() {
		return s, ErrInvalidScreen
	}
	next := s
	next.Screen = screen
	return next, nil
}

func SetLanguage(s State, language string) (State, error) {
	if !slices.Contains(SupportedLanguages, language) {
		return s, ErrUnsupportedLanguage
	}
	next := s
	next.Language = language
	return next, nil
}

func SetTheme(s State, theme Theme) (State, error) {
	if theme != ThemeLight && theme != ThemeDark {
		return s, ErrInvalidTheme
	}
	next := s
	next.Theme = theme
	return next, nil
}

func ToggleTheme(s State) State {
	next := s
	if s.Theme == ThemeDark {
		next.Theme = ThemeLight
	} else {
		next.Theme = ThemeDark
	}
	return next
}

// restorePersisted copies the stored fields of committed over s and keeps the
// per-tab preferences of s.
func restorePersisted(s State, committed State) State {
	next := s
	next.Phase = committed.Phase
	next.Profile = committed.Profile
	next.Tasks = slices.Clone(committed.Tasks)
	next.FoodGuide = slices.Clone(committed.FoodGuide)
	next.CheckIns = slices.Clone(committed.CheckIns)
	next.Points = committed.Points
	next.Motivation = committed.Motivation
	if next.Phase != PhaseReady {
		next.Screen = ScreenDashboard
	}
	return next
}

func clearPersisted(s State) State {
	next := s
	next.Profile = nil
	next.Tasks = nil
	next.FoodGuide = nil
	next.CheckIns = nil
	next.Points = 0
	next.Motivation = ""
	next.Screen = ScreenDashboard
	return next
}
