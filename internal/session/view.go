package session

import (
	"slices"

	"github.com/saeid-a/HealthQuestBack/internal/models"
)

const (
	FeedbackFallback   = "Você está no caminho certo! Continue registrando seus dados para análises mais precisas."
	DashboardTaskLimit = 3
)

// View is the JSON shape of a State.
type View struct {
	Authenticated bool                   `json:"authenticated"`
	Email         string                 `json:"email,omitempty"`
	Phase         Phase                  `json:"phase"`
	Profile       *models.UserProfile    `json:"profile"`
	Tasks         []models.DailyTask     `json:"tasks"`
	FoodGuide     []models.FoodItem      `json:"food_guide"`
	CheckIns      []models.WeeklyCheckIn `json:"checkins"`
	Points        int                    `json:"points"`
	Motivation    string                 `json:"motivation"`
	Screen        Screen                 `json:"screen"`
	Language      string                 `json:"language"`
	Theme         Theme                  `json:"theme"`
	Loading       bool                   `json:"loading"`
	Synced        bool                   `json:"synced"`
	Revision      int64                  `json:"revision"`
}

func NewView(s State) View {
	active, ok := models.ActiveOf(s.Session)
	return View{
		Authenticated: ok,
		Email:         active.Email,
		Phase:         s.Phase,
		Profile:       s.Profile,
		Tasks:         nonNil(s.Tasks),
		FoodGuide:     nonNil(s.FoodGuide),
		CheckIns:      nonNil(s.CheckIns),
		Points:        s.Points,
		Motivation:    s.Motivation,
		Screen:        s.Screen,
		Language:      s.Language,
		Theme:         s.Theme,
		Loading:       s.Loading,
		Synced:        s.Synced,
		Revision:      s.Revision,
	}
}

type WeightPoint struct {
	Date     string  `json:"date"`
	WeightKG float64 `json:"weight_kg"`
}

type Dashboard struct {
	Name           string             `json:"name"`
	Points         int                `json:"points"`
	Motivation     string             `json:"motivation"`
	LatestFeedback string             `json:"latest_feedback"`
	WeightSeries   []WeightPoint      `json:"weight_series"`
	Highlights     []models.DailyTask `json:"highlights"`
	CompletedTasks int                `json:"completed_tasks"`
	TotalTasks     int                `json:"total_tasks"`
	GoalWeight     float64            `json:"goal_weight"`
	BMI            *float64           `json:"bmi"`
}

func BuildDashboard(s State) (Dashboard, error) {
	if s.Phase != PhaseReady || s.Profile == nil {
		return Dashboard{}, ErrProfileRequired
	}

	d := Dashboard{
		Name:           s.Profile.Name,
		Points:         s.Points,
		Motivation:     s.Motivation,
		LatestFeedback: FeedbackFallback,
		WeightSeries:   make([]WeightPoint, 0, len(s.CheckIns)),
		Highlights:     slices.Clone(s.Tasks[:min(DashboardTaskLimit, len(s.Tasks))]),
		TotalTasks:     len(s.Tasks),
		GoalWeight:     s.Profile.GoalWeight,
	}
	if d.Highlights == nil {
		d.Highlights = []models.DailyTask{}
	}
	for _, task := range s.Tasks {
		if task.Completed {
			d.CompletedTasks++
		}
	}
	for _, entry := range s.CheckIns {
		d.WeightSeries = append(d.WeightSeries, WeightPoint{Date: entry.Date, WeightKG: entry.WeightKG})
	}
	if _, latest, ok := models.CompareLatest(s.CheckIns); ok {
		if latest.Feedback != "" {
			d.LatestFeedback = latest.Feedback
		}
		if bmi, err := models.CalculateBMI(latest.HeightCM, latest.WeightKG); err == nil {
			d.BMI = &bmi
		}
	}
	return d, nil
}

type FoodGuide struct {
	Permitted  []models.FoodItem `json:"permitted"`
	Prohibited []models.FoodItem `json:"prohibited"`
}

func BuildFoodGuide(s State) (FoodGuide, error) {
	if s.Phase != PhaseReady {
		return FoodGuide{}, ErrProfileRequired
	}
	permitted, prohibited := models.SplitFoodGuide(s.FoodGuide)
	return FoodGuide{Permitted: nonNil(permitted), Prohibited: nonNil(prohibited)}, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
