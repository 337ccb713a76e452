package models

import "fmt"

type TaskType string

const (
	TaskExercise TaskType = "exercise"
	TaskHabit    TaskType = "habit"
	TaskFood     TaskType = "food"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskExercise, TaskHabit, TaskFood:
		return true
	}
	return false
}

type FoodCategory string

const (
	FoodPermitted  FoodCategory = "permitted"
	FoodProhibited FoodCategory = "prohibited"
)

func (c FoodCategory) Valid() bool {
	return c == FoodPermitted || c == FoodProhibited
}

type DailyTask struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        TaskType `json:"type"`
	Completed   bool     `json:"completed"`
}

type TaskDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        TaskType `json:"type"`
}

type FoodItem struct {
	Name     string       `json:"name"`
	Category FoodCategory `json:"category"`
	Reason   string       `json:"reason"`
}

// Plan is the bundle produced at onboarding. It is applied whole or not at all.
type Plan struct {
	Tasks      []TaskDraft `json:"tasks"`
	FoodGuide  []FoodItem  `json:"food_guide"`
	Motivation string      `json:"motivation"`
}

// MaterializeTasks assigns ids of the form t-<index>-<createdAtMillis>. The ids
// are only unique within a single batch.
func (p Plan) MaterializeTasks(createdAtMillis int64) []DailyTask {
	tasks := make([]DailyTask, 0, len(p.Tasks))
	for i, draft := range p.Tasks {
		tasks = append(tasks, DailyTask{
			ID:          fmt.Sprintf("t-%d-%d", i, createdAtMillis),
			Title:       draft.Title,
			Description: draft.Description,
			Type:        draft.Type,
		})
	}
	return tasks
}

func SplitFoodGuide(items []FoodItem) (permitted []FoodItem, prohibited []FoodItem) {
	permitted = []FoodItem{}
	prohibited = []FoodItem{}
	for _, item := range items {
		switch item.Category {
		case FoodPermitted:
			permitted = append(permitted, item)
		case FoodProhibited:
			prohibited = append(prohibited, item)
		}
	}
	return permitted, prohibited
}
