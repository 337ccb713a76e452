package models

type AgeGroup string

const (
	AgeGroupChild      AgeGroup = "child"
	AgeGroupTeen       AgeGroup = "teen"
	AgeGroupYoungAdult AgeGroup = "young-adult"
	AgeGroupAdult      AgeGroup = "adult"
	AgeGroupSenior     AgeGroup = "senior"
)

type GoalType string

const (
	GoalLose GoalType = "lose"
	GoalGain GoalType = "gain"
)

// UserProfile is written once at onboarding and never edited afterwards.
type UserProfile struct {
	Name       string   `json:"name"`
	Age        int      `json:"age"`
	AgeGroup   AgeGroup `json:"age_group"`
	HeightCM   float64  `json:"height_cm"`
	WeightKG   float64  `json:"weight_kg"`
	GoalWeight float64  `json:"goal_weight"`
	GoalType   GoalType `json:"goal_type"`
	Language   string   `json:"language"`
}

type ProfileInput struct {
	Name       string
	Age        int
	HeightCM   float64
	WeightKG   float64
	GoalWeight float64
	Language   string
}

// ClassifyAge buckets an age; every bound is inclusive on its lower side.
func ClassifyAge(age int) AgeGroup {
	switch {
	case age < 13:
		return AgeGroupChild
	case age < 18:
		return AgeGroupTeen
	case age < 30:
		return AgeGroupYoungAdult
	case age < 60:
		return AgeGroupAdult
	default:
		return AgeGroupSenior
	}
}

// ResolveGoalType reports GoalGain when the goal equals the current weight.
func ResolveGoalType(weight, goalWeight float64) GoalType {
	if goalWeight < weight {
		return GoalLose
	}
	return GoalGain
}

func NewUserProfile(input ProfileInput) UserProfile {
	return UserProfile{
		Name:       input.Name,
		Age:        input.Age,
		AgeGroup:   ClassifyAge(input.Age),
		HeightCM:   input.HeightCM,
		WeightKG:   input.WeightKG,
		GoalWeight: input.GoalWeight,
		GoalType:   ResolveGoalType(input.WeightKG, input.GoalWeight),
		Language:   input.Language,
	}
}

func (a AgeGroup) IsMinor() bool {
	return a == AgeGroupChild || a == AgeGroupTeen
}
