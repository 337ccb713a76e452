package models

import "time"

type Snapshot struct {
	Profile    *UserProfile    `json:"profile"`
	Tasks      []DailyTask     `json:"tasks"`
	FoodGuide  []FoodItem      `json:"food_guide"`
	CheckIns   []WeeklyCheckIn `json:"checkins"`
	Points     int             `json:"points"`
	Motivation string          `json:"motivation"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SnapshotPatch is the field set written by a save. Nil fields keep the stored value.
type SnapshotPatch struct {
	Profile    *UserProfile
	Tasks      *[]DailyTask
	FoodGuide  *[]FoodItem
	CheckIns   *[]WeeklyCheckIn
	Points     *int
	Motivation *string
}

func (p SnapshotPatch) Empty() bool {
	return p.Profile == nil && p.Tasks == nil && p.FoodGuide == nil &&
		p.CheckIns == nil && p.Points == nil && p.Motivation == nil
}

// Apply merges the patch over s and returns the result; s is left untouched.
func (s Snapshot) Apply(p SnapshotPatch) Snapshot {
	out := s
	if p.Profile != nil {
		profile := *p.Profile
		out.Profile = &profile
	}
	if p.Tasks != nil {
		out.Tasks = append([]DailyTask(nil), (*p.Tasks)...)
	}
	if p.FoodGuide != nil {
		out.FoodGuide = append([]FoodItem(nil), (*p.FoodGuide)...)
	}
	if p.CheckIns != nil {
		out.CheckIns = append([]WeeklyCheckIn(nil), (*p.CheckIns)...)
	}
	if p.Points != nil {
		out.Points = *p.Points
	}
	if p.Motivation != nil {
		out.Motivation = *p.Motivation
	}
	return out
}
