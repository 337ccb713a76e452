package models

import (
	"errors"
	"time"
)

const (
	CheckInDateLayout = "2006-01-02"
	WelcomeFeedback   = "Bem-vindo(a)!"
)

type WeeklyCheckIn struct {
	Date     string  `json:"date"`
	WeightKG float64 `json:"weight_kg"`
	HeightCM float64 `json:"height_cm"`
	Feedback string  `json:"feedback"`
}

func NewCheckIn(now time.Time, weightKG, heightCM float64) WeeklyCheckIn {
	return WeeklyCheckIn{
		Date:     now.Format(CheckInDateLayout),
		WeightKG: weightKG,
		HeightCM: heightCM,
	}
}

// CompareLatest returns the entry before the latest one and the latest one.
// With a single entry both values are that entry.
func CompareLatest(history []WeeklyCheckIn) (previous WeeklyCheckIn, latest WeeklyCheckIn, ok bool) {
	if len(history) == 0 {
		return WeeklyCheckIn{}, WeeklyCheckIn{}, false
	}
	latest = history[len(history)-1]
	previous = latest
	if len(history) > 1 {
		previous = history[len(history)-2]
	}
	return previous, latest, true
}

// CalculateBMI expects height in centimeters and weight in kilograms.
func CalculateBMI(heightCM, weightKG float64) (float64, error) {
	if heightCM <= 0 || weightKG <= 0 {
		return 0, errors.New("height and weight must be positive")
	}
	h := heightCM / 100.0
	return weightKG / (h * h), nil
}
