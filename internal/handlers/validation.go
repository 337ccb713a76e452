package handlers

import (
	"slices"
	"strings"

	"github.com/saeid-a/HealthQuestBack/internal/session"
)

func validateOnboardingRequest(req onboardingRequest) string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if req.Age <= 0 {
		return "age must be greater than 0"
	}
	if req.Height <= 0 {
		return "height must be greater than 0"
	}
	if req.Weight <= 0 {
		return "weight must be greater than 0"
	}
	if req.GoalWeight <= 0 {
		return "goal_weight must be greater than 0"
	}
	return ""
}

func validateCheckInRequest(req checkInRequest) string {
	if req.Weight <= 0 {
		return "weight must be greater than 0"
	}
	if req.Height <= 0 {
		return "height must be greater than 0"
	}
	return ""
}

func validatePreferencesRequest(req preferencesRequest) string {
	if req.Language == nil && req.Theme == nil {
		return "language or theme is required"
	}
	if req.Language != nil && !slices.Contains(session.SupportedLanguages, *req.Language) {
		return "language must be one of pt, en, es"
	}
	if req.Theme != nil {
		theme := session.Theme(*req.Theme)
		if theme != session.ThemeLight && theme != session.ThemeDark {
			return "theme must be light or dark"
		}
	}
	return ""
}
