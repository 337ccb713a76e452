package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/saeid-a/HealthQuestBack/internal/models"
	"go.uber.org/zap"
)

type textGenerator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

type CheckInService struct {
	ai     textGenerator
	model  string
	rules  PromptRules
	logger *zap.Logger
}

func NewCheckInService(ai textGenerator, model string, rules PromptRules, logger *zap.Logger) *CheckInService {
	return &CheckInService{
		ai:     ai,
		model:  model,
		rules:  rules,
		logger: logger,
	}
}

// AnalyzeCheckIn returns free-text feedback on the latest entry of history,
// which must already contain the entry being submitted.
func (s *CheckInService) AnalyzeCheckIn(ctx context.Context, profile models.UserProfile, history []models.WeeklyCheckIn) (string, error) {
	previous, latest, ok := models.CompareLatest(history)
	if !ok {
		return "", fmt.Errorf("%w: check-in history is empty", ErrInvalidInput)
	}
	if len(history) == 1 {
		s.logger.Debug("single check-in, comparing latest entry with itself")
	}

	feedback, err := s.ai.GenerateText(ctx, s.model, BuildCheckInPrompt(profile, previous, latest, s.rules))
	if err != nil {
		return "", generationError("analyze check-in", err)
	}
	return feedback, nil
}

func BuildCheckInPrompt(profile models.UserProfile, previous, latest models.WeeklyCheckIn, rules PromptRules) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analise o progresso semanal de %s (%s).\n", profile.Name, profile.AgeGroup)
	fmt.Fprintf(&b, "Peso anterior: %skg\n", formatMeasure(previous.WeightKG))
	fmt.Fprintf(&b, "Peso atual: %skg\n", formatMeasure(latest.WeightKG))
	fmt.Fprintf(&b, "Meta final: %skg\n", formatMeasure(profile.GoalWeight))
	fmt.Fprintf(&b, "Idioma: %s\n\n", rules.languageName(profile.Language))
	for _, line := range rules.CheckInGuidance {
		b.WriteString(line + "\n")
	}
	if profile.AgeGroup.IsMinor() && rules.MinorGuard != "" {
		b.WriteString(rules.MinorGuard + "\n")
	}
	return b.String()
}
