package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/HealthQuestBack/internal/session"
	"go.uber.org/zap"
)

type OnboardingHandler struct {
	sessionResolver
}

func NewOnboardingHandler(sessions sessionManager, logger *zap.Logger) *OnboardingHandler {
	return &OnboardingHandler{sessionResolver{sessions: sessions, logger: logger}}
}

type onboardingRequest struct {
	Name       string  `json:"name"`
	Age        int     `json:"age"`
	Height     float64 `json:"height"`
	Weight     float64 `json:"weight"`
	GoalWeight float64 `json:"goal_weight"`
}

func (h *OnboardingHandler) Onboard(c *fiber.Ctx) error {
	controller, err := h.resolve(c)
	if err != nil {
		return mapSessionError(c, err, nil)
	}

	var req onboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateOnboardingRequest(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	state, err := controller.Onboard(c.Context(), session.OnboardingInput{
		Name:       strings.TrimSpace(req.Name),
		Age:        req.Age,
		HeightCM:   req.Height,
		WeightKG:   req.Weight,
		GoalWeight: req.GoalWeight,
	})
	if err != nil {
		return mapSessionError(c, err, &state)
	}
	return stateResponse(c, fiber.StatusCreated, state)
}
