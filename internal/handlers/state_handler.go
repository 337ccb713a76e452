package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/HealthQuestBack/internal/session"
	"go.uber.org/zap"
)

// StateHandler serves read models and the per-tab view preferences.
type StateHandler struct {
	sessionResolver
}

func NewStateHandler(sessions sessionManager, logger *zap.Logger) *StateHandler {
	return &StateHandler{sessionResolver{sessions: sessions, logger: logger}}
}

type preferencesRequest struct {
	Language *string `json:"language"`
	Theme    *string `json:"theme"`
}

type screenRequest struct {
	Screen string `json:"screen"`
}

func (h *StateHandler) GetState(c *fiber.Ctx) error {
	controller, err := h.resolve(c)
	if err != nil {
		return mapSessionError(c, err, nil)
	}
	return stateResponse(c, fiber.StatusOK, controller.State())
}

func (h *StateHandler) GetDashboard(c *fiber.Ctx) error {
	controller, err := h.resolve(c)
	if err != nil {
		return mapSessionError(c, err, nil)
	}

	dashboard, err := session.BuildDashboard(controller.State())
	if err != nil {
		return mapSessionError(c, err, nil)
	}
	return c.JSON(dashboard)
}

func (h *StateHandler) GetFoodGuide(c *fiber.Ctx) error {
	controller, err := h.resolve(c)
	if err != nil {
		return mapSessionError(c, err, nil)
	}

	guide, err := session.BuildFoodGuide(controller.State())
	if err != nil {
		return mapSessionError(c, err, nil)
	}
	return c.JSON(guide)
}

func (h *StateHandler) UpdatePreferences(c *fiber.Ctx) error {
	controller, err := h.resolve(c)
	if err != nil {
		return mapSessionError(c, err, nil)
	}

	var req preferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validatePreferencesRequest(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	var theme *session.Theme
	if req.Theme != nil {
		t := session.Theme(*req.Theme)
		theme = &t
	}
	state, err := controller.SetPreferences(req.Language, theme)
	if err != nil {
		return mapSessionError(c, err, &state)
	}
	return stateResponse(c, fiber.StatusOK, state)
}

func (h *StateHandler) ToggleTheme(c *fiber.Ctx) error {
	controller, err := h.resolve(c)
	if err != nil {
		return mapSessionError(c, err, nil)
	}
	return stateResponse(c, fiber.StatusOK, controller.ToggleTheme())
}

func (h *StateHandler) SelectScreen(c *fiber.Ctx) error {
	controller, err := h.resolve(c)
	if err != nil {
		return mapSessionError(c, err, nil)
	}

	var req screenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	state, err := controller.SelectScreen(session.Screen(req.Screen))
	if err != nil {
		return mapSessionError(c, err, &state)
	}
	return stateResponse(c, fiber.StatusOK, state)
}
