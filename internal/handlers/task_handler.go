package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/HealthQuestBack/internal/session"
	"go.uber.org/zap"
)

type TaskHandler struct {
	sessionResolver
}

func NewTaskHandler(sessions sessionManager, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{sessionResolver{sessions: sessions, logger: logger}}
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	controller, err := h.resolve(c)
	if err != nil {
		return mapSessionError(c, err, nil)
	}

	state := controller.State()
	if state.Phase != session.PhaseReady {
		return mapSessionError(c, session.ErrProfileRequired, nil)
	}

	view := session.NewView(state)
	completed := 0
	for _, task := range view.Tasks {
		if task.Completed {
			completed++
		}
	}
	return c.JSON(fiber.Map{
		"data":      view.Tasks,
		"completed": completed,
		"total":     len(view.Tasks),
		"points":    view.Points,
	})
}

func (h *TaskHandler) ToggleTask(c *fiber.Ctx) error {
	controller, err := h.resolve(c)
	if err != nil {
		return mapSessionError(c, err, nil)
	}

	state, err := controller.ToggleTask(c.Context(), c.Params("id"))
	if err != nil {
		return mapSessionError(c, err, &state)
	}
	return stateResponse(c, fiber.StatusOK, state)
}
