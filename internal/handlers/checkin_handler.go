package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/HealthQuestBack/internal/session"
	"go.uber.org/zap"
)

type CheckInHandler struct {
	sessionResolver
}

func NewCheckInHandler(sessions sessionManager, logger *zap.Logger) *CheckInHandler {
	return &CheckInHandler{sessionResolver{sessions: sessions, logger: logger}}
}

type checkInRequest struct {
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
}

func (h *CheckInHandler) ListCheckIns(c *fiber.Ctx) error {
	controller, err := h.resolve(c)
	if err != nil {
		return mapSessionError(c, err, nil)
	}

	state := controller.State()
	if state.Phase != session.PhaseReady {
		return mapSessionError(c, session.ErrProfileRequired, nil)
	}
	page, limit := parsePagination(c)
	return c.JSON(fiber.Map{
		"data":       pageNewestFirst(state.CheckIns, page, limit),
		"pagination": buildPaginationMeta(page, limit, len(state.CheckIns)),
	})
}

func (h *CheckInHandler) SubmitCheckIn(c *fiber.Ctx) error {
	controller, err := h.resolve(c)
	if err != nil {
		return mapSessionError(c, err, nil)
	}

	var req checkInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateCheckInRequest(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	state, err := controller.SubmitCheckIn(c.Context(), req.Weight, req.Height)
	if err != nil {
		return mapSessionError(c, err, &state)
	}

	latest := state.CheckIns[len(state.CheckIns)-1]
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"checkin": latest,
		"state":   session.NewView(state),
	})
}
